// Package config parses and validates the run parameters shared by every
// fsdrift subsystem. A Config is built once by New and passed around by
// pointer; nothing here is a package-level singleton.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DistrType selects how filename/path indices are drawn from the
// namespace (§4.2 DistributionEngine).
type DistrType int

const (
	Uniform DistrType = iota
	Gaussian
)

func (d DistrType) String() string {
	if d == Gaussian {
		return "gaussian"
	}
	return "uniform"
}

// ParseDistrType parses the --random-distribution flag value.
func ParseDistrType(s string) (DistrType, error) {
	switch strings.ToLower(s) {
	case "uniform":
		return Uniform, nil
	case "gaussian":
		return Gaussian, nil
	default:
		return 0, fmt.Errorf("random distribution must be %q or %q, got %q", "uniform", "gaussian", s)
	}
}

// DriftNone is the drift_time sentinel meaning "advance simulated time by
// one on every draw" rather than by wall-clock seconds.
const DriftNone = -1

// Config is the immutable, validated set of parameters for one run.
// Fields mirror the CLI surface in the external interfaces section
// one-for-one; New is the only constructor and is where every cross-field
// invariant is checked.
type Config struct {
	TopDirectory  string
	StartingGun   string
	StopFile      string
	WorkloadTable string

	OpCount      int64
	DurationSec  int64
	MaxFiles     int64
	Levels       int
	DirsPerLevel int
	Prefix       string

	FileSize  Size
	BlockSize Size

	FsyncPct     int
	FdatasyncPct int

	Distribution        DistrType
	MeanVelocity        float64
	GaussianStddev      float64
	CreateStddevsAhead  float64
	DriftTimeSec        int64

	CompressionRatio float64
	DedupePercentage int

	Direct     bool
	RawDevice  string
	RandomMap  bool
	Fill       bool
	Threads    int

	ResponseTimesDir string
	BandwidthDir     string
	ReportIntervalSec int64
	ShortStats       bool
}

// Params holds the raw, unvalidated values a CLI flag set (or a test)
// fills in before calling New. String fields that need parsing (sizes,
// distribution name) stay as strings here; New does the parsing so every
// error surfaces at one place.
type Params struct {
	TopDirectory  string
	StartingGun   string
	StopFile      string
	WorkloadTable string

	OpCount      int64
	DurationSec  int64
	MaxFiles     int64
	Levels       int
	DirsPerLevel int
	Prefix       string

	FileSize  string
	BlockSize string

	FsyncPct     int
	FdatasyncPct int

	Distribution       string
	MeanVelocity       float64
	GaussianStddev     float64
	CreateStddevsAhead float64
	DriftTimeSec       int64

	CompressionRatio float64
	DedupePercentage int

	Direct    bool
	RawDevice string
	RandomMap bool
	Fill      bool
	Threads   int

	ResponseTimesDir  string
	BandwidthDir      string
	ReportIntervalSec int64
	ShortStats        bool
}

// New validates p and builds a Config. Every error returned here is
// run-fatal: the caller (cmd/fsdrift) is expected to print it and exit
// non-zero before any worker starts.
func New(p Params) (*Config, error) {
	if p.TopDirectory == "" {
		return nil, fmt.Errorf("top-directory must not be empty")
	}
	if p.MaxFiles <= 0 {
		return nil, fmt.Errorf("max-files must be positive, got %d", p.MaxFiles)
	}
	if p.Levels < 0 {
		return nil, fmt.Errorf("levels must be non-negative, got %d", p.Levels)
	}
	if p.Levels > 0 && p.DirsPerLevel <= 0 {
		return nil, fmt.Errorf("dirs-per-level must be positive when levels > 0, got %d", p.DirsPerLevel)
	}
	if p.Threads <= 0 {
		return nil, fmt.Errorf("threads must be positive, got %d", p.Threads)
	}
	if p.FsyncPct < 0 || p.FsyncPct > 100 {
		return nil, fmt.Errorf("fsync percentage must be in [0,100], got %d", p.FsyncPct)
	}
	if p.FdatasyncPct < 0 || p.FdatasyncPct > 100 {
		return nil, fmt.Errorf("fdatasync percentage must be in [0,100], got %d", p.FdatasyncPct)
	}
	if p.FsyncPct+p.FdatasyncPct > 100 {
		return nil, fmt.Errorf("fsync + fdatasync percentage must not exceed 100, got %d", p.FsyncPct+p.FdatasyncPct)
	}
	if p.DedupePercentage < 0 || p.DedupePercentage > 100 {
		return nil, fmt.Errorf("dedupe percentage must be in [0,100], got %d", p.DedupePercentage)
	}
	// 0 disables compressibility (bufgen.Generate's printable-pattern
	// path); any other value feeds 4096/compressionRatio directly
	// (spec.md:83), so ratios are expressed the same way as gzip/zstd
	// targets (2.0 means 2:1), not as a [0,1] fraction.
	if p.CompressionRatio < 0 {
		return nil, fmt.Errorf("compression ratio must be non-negative, got %g", p.CompressionRatio)
	}

	fileSize, err := ParseSize(p.FileSize)
	if err != nil {
		return nil, fmt.Errorf("file-size: %w", err)
	}
	blockSize, err := ParseSize(p.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("blocksize: %w", err)
	}

	distr, err := ParseDistrType(p.Distribution)
	if err != nil {
		return nil, err
	}

	prefix := p.Prefix
	if prefix == "" {
		prefix = "f"
	}

	stopFile := p.StopFile
	if stopFile == "" {
		stopFile = filepath.Join(p.TopDirectory, ".fsdrift-stop")
	}

	return &Config{
		TopDirectory:       p.TopDirectory,
		StartingGun:        p.StartingGun,
		StopFile:           stopFile,
		WorkloadTable:      p.WorkloadTable,
		OpCount:            p.OpCount,
		DurationSec:        p.DurationSec,
		MaxFiles:           p.MaxFiles,
		Levels:             p.Levels,
		DirsPerLevel:       p.DirsPerLevel,
		Prefix:             prefix,
		FileSize:           fileSize,
		BlockSize:          blockSize,
		FsyncPct:           p.FsyncPct,
		FdatasyncPct:       p.FdatasyncPct,
		Distribution:       distr,
		MeanVelocity:       p.MeanVelocity,
		GaussianStddev:     p.GaussianStddev,
		CreateStddevsAhead: p.CreateStddevsAhead,
		DriftTimeSec:       p.DriftTimeSec,
		CompressionRatio:   p.CompressionRatio,
		DedupePercentage:   p.DedupePercentage,
		Direct:             p.Direct,
		RawDevice:          p.RawDevice,
		RandomMap:          p.RandomMap,
		Fill:               p.Fill,
		Threads:            p.Threads,
		ResponseTimesDir:   p.ResponseTimesDir,
		BandwidthDir:       p.BandwidthDir,
		ReportIntervalSec:  p.ReportIntervalSec,
		ShortStats:         p.ShortStats,
	}, nil
}

// Bounded reports whether the run has an explicit stopping condition
// besides the stop-file (opcount or duration).
func (c *Config) Bounded() bool {
	return c.OpCount > 0 || c.DurationSec > 0
}
