// Command fsdrift generates a mixed filesystem/block-device workload to
// stress-test storage stacks: see the package comment in internal/driver
// for the per-worker loop this binary wires up.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/xerrors"

	"github.com/distr1/fsdrift/internal/config"
	"github.com/distr1/fsdrift/internal/driver"
	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/signalctx"
	"github.com/distr1/fsdrift/internal/weighted"
)

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func funcmain() error {
	fset := flag.NewFlagSet("fsdrift", flag.ExitOnError)
	fset.Usage = usage(fset)

	var (
		topDirectory  = fset.String("top-directory", "", "root directory under which fsdrift creates files (required)")
		opCount       = fset.Int64("operation-count", 0, "stop after this many operations per worker (0 disables)")
		duration      = fset.Int64("duration", 0, "stop after this many seconds (0 disables)")
		maxFiles      = fset.Int64("max-files", 1000, "number of distinct namespace indices")
		fileSize      = fset.String("file-size", "4", "target transfer size in KB, \"N\" or \"MIN:MAX\"")
		blockSize     = fset.String("blocksize", "4", "per-record transfer size in KB, \"N\" or \"MIN:MAX\"")
		fsyncPct      = fset.Int("fsync", 0, "percent chance of fsync after a write op")
		fdatasyncPct  = fset.Int("fdatasync", 0, "percent chance of fdatasync after a write op")
		rspDir        = fset.String("response-times", "", "directory to write per-worker response-time CSVs to")
		bwDir         = fset.String("bandwidth", "", "directory to write per-worker bandwidth CSVs to")
		levels        = fset.Int("levels", 2, "directory tree depth")
		dirsPerLevel  = fset.Int("dirs-per-level", 32, "directories per tree level")
		workloadTable = fset.String("workload-table", "", "path to an operation-weight table (default: equal weights)")
		reportInt     = fset.Int64("report-interval", 10, "seconds between periodic stats reports (0 disables)")
		distribution  = fset.String("random-distribution", "uniform", "\"uniform\" or \"gaussian\"")
		meanVelocity  = fset.Float64("mean-velocity", 0, "gaussian moving-mean drift per simulated-time tick")
		stddev        = fset.Float64("gaussian-stddev", 1000, "gaussian distribution stddev")
		stddevsAhead  = fset.Float64("create-stddevs-ahead", 0, "stddevs creates lead reads by, under gaussian")
		compression   = fset.Float64("compression-ratio", 0, "approximate compressibility of write payloads, 0 disables")
		direct        = fset.Bool("direct", false, "force 4096-byte aligned, cache-bypassing I/O")
		prefix        = fset.String("prefix", "f", "leaf file name prefix")
		rawDevice     = fset.String("rawdevice", "", "operate on this block device instead of files")
		randomMap     = fset.Bool("randommap", false, "draw rawdevice offsets from a pre-shuffled permutation")
		fill          = fset.Bool("fill", false, "terminate the run once ENOSPC is observed")
		dedupe        = fset.Int("dedupe-percentage", 0, "percent of write payload blocks that are duplicates")
		threads       = fset.Int("threads", 1, "number of concurrent worker goroutines")
		startingGun   = fset.String("starting-gun-file", "", "block workers until this file is readable")
		pauseFile     = fset.String("pause_file", "", "presence of this file ends the run (default: <top-directory>/.fsdrift-stop)")
		shortStats    = fset.Bool("short-stats", false, "print an abbreviated periodic stats report")
		driftTime     = fset.Int64("drift-time", config.DriftNone, "seconds between simulated-time advances; -1 advances once per draw")
	)

	// Short flag aliases. spec.md §9's two open questions (-+D and -b
	// overloads) are deliberately NOT reproduced: --dedupe-percentage has
	// no short flag, --random-distribution keeps -R, and --bandwidth
	// gets -B so it never collides with --blocksize's -b.
	fset.StringVar(topDirectory, "t", "", "alias for --top-directory")
	fset.Int64Var(opCount, "o", 0, "alias for --operation-count")
	fset.Int64Var(duration, "d", 0, "alias for --duration")
	fset.Int64Var(maxFiles, "f", 1000, "alias for --max-files")
	fset.StringVar(fileSize, "s", "4", "alias for --file-size")
	fset.StringVar(blockSize, "b", "4", "alias for --blocksize")
	fset.IntVar(fsyncPct, "Y", 0, "alias for --fsync")
	fset.IntVar(fdatasyncPct, "y", 0, "alias for --fdatasync")
	fset.StringVar(rspDir, "T", "", "alias for --response-times")
	fset.StringVar(bwDir, "B", "", "alias for --bandwidth")
	fset.IntVar(levels, "l", 2, "alias for --levels")
	fset.IntVar(dirsPerLevel, "D", 32, "alias for --dirs-per-level")
	fset.StringVar(workloadTable, "w", "", "alias for --workload-table")
	fset.Int64Var(reportInt, "i", 10, "alias for --report-interval")
	fset.StringVar(distribution, "R", "uniform", "alias for --random-distribution")
	fset.Float64Var(compression, "c", 0, "alias for --compression-ratio")
	fset.StringVar(prefix, "P", "f", "alias for --prefix")
	fset.BoolVar(randomMap, "M", false, "alias for --randommap")
	fset.BoolVar(fill, "F", false, "alias for --fill")
	fset.StringVar(startingGun, "S", "", "alias for --starting-gun-file")
	fset.StringVar(pauseFile, "p", "", "alias for --pause_file")
	fset.BoolVar(shortStats, "a", false, "alias for --short-stats")

	var help bool
	fset.BoolVar(&help, "help", false, "print usage and exit")
	fset.BoolVar(&help, "h", false, "alias for --help")

	if err := fset.Parse(os.Args[1:]); err != nil {
		return err
	}
	if help {
		fset.Usage()
		return nil
	}

	cfg, err := config.New(config.Params{
		TopDirectory:       *topDirectory,
		StartingGun:        *startingGun,
		StopFile:           *pauseFile,
		WorkloadTable:      *workloadTable,
		OpCount:            *opCount,
		DurationSec:        *duration,
		MaxFiles:           *maxFiles,
		Levels:             *levels,
		DirsPerLevel:       *dirsPerLevel,
		Prefix:             *prefix,
		FileSize:           *fileSize,
		BlockSize:          *blockSize,
		FsyncPct:           *fsyncPct,
		FdatasyncPct:       *fdatasyncPct,
		Distribution:       *distribution,
		MeanVelocity:       *meanVelocity,
		GaussianStddev:     *stddev,
		CreateStddevsAhead: *stddevsAhead,
		DriftTimeSec:       *driftTime,
		CompressionRatio:   *compression,
		DedupePercentage:   *dedupe,
		Direct:             *direct,
		RawDevice:          *rawDevice,
		RandomMap:          *randomMap,
		Fill:               *fill,
		Threads:            *threads,
		ResponseTimesDir:   *rspDir,
		BandwidthDir:       *bwDir,
		ReportIntervalSec:  *reportInt,
		ShortStats:         *shortStats,
	})
	if err != nil {
		return xerrors.Errorf("invalid configuration: %w", err)
	}

	if cfg.RawDevice == "" {
		if err := os.MkdirAll(cfg.TopDirectory, 0o755); err != nil && !os.IsExist(err) {
			return xerrors.Errorf("creating top-directory: %w", err)
		}
	}

	var source *weighted.Source
	if cfg.WorkloadTable != "" {
		source, err = weighted.ParseWorkloadTableFile(cfg.WorkloadTable)
		if err != nil {
			return xerrors.Errorf("parsing workload table: %w", err)
		}
	} else {
		source = weighted.NewEqualWeights()
	}

	if err := bumpRlimitNOFILE(); err != nil {
		log.Printf("could not raise RLIMIT_NOFILE: %v", err)
	}

	logger := log.New(os.Stderr, "fsdrift: ", log.LstdFlags)
	reporter := fsstats.NewReporter(os.Stdout, os.Stdout.Fd(), cfg.ShortStats, time.Now())

	ctx, cancel := signalctx.Interruptible()
	defer cancel()

	_, err = driver.Run(ctx, cfg, source, logger, reporter)
	return err
}
