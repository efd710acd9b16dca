package config

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validParams() Params {
	return Params{
		TopDirectory: "/tmp/foo",
		MaxFiles:     20,
		Levels:       2,
		DirsPerLevel: 3,
		Threads:      1,
		FileSize:     "1024",
		BlockSize:    "4",
		FsyncPct:     20,
		FdatasyncPct: 10,
		Distribution: "uniform",
	}
}

func TestNewValid(t *testing.T) {
	p := validParams()
	cfg, err := New(p)
	if err != nil {
		t.Fatalf("New(%+v) returned error: %v", p, err)
	}
	if cfg.Prefix != "f" {
		t.Errorf("default prefix = %q, want %q", cfg.Prefix, "f")
	}
	if cfg.Distribution != Uniform {
		t.Errorf("Distribution = %v, want Uniform", cfg.Distribution)
	}
}

func TestNewBuildsExpectedSnapshot(t *testing.T) {
	p := validParams()
	p.StopFile = "/tmp/foo/.stop"
	cfg, err := New(p)
	if err != nil {
		t.Fatalf("New(%+v) returned error: %v", p, err)
	}
	want := &Config{
		TopDirectory: "/tmp/foo",
		StopFile:     "/tmp/foo/.stop",
		MaxFiles:     20,
		Levels:       2,
		DirsPerLevel: 3,
		Prefix:       "f",
		FileSize:     Size{MinKB: 1024, MaxKB: 1024},
		BlockSize:    Size{MinKB: 4, MaxKB: 4},
		FsyncPct:     20,
		FdatasyncPct: 10,
		Distribution: Uniform,
		Threads:      1,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("New(%+v) mismatch (-want +got):\n%s", p, diff)
	}
}

func TestNewRejectsBadSyncBudget(t *testing.T) {
	p := validParams()
	p.FsyncPct = 70
	p.FdatasyncPct = 40
	if _, err := New(p); err == nil {
		t.Fatal("expected error when fsync+fdatasync percentage exceeds 100")
	}
}

func TestNewRejectsBadDistribution(t *testing.T) {
	p := validParams()
	p.Distribution = "poisson"
	if _, err := New(p); err == nil {
		t.Fatal("expected error for unknown distribution name")
	}
}

func TestNewRejectsZeroMaxFiles(t *testing.T) {
	p := validParams()
	p.MaxFiles = 0
	if _, err := New(p); err == nil {
		t.Fatal("expected error for non-positive max-files")
	}
}

func TestNewRejectsNegativeCompressionRatio(t *testing.T) {
	p := validParams()
	p.CompressionRatio = -1
	if _, err := New(p); err == nil {
		t.Fatal("expected error for negative compression ratio")
	}
}

func TestNewAcceptsCompressionRatioAboveOne(t *testing.T) {
	// compression_ratio is a ratio like gzip's (10.0 means 10:1), not a
	// [0,1] fraction — spec.md:83 divides 4096 by it directly.
	p := validParams()
	p.CompressionRatio = 10
	if _, err := New(p); err != nil {
		t.Fatalf("New with compression ratio 10: %v", err)
	}
}

func TestNewRejectsMissingDirsPerLevel(t *testing.T) {
	p := validParams()
	p.DirsPerLevel = 0
	if _, err := New(p); err == nil {
		t.Fatal("expected error when levels > 0 and dirs-per-level == 0")
	}
}

func TestParseSizeFixed(t *testing.T) {
	sz, err := ParseSize("1024")
	if err != nil {
		t.Fatalf("ParseSize: %v", err)
	}
	if sz.MinKB != 1024 || sz.MaxKB != 1024 {
		t.Errorf("ParseSize(%q) = %+v, want fixed 1024", "1024", sz)
	}
}

func TestParseSizeRange(t *testing.T) {
	sz, err := ParseSize("4:64")
	if err != nil {
		t.Fatalf("ParseSize: %v", err)
	}
	if sz.MinKB != 4 || sz.MaxKB != 64 {
		t.Errorf("ParseSize(%q) = %+v, want {4 64}", "4:64", sz)
	}
}

func TestParseSizeRejectsInvertedRange(t *testing.T) {
	if _, err := ParseSize("64:4"); err == nil {
		t.Fatal("expected error for max below min")
	}
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "abc", "1:abc", "abc:1"} {
		if _, err := ParseSize(s); err == nil {
			t.Errorf("ParseSize(%q) succeeded, want error", s)
		}
	}
}

func TestSizeDrawBytesFixed(t *testing.T) {
	sz := FixedSize(4)
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if got := sz.DrawBytes(rnd, false); got != 4*BytesPerKB {
			t.Fatalf("DrawBytes = %d, want %d", got, 4*BytesPerKB)
		}
	}
}

func TestSizeDrawBytesRangeBounds(t *testing.T) {
	sz := Size{MinKB: 4, MaxKB: 64}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		got := sz.DrawBytes(rnd, false)
		if got < 4*BytesPerKB || got > 64*BytesPerKB {
			t.Fatalf("DrawBytes = %d, outside [%d,%d]", got, 4*BytesPerKB, 64*BytesPerKB)
		}
	}
}

func TestSizeDrawBytesDirectAlignment(t *testing.T) {
	sz := Size{MinKB: 1, MaxKB: 9}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		got := sz.DrawBytes(rnd, true)
		if got%DirectAlign != 0 {
			t.Fatalf("DrawBytes with direct=true returned %d, not a multiple of %d", got, DirectAlign)
		}
		if got == 0 {
			t.Fatal("DrawBytes with direct=true returned 0")
		}
	}
}
