package driver

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/distr1/fsdrift/internal/config"
	"github.com/distr1/fsdrift/internal/distreng"
	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/ops"
	"github.com/distr1/fsdrift/internal/weighted"
)

// overlongNameMapper always maps to a path whose leaf component exceeds
// NAME_MAX (255 bytes on Linux), forcing every create to fail with
// ENAMETOOLONG — a real, root-proof op-fatal condition, unlike EACCES.
type overlongNameMapper struct {
	dir string
}

func (m overlongNameMapper) TotalDirs() int64 { return 1 }
func (m overlongNameMapper) PathOf(int64) string {
	return filepath.Join(m.dir, strings.Repeat("x", 300))
}

// A single op-fatal Result must increment total_errors exactly once
// (spec.md §8: total_errors == count(Results with success=false)).
// ops.Handlers' RecordError() call already owns that counter; the
// driver's loop must not add to it a second time for the same Result.
func TestRunDoesNotDoubleCountOpFatalErrors(t *testing.T) {
	top := t.TempDir()
	cfg, err := config.New(config.Params{
		TopDirectory: top,
		OpCount:      1,
		MaxFiles:     10,
		Levels:       1,
		DirsPerLevel: 1,
		Threads:      1,
		FileSize:     "4",
		BlockSize:    "4",
		Distribution: "uniform",
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	engine := distreng.New(cfg, filepath.Join(top, "simtime"))
	counters := fsstats.New()
	logger := log.New(os.Stderr, "test: ", 0)
	handlers := ops.New(cfg, overlongNameMapper{dir: top}, engine, counters, nil, logger, time.Now())
	source, err := weighted.ParseWorkloadTable(strings.NewReader("create 1\n"))
	if err != nil {
		t.Fatalf("ParseWorkloadTable: %v", err)
	}

	d := New(cfg, handlers, counters, engine, source, logger, time.Now(), 0)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := counters.TotalErrors.Load(); got != 1 {
		t.Fatalf("TotalErrors = %d, want 1 after a single op-fatal create", got)
	}
}

// spec.md §8 scenario 1: threads=1, opcount=100, max_files=10, levels=1,
// dirs_per_level=1, uniform, workload={create:1} should issue exactly
// 100 create attempts split between have_created and e_already_exists,
// with files landing under top_directory/d0001/.
func TestRunCreateOnlyScenario(t *testing.T) {
	top := t.TempDir()
	cfg, err := config.New(config.Params{
		TopDirectory: top,
		OpCount:      100,
		MaxFiles:     10,
		Levels:       1,
		DirsPerLevel: 1,
		Threads:      1,
		FileSize:     "4",
		BlockSize:    "4",
		Distribution: "uniform",
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	source, err := weighted.ParseWorkloadTable(strings.NewReader("create 1\n"))
	if err != nil {
		t.Fatalf("ParseWorkloadTable: %v", err)
	}

	logger := log.New(os.Stderr, "test: ", 0)
	counters, err := Run(context.Background(), cfg, source, logger, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	completed := counters.Completions(weighted.Create)
	already := counters.EAlreadyExists.Load()
	if completed+already != 100 {
		t.Fatalf("have_created(%d) + e_already_exists(%d) = %d, want 100", completed, already, completed+already)
	}
	if counters.TotalErrors.Load() != 0 {
		t.Fatalf("total_errors = %d, want 0 on a healthy tmp filesystem", counters.TotalErrors.Load())
	}

	if _, err := os.Stat(filepath.Join(top, "d0001")); err != nil {
		t.Fatalf("expected leaf directory d0001 under top_directory: %v", err)
	}
}

// spec.md §8 scenario 2: a mixed create+read workload under a wall-clock
// duration bound terminates promptly and without error.
func TestRunDurationBoundTerminates(t *testing.T) {
	top := t.TempDir()
	cfg, err := config.New(config.Params{
		TopDirectory: top,
		DurationSec:  1,
		MaxFiles:     50,
		Levels:       1,
		DirsPerLevel: 2,
		Threads:      4,
		FileSize:     "4",
		BlockSize:    "4",
		Distribution: "uniform",
	})
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}

	source, err := weighted.ParseWorkloadTable(strings.NewReader("create 1\nread 1\n"))
	if err != nil {
		t.Fatalf("ParseWorkloadTable: %v", err)
	}

	logger := log.New(os.Stderr, "test: ", 0)

	start := time.Now()
	c, err := Run(context.Background(), cfg, source, logger, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Run took %s, expected clean termination near the 1s duration bound", elapsed)
	}
	if got := c.Completions(weighted.Create) + c.Completions(weighted.Read); got == 0 {
		t.Fatal("expected at least one create or read to complete")
	}
}
