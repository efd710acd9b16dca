package distreng

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/distr1/fsdrift/internal/config"
)

func testConfig(distr config.DistrType) *config.Config {
	return &config.Config{
		Distribution:       distr,
		MaxFiles:           1000,
		MeanVelocity:        0,
		GaussianStddev:      1000,
		CreateStddevsAhead:  3,
		DriftTimeSec:        config.DriftNone,
	}
}

func TestNextIndexUniformInclusiveBound(t *testing.T) {
	e := New(testConfig(config.Uniform), filepath.Join(t.TempDir(), "simtime"))
	rnd := rand.New(rand.NewSource(1))
	seenMax := false
	for i := 0; i < 20000; i++ {
		idx := e.NextIndex(rnd, false, 10)
		if idx < 0 || idx > 10 {
			t.Fatalf("NextIndex returned %d, outside inclusive [0,10]", idx)
		}
		if idx == 10 {
			seenMax = true
		}
	}
	if !seenMax {
		t.Fatal("uniform draw never reached the inclusive upper bound across 20000 draws")
	}
}

func TestNextIndexGaussianZeroMeanMatchesStddev(t *testing.T) {
	cfg := testConfig(config.Gaussian)
	cfg.MaxFiles = 1_000_000
	cfg.CreateStddevsAhead = 0
	e := New(cfg, filepath.Join(t.TempDir(), "simtime"))
	rnd := rand.New(rand.NewSource(42))

	samples := make([]float64, 20000)
	for i := range samples {
		idx := e.NextIndex(rnd, false, 0)
		// center is 0, but index is euclidean-mod max_files, so negative
		// draws wrap to near max_files; map them back below zero so the
		// samples are the unwrapped draws.
		if idx > cfg.MaxFiles/2 {
			idx -= cfg.MaxFiles
		}
		samples[i] = float64(idx)
	}
	mean, std := stat.MeanStdDev(samples, nil)
	if e.LastCenter() != 0 {
		t.Fatalf("LastCenter() = %v, want 0", e.LastCenter())
	}
	if math.Abs(mean) > 0.1*cfg.GaussianStddev {
		t.Fatalf("mean of unwrapped samples = %v, want near 0", mean)
	}
	if math.Abs(std-cfg.GaussianStddev) > 0.1*cfg.GaussianStddev {
		t.Fatalf("stddev of unwrapped samples = %v, want within 10%% of %v", std, cfg.GaussianStddev)
	}
}

func TestNextIndexGaussianCreatesLeadReads(t *testing.T) {
	cfg := testConfig(config.Gaussian)
	cfg.MaxFiles = 10_000_000
	cfg.MeanVelocity = 0
	cfg.CreateStddevsAhead = 3
	cfg.GaussianStddev = 100
	e := New(cfg, filepath.Join(t.TempDir(), "simtime"))
	rnd := rand.New(rand.NewSource(7))

	e.NextIndex(rnd, true, 0)
	createCenter := e.LastCenter()
	e.NextIndex(rnd, false, 0)
	readCenter := e.LastCenter()

	if createCenter-readCenter != cfg.CreateStddevsAhead*cfg.GaussianStddev {
		t.Fatalf("create center - read center = %v, want %v", createCenter-readCenter, cfg.CreateStddevsAhead*cfg.GaussianStddev)
	}
}

func TestSimTimePersistenceRoundTrip(t *testing.T) {
	simFile := filepath.Join(t.TempDir(), "simtime")
	cfg := testConfig(config.Gaussian)

	e1 := New(cfg, simFile)
	rnd := rand.New(rand.NewSource(3))
	// timeSaveRate is 5; draw enough times to force at least one save.
	for i := 0; i < 6; i++ {
		e1.NextIndex(rnd, false, 0)
	}
	written := e1.SimulatedTime()
	if written == 0 {
		t.Fatal("expected simulated time to advance")
	}
	if _, err := os.Stat(simFile); err != nil {
		t.Fatalf("expected sim time file to exist: %v", err)
	}

	e2 := New(cfg, simFile)
	e2.NextIndex(rnd, false, 0)
	if e2.SimulatedTime() < written {
		t.Fatalf("resumed simulated time %d < previously persisted %d", e2.SimulatedTime(), written)
	}
}
