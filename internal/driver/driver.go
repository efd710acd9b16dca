package driver

import (
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/distr1/fsdrift/internal/config"
	"github.com/distr1/fsdrift/internal/distreng"
	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/ops"
	"github.com/distr1/fsdrift/internal/weighted"
)

// stopFileCheckInterval is how many events a worker issues between
// stop-file existence checks (spec.md §4.7 step 3, §5 cancellation
// channel (a)).
const stopFileCheckInterval = 1000

// Driver runs one worker's event loop: draw an op kind, dispatch it,
// fold the result into Counters, optionally append CSV rows, and check
// the run's termination conditions. One Driver is built per worker;
// every dependency it references (engine, counters, offset pool) is
// already safe for concurrent use from multiple Drivers.
type Driver struct {
	cfg      *config.Config
	handlers *ops.Handlers
	counters *fsstats.Counters
	engine   *distreng.Engine
	source   *weighted.Source
	log      *log.Logger
	start    time.Time
	worker   int
}

// New builds a Driver for one worker. worker is its zero-based index,
// used for CSV filenames and the per-worker rand.Rand seed.
func New(cfg *config.Config, handlers *ops.Handlers, counters *fsstats.Counters, engine *distreng.Engine, source *weighted.Source, logger *log.Logger, start time.Time, worker int) *Driver {
	return &Driver{
		cfg:      cfg,
		handlers: handlers,
		counters: counters,
		engine:   engine,
		source:   source,
		log:      logger,
		start:    start,
		worker:   worker,
	}
}

// Run blocks until ctx is canceled, the stop file appears, opcount or
// duration is reached, or (with fill) the device is observed full. It
// never returns an error for expected termination; it returns one only
// if a CSV row could not be written, since that indicates a
// misconfigured output directory the operator should know about
// immediately rather than silently losing data for the rest of the run.
func (d *Driver) Run(ctx context.Context) error {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano() + int64(d.worker)))
	csv := newCSVWriters(d.cfg.ResponseTimesDir, d.cfg.BandwidthDir, d.start.Unix(), d.worker)

	var localOps int64
	var lastDrift time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if localOps%stopFileCheckInterval == 0 && d.stopFileExists() {
			return nil
		}
		if d.cfg.Fill && d.counters.HasDeviceFull() {
			return nil
		}
		if d.cfg.OpCount > 0 && localOps >= d.cfg.OpCount {
			return nil
		}
		if d.cfg.DurationSec > 0 && time.Since(d.start) >= time.Duration(d.cfg.DurationSec)*time.Second {
			return nil
		}

		kind := d.source.Next(rnd)
		result := d.handlers.Dispatch(kind, rnd)
		localOps++

		// Op-fatal handlers already call counters.RecordError(), which
		// owns TotalErrors; the driver only needs Success to drive flow
		// here, not to increment the same counter a second time.
		if result.Success && result.ErrorTag == fsstats.NoError {
			d.counters.IncCompletion(result.Kind)
		}

		if err := csv.recordResult(result); err != nil {
			return err
		}

		if d.cfg.DriftTimeSec > 0 {
			if lastDrift.IsZero() {
				lastDrift = d.start
			}
			if time.Since(lastDrift) >= time.Duration(d.cfg.DriftTimeSec)*time.Second {
				d.engine.AdvanceWallClock()
				lastDrift = time.Now()
			}
		}
	}
}

func (d *Driver) stopFileExists() bool {
	if d.cfg.StopFile == "" {
		return false
	}
	_, err := os.Stat(d.cfg.StopFile)
	return err == nil
}
