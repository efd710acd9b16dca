package driver

import (
	"context"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/distr1/fsdrift/internal/config"
	"github.com/distr1/fsdrift/internal/distreng"
	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/offsetpool"
	"github.com/distr1/fsdrift/internal/ops"
	"github.com/distr1/fsdrift/internal/pathmap"
	"github.com/distr1/fsdrift/internal/weighted"
)

// Run builds every worker's dependencies, blocks on the starting-gun
// file if one is configured, spawns cfg.Threads workers under an
// errgroup.Group so the first worker error cancels the rest, prints
// periodic stats on a ticker, and removes the coordination files once
// every worker has returned.
func Run(ctx context.Context, cfg *config.Config, source *weighted.Source, logger *log.Logger, reporter *fsstats.Reporter) (*fsstats.Counters, error) {
	if cfg.StartingGun != "" {
		if err := waitForStartingGun(ctx, cfg.StartingGun); err != nil {
			return nil, err
		}
	}

	mapper := pathmap.New(cfg.TopDirectory, cfg.Prefix, cfg.Levels, cfg.DirsPerLevel, cfg.RawDevice)
	engine := distreng.New(cfg, "")
	counters := fsstats.New()

	var offsets *offsetpool.Pool
	if cfg.RawDevice != "" && (cfg.RandomMap || cfg.Fill) {
		recordSize := cfg.BlockSize.MinKB * 1024
		if recordSize <= 0 {
			recordSize = 4096
		}
		pool, err := offsetpool.Open(cfg.RawDevice, recordSize, logger)
		if err != nil {
			return nil, err
		}
		offsets = pool
	}

	start := time.Now()
	handlers := ops.New(cfg, mapper, engine, counters, offsets, logger, start)

	group, gctx := errgroup.WithContext(ctx)
	for worker := 0; worker < cfg.Threads; worker++ {
		worker := worker
		d := New(cfg, handlers, counters, engine, source, logger, start, worker)
		group.Go(func() error {
			return d.Run(gctx)
		})
	}

	stopReport := make(chan struct{})
	if cfg.ReportIntervalSec > 0 && reporter != nil {
		go reportPeriodically(gctx, stopReport, reporter, counters, engine, cfg.ReportIntervalSec)
	}

	err := group.Wait()
	close(stopReport)

	if reporter != nil {
		reporter.Report(counters, engine.LastCenter())
	}

	if cfg.StopFile != "" {
		_ = os.Remove(cfg.StopFile)
	}
	if cfg.StartingGun != "" {
		_ = os.Remove(cfg.StartingGun)
	}

	return counters, err
}

func reportPeriodically(ctx context.Context, stop <-chan struct{}, reporter *fsstats.Reporter, counters *fsstats.Counters, engine *distreng.Engine, intervalSec int64) {
	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			reporter.Report(counters, engine.LastCenter())
		}
	}
}

// waitForStartingGun polls for path to become readable, enabling
// multi-host launch coordination (spec.md §6, §8 scenario 6).
func waitForStartingGun(ctx context.Context, path string) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if f, err := os.Open(path); err == nil {
			f.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
