package ops

import (
	"errors"
	"log"
	"math/rand"
	"os"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/config"
	"github.com/distr1/fsdrift/internal/distreng"
	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/offsetpool"
)

const (
	linkSuffix   = ".s"
	hlinkSuffix  = ".h"
	// renameSuffix is reserved for a future rename-history companion
	// file, mirroring the original's unused rename_suffix constant; no
	// handler reads or writes it today.
	renameSuffix = ".r"
)

// Mapper is the subset of *pathmap.Mapper the op handlers need. Handlers
// depends on this interface rather than the concrete type so tests can
// substitute a fixed-path stand-in without fighting the distribution
// engine's draw.
type Mapper interface {
	TotalDirs() int64
	PathOf(index int64) string
}

// Handlers bundles the dependencies every op handler needs. Exactly one
// Handlers is built for the whole run and shared by every worker
// goroutine; every field it exposes to concurrent callers (counters,
// offset pool, distribution engine, rawdevice cursors) already does its
// own synchronization. Only the *rand.Rand each method takes is
// per-worker, since math/rand.Rand itself is not concurrency-safe.
type Handlers struct {
	cfg      *config.Config
	mapper   Mapper
	engine   *distreng.Engine
	counters *fsstats.Counters
	offsets  *offsetpool.Pool // nil unless randommap/fill
	cursors  *cursors
	logger   *log.Logger
	start    time.Time
}

// New builds a Handlers. offsets may be nil when randommap/fill are both
// disabled. start is the run's start time, used to compute each Result's
// TimeBefore (seconds since start).
func New(cfg *config.Config, mapper Mapper, engine *distreng.Engine, counters *fsstats.Counters, offsets *offsetpool.Pool, logger *log.Logger, start time.Time) *Handlers {
	return &Handlers{
		cfg:      cfg,
		mapper:   mapper,
		engine:   engine,
		counters: counters,
		offsets:  offsets,
		cursors:  &cursors{},
		logger:   logger,
		start:    start,
	}
}

// pathFor draws the next namespace index from the distribution engine and
// maps it to a path.
func (h *Handlers) pathFor(rnd *rand.Rand, isCreate bool) string {
	maxFilesPerDir := h.cfg.MaxFiles / h.mapper.TotalDirs()
	if maxFilesPerDir < 1 {
		maxFilesPerDir = 1
	}
	index := h.engine.NextIndex(rnd, isCreate, maxFilesPerDir)
	return h.mapper.PathOf(index)
}

// targetSize draws the total byte count an operation intends to
// transfer, aligned the same way recordSize is.
func (h *Handlers) targetSize(rnd *rand.Rand) int64 {
	return h.cfg.FileSize.DrawBytes(rnd, h.cfg.Direct)
}

// recordSize draws the transfer size of a single read/write/ioctl call.
func (h *Handlers) recordSize(rnd *rand.Rand) int64 {
	return h.cfg.BlockSize.DrawBytes(rnd, h.cfg.Direct)
}

// seekOffset picks a random offset in [0, ceiling] (aligned to 4096 when
// direct), or draws from the shared OffsetPool when randommap/fill is
// enabled.
func (h *Handlers) seekOffset(rnd *rand.Rand, ceiling, recsz int64) int64 {
	if h.offsets != nil {
		return recsz * h.offsets.Take()
	}
	if ceiling < 0 {
		return 0
	}
	if h.cfg.Direct {
		blocks := ceiling / 4096
		return rnd.Int63n(blocks+1) * 4096
	}
	return rnd.Int63n(ceiling + 1)
}

// maybeSync decides whether to call fsync, fdatasync or neither, per the
// configured probability split, and records the corresponding counter.
func (h *Handlers) maybeSync(rnd *rand.Rand, f *os.File) {
	percent := rnd.Intn(101)
	switch {
	case percent > h.cfg.FsyncPct+h.cfg.FdatasyncPct:
		return
	case percent > h.cfg.FsyncPct:
		h.counters.Fdatasyncs.Add(1)
		_ = unix.Fdatasync(int(f.Fd()))
	default:
		h.counters.Fsyncs.Add(1)
		_ = unix.Fsync(int(f.Fd()))
	}
}

// directFlag returns unix.O_DIRECT when direct I/O is configured, else 0.
func (h *Handlers) directFlag() int {
	if h.cfg.Direct {
		return unix.O_DIRECT
	}
	return 0
}

// alignedBuffer returns a size-byte slice whose start address is 4096-byte
// aligned, as O_DIRECT requires on Linux. It over-allocates and slices
// into the aligned region rather than depending on a cgo allocator.
func alignedBuffer(size int) []byte {
	if size == 0 {
		return nil
	}
	const align = 4096
	buf := make([]byte, size+align)
	offset := (align - int(uintptr(unsafe.Pointer(&buf[0]))%align)) % align
	aligned := buf[offset:]
	return aligned[:size:size]
}

func errno(err error) (syscall.Errno, bool) {
	var e syscall.Errno
	ok := errors.As(err, &e)
	return e, ok
}

func (h *Handlers) logOpFatal(op, path string, err error) {
	if h.logger != nil {
		h.logger.Printf("%s %s: %v", op, path, err)
	}
}

// before returns seconds elapsed since the run's start time, for a
// Result's TimeBefore field.
func (h *Handlers) before() float64 {
	return time.Since(h.start).Seconds()
}
