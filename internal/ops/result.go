// Package ops implements the eleven filesystem/block-device operation
// handlers fsdrift's driver dispatches: read, random_read, create,
// random_write, append, link, delete, rename, truncate, hardlink and
// random_discard.
package ops

import (
	"time"

	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// Result is the single structured return type every handler produces —
// there is no separate scalar-status path for some operations and a rich
// result for others.
type Result struct {
	Kind     weighted.OpKind
	Success  bool
	ErrorTag fsstats.ErrorTag

	// TimeBefore is seconds since the driver's start time, for CSV rows.
	TimeBefore float64
	// PreciseTime is the accumulated wall time of the op's raw data or
	// metadata calls only (read/write/ioctl/truncate/link/rename/unlink),
	// excluding open, seek, fsync/fdatasync, buffer allocation and
	// distribution draws.
	PreciseTime time.Duration
	// SizeBytes is the total payload transferred, 0 for metadata-only ops.
	SizeBytes int64
}

// classified builds a Result for an expected, non-fatal condition: the
// op still counts as successful at the Result level so the workload
// keeps running.
func classified(kind weighted.OpKind, tag fsstats.ErrorTag, before float64) Result {
	return Result{Kind: kind, Success: true, ErrorTag: tag, TimeBefore: before}
}

// opFatal builds a Result for any other syscall failure.
func opFatal(kind weighted.OpKind, before float64) Result {
	return Result{Kind: kind, Success: false, TimeBefore: before}
}

func completed(kind weighted.OpKind, before float64, precise time.Duration, size int64) Result {
	return Result{Kind: kind, Success: true, TimeBefore: before, PreciseTime: precise, SizeBytes: size}
}
