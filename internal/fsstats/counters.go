// Package fsstats aggregates the process-wide counters every worker
// updates and the periodic/final reporter that prints them.
package fsstats

import (
	"sync/atomic"

	"github.com/distr1/fsdrift/internal/weighted"
)

// ErrorTag classifies an expected (non-fatal) error a handler observed.
type ErrorTag int

const (
	NoError ErrorTag = iota
	ErrAlreadyExists
	ErrFileNotFound
	ErrNoDirSpace
	ErrNoInodeSpace
	ErrNoSpace
)

// Counters holds every named counter in the data model as an
// atomic.Int64 field, so workers update it without a mutex.
type Counters struct {
	opCompletions [numOpKinds]atomic.Int64

	ReadBytes      atomic.Int64
	WriteBytes     atomic.Int64
	RandReadBytes  atomic.Int64
	RandWriteBytes atomic.Int64
	DiscardBytes   atomic.Int64

	ReadRequests      atomic.Int64
	WriteRequests     atomic.Int64
	RandReadRequests  atomic.Int64
	RandWriteRequests atomic.Int64
	DiscardRequests   atomic.Int64

	Fsyncs     atomic.Int64
	Fdatasyncs atomic.Int64

	DirsCreated atomic.Int64

	EAlreadyExists atomic.Int64
	EFileNotFound  atomic.Int64
	ENoDirSpace    atomic.Int64
	ENoInodeSpace  atomic.Int64
	ENoSpace       atomic.Int64

	TotalErrors atomic.Int64
}

// numOpKinds mirrors weighted's private op-kind count; there is no
// exported constant to reference, so this is kept in sync by hand with
// the OpKind list in package weighted.
const numOpKinds = 11

// New returns a zeroed Counters.
func New() *Counters {
	return &Counters{}
}

// IncCompletion increments the per-op completion counter for kind.
func (c *Counters) IncCompletion(kind weighted.OpKind) {
	c.opCompletions[kind].Add(1)
}

// Completions returns the current completion count for kind.
func (c *Counters) Completions(kind weighted.OpKind) int64 {
	return c.opCompletions[kind].Load()
}

// RecordError increments total_errors for an op-fatal failure; op-fatal
// failures have no error-specific counter. Classified (expected) errors should call
// RecordClassified instead, which does not touch total_errors.
func (c *Counters) RecordError() {
	c.TotalErrors.Add(1)
}

// RecordClassified increments the counter matching tag. Classified errors
// are expected control flow (§7): they never touch total_errors.
func (c *Counters) RecordClassified(tag ErrorTag) {
	switch tag {
	case ErrAlreadyExists:
		c.EAlreadyExists.Add(1)
	case ErrFileNotFound:
		c.EFileNotFound.Add(1)
	case ErrNoDirSpace:
		c.ENoDirSpace.Add(1)
	case ErrNoInodeSpace:
		c.ENoInodeSpace.Add(1)
	case ErrNoSpace:
		c.ENoSpace.Add(1)
	}
}

// HasDeviceFull reports whether a no-space-for-data (ENoSpace) or
// no-space-for-inode (ENoInodeSpace) condition has been observed, used by
// the driver's "fill" termination check. ENoDirSpace does not count.
func (c *Counters) HasDeviceFull() bool {
	return c.ENoSpace.Load() > 0 || c.ENoInodeSpace.Load() > 0
}
