package ops

import (
	"io"
	"math/rand"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/bufgen"
	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// Append opens a path write-only-append and writes a target-sized buffer
// to it in record-sized chunks. In rawdevice mode there is no real
// append semantics, so the shared write cursor stands in for "end of
// file": it is advanced by the target size, wrapping at device end.
func (h *Handlers) Append(rnd *rand.Rand) Result {
	before := h.before()
	path := h.pathFor(rnd, false)
	target := h.targetSize(rnd)

	flags := os.O_WRONLY | h.directFlag()
	if h.cfg.RawDevice == "" {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if e, ok := errno(err); ok {
			switch e {
			case unix.ENOENT:
				h.counters.RecordClassified(fsstats.ErrFileNotFound)
				return classified(weighted.Append, fsstats.ErrFileNotFound, before)
			case unix.ENOSPC:
				h.counters.RecordClassified(fsstats.ErrNoSpace)
				return classified(weighted.Append, fsstats.ErrNoSpace, before)
			}
		}
		h.logOpFatal("append", path, err)
		h.counters.RecordError()
		return opFatal(weighted.Append, before)
	}
	defer f.Close()

	buf := bufgen.Generate(target, h.cfg.CompressionRatio, h.cfg.DedupePercentage)

	var seekAt int64
	if h.cfg.RawDevice != "" {
		seekAt = h.cursors.nextWrite(target, h.deviceSize(f))
		if _, err := f.Seek(seekAt, io.SeekStart); err != nil {
			h.logOpFatal("append (seek)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.Append, before)
		}
	}

	var precise time.Duration
	var written int64
	for written < target {
		recsz := h.recordSize(rnd)
		if written+recsz > target {
			recsz = target - written
		}
		start := time.Now()
		n, err := f.Write(buf[written : written+recsz])
		precise += time.Since(start)
		if err != nil {
			if e, ok := errno(err); ok && e == unix.ENOSPC {
				h.counters.RecordClassified(fsstats.ErrNoSpace)
				return classified(weighted.Append, fsstats.ErrNoSpace, before)
			}
			h.logOpFatal("append (write)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.Append, before)
		}
		written += int64(n)
		h.counters.WriteRequests.Add(1)
		h.counters.WriteBytes.Add(int64(n))
	}
	h.maybeSync(rnd, f)

	return completed(weighted.Append, before, precise, written)
}

// deviceSize returns f's size via seek-to-end, for rawdevice cursor wrap.
func (h *Handlers) deviceSize(f *os.File) int64 {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0
	}
	return size
}
