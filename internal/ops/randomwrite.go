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

// RandomWrite is the write-side mirror of RandomRead: it opens a path
// read-write and issues target/recordsize seeked writes at independently
// drawn offsets.
func (h *Handlers) RandomWrite(rnd *rand.Rand) Result {
	before := h.before()
	path := h.pathFor(rnd, false)
	target := h.targetSize(rnd)

	f, err := os.OpenFile(path, os.O_RDWR|h.directFlag(), 0)
	if err != nil {
		if e, ok := errno(err); ok && e == unix.ENOENT {
			h.counters.RecordClassified(fsstats.ErrFileNotFound)
			return classified(weighted.RandomWrite, fsstats.ErrFileNotFound, before)
		}
		h.logOpFatal("random_write", path, err)
		h.counters.RecordError()
		return opFatal(weighted.RandomWrite, before)
	}
	defer f.Close()

	size := h.fileSize(f)
	buf := bufgen.Generate(target, h.cfg.CompressionRatio, h.cfg.DedupePercentage)

	var precise time.Duration
	var written int64
	for written < target {
		recsz := h.recordSize(rnd)
		if written+recsz > target {
			recsz = target - written
		}
		ceiling := size - recsz
		offset := h.seekOffset(rnd, ceiling, recsz)
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			h.logOpFatal("random_write (seek)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.RandomWrite, before)
		}
		start := time.Now()
		n, err := f.Write(buf[written : written+recsz])
		precise += time.Since(start)
		if err != nil {
			if e, ok := errno(err); ok && e == unix.ENOSPC {
				h.counters.RecordClassified(fsstats.ErrNoSpace)
				return classified(weighted.RandomWrite, fsstats.ErrNoSpace, before)
			}
			h.logOpFatal("random_write (write)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.RandomWrite, before)
		}
		written += int64(n)
		h.counters.RandWriteRequests.Add(1)
		h.counters.RandWriteBytes.Add(int64(n))
	}
	h.maybeSync(rnd, f)

	return completed(weighted.RandomWrite, before, precise, written)
}
