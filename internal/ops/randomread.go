package ops

import (
	"io"
	"math/rand"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// RandomRead opens a path read-only and issues target/recordsize seeked
// reads at independently-drawn offsets within the file (or, under
// randommap/fill, offsets popped from the shared OffsetPool).
func (h *Handlers) RandomRead(rnd *rand.Rand) Result {
	before := h.before()
	path := h.pathFor(rnd, false)
	target := h.targetSize(rnd)

	f, err := os.OpenFile(path, os.O_RDONLY|h.directFlag(), 0)
	if err != nil {
		if e, ok := errno(err); ok && e == unix.ENOENT {
			h.counters.RecordClassified(fsstats.ErrFileNotFound)
			return classified(weighted.RandomRead, fsstats.ErrFileNotFound, before)
		}
		h.logOpFatal("random_read", path, err)
		h.counters.RecordError()
		return opFatal(weighted.RandomRead, before)
	}
	defer f.Close()

	size := h.fileSize(f)

	var precise time.Duration
	var transferred int64
	for transferred < target {
		recsz := h.recordSize(rnd)
		if transferred+recsz > target {
			recsz = target - transferred
		}
		ceiling := size - recsz
		offset := h.seekOffset(rnd, ceiling, recsz)
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			h.logOpFatal("random_read (seek)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.RandomRead, before)
		}
		buf := alignedBuffer(int(recsz))
		start := time.Now()
		n, err := io.ReadFull(f, buf)
		precise += time.Since(start)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			h.logOpFatal("random_read (read)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.RandomRead, before)
		}
		transferred += int64(n)
		h.counters.RandReadRequests.Add(1)
		h.counters.RandReadBytes.Add(int64(n))
	}

	return completed(weighted.RandomRead, before, precise, transferred)
}

// fileSize returns f's current size via stat, or via seek-to-end for a
// raw device, which has no meaningful os.FileInfo.Size.
func (h *Handlers) fileSize(f *os.File) int64 {
	if h.cfg.RawDevice != "" {
		return h.deviceSize(f)
	}
	fi, err := f.Stat()
	if err != nil {
		return 0
	}
	return fi.Size()
}
