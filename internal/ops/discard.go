package ops

import (
	"math/rand"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/blkdiscard"
	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// RandomDiscard opens the path write-only and issues one BLKDISCARD
// ioctl per record at an independently drawn offset, telling the device
// that range is no longer in use.
func (h *Handlers) RandomDiscard(rnd *rand.Rand) Result {
	before := h.before()
	path := h.pathFor(rnd, false)
	target := h.targetSize(rnd)

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		if e, ok := errno(err); ok && e == unix.ENOENT {
			h.counters.RecordClassified(fsstats.ErrFileNotFound)
			return classified(weighted.RandomDiscard, fsstats.ErrFileNotFound, before)
		}
		h.logOpFatal("random_discard", path, err)
		h.counters.RecordError()
		return opFatal(weighted.RandomDiscard, before)
	}
	defer f.Close()

	size := h.fileSize(f)

	var precise time.Duration
	var discarded int64
	for discarded < target {
		recsz := h.recordSize(rnd)
		if discarded+recsz > target {
			recsz = target - discarded
		}
		ceiling := size - recsz
		offset := h.seekOffset(rnd, ceiling, recsz)

		start := time.Now()
		err := blkdiscard.Discard(f, offset, recsz)
		precise += time.Since(start)
		if err != nil {
			h.logOpFatal("random_discard (ioctl)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.RandomDiscard, before)
		}
		discarded += recsz
		h.counters.DiscardRequests.Add(1)
		h.counters.DiscardBytes.Add(recsz)
	}

	return completed(weighted.RandomDiscard, before, precise, discarded)
}
