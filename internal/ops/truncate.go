package ops

import (
	"math/rand"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// Truncate opens a path read-write and sets its length to a third of a
// freshly drawn target size.
func (h *Handlers) Truncate(rnd *rand.Rand) Result {
	before := h.before()
	path := h.pathFor(rnd, false)
	newSize := h.targetSize(rnd) / 3

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if e, ok := errno(err); ok && e == unix.ENOENT {
			h.counters.RecordClassified(fsstats.ErrFileNotFound)
			return classified(weighted.Truncate, fsstats.ErrFileNotFound, before)
		}
		h.logOpFatal("truncate", path, err)
		h.counters.RecordError()
		return opFatal(weighted.Truncate, before)
	}
	defer f.Close()

	start := time.Now()
	err = f.Truncate(newSize)
	precise := time.Since(start)
	if err != nil {
		h.logOpFatal("truncate (ftruncate)", path, err)
		h.counters.RecordError()
		return opFatal(weighted.Truncate, before)
	}

	return completed(weighted.Truncate, before, precise, 0)
}
