package ops

import (
	"math/rand"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// Rename draws two independent paths and renames the first to the
// second.
func (h *Handlers) Rename(rnd *rand.Rand) Result {
	before := h.before()
	source := h.pathFor(rnd, false)
	target := h.pathFor(rnd, false)

	start := time.Now()
	err := os.Rename(source, target)
	precise := time.Since(start)
	if err != nil {
		if e, ok := errno(err); ok && e == unix.ENOENT {
			h.counters.RecordClassified(fsstats.ErrFileNotFound)
			return classified(weighted.Rename, fsstats.ErrFileNotFound, before)
		}
		h.logOpFatal("rename", source, err)
		h.counters.RecordError()
		return opFatal(weighted.Rename, before)
	}

	return completed(weighted.Rename, before, precise, 0)
}
