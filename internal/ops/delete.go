package ops

import (
	"math/rand"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// Delete unlinks a path's soft-link and hard-link companions, if
// present, then the path itself.
func (h *Handlers) Delete(rnd *rand.Rand) Result {
	before := h.before()
	path := h.pathFor(rnd, false)

	if _, err := os.Lstat(path + linkSuffix); err == nil {
		_ = os.Remove(path + linkSuffix)
	}
	if _, err := os.Lstat(path + hlinkSuffix); err == nil {
		_ = os.Remove(path + hlinkSuffix)
	}

	start := time.Now()
	err := os.Remove(path)
	precise := time.Since(start)
	if err != nil {
		if e, ok := errno(err); ok && e == unix.ENOENT {
			h.counters.RecordClassified(fsstats.ErrFileNotFound)
			return classified(weighted.Delete, fsstats.ErrFileNotFound, before)
		}
		h.logOpFatal("delete", path, err)
		h.counters.RecordError()
		return opFatal(weighted.Delete, before)
	}

	return completed(weighted.Delete, before, precise, 0)
}
