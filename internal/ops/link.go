package ops

import (
	"math/rand"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// Link creates a symlink at source+linkSuffix pointing at source. A
// missing source is an expected miss, not a failure: the namespace draw
// may legitimately land on a file nothing has created yet.
func (h *Handlers) Link(rnd *rand.Rand) Result {
	return h.makeLink(rnd, weighted.Link, linkSuffix, os.Symlink)
}

// Hardlink creates a hard link at source+hlinkSuffix, the same way Link
// creates a symlink.
func (h *Handlers) Hardlink(rnd *rand.Rand) Result {
	return h.makeLink(rnd, weighted.Hardlink, hlinkSuffix, os.Link)
}

func (h *Handlers) makeLink(rnd *rand.Rand, kind weighted.OpKind, suffix string, link func(oldname, newname string) error) Result {
	before := h.before()
	source := h.pathFor(rnd, false)
	target := source + suffix

	if _, err := os.Lstat(source); err != nil {
		if e, ok := errno(err); ok && e == unix.ENOENT {
			h.counters.RecordClassified(fsstats.ErrFileNotFound)
			return classified(kind, fsstats.ErrFileNotFound, before)
		}
	}

	start := time.Now()
	err := link(source, target)
	precise := time.Since(start)
	if err != nil {
		if e, ok := errno(err); ok {
			switch e {
			case unix.ENOENT:
				h.counters.RecordClassified(fsstats.ErrFileNotFound)
				return classified(kind, fsstats.ErrFileNotFound, before)
			case unix.EEXIST:
				h.counters.RecordClassified(fsstats.ErrAlreadyExists)
				return classified(kind, fsstats.ErrAlreadyExists, before)
			}
		}
		h.logOpFatal(kind.String(), source, err)
		h.counters.RecordError()
		return opFatal(kind, before)
	}

	return completed(kind, before, precise, 0)
}
