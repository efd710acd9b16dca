package ops

import (
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/distr1/fsdrift/internal/bufgen"
	"github.com/distr1/fsdrift/internal/fsstats"
	"github.com/distr1/fsdrift/internal/weighted"
)

// Create opens a new file exclusively, creating parent directories on
// demand, and writes a target-sized buffer to it in record-sized chunks.
func (h *Handlers) Create(rnd *rand.Rand) Result {
	before := h.before()
	path := h.pathFor(rnd, true)
	target := h.targetSize(rnd)

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			if e, ok := errno(err); ok && e == unix.ENOSPC {
				h.counters.RecordClassified(fsstats.ErrNoDirSpace)
				return classified(weighted.Create, fsstats.ErrNoDirSpace, before)
			}
			h.logOpFatal("create (mkdir)", dir, err)
			h.counters.RecordError()
			return opFatal(weighted.Create, before)
		}
		h.counters.DirsCreated.Add(1)
	}

	flags := os.O_CREATE | os.O_EXCL | os.O_WRONLY | h.directFlag()
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if e, ok := errno(err); ok {
			switch e {
			case unix.EEXIST:
				h.counters.RecordClassified(fsstats.ErrAlreadyExists)
				return classified(weighted.Create, fsstats.ErrAlreadyExists, before)
			case unix.ENOSPC:
				h.counters.RecordClassified(fsstats.ErrNoInodeSpace)
				return classified(weighted.Create, fsstats.ErrNoInodeSpace, before)
			}
		}
		h.logOpFatal("create", path, err)
		h.counters.RecordError()
		return opFatal(weighted.Create, before)
	}
	defer f.Close()

	buf := bufgen.Generate(target, h.cfg.CompressionRatio, h.cfg.DedupePercentage)

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
			h.logOpFatal("create (write)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.Create, before)
		}
		written += int64(n)
		h.counters.WriteRequests.Add(1)
		h.counters.WriteBytes.Add(int64(n))
	}
	h.maybeSync(rnd, f)

	return completed(weighted.Create, before, precise, written)
}
