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

// Read opens a path read-only and reads a target-sized amount of data
// sequentially, in record-sized chunks. In rawdevice mode the shared
// read cursor stands in for "current file position" and wraps at device
// end.
func (h *Handlers) Read(rnd *rand.Rand) Result {
	before := h.before()
	path := h.pathFor(rnd, false)
	target := h.targetSize(rnd)

	f, err := os.OpenFile(path, os.O_RDONLY|h.directFlag(), 0)
	if err != nil {
		if e, ok := errno(err); ok && e == unix.ENOENT {
			h.counters.RecordClassified(fsstats.ErrFileNotFound)
			return classified(weighted.Read, fsstats.ErrFileNotFound, before)
		}
		h.logOpFatal("read", path, err)
		h.counters.RecordError()
		return opFatal(weighted.Read, before)
	}
	defer f.Close()

	if h.cfg.RawDevice != "" {
		seekAt := h.cursors.nextRead(target, h.deviceSize(f))
		if _, err := f.Seek(seekAt, io.SeekStart); err != nil {
			h.logOpFatal("read (seek)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.Read, before)
		}
	}

	var precise time.Duration
	var transferred int64
	for transferred < target {
		recsz := h.recordSize(rnd)
		if transferred+recsz > target {
			recsz = target - transferred
		}
		buf := alignedBuffer(int(recsz))
		start := time.Now()
		n, err := io.ReadFull(f, buf)
		precise += time.Since(start)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			h.logOpFatal("read (read)", path, err)
			h.counters.RecordError()
			return opFatal(weighted.Read, before)
		}
		transferred += int64(n)
		h.counters.ReadRequests.Add(1)
		h.counters.ReadBytes.Add(int64(n))
	}

	return completed(weighted.Read, before, precise, transferred)
}
