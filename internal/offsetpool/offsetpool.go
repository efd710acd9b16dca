// Package offsetpool hands out record-sized offsets across a raw block
// device without repeats until the pool drains, at which point it
// reshuffles rather than treating exhaustion as a terminal error.
package offsetpool

import (
	"io"
	"log"
	"math/rand"
	"os"
	"sync"
)

// Pool is a mutex-guarded consumable stack of record offsets in
// [0, blocks). It is shared across workers in randommap/fill mode, so
// every access goes through the mutex.
type Pool struct {
	mu      sync.Mutex
	blocks  int64
	offsets []int64
	rnd     *rand.Rand
	logger  *log.Logger
	reshuffles int
}

// Open determines the device's block count by seeking to the end of
// devicePath, opened read-only, then divided by recordSize, and returns a
// freshly shuffled Pool over [0, blocks).
func Open(devicePath string, recordSize int64, logger *log.Logger) (*Pool, error) {
	f, err := os.OpenFile(devicePath, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	blocks := size / recordSize
	p := &Pool{
		blocks: blocks,
		rnd:    rand.New(rand.NewSource(rand.Int63())),
		logger: logger,
	}
	p.reshuffle()
	return p, nil
}

// NewForTest builds a Pool directly over [0, blocks) without touching a
// device, for unit tests.
func NewForTest(blocks int64, seed int64) *Pool {
	p := &Pool{
		blocks: blocks,
		rnd:    rand.New(rand.NewSource(seed)),
	}
	p.reshuffle()
	return p
}

func (p *Pool) reshuffle() {
	offsets := make([]int64, p.blocks)
	for i := range offsets {
		offsets[i] = int64(i)
	}
	p.rnd.Shuffle(len(offsets), func(i, j int) {
		offsets[i], offsets[j] = offsets[j], offsets[i]
	})
	p.offsets = offsets
	p.reshuffles++
}

// Take pops one offset off the pool. When the pool is empty it
// reshuffles [0, blocks) in place and logs that it did so, rather than
// failing the run: a long opcount/duration run should keep going.
func (p *Pool) Take() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.offsets) == 0 {
		if p.logger != nil {
			p.logger.Printf("offsetpool: exhausted %d offsets, reshuffling", p.blocks)
		}
		p.reshuffle()
	}
	n := len(p.offsets) - 1
	offset := p.offsets[n]
	p.offsets = p.offsets[:n]
	return offset
}

// Blocks returns the total number of offsets in the pool's range.
func (p *Pool) Blocks() int64 {
	return p.blocks
}

// Reshuffles returns how many times the pool has been (re)shuffled,
// including the initial shuffle — tests use this to confirm a full
// drain triggered exactly one reshuffle.
func (p *Pool) Reshuffles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reshuffles
}
