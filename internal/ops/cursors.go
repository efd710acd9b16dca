package ops

import "sync/atomic"

// cursors tracks the shared sequential read/write offsets used in
// rawdevice mode. The reference implementation mutates these as
// unguarded globals, which races under concurrency (spec Design Note on
// shared cursors); here each cursor advances with a compare-and-swap
// loop so concurrent workers never observe or produce a torn update.
type cursors struct {
	readOffset  atomic.Int64
	writeOffset atomic.Int64
}

// advance adds delta to cur, wrapping to 0 if the result would exceed
// deviceSize, and returns the offset to use for this operation (the
// value before advancing).
func advance(cur *atomic.Int64, delta, deviceSize int64) int64 {
	for {
		old := cur.Load()
		next := old + delta
		if next > deviceSize {
			next = 0
		}
		if cur.CompareAndSwap(old, next) {
			return old
		}
	}
}

func (c *cursors) nextRead(delta, deviceSize int64) int64 {
	return advance(&c.readOffset, delta, deviceSize)
}

func (c *cursors) nextWrite(delta, deviceSize int64) int64 {
	return advance(&c.writeOffset, delta, deviceSize)
}
