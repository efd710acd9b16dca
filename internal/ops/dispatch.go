package ops

import (
	"math/rand"

	"github.com/distr1/fsdrift/internal/weighted"
)

// Dispatch runs the handler for kind and returns its Result. The driver
// never branches on a handler's return shape (spec.md §9's "return-type
// polymorphism" note) — every arm returns the same Result type.
func (h *Handlers) Dispatch(kind weighted.OpKind, rnd *rand.Rand) Result {
	switch kind {
	case weighted.Read:
		return h.Read(rnd)
	case weighted.RandomRead:
		return h.RandomRead(rnd)
	case weighted.Create:
		return h.Create(rnd)
	case weighted.RandomWrite:
		return h.RandomWrite(rnd)
	case weighted.Append:
		return h.Append(rnd)
	case weighted.Link:
		return h.Link(rnd)
	case weighted.Delete:
		return h.Delete(rnd)
	case weighted.Rename:
		return h.Rename(rnd)
	case weighted.Truncate:
		return h.Truncate(rnd)
	case weighted.Hardlink:
		return h.Hardlink(rnd)
	case weighted.RandomDiscard:
		return h.RandomDiscard(rnd)
	default:
		return opFatal(kind, h.before())
	}
}
