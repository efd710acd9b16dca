// Package signalctx adapts process signals into context cancellation,
// the interrupt channel spec.md §5 describes: each worker selects on
// ctx.Done() and exits cleanly instead of reacting to a signal handler
// directly.
package signalctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Interruptible returns a context canceled when the process receives
// SIGINT or SIGTERM.
func Interruptible() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		// A second signal falls through to the default disposition,
		// which is useful if cleanup after cancellation hangs.
		signal.Stop(sig)
		cancel()
	}()
	return ctx, cancel
}
