package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// signalContext creates a context that gets cancelled when a SIGINT or
// SIGTERM signal is received.
//
// Cancelling the context stops new resources from being scheduled; operations
// already in flight run to completion and their results are stored. Signals
// received after the first terminate the process immediately.
func signalContext(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		s := <-sig

		fmt.Fprintf(os.Stderr, "\nReceived %s signal, waiting for operations in flight..\n", s)
		cancel()

		fmt.Fprintf(os.Stderr, "Send SIGINT (ctrl-c) to terminate immediately\n")
		signal.Stop(sig)
	}()

	return ctx
}
