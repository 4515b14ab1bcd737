//go:build windows

package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/warpdl/warpscreen/pkg/logger"
)

// setupShutdownHandler returns a context that is canceled on interrupt.
// syscall.SIGTERM is not available on Windows.
func setupShutdownHandler(l logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		select {
		case <-sigChan:
			l.Info("Interrupted, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
