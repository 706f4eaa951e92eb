package termination

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var ErrTerminated = errors.New("terminated")

// Handle returns ErrTerminated once a SIGINT or SIGTERM arrives. It waits
// for delay first, giving load balancers time to drain the instance.
func Handle(ctx context.Context, delay time.Duration) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
		return ErrTerminated
	case <-ctx.Done():
		return nil
	}
}
