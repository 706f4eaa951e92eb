// Package recontext provides means of obtaining a derived context which ignores parent's deadline, timeout, and
// cancellation.
package recontext

import (
	"context"
	"time"

	"github.com/coreloop/cx/valueonly"
)

// WithNewDeadline returns a derived context that will ignore cancellation, deadline, and timeout of the parent context.
// In order to avoid stuck contexts, new deadline is mandatory.
//
// The parent's values are retained. valueonly.Context suppresses the parent's deadline and cancellation,
// and the standard context wrapper adds the new deadline on top.
func WithNewDeadline(parent context.Context, deadline time.Time) (context.Context, context.CancelFunc) {
	return context.WithDeadline(valueonly.Context{Context: parent}, deadline)
}

// WithNewTimeout returns a derived context that will ignore cancellation, deadline, and timeout of the parent context.
// In order to avoid stuck contexts, new timeout is mandatory.
func WithNewTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(valueonly.Context{Context: parent}, timeout)
}
