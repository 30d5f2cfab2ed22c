package operation

import (
	"context"
	"errors"
)

// Poster delivers fn to the goroutine that owns the flow controller.
// A nil Poster runs fn on the operation's own goroutine.
type Poster func(fn func())

func (p Poster) post(fn func()) {
	if p == nil {
		fn()
		return
	}
	p(fn)
}

// cancelHandle implements flow.Pending
type cancelHandle context.CancelFunc

// Cancel stops the operation; its completion will not be delivered
func (c cancelHandle) Cancel() {
	c()
}

// deliverable reports whether an operation that observed ctx finishing
// should still complete. Deadlines complete with an error, cancellations
// complete with nothing.
func deliverable(ctx context.Context) bool {
	err := ctx.Err()
	return err == nil || errors.Is(err, context.DeadlineExceeded)
}
