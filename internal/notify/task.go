package notify

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is an in-flight notification delivery.
type Task struct {
	g *errgroup.Group
}

// Deliver starts sending text in the background and returns immediately.
// The caller decides whether and when to Wait on the result.
func Deliver(ctx context.Context, n Notifier, text string) *Task {
	g := new(errgroup.Group)
	g.Go(func() error {
		return n.Send(ctx, text)
	})
	return &Task{g: g}
}

// Wait blocks until delivery finishes and returns its error.
func (t *Task) Wait() error {
	return t.g.Wait()
}
