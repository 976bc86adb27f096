// Package usecase implements best-effort delivery of lifecycle events to registered hooks.
package usecase

import (
	"context"

	"github.com/google/uuid"

	hookDomain "github.com/bouncr/iam/internal/hook/domain"
)

// Target receives events. Implementations must honor ctx for their own timeout.
type Target interface {
	Deliver(ctx context.Context, event *hookDomain.Event) error
}

// TargetFunc adapts an in-process function to a Target.
type TargetFunc func(ctx context.Context, event *hookDomain.Event) error

// Deliver calls f.
func (f TargetFunc) Deliver(ctx context.Context, event *hookDomain.Event) error {
	return f(ctx, event)
}

// Dispatcher fans events out to the targets registered for their kind.
type Dispatcher interface {
	// Register subscribes target to the given kinds and returns the registration ID.
	Register(kinds []hookDomain.EventKind, target Target) uuid.UUID

	// Unregister removes a registration. Unknown IDs are ignored.
	Unregister(id uuid.UUID)

	// Dispatch enqueues event without blocking. Events are dropped, and logged, when the queue
	// is full or the dispatcher is closed. Delivery failures never reach the caller.
	Dispatch(ctx context.Context, event *hookDomain.Event)

	// Close stops accepting events and waits for queued deliveries to finish or ctx to end.
	Close(ctx context.Context) error
}
