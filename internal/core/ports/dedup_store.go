package ports

import "context"

// DedupStore tracks processed event ids within a bounded TTL window so the
// consumer can drop duplicate deliveries of events it already finished with.
type DedupStore interface {
	// Seen reports whether the event id was marked processed inside the
	// window.
	Seen(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed records the event id for the window. Must only be
	// called once the event's outcome is durable: handled, skipped, or
	// parked in the retry queue.
	MarkProcessed(ctx context.Context, eventID string) error
}
