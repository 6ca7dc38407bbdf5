package mediakit

import "context"

// NoopEventSink is a no-operation implementation of EventSink.
// Useful for production when you don't need event handling or for testing.
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// MediaCommitted does nothing and returns nil
func (n *NoopEventSink) MediaCommitted(ctx context.Context, result *CommitResult) error {
	return nil
}

// MediaDeleted does nothing and returns nil
func (n *NoopEventSink) MediaDeleted(ctx context.Context, form MediaForm) error {
	return nil
}

// CleanupFailed does nothing and returns nil
func (n *NoopEventSink) CleanupFailed(ctx context.Context, warning CleanupWarning) error {
	return nil
}
