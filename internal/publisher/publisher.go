// Package publisher announces finished notify runs to downstream consumers.
package publisher

import "context"

// Publisher pushes a run report somewhere.
type Publisher interface {
	Publish(ctx context.Context, payload any) (string, error)
	Close() error
}

// Noop discards every report.
type Noop struct{}

// Publish does nothing and returns an empty ID.
func (Noop) Publish(_ context.Context, _ any) (string, error) {
	return "", nil
}

// Close does nothing.
func (Noop) Close() error {
	return nil
}
