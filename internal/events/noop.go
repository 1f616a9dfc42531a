package events

import "context"

// NoopPublisher discards all events. Used when event streaming is disabled
// and in tests.
type NoopPublisher struct{}

func NewNoopPublisher() PublisherInterface {
	return &NoopPublisher{}
}

func (NoopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
