package domain

import "context"

type EventRepository interface {
	Save(ctx context.Context, topic string, events ...Event) error
	// GetEvents returns the events of topic with timestamp in [after, before), oldest first. A
	// zero bound is unbounded.
	GetEvents(ctx context.Context, topic string, after, before int64) ([]Event, error)
	RegisterEventsHandler(topic string, handler func(events []Event))
	ClearRegisteredHandlers(topics ...string)
	Close()
}
