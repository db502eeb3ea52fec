package watermilldb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/arkade-os/nftbridge/internal/core/domain"
	dbutil "github.com/arkade-os/nftbridge/internal/infrastructure/db/dbuitl"
	log "github.com/sirupsen/logrus"
)

type subscriber struct {
	topic   string
	handler func(events []domain.Event)
}

type eventRepository struct {
	publisher message.Publisher
	db        *sql.DB

	subscribers    map[string][]subscriber // topic -> subscribers
	subscriberLock *sync.Mutex
}

// NewWatermillEventRepository publishes the events on publisher. When db is the postgres
// database backing a watermill-sql publisher the history of a topic can be read back.
func NewWatermillEventRepository(publisher message.Publisher, db *sql.DB) domain.EventRepository {
	return &eventRepository{
		publisher:      publisher,
		db:             db,
		subscribers:    make(map[string][]subscriber),
		subscriberLock: &sync.Mutex{},
	}
}

func (e *eventRepository) ClearRegisteredHandlers(topics ...string) {
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()

	if len(topics) == 0 {
		e.subscribers = make(map[string][]subscriber)
		return
	}

	for _, topic := range topics {
		delete(e.subscribers, topic)
	}
}

func (e *eventRepository) Close() {
	//nolint:errcheck
	e.publisher.Close()
}

func (e *eventRepository) RegisterEventsHandler(
	topic string, handler func(events []domain.Event),
) {
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()

	if _, ok := e.subscribers[topic]; !ok {
		e.subscribers[topic] = make([]subscriber, 0)
	}

	e.subscribers[topic] = append(e.subscribers[topic], subscriber{
		topic:   topic,
		handler: handler,
	})
}

func (e *eventRepository) Save(ctx context.Context, topic string, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := e.publish(ctx, topic, events); err != nil {
		return err
	}
	e.dispatch(topic, events)
	return nil
}

// GetEvents queries the database for the historical messages of a topic.
// Watermill table name is (watermill_<topic>), messages are ordered by offset.
func (e *eventRepository) GetEvents(
	ctx context.Context, topic string, after, before int64,
) ([]domain.Event, error) {
	if err := dbutil.ValidateTimeRange(after, before); err != nil {
		return nil, err
	}
	if e.db == nil {
		return nil, fmt.Errorf("event history is not available for this event store")
	}

	query := fmt.Sprintf(
		`SELECT payload FROM "watermill_%s"
		WHERE ($1::bigint = 0 OR (payload->>'Timestamp')::bigint >= $1::bigint)
		AND ($2::bigint = 0 OR (payload->>'Timestamp')::bigint < $2::bigint)
		ORDER BY "offset" ASC;`,
		topic,
	)

	rows, err := e.db.QueryContext(ctx, query, after, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for topic %s: %w", topic, err)
	}
	// nolint
	defer rows.Close()

	records := make([][]byte, 0)
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan message payload: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages for topic %s: %w", topic, err)
	}

	events := make([]domain.Event, 0, len(records))
	for _, record := range records {
		event, err := dbutil.DeserializeEvent(record)
		if err != nil {
			log.WithError(err).Warnf("failed to deserialize event: %s", string(record))
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// dispatch runs the handlers of the topic in go routines.
func (e *eventRepository) dispatch(topic string, events []domain.Event) {
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()
	for _, subscriber := range e.subscribers[topic] {
		go subscriber.handler(events)
	}
}

func (e *eventRepository) publish(
	ctx context.Context, topic string, events []domain.Event,
) error {
	watermillMessages := toWatermillMessages(ctx, events)
	return e.publisher.Publish(topic, watermillMessages...)
}

func toWatermillMessages(ctx context.Context, events []domain.Event) []*message.Message {
	watermillMessages := make([]*message.Message, 0, len(events))
	for _, event := range events {
		payload, err := dbutil.SerializeEvent(event)
		if err != nil {
			continue
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("event_type", event.GetType().String())
		msg.SetContext(ctx)
		watermillMessages = append(watermillMessages, msg)
	}

	return watermillMessages
}
