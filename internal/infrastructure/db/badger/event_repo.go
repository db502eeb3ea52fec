package badgerdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	dbutil "github.com/arkade-os/nftbridge/internal/infrastructure/db/dbuitl"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const eventStoreDir = "events"

type eventDTO struct {
	Offset    uint64 `badgerhold:"key"`
	Topic     string `badgerhold:"index"`
	Type      domain.EventType
	Timestamp int64
	Payload   []byte
}

type eventRepository struct {
	store *badgerhold.Store

	lock        *sync.Mutex
	subscribers map[string][]func(events []domain.Event)
}

func NewEventRepository(config ...interface{}) (domain.EventRepository, error) {
	store, err := openStore(eventStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %s", err)
	}
	return &eventRepository{
		store:       store,
		lock:        &sync.Mutex{},
		subscribers: make(map[string][]func(events []domain.Event)),
	}, nil
}

func (r *eventRepository) Save(ctx context.Context, topic string, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	for _, event := range events {
		payload, err := dbutil.SerializeEvent(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event: %s", err)
		}
		dto := &eventDTO{
			Topic:     topic,
			Type:      event.GetType(),
			Timestamp: event.GetTimestamp(),
			Payload:   payload,
		}
		if err := r.store.Insert(badgerhold.NextSequence(), dto); err != nil {
			return fmt.Errorf("failed to save event: %s", err)
		}
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	for _, handler := range r.subscribers[topic] {
		go handler(events)
	}
	return nil
}

func (r *eventRepository) GetEvents(
	_ context.Context, topic string, after, before int64,
) ([]domain.Event, error) {
	if err := dbutil.ValidateTimeRange(after, before); err != nil {
		return nil, err
	}

	dtos := make([]eventDTO, 0)
	query := badgerhold.Where("Topic").Eq(topic).Index("Topic").SortBy("Offset")
	if err := r.store.Find(&dtos, query); err != nil && err != badgerhold.ErrNotFound {
		return nil, err
	}

	events := make([]domain.Event, 0, len(dtos))
	for _, dto := range dtos {
		if !dbutil.InTimeRange(dto.Timestamp, after, before) {
			continue
		}
		event, err := dbutil.DeserializeEvent(dto.Payload)
		if err != nil {
			log.WithError(err).Warnf("failed to deserialize event: %s", string(dto.Payload))
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *eventRepository) RegisterEventsHandler(
	topic string, handler func(events []domain.Event),
) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.subscribers[topic] = append(r.subscribers[topic], handler)
}

func (r *eventRepository) ClearRegisteredHandlers(topics ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(topics) == 0 {
		r.subscribers = make(map[string][]func(events []domain.Event))
		return
	}
	for _, topic := range topics {
		delete(r.subscribers, topic)
	}
}

func (r *eventRepository) Close() {
	// nolint:all
	r.store.Close()
}
