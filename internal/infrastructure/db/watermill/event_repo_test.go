package watermilldb_test

import (
	"testing"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	watermilldb "github.com/arkade-os/nftbridge/internal/infrastructure/db/watermill"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventRepository(t *testing.T) {
	repo := watermilldb.NewWatermillEventRepository(watermilldb.NewInMemoryPublisher(), nil)
	t.Cleanup(repo.Close)

	topic := domain.SpokeTopic("source")
	received := make(chan []domain.Event, 1)
	repo.RegisterEventsHandler(topic, func(events []domain.Event) {
		received <- events
	})

	event := domain.BlockSealed{
		SpokeEvent: domain.SpokeEvent{Id: "source", Type: domain.EventTypeBlockSealed},
		Height:     1,
	}
	require.NoError(t, repo.Save(t.Context(), topic, event))

	select {
	case events := <-received:
		require.Equal(t, []domain.Event{event}, events)
	case <-time.After(time.Second):
		t.Fatal("events not dispatched")
	}

	repo.ClearRegisteredHandlers(topic)
	require.NoError(t, repo.Save(t.Context(), topic, event))
	select {
	case <-received:
		t.Fatal("cleared handler must not be called")
	case <-time.After(50 * time.Millisecond):
	}

	_, err := repo.GetEvents(t.Context(), topic, 0, 0)
	require.Error(t, err)
}
