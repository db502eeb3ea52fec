package handlers

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker(t *testing.T) {
	t.Parallel()

	t.Run("newListener", func(t *testing.T) {
		listener := newListener[string]("test-id", []string{"spoke_a", " SPOKE_B "})
		require.Equal(t, "test-id", listener.id)
		require.Len(t, listener.topics, 2)
		require.Contains(t, listener.topics, "spoke_a")
		require.Contains(t, listener.topics, "spoke_b")
	})

	t.Run("includes", func(t *testing.T) {
		listener := newListener[string]("test-id", []string{"spoke_a"})
		require.True(t, listener.includes("spoke_a"))
		require.True(t, listener.includes("SPOKE_A"))
		require.False(t, listener.includes("spoke_b"))

		all := newListener[string]("all", nil)
		require.True(t, all.includes("spoke_a"))
		require.True(t, all.includes("spoke_b"))
	})

	t.Run("send to subscribed listeners only", func(t *testing.T) {
		broker := newBroker[string]()
		a := newListener[string]("a", []string{"spoke_a"})
		b := newListener[string]("b", []string{"spoke_b"})
		broker.pushListener(a)
		broker.pushListener(b)

		broker.send("spoke_a", "sealed")

		select {
		case msg := <-a.ch:
			require.Equal(t, "sealed", msg)
		case <-time.After(time.Second):
			t.Fatal("listener a did not receive the message")
		}
		require.Empty(t, b.ch)
	})

	t.Run("removeListener closes done channel", func(t *testing.T) {
		broker := newBroker[string]()
		listener := newListener[string]("test-id", nil)
		broker.pushListener(listener)
		require.True(t, broker.hasListeners())

		broker.removeListener("test-id")
		require.False(t, broker.hasListeners())

		select {
		case <-listener.done:
		default:
			t.Fatal("done channel should be closed")
		}

		// Idempotent.
		broker.removeListener("test-id")
		listener.closeDone()
	})

	t.Run("removeAllListeners", func(t *testing.T) {
		broker := newBroker[string]()
		listeners := make([]*listener[string], 0, 3)
		for i := 0; i < 3; i++ {
			l := newListener[string](fmt.Sprintf("id-%d", i), nil)
			broker.pushListener(l)
			listeners = append(listeners, l)
		}

		broker.removeAllListeners()
		require.False(t, broker.hasListeners())
		for _, l := range listeners {
			_, open := <-l.done
			require.False(t, open)
		}
	})

	t.Run("send drops message when channel is full", func(t *testing.T) {
		broker := newBroker[int]()
		listener := newListener[int]("test-id", nil)
		broker.pushListener(listener)

		for i := 0; i < listenerBufferSize+10; i++ {
			broker.send("spoke_a", i)
		}
		require.Len(t, listener.ch, listenerBufferSize)
	})

	t.Run("concurrent operations", func(t *testing.T) {
		broker := newBroker[int]()
		wg := sync.WaitGroup{}
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("id-%d", i)
				broker.pushListener(newListener[int](id, []string{"spoke_a"}))
				broker.removeListener(id)
			}(i)
			go func(i int) {
				defer wg.Done()
				broker.send("spoke_a", i)
			}(i)
		}
		wg.Wait()
		require.False(t, broker.hasListeners())
	})
}

func TestFormatTopic(t *testing.T) {
	require.Equal(t, "spoke_a", formatTopic("  Spoke_A "))
}
