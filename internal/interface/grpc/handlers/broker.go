package handlers

import (
	"maps"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

const listenerBufferSize = 100

type listener[T any] struct {
	id       string
	topics   map[string]struct{}
	ch       chan T
	done     chan struct{}
	doneOnce sync.Once
}

func newListener[T any](id string, topics []string) *listener[T] {
	topicsMap := make(map[string]struct{})
	for _, topic := range topics {
		topicsMap[formatTopic(topic)] = struct{}{}
	}
	return &listener[T]{
		id:     id,
		topics: topicsMap,
		ch:     make(chan T, listenerBufferSize),
		done:   make(chan struct{}),
	}
}

// includes reports whether the listener is subscribed to topic. A listener without topics is
// subscribed to all of them.
func (l *listener[T]) includes(topic string) bool {
	if len(l.topics) == 0 {
		return true
	}
	_, ok := l.topics[formatTopic(topic)]
	return ok
}

func (l *listener[T]) closeDone() {
	l.doneOnce.Do(func() { close(l.done) })
}

// broker fans out messages to the listeners subscribed to their topic. It is safe for
// concurrent use.
type broker[T any] struct {
	lock      sync.RWMutex
	listeners map[string]*listener[T]
}

func newBroker[T any]() *broker[T] {
	return &broker[T]{listeners: make(map[string]*listener[T])}
}

func (b *broker[T]) pushListener(l *listener[T]) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.listeners[l.id] = l
}

func (b *broker[T]) removeListener(id string) {
	b.lock.Lock()
	defer b.lock.Unlock()

	l, ok := b.listeners[id]
	if !ok {
		return
	}
	l.closeDone()
	delete(b.listeners, id)
}

func (b *broker[T]) removeAllListeners() {
	b.lock.Lock()
	defer b.lock.Unlock()

	for id, l := range b.listeners {
		l.closeDone()
		delete(b.listeners, id)
	}
}

// send never blocks: a listener with a full buffer misses the message.
func (b *broker[T]) send(topic string, msg T) {
	for _, l := range b.getListenersCopy() {
		if !l.includes(topic) {
			continue
		}
		select {
		case <-l.done:
		case l.ch <- msg:
		default:
			log.Warnf("event stream %s is full, dropping message of topic %s", l.id, topic)
		}
	}
}

func (b *broker[T]) getListenersCopy() map[string]*listener[T] {
	b.lock.RLock()
	defer b.lock.RUnlock()

	listenersCopy := make(map[string]*listener[T], len(b.listeners))
	maps.Copy(listenersCopy, b.listeners)
	return listenersCopy
}

func (b *broker[T]) hasListeners() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.listeners) > 0
}

func formatTopic(topic string) string {
	return strings.Trim(strings.ToLower(topic), " ")
}
