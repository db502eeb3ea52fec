package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/application"
	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const heartbeatInterval = 30 * time.Second

type eventsHandler struct {
	events domain.EventRepository
	spokes map[domain.Side]application.SpokeService
	broker *broker[Event]
}

func newEventsHandler(
	events domain.EventRepository, spokes map[domain.Side]application.SpokeService,
) *eventsHandler {
	h := &eventsHandler{events: events, spokes: spokes, broker: newBroker[Event]()}
	for _, spoke := range spokes {
		topic := domain.SpokeTopic(spoke.ID())
		events.RegisterEventsHandler(topic, func(events []domain.Event) {
			h.dispatch(topic, events)
		})
	}
	return h
}

func (h *eventsHandler) register(rt *router) {
	rt.handle(http.MethodGet, "/v1/spokes/{side}/events", publicRoute, h.getEvents)
	rt.handle(http.MethodGet, "/v1/events/stream", publicRoute, h.streamEvents)
}

// close ends every open stream.
func (h *eventsHandler) close() {
	h.broker.removeAllListeners()
}

func (h *eventsHandler) dispatch(topic string, events []domain.Event) {
	if !h.broker.hasListeners() {
		return
	}
	for _, event := range events {
		msg, err := newEvent(topic, event)
		if err != nil {
			log.WithError(err).Warnf("failed to stream event of topic %s", topic)
			continue
		}
		h.broker.send(topic, msg)
	}
}

func (h *eventsHandler) getEvents(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	spoke, ok := h.spokes[side]
	if !ok {
		writeBadRequest(w, fmt.Errorf("no %s spoke is served", side))
		return
	}
	after, err := parseQueryInt(r, "after")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	before, err := parseQueryInt(r, "before")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	topic := domain.SpokeTopic(spoke.ID())
	events, err := h.events.GetEvents(r.Context(), topic, after, before)
	if err != nil {
		writeError(w, errors.PRECONDITION_FAILED.Wrap(err))
		return
	}
	resp := make([]Event, 0, len(events))
	for _, event := range events {
		msg, err := newEvent(topic, event)
		if err != nil {
			writeError(w, err)
			return
		}
		resp = append(resp, msg)
	}
	writeJSON(w, http.StatusOK, resp)
}

// streamEvents writes the events of the requested spokes as newline delimited json until the
// client goes away. The topics query parameter takes spoke sides or raw topics, comma separated.
func (h *eventsHandler) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("streaming is not supported"))
		return
	}

	topics := make([]string, 0)
	if value := r.URL.Query().Get("topics"); value != "" {
		for _, topic := range strings.Split(value, ",") {
			topics = append(topics, h.resolveTopic(strings.TrimSpace(topic)))
		}
	}

	l := newListener[Event](uuid.NewString(), topics)
	h.broker.pushListener(l)
	defer h.broker.removeListener(l.id)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-l.done:
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte("\n")); err != nil {
				return
			}
			flusher.Flush()
		case event := <-l.ch:
			if err := enc.Encode(event); err != nil {
				log.WithError(err).Debugf("event stream %s closed", l.id)
				return
			}
			flusher.Flush()
		}
	}
}

func (h *eventsHandler) resolveTopic(topic string) string {
	side, err := domain.ParseSide(topic)
	if err != nil {
		return topic
	}
	if spoke, ok := h.spokes[side]; ok {
		return domain.SpokeTopic(spoke.ID())
	}
	return topic
}
