package application

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// HubService pairs spokes and carries proofs between them.
type HubService interface {
	ports.Hub
	AddSpokeBridge(ctx context.Context, source, destination ports.Endpoint) error
	Counterpart(spokeID string) (string, error)
	Pairs() []BridgePair
}

type BridgePair struct {
	Source      string
	Destination string
}

type hubEntry struct {
	endpoint    ports.Endpoint
	token       string
	counterpart string
}

type hubService struct {
	lock   sync.RWMutex
	spokes map[string]hubEntry
}

func NewHubService() HubService {
	return &hubService{spokes: make(map[string]hubEntry)}
}

func (h *hubService) AddSpokeBridge(
	_ context.Context, source, destination ports.Endpoint,
) error {
	if source == nil || destination == nil {
		return errors.INVALID_ARGUMENT.New("missing spoke")
	}
	if source.Side() != domain.SideSource {
		return errors.INVALID_ARGUMENT.New("spoke %s is not a source spoke", source.ID())
	}
	if destination.Side() != domain.SideDestination {
		return errors.INVALID_ARGUMENT.New(
			"spoke %s is not a destination spoke", destination.ID(),
		)
	}
	if source.ID() == destination.ID() {
		return errors.INVALID_ARGUMENT.New("spoke %s cannot be paired with itself", source.ID())
	}

	sourceToken, err := newToken()
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	destinationToken, err := newToken()
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}

	h.lock.Lock()
	for _, id := range []string{source.ID(), destination.ID()} {
		if _, ok := h.spokes[id]; ok {
			h.lock.Unlock()
			return errors.ALREADY_EXISTS.New("spoke %s is already paired", id)
		}
	}
	h.spokes[source.ID()] = hubEntry{source, sourceToken, destination.ID()}
	h.spokes[destination.ID()] = hubEntry{destination, destinationToken, source.ID()}
	h.lock.Unlock()

	source.Attach(h, ports.Credentials{SpokeID: source.ID(), Token: sourceToken}, destination.ID())
	destination.Attach(
		h, ports.Credentials{SpokeID: destination.ID(), Token: destinationToken}, source.ID(),
	)

	log.Infof("hub: paired spoke %s with spoke %s", source.ID(), destination.ID())
	return nil
}

func (h *hubService) Deliver(
	ctx context.Context, from ports.Credentials, req domain.ProofRequest,
) (*domain.ProofResponse, error) {
	h.lock.RLock()
	sender, ok := h.spokes[from.SpokeID]
	var target hubEntry
	if ok {
		target, ok = h.spokes[sender.counterpart]
	}
	h.lock.RUnlock()

	if !ok || subtle.ConstantTimeCompare([]byte(sender.token), []byte(from.Token)) != 1 {
		return nil, errors.UNAUTHENTICATED.New("unknown sender").
			WithMetadata(errors.AccountMetadata{Account: from.SpokeID})
	}
	return target.endpoint.HandleProof(ctx, from.SpokeID, req)
}

func (h *hubService) Counterpart(spokeID string) (string, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	entry, ok := h.spokes[spokeID]
	if !ok {
		return "", fmt.Errorf("spoke %s is not paired", spokeID)
	}
	return entry.counterpart, nil
}

func (h *hubService) Pairs() []BridgePair {
	h.lock.RLock()
	defer h.lock.RUnlock()

	pairs := make([]BridgePair, 0, len(h.spokes)/2)
	for id, entry := range h.spokes {
		if entry.endpoint.Side() != domain.SideSource {
			continue
		}
		pairs = append(pairs, BridgePair{Source: id, Destination: entry.counterpart})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Source < pairs[j].Source })
	return pairs
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate spoke token: %s", err)
	}
	return hex.EncodeToString(buf), nil
}
