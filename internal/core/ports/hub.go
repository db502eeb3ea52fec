package ports

import (
	"context"

	"github.com/arkade-os/nftbridge/internal/core/domain"
)

// Credentials identify a spoke towards the hub. They are issued when the spoke is paired.
type Credentials struct {
	SpokeID string
	Token   string
}

type Hub interface {
	// Deliver authenticates the sender and forwards req to its counterpart.
	Deliver(
		ctx context.Context, from Credentials, req domain.ProofRequest,
	) (*domain.ProofResponse, error)
}

// Endpoint is a spoke as seen by the hub.
type Endpoint interface {
	ID() string
	Side() domain.Side
	// Attach binds the endpoint to the hub once it is paired with counterpartID.
	Attach(hub Hub, creds Credentials, counterpartID string)
	HandleProof(
		ctx context.Context, from string, req domain.ProofRequest,
	) (*domain.ProofResponse, error)
}
