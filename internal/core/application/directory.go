package application

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DirectoryService is the owner managed map between source contracts and their wrapped
// destination contracts.
type DirectoryService interface {
	ports.Directory
	AddPair(ctx context.Context, caller, local, remote string) error
	ListPairs(ctx context.Context) ([]domain.ContractPair, error)
}

type directoryService struct {
	owner string
	repo  domain.ContractPairRepository
	clock ports.Clock
}

func NewDirectoryService(
	owner string, repo domain.ContractPairRepository, clock ports.Clock,
) (DirectoryService, error) {
	if owner == "" {
		return nil, fmt.Errorf("missing directory owner")
	}
	if repo == nil || clock == nil {
		return nil, fmt.Errorf("missing directory dependencies")
	}
	return &directoryService{owner, repo, clock}, nil
}

func (d *directoryService) AddPair(ctx context.Context, caller, local, remote string) error {
	if caller != d.owner {
		return errors.PRECONDITION_FAILED.New("caller is not the owner").
			WithMetadata(errors.CallerMetadata{Caller: caller, Expected: d.owner})
	}
	if local == "" || remote == "" {
		return errors.INVALID_ARGUMENT.New("missing local or remote contract")
	}

	if pair, err := d.repo.GetByLocal(ctx, local); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	} else if pair != nil {
		return errors.ALREADY_EXISTS.New("%s is already in the local to remote map", local)
	}
	if pair, err := d.repo.GetByRemote(ctx, remote); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	} else if pair != nil {
		return errors.ALREADY_EXISTS.New("%s is already in the remote to local map", remote)
	}

	pair := domain.ContractPair{Local: local, Remote: remote, CreatedAt: d.clock.Now().Unix()}
	if err := d.repo.Add(ctx, pair); err != nil {
		return errors.ALREADY_EXISTS.Wrap(err)
	}
	log.Infof("directory: paired contract %s with %s", local, remote)
	return nil
}

func (d *directoryService) Resolve(ctx context.Context, local string) (string, error) {
	pair, err := d.repo.GetByLocal(ctx, local)
	if err != nil {
		return "", err
	}
	if pair == nil {
		return "", fmt.Errorf("contract %s is not paired", local)
	}
	return pair.Remote, nil
}

func (d *directoryService) ResolveReverse(ctx context.Context, remote string) (string, error) {
	pair, err := d.repo.GetByRemote(ctx, remote)
	if err != nil {
		return "", err
	}
	if pair == nil {
		return "", fmt.Errorf("contract %s is not paired", remote)
	}
	return pair.Local, nil
}

func (d *directoryService) ListPairs(ctx context.Context) ([]domain.ContractPair, error) {
	pairs, err := d.repo.List(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return pairs, nil
}
