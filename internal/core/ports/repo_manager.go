package ports

import "github.com/arkade-os/nftbridge/internal/core/domain"

type RepoManager interface {
	Events() domain.EventRepository
	Spokes() domain.SpokeStateRepository
	Blocks() domain.BlockRepository
	IncomingBlocks() domain.IncomingBlockRepository
	Relayers() domain.RelayerRepository
	Challenges() domain.ChallengeRepository
	Rewards() domain.RewardRepository
	ContractPairs() domain.ContractPairRepository
	ConsumedIntents() domain.ConsumedIntentRepository
	Close()
}
