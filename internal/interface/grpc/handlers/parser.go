package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/arkade-os/nftbridge/internal/core/application"
	"github.com/arkade-os/nftbridge/internal/core/domain"
)

const maxBodySize = 1 << 20

func parseSide(r *http.Request) (domain.Side, error) {
	return domain.ParseSide(r.PathValue("side"))
}

func parseUint(r *http.Request, name string) (uint64, error) {
	value := r.PathValue(name)
	if value == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return n, nil
}

func parseIndex(r *http.Request) (uint32, error) {
	value := r.PathValue("index")
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", value)
	}
	return uint32(n), nil
}

// parseQueryUint returns def when the query parameter is not set.
func parseQueryUint(r *http.Request, name string, def uint64) (uint64, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return n, nil
}

func parseQueryInt(r *http.Request, name string) (int64, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return n, nil
}

// decodeBody leaves dst untouched when the body is empty, authenticated callers need not
// repeat their account.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %s", err)
	}
	return nil
}

func (i Intent) toDomain() domain.TransferIntent {
	return domain.TransferIntent{
		TokenID:        i.TokenID,
		Sender:         i.Sender,
		Receiver:       i.Receiver,
		LocalContract:  i.LocalContract,
		RemoteContract: i.RemoteContract,
	}
}

func (r ClaimAssetRequest) toDomain() application.ClaimRequest {
	return application.ClaimRequest{
		Height:   r.Height,
		Intent:   r.Intent.toDomain(),
		Siblings: r.Siblings,
		Index:    r.Index,
		Fee:      r.Fee,
	}
}

func newIntent(intent domain.TransferIntent) Intent {
	return Intent{
		TokenID:        intent.TokenID,
		Sender:         intent.Sender,
		Receiver:       intent.Receiver,
		LocalContract:  intent.LocalContract,
		RemoteContract: intent.RemoteContract,
		Hash:           intent.Hash().String(),
	}
}

func newSpokeInfo(info *application.SpokeInfo) SpokeInfo {
	return SpokeInfo{
		ID:                   info.ID,
		Side:                 info.Side.String(),
		Status:               info.Status.String(),
		Counterpart:          info.Counterpart,
		OpenHeight:           info.OpenHeight,
		NextRelayHeight:      info.NextRelayHeight,
		SettledCursor:        info.SettledCursor,
		HasMalicious:         info.HasMalicious,
		FirstMaliciousHeight: info.FirstMaliciousHeight,
		NumberOfChallenges:   info.NumberOfChallenges,
		Reserve:              info.Reserve,
		BlockCapacity:        info.BlockCapacity,
		RelayerFee:           info.RelayerFee,
		MinBond:              info.MinBond,
		MinChallengeStake:    info.MinChallengeStake,
		ChallengeWindow:      int64(info.ChallengeWindow.Seconds()),
		UndepositCooldown:    int64(info.UndepositCooldown.Seconds()),
	}
}

func newIntentReceipt(receipt *application.IntentReceipt) IntentReceipt {
	resp := IntentReceipt{
		Intent: newIntent(receipt.Intent),
		Height: receipt.Height,
		Index:  receipt.Index,
		Sealed: receipt.Sealed,
	}
	if receipt.Sealed {
		root := receipt.Root
		resp.Root = &root
	}
	return resp
}

func newBlock(block domain.Block) Block {
	intents := make([]Intent, 0, len(block.Intents))
	for _, intent := range block.Intents {
		intents = append(intents, newIntent(intent))
	}
	return Block{
		SpokeID:  block.SpokeID,
		Height:   block.Height,
		Intents:  intents,
		Root:     block.Root,
		Sealed:   block.Sealed,
		OpenedAt: block.OpenedAt,
		SealedAt: block.SealedAt,
	}
}

func newIncomingBlock(record domain.IncomingBlock) IncomingBlock {
	claims := make([]Claim, 0, len(record.Claims))
	for _, claim := range record.Claims {
		claims = append(claims, Claim{
			Index:     claim.Index,
			TokenID:   claim.TokenID,
			Contract:  claim.Contract,
			Receiver:  claim.Receiver,
			ClaimedAt: claim.ClaimedAt,
		})
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].Index < claims[j].Index })

	return IncomingBlock{
		SpokeID:     record.SpokeID,
		Height:      record.Height,
		Root:        record.Root,
		Relayer:     record.Relayer,
		SubmittedAt: record.SubmittedAt,
		Status:      record.Status.String(),
		ChallengeID: record.ChallengeID,
		Claims:      claims,
	}
}

func newRelayer(relayer domain.Relayer) Relayer {
	return Relayer{
		Address:                      relayer.Address,
		Bond:                         relayer.Bond,
		Status:                       relayer.Status.String(),
		UndepositRequestedAt:         relayer.UndepositRequestedAt,
		OutstandingAgainstChallenges: relayer.OutstandingAgainstChallenges,
		LiveChallenges:               relayer.LiveChallenges,
		Slashed:                      relayer.Slashed,
	}
}

func newChallenge(challenge domain.Challenge) Challenge {
	return Challenge{
		ID:         challenge.ID,
		Height:     challenge.Height,
		Challenger: challenge.Challenger,
		Stake:      challenge.Stake,
		Relayer:    challenge.Relayer,
		CreatedAt:  challenge.CreatedAt,
		ResolvedAt: challenge.ResolvedAt,
		Outcome:    challenge.Outcome.String(),
		Payout:     challenge.Payout,
	}
}

func newRewardBalance(balance domain.RewardBalance) RewardBalance {
	return RewardBalance{
		Account:      balance.Account,
		Challenge:    balance.Challenge,
		Compensation: balance.Compensation,
	}
}

func newContractPair(pair domain.ContractPair) ContractPair {
	return ContractPair{Local: pair.Local, Remote: pair.Remote, CreatedAt: pair.CreatedAt}
}

func newEvent(topic string, event domain.Event) (Event, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode event: %s", err)
	}
	return Event{
		Topic:     topic,
		SpokeID:   event.GetSpokeID(),
		Type:      event.GetType().String(),
		Timestamp: event.GetTimestamp(),
		Data:      data,
	}, nil
}
