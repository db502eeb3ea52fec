package handlers

import (
	"fmt"
	"net/http"

	"github.com/arkade-os/nftbridge/internal/core/application"
	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/pkg/errors"
)

type spokeHandler struct {
	spokes map[domain.Side]application.SpokeService
}

func (h *spokeHandler) register(rt *router) {
	rt.handle(http.MethodGet, "/v1/spokes", publicRoute, h.listSpokes)
	rt.handle(http.MethodGet, "/v1/spokes/{side}", publicRoute, h.getInfo)

	rt.handle(http.MethodPost, "/v1/spokes/{side}/intents", accountRoute, h.addIntent)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/intents/resubmit", accountRoute, h.resubmitIntent)
	rt.handle(http.MethodGet, "/v1/spokes/{side}/blocks", publicRoute, h.listBlocks)
	rt.handle(http.MethodGet, "/v1/spokes/{side}/blocks/{height}", publicRoute, h.getBlock)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/blocks/{height}/seal", accountRoute, h.sealBlock)
	rt.handle(http.MethodGet, "/v1/spokes/{side}/blocks/{height}/proof/{index}", publicRoute, h.getProof)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/blocks/{height}/verify", publicRoute, h.verifyProof)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/blocks/{height}/send-proof", accountRoute, h.sendProof)

	rt.handle(http.MethodGet, "/v1/spokes/{side}/relayers", publicRoute, h.listRelayers)
	rt.handle(http.MethodGet, "/v1/spokes/{side}/relayers/{address}", publicRoute, h.getRelayer)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/relayers/deposit", accountRoute, h.deposit)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/relayers/undeposit", accountRoute, h.requestUndeposit)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/relayers/claim", accountRoute, h.claimDeposit)

	rt.handle(http.MethodGet, "/v1/spokes/{side}/incoming/{height}", publicRoute, h.getIncomingBlock)
	rt.handle(http.MethodGet, "/v1/spokes/{side}/incoming/{height}/archive", publicRoute, h.getArchived)
	rt.handle(http.MethodGet, "/v1/spokes/{side}/incoming/{height}/challenges", publicRoute, h.getChallenges)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/incoming/{height}/relay", accountRoute, h.relayBlock)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/incoming/{height}/challenge", accountRoute, h.challengeBlock)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/claims", accountRoute, h.claimAsset)

	rt.handle(http.MethodGet, "/v1/spokes/{side}/rewards/{account}", publicRoute, h.getRewards)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/rewards/challenge", accountRoute, h.claimChallengeReward)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/rewards/compensation", accountRoute, h.claimCompensation)
	rt.handle(http.MethodPost, "/v1/spokes/{side}/restore", operatorRoute, h.restore)
}

func (h *spokeHandler) spoke(r *http.Request) (application.SpokeService, error) {
	side, err := parseSide(r)
	if err != nil {
		return nil, err
	}
	spoke, ok := h.spokes[side]
	if !ok {
		return nil, fmt.Errorf("no %s spoke is served", side)
	}
	return spoke, nil
}

func (h *spokeHandler) listSpokes(w http.ResponseWriter, r *http.Request) {
	infos := make([]SpokeInfo, 0, len(h.spokes))
	for _, side := range []domain.Side{domain.SideSource, domain.SideDestination} {
		spoke, ok := h.spokes[side]
		if !ok {
			continue
		}
		info, err := spoke.Info(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		infos = append(infos, newSpokeInfo(info))
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *spokeHandler) getInfo(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	info, err := spoke.Info(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSpokeInfo(info))
}

func (h *spokeHandler) addIntent(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req AddIntentRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	receipt, err := spoke.AddIntent(r.Context(), caller, req.TokenID, req.Contract, req.Receiver)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newIntentReceipt(receipt))
}

func (h *spokeHandler) resubmitIntent(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req ClaimAssetRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	receipt, err := spoke.ResubmitIntent(r.Context(), caller, req.Receiver, req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newIntentReceipt(receipt))
}

func (h *spokeHandler) listBlocks(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	info, err := spoke.Info(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	from, err := parseQueryUint(r, "from", 0)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	to, err := parseQueryUint(r, "to", info.OpenHeight+1)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	blocks, err := spoke.ListBlocks(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]Block, 0, len(blocks))
	for _, block := range blocks {
		resp = append(resp, newBlock(block))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *spokeHandler) getBlock(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	block, err := spoke.GetBlock(r.Context(), height)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBlock(*block))
}

func (h *spokeHandler) sealBlock(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	root, err := spoke.SealBlock(r.Context(), height)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RootResponse{Root: root})
}

func (h *spokeHandler) getProof(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	index, err := parseIndex(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	siblings, err := spoke.GetProof(r.Context(), height, index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProofResponse{Siblings: siblings})
}

func (h *spokeHandler) verifyProof(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	var req VerifyProofRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	valid, err := spoke.VerifyProof(
		r.Context(), height, req.Intent.toDomain(), req.Index, req.Siblings,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyProofResponse{Valid: valid})
}

func (h *spokeHandler) sendProof(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	var req CallerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := spoke.SendProof(r.Context(), caller, height)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SendProofResponse{
		Height:      resp.Height,
		Outcome:     resp.Outcome.String(),
		ChallengeID: resp.ChallengeID,
	})
}

func (h *spokeHandler) listRelayers(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	relayers, err := spoke.ListRelayers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]Relayer, 0, len(relayers))
	for _, relayer := range relayers {
		resp = append(resp, newRelayer(relayer))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *spokeHandler) getRelayer(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	relayer, err := spoke.GetRelayer(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRelayer(*relayer))
}

func (h *spokeHandler) deposit(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req AmountRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := spoke.Deposit(r.Context(), caller, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Amount: req.Amount})
}

func (h *spokeHandler) requestUndeposit(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req CallerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := spoke.RequestUndeposit(r.Context(), caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *spokeHandler) claimDeposit(w http.ResponseWriter, r *http.Request) {
	h.claimAmount(w, r, func(spoke application.SpokeService, caller string) (uint64, error) {
		return spoke.ClaimDeposit(r.Context(), caller)
	})
}

func (h *spokeHandler) getIncomingBlock(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	record, err := spoke.GetIncomingBlock(r.Context(), height)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newIncomingBlock(*record))
}

func (h *spokeHandler) getArchived(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	archived, err := spoke.GetArchivedIncomingBlocks(r.Context(), height)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]IncomingBlock, 0, len(archived))
	for _, record := range archived {
		block := newIncomingBlock(record.IncomingBlock)
		block.ArchivedAt = record.ArchivedAt
		resp = append(resp, block)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *spokeHandler) getChallenges(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	challenges, err := spoke.GetChallenges(r.Context(), height)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]Challenge, 0, len(challenges))
	for _, challenge := range challenges {
		resp = append(resp, newChallenge(challenge))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *spokeHandler) relayBlock(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	var req RelayBlockRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := spoke.RelayBlock(r.Context(), caller, height, req.Root); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *spokeHandler) challengeBlock(w http.ResponseWriter, r *http.Request) {
	spoke, height, ok := h.spokeAndHeight(w, r)
	if !ok {
		return
	}
	var req ChallengeBlockRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	challenge, err := spoke.ChallengeBlock(r.Context(), caller, height, req.Stake)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newChallenge(*challenge))
}

func (h *spokeHandler) claimAsset(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req ClaimAssetRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := spoke.ClaimAsset(r.Context(), caller, req.toDomain()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *spokeHandler) getRewards(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	balance, err := spoke.GetRewards(r.Context(), r.PathValue("account"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRewardBalance(*balance))
}

func (h *spokeHandler) claimChallengeReward(w http.ResponseWriter, r *http.Request) {
	h.claimAmount(w, r, func(spoke application.SpokeService, caller string) (uint64, error) {
		return spoke.ClaimChallengeReward(r.Context(), caller)
	})
}

func (h *spokeHandler) claimCompensation(w http.ResponseWriter, r *http.Request) {
	h.claimAmount(w, r, func(spoke application.SpokeService, caller string) (uint64, error) {
		return spoke.ClaimCompensation(r.Context(), caller)
	})
}

func (h *spokeHandler) restore(w http.ResponseWriter, r *http.Request) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req CallerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := spoke.Restore(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	archived := result.Archived
	if archived == nil {
		archived = make([]uint64, 0)
	}
	writeJSON(w, http.StatusOK, RestoreResponse{FromHeight: result.FromHeight, Archived: archived})
}

func (h *spokeHandler) claimAmount(
	w http.ResponseWriter, r *http.Request,
	claim func(spoke application.SpokeService, caller string) (uint64, error),
) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req CallerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := claim(spoke, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Amount: amount})
}

func (h *spokeHandler) spokeAndHeight(
	w http.ResponseWriter, r *http.Request,
) (application.SpokeService, uint64, bool) {
	spoke, err := h.spoke(r)
	if err != nil {
		writeBadRequest(w, err)
		return nil, 0, false
	}
	height, err := parseUint(r, "height")
	if err != nil {
		writeError(w, errors.INVALID_ARGUMENT.Wrap(err))
		return nil, 0, false
	}
	return spoke, height, true
}
