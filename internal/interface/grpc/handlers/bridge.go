package handlers

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/application"
	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/arkade-os/nftbridge/pkg/macaroons"
)

// Ledger is an asset ledger that can issue new tokens of the collections it hosts.
type Ledger interface {
	ports.AssetLedger
	Issue(ctx context.Context, contract, to string, tokenID uint64) error
}

// Bank is a bank that can credit accounts out of thin air.
type Bank interface {
	ports.Bank
	Credit(ctx context.Context, account string, amount uint64) error
}

// Services are the services exposed by the REST api. Ledgers and Banks are only set when the
// daemon simulates the domains. A nil Macaroons disables authentication, callers are then
// taken from the request bodies.
type Services struct {
	Spokes    map[domain.Side]application.SpokeService
	Directory application.DirectoryService
	Hub       application.HubService
	Events    domain.EventRepository
	Ledgers   map[domain.Side]Ledger
	Banks     map[domain.Side]Bank
	Macaroons *macaroons.Service
	Operator  string
}

type bridgeHandler struct {
	Services
}

// NewHandler returns the REST handler of the bridge and the broker feeding its event streams.
func NewHandler(svc Services) (http.Handler, func(), error) {
	rt := newRouter(svc.Macaroons != nil, svc.Operator)

	spokes := &spokeHandler{svc.Spokes}
	spokes.register(rt)

	bridge := &bridgeHandler{svc}
	rt.handle(http.MethodGet, "/v1/directory/pairs", publicRoute, bridge.listContractPairs)
	rt.handle(http.MethodPost, "/v1/directory/pairs", operatorRoute, bridge.addContractPair)
	rt.handle(http.MethodGet, "/v1/directory/resolve", publicRoute, bridge.resolveContract)
	rt.handle(http.MethodGet, "/v1/hub/pairs", publicRoute, bridge.listBridgePairs)
	rt.handle(http.MethodPost, "/v1/ledger/{side}/mint", operatorRoute, bridge.mint)
	rt.handle(http.MethodGet, "/v1/ledger/{side}/owner", publicRoute, bridge.ownerOf)
	rt.handle(http.MethodPost, "/v1/bank/{side}/faucet", operatorRoute, bridge.faucet)
	rt.handle(http.MethodGet, "/v1/bank/{side}/balance/{account}", publicRoute, bridge.balance)
	rt.handle(http.MethodPost, "/v1/auth/macaroons", operatorRoute, bridge.bakeMacaroon)

	events := newEventsHandler(svc.Events, svc.Spokes)
	events.register(rt)

	if rt.err != nil {
		events.close()
		return nil, nil, fmt.Errorf("failed to register routes: %w", rt.err)
	}
	return rt.mux, events.close, nil
}

func (h *bridgeHandler) listContractPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.Directory.ListPairs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]ContractPair, 0, len(pairs))
	for _, pair := range pairs {
		resp = append(resp, newContractPair(pair))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *bridgeHandler) addContractPair(w http.ResponseWriter, r *http.Request) {
	var req AddPairRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := callerOf(r, req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Directory.AddPair(r.Context(), caller, req.Local, req.Remote); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *bridgeHandler) resolveContract(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	local, remote := query.Get("local"), query.Get("remote")

	var contract string
	var err error
	switch {
	case local != "" && remote == "":
		contract, err = h.Directory.Resolve(r.Context(), local)
	case remote != "" && local == "":
		contract, err = h.Directory.ResolveReverse(r.Context(), remote)
	default:
		writeBadRequest(w, fmt.Errorf("exactly one of local or remote is required"))
		return
	}
	if err != nil {
		writeError(w, errors.NOT_FOUND.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Contract: contract})
}

func (h *bridgeHandler) listBridgePairs(w http.ResponseWriter, _ *http.Request) {
	pairs := h.Hub.Pairs()
	resp := make([]BridgePair, 0, len(pairs))
	for _, pair := range pairs {
		resp = append(resp, BridgePair{Source: pair.Source, Destination: pair.Destination})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *bridgeHandler) mint(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.ledger(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req MintRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := ledger.Issue(r.Context(), req.Contract, req.To, req.TokenID); err != nil {
		writeError(w, errors.PRECONDITION_FAILED.Wrap(err))
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *bridgeHandler) ownerOf(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.ledger(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenID, err := parseQueryUint(r, "token_id", 0)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	owner, err := ledger.OwnerOf(r.Context(), r.URL.Query().Get("contract"), tokenID)
	if err != nil {
		writeError(w, errors.NOT_FOUND.Wrap(err))
		return
	}
	writeJSON(w, http.StatusOK, OwnerResponse{Owner: owner})
}

func (h *bridgeHandler) faucet(w http.ResponseWriter, r *http.Request) {
	bank, err := h.bank(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req FaucetRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := bank.Credit(r.Context(), req.Account, req.Amount); err != nil {
		writeError(w, errors.INVALID_ARGUMENT.Wrap(err))
		return
	}
	h.writeBalance(w, r, bank, req.Account)
}

func (h *bridgeHandler) balance(w http.ResponseWriter, r *http.Request) {
	bank, err := h.bank(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	h.writeBalance(w, r, bank, r.PathValue("account"))
}

func (h *bridgeHandler) writeBalance(
	w http.ResponseWriter, r *http.Request, bank Bank, account string,
) {
	balance, err := bank.Balance(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Account: account, Balance: balance})
}

func (h *bridgeHandler) bakeMacaroon(w http.ResponseWriter, r *http.Request) {
	if h.Macaroons == nil {
		writeError(w, errors.PRECONDITION_FAILED.New("macaroons are disabled"))
		return
	}
	var req BakeMacaroonRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.TTL < 0 {
		writeBadRequest(w, fmt.Errorf("ttl must not be negative"))
		return
	}
	buf, err := h.Macaroons.Bake(req.Account, time.Duration(req.TTL)*time.Second)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MacaroonResponse{Macaroon: hex.EncodeToString(buf)})
}

func (h *bridgeHandler) ledger(r *http.Request) (Ledger, error) {
	side, err := parseSide(r)
	if err != nil {
		return nil, err
	}
	ledger, ok := h.Ledgers[side]
	if !ok {
		return nil, fmt.Errorf("the %s ledger is not simulated", side)
	}
	return ledger, nil
}

func (h *bridgeHandler) bank(r *http.Request) (Bank, error) {
	side, err := parseSide(r)
	if err != nil {
		return nil, err
	}
	bank, ok := h.Banks[side]
	if !ok {
		return nil, fmt.Errorf("the %s bank is not simulated", side)
	}
	return bank, nil
}
