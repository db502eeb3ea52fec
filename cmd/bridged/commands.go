package main

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/interface/grpc/handlers"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var cliCommands = []*cli.Command{
	{
		Name:   "info",
		Usage:  "Get info about the spokes",
		Flags:  clientFlags(),
		Action: infoAction,
	},
	{
		Name:  "intent",
		Usage: "Bridge tokens to the other domain",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a transfer intent to the open block of a spoke",
				Flags: clientFlags(
					sideFlag, callerFlag, tokenIdFlag, contractFlag, receiverFlag,
				),
				Action: addIntentAction,
			},
			{
				Name:  "resubmit",
				Usage: "Bridge back a token received from a settled incoming block",
				Flags: clientFlags(
					sideFlag, callerFlag, heightFlag, indexFlag, receiverFlag,
				),
				Action: resubmitIntentAction,
			},
		},
	},
	{
		Name:  "block",
		Usage: "Manage the outgoing blocks of a spoke",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Get an outgoing block",
				Flags:  clientFlags(sideFlag, heightFlag),
				Action: getBlockAction,
			},
			{
				Name:   "seal",
				Usage:  "Seal the open block",
				Flags:  clientFlags(sideFlag, heightFlag),
				Action: sealBlockAction,
			},
			{
				Name:   "proof",
				Usage:  "Get the merkle proof of an intent",
				Flags:  clientFlags(sideFlag, heightFlag, indexFlag),
				Action: getProofAction,
			},
			{
				Name:   "send-proof",
				Usage:  "Send the proof of a challenged block to the counterpart spoke",
				Flags:  clientFlags(sideFlag, callerFlag, heightFlag),
				Action: sendProofAction,
			},
		},
	},
	{
		Name:  "relayer",
		Usage: "Manage the relayers of a spoke",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Get a relayer",
				Flags:  clientFlags(sideFlag, accountFlag),
				Action: getRelayerAction,
			},
			{
				Name:   "deposit",
				Usage:  "Bond funds to become a relayer",
				Flags:  clientFlags(sideFlag, callerFlag, amountFlag),
				Action: depositAction,
			},
			{
				Name:   "undeposit",
				Usage:  "Request to unbond the funds of a relayer",
				Flags:  clientFlags(sideFlag, callerFlag),
				Action: undepositAction,
			},
			{
				Name:   "claim",
				Usage:  "Claim the unbonded funds after the cooldown",
				Flags:  clientFlags(sideFlag, callerFlag),
				Action: claimDepositAction,
			},
			{
				Name:   "relay",
				Usage:  "Relay the root of a counterpart block",
				Flags:  clientFlags(sideFlag, callerFlag, heightFlag, rootFlag),
				Action: relayAction,
			},
		},
	},
	{
		Name:  "incoming",
		Usage: "Inspect and dispute the incoming blocks of a spoke",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Get an incoming block",
				Flags:  clientFlags(sideFlag, heightFlag),
				Action: getIncomingBlockAction,
			},
			{
				Name:   "challenge",
				Usage:  "Challenge a relayed root",
				Flags:  clientFlags(sideFlag, callerFlag, heightFlag, amountFlag),
				Action: challengeAction,
			},
			{
				Name:   "claim",
				Usage:  "Claim the token of an intent of an incoming block",
				Flags:  clientFlags(sideFlag, callerFlag, heightFlag, indexFlag, feeFlag),
				Action: claimAssetAction,
			},
		},
	},
	{
		Name:  "rewards",
		Usage: "Get and claim challenge rewards and compensations",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Get the rewards of an account",
				Flags:  clientFlags(sideFlag, accountFlag),
				Action: getRewardsAction,
			},
			{
				Name:   "claim-challenge",
				Usage:  "Claim the challenge rewards",
				Flags:  clientFlags(sideFlag, callerFlag),
				Action: claimRewardAction("challenge"),
			},
			{
				Name:   "claim-compensation",
				Usage:  "Claim the compensations",
				Flags:  clientFlags(sideFlag, callerFlag),
				Action: claimRewardAction("compensation"),
			},
		},
	},
	{
		Name:   "restore",
		Usage:  "Restore a spoke after a proven fraud",
		Flags:  clientFlags(sideFlag, callerFlag),
		Action: restoreAction,
	},
	{
		Name:  "directory",
		Usage: "Manage the contract pairs",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the contract pairs",
				Flags:  clientFlags(),
				Action: listPairsAction,
			},
			{
				Name:   "add",
				Usage:  "Add a contract pair",
				Flags:  clientFlags(callerFlag, localFlag, remoteFlag),
				Action: addPairAction,
			},
		},
	},
	{
		Name:  "domain",
		Usage: "Use the simulated ledgers and banks",
		Subcommands: []*cli.Command{
			{
				Name:   "mint",
				Usage:  "Issue a token of an original contract",
				Flags:  clientFlags(sideFlag, contractFlag, tokenIdFlag, accountFlag),
				Action: mintAction,
			},
			{
				Name:   "owner",
				Usage:  "Get the owner of a token",
				Flags:  clientFlags(sideFlag, contractFlag, tokenIdFlag),
				Action: ownerAction,
			},
			{
				Name:   "faucet",
				Usage:  "Credit funds to an account",
				Flags:  clientFlags(sideFlag, accountFlag, amountFlag),
				Action: faucetAction,
			},
			{
				Name:   "balance",
				Usage:  "Get the balance of an account",
				Flags:  clientFlags(sideFlag, accountFlag),
				Action: balanceAction,
			},
		},
	},
	{
		Name:  "macaroon",
		Usage: "Manage the macaroons authenticating the REST api",
		Subcommands: []*cli.Command{
			{
				Name:   "bake",
				Usage:  "Bake a macaroon bound to an account, requires the operator macaroon",
				Flags:  clientFlags(accountFlag, ttlFlag),
				Action: bakeMacaroonAction,
			},
		},
	},
	{
		Name:   "events",
		Usage:  "Stream the events of the spokes",
		Flags:  clientFlags(topicsFlag),
		Action: streamEventsAction,
	},
}

func spokePath(ctx *cli.Context, format string, args ...any) (string, error) {
	side, err := domain.ParseSide(ctx.String(sideFlagName))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/v1/spokes/%s", side) + fmt.Sprintf(format, args...), nil
}

func counterpartPath(ctx *cli.Context, format string, args ...any) (string, error) {
	side, err := domain.ParseSide(ctx.String(sideFlagName))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/v1/spokes/%s", side.Opposite()) + fmt.Sprintf(format, args...), nil
}

func infoAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	infos, err := get[[]handlers.SpokeInfo](client, "/v1/spokes")
	if err != nil {
		return err
	}
	return printJSON(infos)
}

func addIntentAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/intents")
	if err != nil {
		return err
	}
	receipt, err := post[handlers.IntentReceipt](client, path, handlers.AddIntentRequest{
		Caller:   ctx.String(callerFlagName),
		TokenID:  ctx.Uint64(tokenIdFlagName),
		Contract: ctx.String(contractFlagName),
		Receiver: ctx.String(receiverFlagName),
	})
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func resubmitIntentAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	req, err := claimRequest(ctx, client)
	if err != nil {
		return err
	}
	req.Receiver = ctx.String(receiverFlagName)

	path, err := spokePath(ctx, "/intents/resubmit")
	if err != nil {
		return err
	}
	receipt, err := post[handlers.IntentReceipt](client, path, req)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func getBlockAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/blocks/%d", ctx.Uint64(heightFlagName))
	if err != nil {
		return err
	}
	block, err := get[handlers.Block](client, path)
	if err != nil {
		return err
	}
	return printJSON(block)
}

func sealBlockAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/blocks/%d/seal", ctx.Uint64(heightFlagName))
	if err != nil {
		return err
	}
	root, err := post[handlers.RootResponse](client, path, nil)
	if err != nil {
		return err
	}
	return printJSON(root)
}

func getProofAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(
		ctx, "/blocks/%d/proof/%d", ctx.Uint64(heightFlagName), ctx.Uint(indexFlagName),
	)
	if err != nil {
		return err
	}
	proof, err := get[handlers.ProofResponse](client, path)
	if err != nil {
		return err
	}
	return printJSON(proof)
}

func sendProofAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/blocks/%d/send-proof", ctx.Uint64(heightFlagName))
	if err != nil {
		return err
	}
	resp, err := post[handlers.SendProofResponse](client, path, handlers.CallerRequest{
		Caller: ctx.String(callerFlagName),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func getRelayerAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/relayers/%s", url.PathEscape(ctx.String(accountFlagName)))
	if err != nil {
		return err
	}
	relayer, err := get[handlers.Relayer](client, path)
	if err != nil {
		return err
	}
	return printJSON(relayer)
}

func depositAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/relayers/deposit")
	if err != nil {
		return err
	}
	resp, err := post[handlers.AmountResponse](client, path, handlers.AmountRequest{
		Caller: ctx.String(callerFlagName),
		Amount: ctx.Uint64(amountFlagName),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func undepositAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/relayers/undeposit")
	if err != nil {
		return err
	}
	if _, err := post[struct{}](client, path, handlers.CallerRequest{
		Caller: ctx.String(callerFlagName),
	}); err != nil {
		return err
	}
	fmt.Println("undeposit requested")
	return nil
}

func claimDepositAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/relayers/claim")
	if err != nil {
		return err
	}
	resp, err := post[handlers.AmountResponse](client, path, handlers.CallerRequest{
		Caller: ctx.String(callerFlagName),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func relayAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	height := ctx.Uint64(heightFlagName)

	var root merkle.Hash
	if hex := ctx.String(rootFlagName); hex != "" {
		if root, err = merkle.HashFromString(hex); err != nil {
			return fmt.Errorf("invalid root: %s", err)
		}
	} else {
		path, err := counterpartPath(ctx, "/blocks/%d", height)
		if err != nil {
			return err
		}
		block, err := get[handlers.Block](client, path)
		if err != nil {
			return err
		}
		if !block.Sealed {
			return fmt.Errorf("counterpart block %d is not sealed yet", height)
		}
		root = block.Root
	}

	path, err := spokePath(ctx, "/incoming/%d/relay", height)
	if err != nil {
		return err
	}
	if _, err := post[struct{}](client, path, handlers.RelayBlockRequest{
		Caller: ctx.String(callerFlagName),
		Root:   root,
	}); err != nil {
		return err
	}
	fmt.Printf("relayed root %s of block %d\n", root, height)
	return nil
}

func getIncomingBlockAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/incoming/%d", ctx.Uint64(heightFlagName))
	if err != nil {
		return err
	}
	record, err := get[handlers.IncomingBlock](client, path)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func challengeAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/incoming/%d/challenge", ctx.Uint64(heightFlagName))
	if err != nil {
		return err
	}
	challenge, err := post[handlers.Challenge](client, path, handlers.ChallengeBlockRequest{
		Caller: ctx.String(callerFlagName),
		Stake:  ctx.Uint64(amountFlagName),
	})
	if err != nil {
		return err
	}
	return printJSON(challenge)
}

func claimAssetAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	req, err := claimRequest(ctx, client)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/claims")
	if err != nil {
		return err
	}
	if _, err := post[struct{}](client, path, req); err != nil {
		return err
	}
	fmt.Printf("claimed %s#%d\n", req.Intent.RemoteContract, req.Intent.TokenID)
	return nil
}

// claimRequest fetches the intent and its proof from the counterpart block.
func claimRequest(ctx *cli.Context, client *client) (*handlers.ClaimAssetRequest, error) {
	height, index := ctx.Uint64(heightFlagName), ctx.Uint(indexFlagName)
	blockPath, err := counterpartPath(ctx, "/blocks/%d", height)
	if err != nil {
		return nil, err
	}
	proofPath, err := counterpartPath(ctx, "/blocks/%d/proof/%d", height, index)
	if err != nil {
		return nil, err
	}
	infoPath, err := spokePath(ctx, "")
	if err != nil {
		return nil, err
	}

	var block handlers.Block
	var proof handlers.ProofResponse
	var info handlers.SpokeInfo
	eg := new(errgroup.Group)
	eg.Go(func() (err error) {
		block, err = get[handlers.Block](client, blockPath)
		return
	})
	eg.Go(func() (err error) {
		proof, err = get[handlers.ProofResponse](client, proofPath)
		return
	})
	eg.Go(func() (err error) {
		info, err = get[handlers.SpokeInfo](client, infoPath)
		return
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if int(index) >= len(block.Intents) {
		return nil, fmt.Errorf("block %d has no intent at index %d", height, index)
	}

	fee := ctx.Uint64(feeFlagName)
	if fee == 0 {
		fee = info.RelayerFee
	}
	return &handlers.ClaimAssetRequest{
		Caller:   ctx.String(callerFlagName),
		Height:   height,
		Intent:   block.Intents[index],
		Siblings: proof.Siblings,
		Index:    uint32(index),
		Fee:      fee,
	}, nil
}

func getRewardsAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/rewards/%s", url.PathEscape(ctx.String(accountFlagName)))
	if err != nil {
		return err
	}
	rewards, err := get[handlers.RewardBalance](client, path)
	if err != nil {
		return err
	}
	return printJSON(rewards)
}

func claimRewardAction(kind string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		client, err := newClient(ctx)
		if err != nil {
			return err
		}
		path, err := spokePath(ctx, "/rewards/%s", kind)
		if err != nil {
			return err
		}
		resp, err := post[handlers.AmountResponse](client, path, handlers.CallerRequest{
			Caller: ctx.String(callerFlagName),
		})
		if err != nil {
			return err
		}
		return printJSON(resp)
	}
}

func restoreAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path, err := spokePath(ctx, "/restore")
	if err != nil {
		return err
	}
	resp, err := post[handlers.RestoreResponse](client, path, handlers.CallerRequest{
		Caller: ctx.String(callerFlagName),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func listPairsAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	pairs, err := get[[]handlers.ContractPair](client, "/v1/directory/pairs")
	if err != nil {
		return err
	}
	return printJSON(pairs)
}

func addPairAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	local, remote := ctx.String(localFlagName), ctx.String(remoteFlagName)
	if local == "" || remote == "" {
		return fmt.Errorf("both --%s and --%s are required", localFlagName, remoteFlagName)
	}
	if _, err := post[struct{}](client, "/v1/directory/pairs", handlers.AddPairRequest{
		Caller: ctx.String(callerFlagName),
		Local:  local,
		Remote: remote,
	}); err != nil {
		return err
	}
	fmt.Printf("paired %s with %s\n", local, remote)
	return nil
}

func bakeMacaroonAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	resp, err := post[handlers.MacaroonResponse](client, "/v1/auth/macaroons", handlers.BakeMacaroonRequest{
		Account: ctx.String(accountFlagName),
		TTL:     int64(ctx.Duration(ttlFlagName).Seconds()),
	})
	if err != nil {
		return err
	}
	fmt.Println(resp.Macaroon)
	return nil
}

func mintAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	side, err := domain.ParseSide(ctx.String(sideFlagName))
	if err != nil {
		return err
	}
	if _, err := post[struct{}](client, fmt.Sprintf("/v1/ledger/%s/mint", side), handlers.MintRequest{
		Contract: ctx.String(contractFlagName),
		To:       ctx.String(accountFlagName),
		TokenID:  ctx.Uint64(tokenIdFlagName),
	}); err != nil {
		return err
	}
	fmt.Printf("minted %s#%d\n", ctx.String(contractFlagName), ctx.Uint64(tokenIdFlagName))
	return nil
}

func ownerAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	side, err := domain.ParseSide(ctx.String(sideFlagName))
	if err != nil {
		return err
	}
	query := url.Values{}
	query.Set("contract", ctx.String(contractFlagName))
	query.Set("token_id", fmt.Sprintf("%d", ctx.Uint64(tokenIdFlagName)))
	owner, err := get[handlers.OwnerResponse](
		client, fmt.Sprintf("/v1/ledger/%s/owner?%s", side, query.Encode()),
	)
	if err != nil {
		return err
	}
	return printJSON(owner)
}

func faucetAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	side, err := domain.ParseSide(ctx.String(sideFlagName))
	if err != nil {
		return err
	}
	balance, err := post[handlers.BalanceResponse](
		client, fmt.Sprintf("/v1/bank/%s/faucet", side), handlers.FaucetRequest{
			Account: ctx.String(accountFlagName),
			Amount:  ctx.Uint64(amountFlagName),
		},
	)
	if err != nil {
		return err
	}
	return printJSON(balance)
}

func balanceAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	side, err := domain.ParseSide(ctx.String(sideFlagName))
	if err != nil {
		return err
	}
	balance, err := get[handlers.BalanceResponse](client, fmt.Sprintf(
		"/v1/bank/%s/balance/%s", side, url.PathEscape(ctx.String(accountFlagName)),
	))
	if err != nil {
		return err
	}
	return printJSON(balance)
}

func streamEventsAction(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	path := "/v1/events/stream"
	if topics := ctx.StringSlice(topicsFlagName); len(topics) > 0 {
		path += "?topics=" + url.QueryEscape(strings.Join(topics, ","))
	}

	req, err := http.NewRequestWithContext(ctx.Context, http.MethodGet, client.url+path, nil)
	if err != nil {
		return err
	}
	client.authorize(req)
	// Streams outlive the request timeout.
	client.http.Timeout = 0
	resp, err := client.http.Do(req)
	if err != nil {
		return err
	}
	// nolint
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to open event stream: %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fmt.Println(line)
	}
	return scanner.Err()
}
