package main

import (
	"fmt"
	"time"

	"github.com/arkade-os/nftbridge/internal/config"
	"github.com/urfave/cli/v2"
)

const (
	urlFlagName      = "url"
	datadirFlagName  = "datadir"
	macaroonFlagName = "macaroon"
	sideFlagName     = "side"
	callerFlagName   = "caller"
	heightFlagName   = "height"
	indexFlagName    = "index"
	tokenIdFlagName  = "token-id"
	contractFlagName = "contract"
	receiverFlagName = "receiver"
	amountFlagName   = "amount"
	rootFlagName     = "root"
	feeFlagName      = "fee"
	accountFlagName  = "account"
	localFlagName    = "local"
	remoteFlagName   = "remote"
	topicsFlagName   = "topics"
	ttlFlagName      = "ttl"

	tlsDir       = "tls"
	tlsCertFile  = "cert.pem"
	macaroonDir  = "macaroons"
	macaroonFile = "operator.macaroon"

	timeout = 15 * time.Second
)

var (
	urlFlag = &cli.StringFlag{
		Name:  urlFlagName,
		Usage: "the url where to reach the bridge daemon",
		Value: fmt.Sprintf("http://127.0.0.1:%d", config.DefaultPort),
	}
	datadirFlag = &cli.StringFlag{
		Name:  datadirFlagName,
		Usage: "bridged datadir from where to source the TLS cert and the macaroon if needed",
		Value: config.Datadir.Value,
	}
	macaroonFlag = &cli.StringFlag{
		Name:  macaroonFlagName,
		Usage: "hex encoded macaroon, the operator macaroon of the datadir is used if missing",
	}
	ttlFlag = &cli.DurationFlag{
		Name:  ttlFlagName,
		Usage: "validity of the macaroon, never expires if zero",
	}
	sideFlag = &cli.StringFlag{
		Name:  sideFlagName,
		Usage: "side of the spoke, source or destination",
		Value: "source",
	}
	callerFlag = &cli.StringFlag{
		Name:  callerFlagName,
		Usage: "account sending the request, the account of the macaroon if missing",
	}
	heightFlag = &cli.Uint64Flag{
		Name:     heightFlagName,
		Usage:    "height of the block",
		Required: true,
	}
	indexFlag = &cli.UintFlag{
		Name:  indexFlagName,
		Usage: "index of the intent in the block",
	}
	tokenIdFlag = &cli.Uint64Flag{
		Name:     tokenIdFlagName,
		Usage:    "id of the token",
		Required: true,
	}
	contractFlag = &cli.StringFlag{
		Name:     contractFlagName,
		Usage:    "contract of the token",
		Required: true,
	}
	receiverFlag = &cli.StringFlag{
		Name:     receiverFlagName,
		Usage:    "account receiving the token on the other domain",
		Required: true,
	}
	amountFlag = &cli.Uint64Flag{
		Name:     amountFlagName,
		Usage:    "amount of funds",
		Required: true,
	}
	rootFlag = &cli.StringFlag{
		Name:  rootFlagName,
		Usage: "merkle root in hex format, fetched from the counterpart spoke if missing",
	}
	feeFlag = &cli.Uint64Flag{
		Name:  feeFlagName,
		Usage: "fee paid to the relayer, defaults to the relayer fee of the spoke",
	}
	accountFlag = &cli.StringFlag{
		Name:     accountFlagName,
		Usage:    "account to query",
		Required: true,
	}
	localFlag = &cli.StringFlag{
		Name:  localFlagName,
		Usage: "contract on the source domain",
	}
	remoteFlag = &cli.StringFlag{
		Name:  remoteFlagName,
		Usage: "wrapped contract on the destination domain",
	}
	topicsFlag = &cli.StringSliceFlag{
		Name:  topicsFlagName,
		Usage: "sides or topics to stream events of, all if empty",
	}
)

func clientFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{urlFlag, datadirFlag, macaroonFlag}, flags...)
}
