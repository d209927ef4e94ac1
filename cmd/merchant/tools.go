package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend/bitcoin"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend/ethereum"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend/liquid"
	"github.com/urfave/cli/v2"
)

var (
	assetFlag = cli.StringFlag{
		Name:  "asset",
		Usage: "the asset: BTC, LBTC or ETH",
		Value: domain.BTC.Ticker,
	}
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "the network: mainnet, testnet or regtest",
		Value: "mainnet",
	}
)

var derive = cli.Command{
	Name:  "derive",
	Usage: "derive a receiving address from an extended public key, offline",
	Flags: []cli.Flag{
		&assetFlag,
		&networkFlag,
		&cli.StringFlag{
			Name:     "xpub",
			Usage:    "the extended public key of the account",
			Required: true,
		},
		&cli.UintFlag{
			Name:  "index",
			Usage: "the derivation index",
		},
		&cli.StringFlag{
			Name:  "address_type",
			Usage: "the type of address, defaults to the native one of the asset",
		},
		&cli.StringFlag{
			Name:  "path",
			Usage: "the derivation path template relative to the xpub",
			Value: domain.DefaultDerivationPath,
		},
	},
	Action: deriveAction,
}

var uri = cli.Command{
	Name:  "uri",
	Usage: "build the payment URI for an address and crypto amount, offline",
	Flags: []cli.Flag{
		&assetFlag,
		&networkFlag,
		&cli.StringFlag{
			Name:     "address",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the crypto amount in display units, ie. 0.001",
			Required: true,
		},
	},
	Action: uriAction,
}

var convert = cli.Command{
	Name:  "convert",
	Usage: "convert an amount between fiat and crypto with the daemon rates",
	Flags: []cli.Flag{
		&assetFlag,
		&cli.StringFlag{
			Name:     "amount",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "currency",
			Value: "USD",
		},
		&cli.BoolFlag{
			Name:  "to_fiat",
			Usage: "convert the given crypto amount to fiat instead",
		},
	},
	Action: convertAction,
}

type offlineTools struct {
	asset              domain.Asset
	defaultAddressType domain.AddressType
	deriver            ports.AddressDeriver
	uriBuilder         ports.PaymentURIBuilder
}

func getOfflineTools(ticker, network string) (*offlineTools, error) {
	asset, err := domain.AssetFromTicker(ticker)
	if err != nil {
		return nil, err
	}

	switch asset.Ticker {
	case domain.BTC.Ticker:
		net, err := bitcoin.NetworkFromString(network)
		if err != nil {
			return nil, err
		}
		return &offlineTools{
			asset, domain.AddressTypeP2WPKH,
			bitcoin.NewDeriver(net), bitcoin.NewURIBuilder(),
		}, nil
	case domain.LBTC.Ticker:
		net, err := liquid.NetworkFromString(network)
		if err != nil {
			return nil, err
		}
		return &offlineTools{
			asset, domain.AddressTypeP2WPKH,
			liquid.NewDeriver(net), liquid.NewURIBuilder(net),
		}, nil
	default:
		return &offlineTools{
			asset, domain.AddressTypeEIP55,
			ethereum.NewDeriver(), ethereum.NewURIBuilder(),
		}, nil
	}
}

func deriveAction(ctx *cli.Context) error {
	tools, err := getOfflineTools(ctx.String("asset"), ctx.String("network"))
	if err != nil {
		return err
	}

	addressType := tools.defaultAddressType
	if t := ctx.String("address_type"); t != "" {
		addressType = domain.AddressType(t)
	}

	address, err := tools.deriver.Derive(
		ctx.String("xpub"), uint32(ctx.Uint("index")), addressType, ctx.String("path"),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, address)
	return nil
}

func uriAction(ctx *cli.Context) error {
	tools, err := getOfflineTools(ctx.String("asset"), ctx.String("network"))
	if err != nil {
		return err
	}

	amount, err := domain.ParseCryptoAmount(
		ctx.String("amount"), tools.asset.Precision,
	)
	if err != nil {
		return err
	}

	paymentURI, err := tools.uriBuilder.Build(ctx.String("address"), amount)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, paymentURI)
	return nil
}

func convertAction(ctx *cli.Context) error {
	direction := "to-crypto"
	if ctx.Bool("to_fiat") {
		direction = "to-fiat"
	}
	query := url.Values{}
	query.Set("asset", ctx.String("asset"))
	query.Set("amount", ctx.String("amount"))
	query.Set("currency", ctx.String("currency"))
	query.Set("direction", direction)

	resp, err := callDaemon(http.MethodGet, "/v1/convert?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}
