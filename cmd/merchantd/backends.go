package main

import (
	"context"

	"github.com/tdex-network/merchantd/internal/config"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend/bitcoin"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend/ethereum"
	"github.com/tdex-network/merchantd/internal/infrastructure/backend/liquid"
	"github.com/tdex-network/merchantd/internal/infrastructure/observer/esplora"
	"github.com/tdex-network/merchantd/internal/infrastructure/observer/ethnode"
	fixedfeeder "github.com/tdex-network/merchantd/internal/infrastructure/price-feeder/fixed"
	krakenfeeder "github.com/tdex-network/merchantd/internal/infrastructure/price-feeder/kraken"
)

func newBackendRegistry(cfg config.Config) (*backend.Registry, error) {
	backends := make([]ports.Backend, 0, 3)

	if cfg.BtcXpub != "" {
		net, err := bitcoin.NetworkFromString(cfg.Network)
		if err != nil {
			return nil, err
		}
		observer, err := esplora.NewService(esplora.Opts{
			APIURL:         cfg.BtcExplorerURL,
			Asset:          domain.BTC,
			RequestTimeout: cfg.ExplorerRequestTimeout,
			RateLimit:      cfg.ExplorerRateLimit,
		})
		if err != nil {
			return nil, err
		}
		btc, err := backend.New(backend.Opts{
			Asset:              domain.BTC,
			MasterPublicKey:    cfg.BtcXpub,
			DefaultAddressType: domain.AddressType(cfg.BtcAddressType),
			Deriver:            bitcoin.NewDeriver(net),
			Converter:          backend.NewConverter(domain.BTC, cfg.MaxRateAge),
			URIBuilder:         bitcoin.NewURIBuilder(),
			Observer:           observer,
		})
		if err != nil {
			return nil, err
		}
		backends = append(backends, btc)
	}

	if cfg.LbtcXpub != "" {
		net, err := liquid.NetworkFromString(cfg.Network)
		if err != nil {
			return nil, err
		}
		observer, err := esplora.NewService(esplora.Opts{
			APIURL:         cfg.LbtcExplorerURL,
			Asset:          domain.LBTC,
			AssetID:        net.AssetID,
			RequestTimeout: cfg.ExplorerRequestTimeout,
			RateLimit:      cfg.ExplorerRateLimit,
		})
		if err != nil {
			return nil, err
		}
		lbtc, err := backend.New(backend.Opts{
			Asset:              domain.LBTC,
			MasterPublicKey:    cfg.LbtcXpub,
			DefaultAddressType: domain.AddressType(cfg.LbtcAddressType),
			Deriver:            liquid.NewDeriver(net),
			Converter:          backend.NewConverter(domain.LBTC, cfg.MaxRateAge),
			URIBuilder:         liquid.NewURIBuilder(net),
			Observer:           observer,
		})
		if err != nil {
			return nil, err
		}
		backends = append(backends, lbtc)
	}

	if cfg.EthXpub != "" {
		observer, err := ethnode.NewService(context.Background(), ethnode.Opts{
			RPCURL:    cfg.EthRPCURL,
			Lookback:  cfg.EthBalanceLookback,
			RateLimit: cfg.ExplorerRateLimit,
		})
		if err != nil {
			return nil, err
		}
		eth, err := backend.New(backend.Opts{
			Asset:              domain.ETH,
			MasterPublicKey:    cfg.EthXpub,
			DefaultAddressType: domain.AddressTypeEIP55,
			Deriver:            ethereum.NewDeriver(),
			Converter:          backend.NewConverter(domain.ETH, cfg.MaxRateAge),
			URIBuilder:         ethereum.NewURIBuilder(),
			Observer:           observer,
		})
		if err != nil {
			return nil, err
		}
		backends = append(backends, eth)
	}

	return backend.NewRegistry(backends...), nil
}

func newRateSource(cfg config.Config) (ports.RateSource, error) {
	if cfg.PriceSource == config.PriceSourceFixed {
		return fixedfeeder.NewService(cfg.FixedRates)
	}
	return krakenfeeder.NewService(krakenfeeder.Opts{
		Currencies: cfg.FiatCurrencies,
	})
}
