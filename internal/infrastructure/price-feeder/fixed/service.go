package fixedfeeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
)

type service struct {
	ratesByKey map[string]decimal.Decimal
	now        func() time.Time
}

// NewService returns a RateSource serving the static rates of the given
// table, in the form "BTC:USD:65000,ETH:EUR:3000". LBTC falls back to the BTC
// rate if not listed. Rates never get stale.
func NewService(table string) (ports.RateSource, error) {
	rates, err := parseTable(table)
	if err != nil {
		return nil, err
	}
	return &service{rates, time.Now}, nil
}

func (s *service) Start() error { return nil }

func (s *service) Stop() {}

func (s *service) GetRate(
	_ context.Context, asset domain.Asset, currency string,
) (*domain.ExchangeRate, error) {
	currency = domain.NormalizeCurrency(currency)

	rate, ok := s.ratesByKey[rateKey(asset.Ticker, currency)]
	if !ok && asset.Ticker == domain.LBTC.Ticker {
		rate, ok = s.ratesByKey[rateKey(domain.BTC.Ticker, currency)]
	}
	if !ok {
		return nil, domain.ErrStaleOrMissingRate
	}

	return &domain.ExchangeRate{
		Currency: currency,
		Rate:     rate,
		AsOf:     s.now(),
	}, nil
}

func parseTable(table string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, entry := range strings.Split(table, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf(
				"invalid rate %q, must be in the form ASSET:CURRENCY:RATE", entry,
			)
		}

		asset, err := domain.AssetFromTicker(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", entry, err)
		}
		currency := domain.NormalizeCurrency(parts[1])
		if len(currency) != 3 {
			return nil, fmt.Errorf("invalid rate %q: bad currency code", entry)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %s", entry, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("invalid rate %q: must be positive", entry)
		}

		rates[rateKey(asset.Ticker, currency)] = rate
	}

	if len(rates) <= 0 {
		return nil, fmt.Errorf("rate table must not be empty")
	}
	return rates, nil
}

func rateKey(ticker, currency string) string {
	return fmt.Sprintf("%s:%s", ticker, currency)
}
