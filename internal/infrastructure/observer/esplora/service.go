package esplora

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"github.com/tdex-network/merchantd/pkg/circuitbreaker"
	"github.com/tdex-network/merchantd/pkg/httputil"
	"go.uber.org/ratelimit"
)

const (
	defaultRateLimit = 10
	// esplora returns confirmed txs in pages of 25.
	chainPageSize = 25
	maxChainPages = 100
)

type esplora struct {
	apiURL      string
	asset       domain.Asset
	assetID     string
	client      *httputil.Client
	cb          *gobreaker.CircuitBreaker
	rateLimiter ratelimit.Limiter
	now         func() time.Time
}

// Opts defines the parameters needed for creating an esplora ChainObserver
// with NewService.
type Opts struct {
	APIURL string
	Asset  domain.Asset
	// AssetID restricts the counted outputs to those of the given asset.
	// Only meaningful for Liquid.
	AssetID        string
	RequestTimeout time.Duration
	// RateLimit is the max number of requests per second.
	RateLimit int
}

// NewService returns a ChainObserver backed by an esplora REST API.
func NewService(opts Opts) (ports.ChainObserver, error) {
	if opts.APIURL == "" {
		return nil, fmt.Errorf("missing esplora api url")
	}
	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	return &esplora{
		apiURL:      strings.TrimSuffix(opts.APIURL, "/"),
		asset:       opts.Asset,
		assetID:     opts.AssetID,
		client:      httputil.NewClient(opts.RequestTimeout),
		cb:          circuitbreaker.NewCircuitBreaker(fmt.Sprintf("%s explorer", opts.Asset.Ticker)),
		rateLimiter: ratelimit.New(rateLimit),
		now:         time.Now,
	}, nil
}

// ObserveAddress returns all txs paying the address with their number of
// confirmations. Esplora doesn't report balances without a tx, hence the
// returned facts never have a ConfirmedBalance and the required depth is not
// needed.
func (e *esplora) ObserveAddress(
	ctx context.Context, address string, _ int,
) (*domain.ChainFacts, error) {
	observedAt := e.now()

	tip, err := e.getBlockHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrChainDataUnavailable, err)
	}
	txs, err := e.getTransactionsForAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrChainDataUnavailable, err)
	}

	observed := make([]domain.ObservedTransaction, 0, len(txs))
	for _, tx := range txs {
		amount := tx.receivedBy(address, e.assetID)
		if amount == 0 {
			continue
		}

		firstSeen := observedAt
		if tx.Status.Confirmed && tx.Status.BlockTime > 0 {
			firstSeen = time.Unix(tx.Status.BlockTime, 0)
		}
		observed = append(observed, domain.ObservedTransaction{
			Hash:          tx.TxID,
			Amount:        domain.NewCryptoAmount(int64(amount), e.asset.Precision),
			Confirmations: tx.confirmations(tip),
			FirstSeen:     firstSeen,
		})
	}

	return &domain.ChainFacts{
		Transactions: observed,
		ObservedAt:   observedAt,
	}, nil
}

// get makes a rate limited GET request behind the circuit breaker.
func (e *esplora) get(ctx context.Context, path string) (string, error) {
	e.rateLimiter.Take()

	resp, err := e.cb.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s%s", e.apiURL, path)
		status, resp, err := e.client.NewHTTPRequest(ctx, http.MethodGet, url, "", nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("GET %s: status %d: %s", path, status, resp)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	return resp.(string), nil
}
