package ethnode

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"go.uber.org/ratelimit"
)

const (
	defaultLookback  = 1000
	defaultRateLimit = 10
)

// chainReader is the subset of ethclient.Client used by the service.
type chainReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type service struct {
	client      chainReader
	lookback    uint64
	rateLimiter ratelimit.Limiter
	now         func() time.Time
}

// Opts defines the parameters needed for creating an Ethereum ChainObserver
// with NewService.
type Opts struct {
	RPCURL string
	// Lookback is the max number of blocks to scan backwards to find when a
	// balance was funded.
	Lookback  uint64
	RateLimit int
}

// NewService returns a ChainObserver backed by an Ethereum JSON-RPC node.
//
// Plain nodes can't list the transactions of an address, so the observer
// reports the balance confirmed at the depth required by the caller, without
// tx hash, together with the time the payment reached that depth.
func NewService(ctx context.Context, opts Opts) (ports.ChainObserver, error) {
	client, err := ethclient.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum node: %w", err)
	}
	return newService(client, opts), nil
}

func newService(client chainReader, opts Opts) *service {
	lookback := opts.Lookback
	if lookback == 0 {
		lookback = defaultLookback
	}
	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	return &service{
		client:      client,
		lookback:    lookback,
		rateLimiter: ratelimit.New(rateLimit),
		now:         time.Now,
	}
}

// BalanceOnly always returns true, the node can't list txs per address.
func (s *service) BalanceOnly() bool {
	return true
}

// ObserveAddress returns the balance of address at depth
// requiredConfirmations, values lower than 1 being treated as 1.
func (s *service) ObserveAddress(
	ctx context.Context, address string, requiredConfirmations int,
) (*domain.ChainFacts, error) {
	if !common.IsHexAddress(address) {
		return nil, domain.ErrInvalidAddress
	}
	account := common.HexToAddress(address)
	facts := &domain.ChainFacts{ObservedAt: s.now()}

	head, err := s.headNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrChainDataUnavailable, err)
	}
	depth := uint64(1)
	if requiredConfirmations > 1 {
		depth = uint64(requiredConfirmations)
	}
	if head+1 < depth {
		return facts, nil
	}
	target := head + 1 - depth

	balance, err := s.balanceAt(ctx, account, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrChainDataUnavailable, err)
	}
	if balance.Sign() <= 0 {
		return facts, nil
	}

	confirmedAt, err := s.confirmedAt(ctx, account, balance, target, depth)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrChainDataUnavailable, err)
	}

	facts.ConfirmedBalance = &domain.ConfirmedBalance{
		Amount:      domain.NewCryptoAmountFromBigInt(balance, domain.ETH.Precision),
		ConfirmedAt: confirmedAt,
	}
	return facts, nil
}

// confirmedAt returns the time of the block where the balance of account
// reached the given depth, that is depth-1 blocks after the earliest block
// within the lookback where the balance was already at least the given one.
// It returns nil if the balance was reached before the lookback.
func (s *service) confirmedAt(
	ctx context.Context, account common.Address, balance *big.Int,
	target, depth uint64,
) (*time.Time, error) {
	low := uint64(0)
	if target > s.lookback {
		low = target - s.lookback
	}

	lowBalance, err := s.balanceAt(ctx, account, low)
	if err != nil {
		return nil, err
	}
	if lowBalance.Cmp(balance) >= 0 {
		log.Debugf(
			"balance of %s reached more than %d blocks ago", account.Hex(), s.lookback,
		)
		return nil, nil
	}

	// Invariant: balance(low) < balance <= balance(high).
	high := target
	for high-low > 1 {
		mid := low + (high-low)/2
		midBalance, err := s.balanceAt(ctx, account, mid)
		if err != nil {
			return nil, err
		}
		if midBalance.Cmp(balance) >= 0 {
			high = mid
		} else {
			low = mid
		}
	}

	// high <= target, so high+depth-1 is at most the chain head.
	header, err := s.header(ctx, high+depth-1)
	if err != nil {
		return nil, err
	}
	t := time.Unix(int64(header.Time), 0)
	return &t, nil
}

func (s *service) headNumber(ctx context.Context) (uint64, error) {
	s.rateLimiter.Take()
	header, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

func (s *service) header(ctx context.Context, number uint64) (*types.Header, error) {
	s.rateLimiter.Take()
	return s.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
}

func (s *service) balanceAt(
	ctx context.Context, account common.Address, number uint64,
) (*big.Int, error) {
	s.rateLimiter.Take()
	return s.client.BalanceAt(ctx, account, new(big.Int).SetUint64(number))
}
