package ethnode

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
)

const testAddress = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"

// fakeChain has one block every 12 seconds starting at genesisTime, and the
// test address balance per block given by fundings.
type fakeChain struct {
	head        uint64
	genesisTime uint64
	fundings    map[uint64]int64
	err         error
}

func (c *fakeChain) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	if c.err != nil {
		return nil, c.err
	}
	n := c.head
	if number != nil {
		n = number.Uint64()
	}
	return &types.Header{
		Number: new(big.Int).SetUint64(n),
		Time:   c.genesisTime + n*12,
	}, nil
}

func (c *fakeChain) BalanceAt(_ context.Context, _ common.Address, number *big.Int) (*big.Int, error) {
	if c.err != nil {
		return nil, c.err
	}
	balance := int64(0)
	for block, amount := range c.fundings {
		if block <= number.Uint64() {
			balance += amount
		}
	}
	return big.NewInt(balance), nil
}

func TestObserveAddress(t *testing.T) {
	t.Parallel()

	genesis := uint64(1700000000)
	tests := []struct {
		name                string
		chain               *fakeChain
		confirmations       int
		expectedBalance     *int64
		expectedConfirmedAt *time.Time
	}{
		{
			name:            "no_funds",
			chain:           &fakeChain{head: 500, genesisTime: genesis},
			confirmations:   1,
			expectedBalance: nil,
		},
		{
			name: "funded_within_lookback",
			chain: &fakeChain{
				head: 500, genesisTime: genesis, fundings: map[uint64]int64{420: 100},
			},
			confirmations:       3,
			expectedBalance:     int64Ptr(100),
			expectedConfirmedAt: timePtr(genesis + 422*12),
		},
		{
			name: "funded_in_two_steps",
			chain: &fakeChain{
				head: 500, genesisTime: genesis, fundings: map[uint64]int64{300: 60, 450: 40},
			},
			confirmations:       1,
			expectedBalance:     int64Ptr(100),
			expectedConfirmedAt: timePtr(genesis + 450*12),
		},
		{
			name: "confirmed_at_required_depth",
			chain: &fakeChain{
				head: 500, genesisTime: genesis, fundings: map[uint64]int64{100: 100},
			},
			confirmations:       200,
			expectedBalance:     int64Ptr(100),
			expectedConfirmedAt: timePtr(genesis + 299*12),
		},
		{
			name: "not_deep_enough",
			chain: &fakeChain{
				head: 500, genesisTime: genesis, fundings: map[uint64]int64{499: 100},
			},
			confirmations:   3,
			expectedBalance: nil,
		},
		{
			name: "funded_before_lookback",
			chain: &fakeChain{
				head: 5000, genesisTime: genesis, fundings: map[uint64]int64{10: 100},
			},
			confirmations:   1,
			expectedBalance: int64Ptr(100),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := newService(tt.chain, Opts{Lookback: 1000, RateLimit: 10000})
			facts, err := svc.ObserveAddress(
				context.Background(), testAddress, tt.confirmations,
			)
			require.NoError(t, err)
			require.Empty(t, facts.Transactions)

			if tt.expectedBalance == nil {
				require.Nil(t, facts.ConfirmedBalance)
				return
			}
			require.NotNil(t, facts.ConfirmedBalance)
			require.Empty(t, facts.ConfirmedBalance.TxHash)
			require.Equal(t, *tt.expectedBalance, facts.ConfirmedBalance.Amount.Units().Int64())
			require.Equal(t, int32(18), facts.ConfirmedBalance.Amount.Precision())
			if tt.expectedConfirmedAt == nil {
				require.Nil(t, facts.ConfirmedBalance.ConfirmedAt)
				return
			}
			require.NotNil(t, facts.ConfirmedBalance.ConfirmedAt)
			require.True(t, tt.expectedConfirmedAt.Equal(*facts.ConfirmedBalance.ConfirmedAt))
		})
	}
}

func TestObserveAddressWithOrderDepth(t *testing.T) {
	t.Parallel()

	now := time.Now()
	head := uint64(100)
	chain := &fakeChain{
		head:        head,
		genesisTime: uint64(now.Unix()) - head*12,
		fundings:    map[uint64]int64{100: 1000},
	}
	svc := newService(chain, Opts{Lookback: 1000, RateLimit: 10000})
	policy := domain.ConfirmationPolicy{
		RequiredConfirmations:          6,
		AcceptWithoutHashWindowMinutes: 20,
	}
	expected := domain.NewCryptoAmount(1000, domain.ETH.Precision)

	facts, err := svc.ObserveAddress(
		context.Background(), testAddress, policy.RequiredConfirmations,
	)
	require.NoError(t, err)
	require.Nil(t, facts.ConfirmedBalance)

	outcome, err := domain.Reconcile(domain.EvaluationInput{
		Address:            testAddress,
		Expected:           expected,
		Policy:             policy,
		PreexistingBalance: facts.ConfirmedBalance,
		EvaluatedAt:        now,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusNoHash, outcome.Status())

	chain.head = 105
	facts, err = svc.ObserveAddress(
		context.Background(), testAddress, policy.RequiredConfirmations,
	)
	require.NoError(t, err)
	require.NotNil(t, facts.ConfirmedBalance)

	outcome, err = domain.Reconcile(domain.EvaluationInput{
		Address:            testAddress,
		Expected:           expected,
		Policy:             policy,
		PreexistingBalance: facts.ConfirmedBalance,
		EvaluatedAt:        now.Add(time.Minute),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, outcome.Status())
}

func TestBalanceOnly(t *testing.T) {
	t.Parallel()

	svc := newService(&fakeChain{}, Opts{})
	require.True(t, ports.IsBalanceOnly(svc))
}

func TestFailingObserveAddress(t *testing.T) {
	t.Parallel()

	svc := newService(&fakeChain{err: errors.New("connection refused")}, Opts{})

	_, err := svc.ObserveAddress(context.Background(), testAddress, 1)
	require.ErrorIs(t, err, domain.ErrChainDataUnavailable)

	_, err = svc.ObserveAddress(context.Background(), "not-an-address", 1)
	require.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func timePtr(unix uint64) *time.Time {
	t := time.Unix(int64(unix), 0)
	return &t
}
