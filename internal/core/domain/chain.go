package domain

import (
	"fmt"
	"time"
)

// ObservedTransaction is a transaction paying some value to a watched address.
type ObservedTransaction struct {
	Hash          string       `json:"hash"`
	Amount        CryptoAmount `json:"amount"`
	Confirmations int64        `json:"confirmations"`
	FirstSeen     time.Time    `json:"first_seen"`
}

func (t ObservedTransaction) validate(precision int32) error {
	if t.Hash == "" {
		return fmt.Errorf("%w: transaction without hash", ErrInvalidChainFact)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf(
			"%w: tx %s has negative amount", ErrInvalidChainFact, t.Hash,
		)
	}
	if t.Amount.Precision() != precision {
		return fmt.Errorf(
			"%w: tx %s amount has precision %d, expected %d",
			ErrInvalidChainFact, t.Hash, t.Amount.Precision(), precision,
		)
	}
	if t.Confirmations < 0 {
		return fmt.Errorf(
			"%w: tx %s has negative confirmations", ErrInvalidChainFact, t.Hash,
		)
	}
	return nil
}

// ConfirmedBalance is a balance of an address that the data source reports as
// confirmed, possibly without the hash of the transaction that funded it.
type ConfirmedBalance struct {
	Amount      CryptoAmount `json:"amount"`
	TxHash      string       `json:"tx_hash,omitempty"`
	ConfirmedAt *time.Time   `json:"confirmed_at,omitempty"`
}

func (b *ConfirmedBalance) validate(precision int32) error {
	if b == nil {
		return nil
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("%w: negative confirmed balance", ErrInvalidChainFact)
	}
	if b.Amount.Precision() != precision {
		return fmt.Errorf(
			"%w: confirmed balance has precision %d, expected %d",
			ErrInvalidChainFact, b.Amount.Precision(), precision,
		)
	}
	return nil
}

// ChainFacts is the snapshot a chain data source returns for an address.
type ChainFacts struct {
	Transactions     []ObservedTransaction
	ConfirmedBalance *ConfirmedBalance
	ObservedAt       time.Time
}
