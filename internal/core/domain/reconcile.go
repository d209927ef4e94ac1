package domain

import (
	"fmt"
	"sort"
	"time"
)

// EvaluationInput holds everything a reconciliation depends on. EvaluatedAt
// is part of the input so that evaluating twice the same input always gives
// the same outcome.
type EvaluationInput struct {
	Address            string
	Expected           CryptoAmount
	Policy             ConfirmationPolicy
	Transactions       []ObservedTransaction
	PreexistingBalance *ConfirmedBalance
	EvaluatedAt        time.Time
}

func (in EvaluationInput) validate() error {
	if in.Address == "" {
		return ErrInvalidAddress
	}
	if !in.Expected.IsPositive() {
		return ErrInvalidAmount
	}
	if err := in.Policy.Validate(); err != nil {
		return err
	}
	precision := in.Expected.Precision()
	for _, tx := range in.Transactions {
		if err := tx.validate(precision); err != nil {
			return err
		}
	}
	return in.PreexistingBalance.validate(precision)
}

// ReconciliationEngine classifies chain facts of an address against an
// expected amount. It holds no state, so the same instance can be shared by
// any number of goroutines.
type ReconciliationEngine struct{}

// NewReconciliationEngine ...
func NewReconciliationEngine() ReconciliationEngine {
	return ReconciliationEngine{}
}

// Evaluate implements ports.ReconciliationEngine.
func (ReconciliationEngine) Evaluate(in EvaluationInput) (PaymentOutcome, error) {
	return Reconcile(in)
}

// Reconcile decides whether the address has been paid the expected amount.
func Reconcile(in EvaluationInput) (PaymentOutcome, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	confirmedTxs, pendingTxs := splitByDepth(
		in.Transactions, int64(in.Policy.RequiredConfirmations),
	)
	zero := NewCryptoAmount(0, in.Expected.Precision())
	confirmedReceived, err := sum(zero, confirmedTxs)
	if err != nil {
		return nil, err
	}
	pendingReceived, err := sum(zero, pendingTxs)
	if err != nil {
		return nil, err
	}

	if confirmedReceived.Cmp(in.Expected) >= 0 {
		return confirmedOutcome(confirmedTxs, confirmedReceived, in.Expected), nil
	}

	if confirmedReceived.IsPositive() {
		remaining, _ := in.Expected.Sub(confirmedReceived)
		return Underpaid{Remaining: remaining, Received: confirmedReceived}, nil
	}

	if pendingReceived.IsPositive() {
		return Unconfirmed{
			Amount: pendingReceived,
			TxHash: bestPendingTx(pendingTxs).Hash,
		}, nil
	}

	if acceptBalanceWithoutHash(in) {
		return Confirmed{Amount: in.PreexistingBalance.Amount}, nil
	}

	return NoHash{}, nil
}

// splitByDepth returns the txs with at least minConfirmations and the others.
// Zero-value txs are ignored since they carry no evidence of payment.
func splitByDepth(
	txs []ObservedTransaction, minConfirmations int64,
) (confirmed, pending []ObservedTransaction) {
	for _, tx := range txs {
		if tx.Amount.IsZero() {
			continue
		}
		if tx.Confirmations >= minConfirmations {
			confirmed = append(confirmed, tx)
		} else {
			pending = append(pending, tx)
		}
	}
	return
}

func sum(zero CryptoAmount, txs []ObservedTransaction) (CryptoAmount, error) {
	total := zero
	for _, tx := range txs {
		var err error
		if total, err = total.Add(tx.Amount); err != nil {
			return CryptoAmount{}, fmt.Errorf("%w: %s", ErrInvalidChainFact, err)
		}
	}
	return total, nil
}

func confirmedOutcome(
	txs []ObservedTransaction, received, expected CryptoAmount,
) Confirmed {
	ordered := make([]ObservedTransaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].FirstSeen.Equal(ordered[j].FirstSeen) {
			return ordered[i].FirstSeen.Before(ordered[j].FirstSeen)
		}
		return ordered[i].Hash < ordered[j].Hash
	})

	hashes := make([]string, 0, len(ordered))
	trigger := ""
	runningTotal := NewCryptoAmount(0, expected.Precision())
	for _, tx := range ordered {
		hashes = append(hashes, tx.Hash)
		runningTotal, _ = runningTotal.Add(tx.Amount)
		if trigger == "" && runningTotal.Cmp(expected) >= 0 {
			trigger = tx.Hash
		}
	}

	return Confirmed{Amount: received, TxHash: trigger, TxHashes: hashes}
}

// bestPendingTx returns the tx with most confirmations, the earliest seen in
// case of tie, the smallest hash as last resort.
func bestPendingTx(txs []ObservedTransaction) ObservedTransaction {
	best := txs[0]
	for _, tx := range txs[1:] {
		switch {
		case tx.Confirmations > best.Confirmations:
			best = tx
		case tx.Confirmations < best.Confirmations:
		case tx.FirstSeen.Before(best.FirstSeen):
			best = tx
		case tx.FirstSeen.Equal(best.FirstSeen) && tx.Hash < best.Hash:
			best = tx
		}
	}
	return best
}

func acceptBalanceWithoutHash(in EvaluationInput) bool {
	balance := in.PreexistingBalance
	if balance == nil || balance.TxHash != "" || balance.ConfirmedAt == nil {
		return false
	}
	if in.Policy.IsStrict() {
		return false
	}
	if balance.Amount.Cmp(in.Expected) < 0 {
		return false
	}
	return in.EvaluatedAt.Sub(*balance.ConfirmedAt) <= in.Policy.acceptWindow()
}
