package domain

import (
	"encoding/json"
	"fmt"
)

const (
	StatusUnconfirmed OutcomeStatus = "unconfirmed"
	StatusConfirmed   OutcomeStatus = "confirmed"
	StatusUnderpaid   OutcomeStatus = "underpaid"
	StatusNoHash      OutcomeStatus = "no-hash"
)

// OutcomeStatus is the tag of a PaymentOutcome.
type OutcomeStatus string

// PaymentOutcome is the result of a reconciliation. It is one of
// Unconfirmed, Confirmed, Underpaid or NoHash; the set is closed.
type PaymentOutcome interface {
	Status() OutcomeStatus
	paymentOutcome()
}

// Unconfirmed means some value was seen but not yet at the required depth.
type Unconfirmed struct {
	// Amount is the total value of the pending transactions.
	Amount CryptoAmount
	// TxHash is the pending tx with most confirmations.
	TxHash string
}

// Confirmed means the expected amount was received at the required depth.
// TxHash is empty when the payment was accepted from a confirmed balance
// without tx hash.
type Confirmed struct {
	Amount CryptoAmount
	// TxHash is the transaction that made the received amount reach the
	// expected one.
	TxHash string
	// TxHashes lists all the confirmed transactions that were summed, ordered
	// by first seen.
	TxHashes []string
}

// Underpaid means some value was received at the required depth but less than
// expected.
type Underpaid struct {
	Remaining CryptoAmount
	Received  CryptoAmount
}

// NoHash means no evidence of payment was found.
type NoHash struct{}

func (Unconfirmed) Status() OutcomeStatus { return StatusUnconfirmed }
func (Confirmed) Status() OutcomeStatus   { return StatusConfirmed }
func (Underpaid) Status() OutcomeStatus   { return StatusUnderpaid }
func (NoHash) Status() OutcomeStatus      { return StatusNoHash }

func (Unconfirmed) paymentOutcome() {}
func (Confirmed) paymentOutcome()   {}
func (Underpaid) paymentOutcome()   {}
func (NoHash) paymentOutcome()      {}

// IsTerminal returns whether no further evaluation should be made once the
// given outcome is observed.
func IsTerminal(o PaymentOutcome) bool {
	return o != nil && o.Status() == StatusConfirmed
}

// OutcomeEqual returns whether two outcomes carry the same status and payload.
func OutcomeEqual(a, b PaymentOutcome) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ja, errA := MarshalOutcome(a)
	jb, errB := MarshalOutcome(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// OutcomeView is the serialized form of a PaymentOutcome.
type OutcomeView struct {
	Status            OutcomeStatus `json:"status"`
	Amount            string        `json:"amount,omitempty"`
	Remaining         string        `json:"remaining,omitempty"`
	Received          string        `json:"received,omitempty"`
	TransactionHash   string        `json:"transactionHash,omitempty"`
	TransactionHashes []string      `json:"transactionHashes,omitempty"`
	Precision         int32         `json:"precision,omitempty"`
}

// NewOutcomeView returns the serializable view of the outcome.
func NewOutcomeView(o PaymentOutcome) OutcomeView {
	switch v := o.(type) {
	case Unconfirmed:
		return OutcomeView{
			Status:          v.Status(),
			Amount:          v.Amount.String(),
			TransactionHash: v.TxHash,
			Precision:       v.Amount.Precision(),
		}
	case Confirmed:
		view := OutcomeView{
			Status:          v.Status(),
			Amount:          v.Amount.String(),
			TransactionHash: v.TxHash,
			Precision:       v.Amount.Precision(),
		}
		if len(v.TxHashes) > 1 {
			view.TransactionHashes = v.TxHashes
		}
		return view
	case Underpaid:
		return OutcomeView{
			Status:    v.Status(),
			Remaining: v.Remaining.String(),
			Received:  v.Received.String(),
			Precision: v.Remaining.Precision(),
		}
	default:
		return OutcomeView{Status: StatusNoHash}
	}
}

// Outcome converts the view back into a PaymentOutcome.
func (v OutcomeView) Outcome() (PaymentOutcome, error) {
	switch v.Status {
	case StatusUnconfirmed:
		amount, err := ParseCryptoAmount(v.Amount, v.Precision)
		if err != nil {
			return nil, err
		}
		return Unconfirmed{Amount: amount, TxHash: v.TransactionHash}, nil
	case StatusConfirmed:
		amount, err := ParseCryptoAmount(v.Amount, v.Precision)
		if err != nil {
			return nil, err
		}
		hashes := v.TransactionHashes
		if len(hashes) == 0 && v.TransactionHash != "" {
			hashes = []string{v.TransactionHash}
		}
		return Confirmed{
			Amount: amount, TxHash: v.TransactionHash, TxHashes: hashes,
		}, nil
	case StatusUnderpaid:
		remaining, err := ParseCryptoAmount(v.Remaining, v.Precision)
		if err != nil {
			return nil, err
		}
		received := NewCryptoAmount(0, v.Precision)
		if v.Received != "" {
			if received, err = ParseCryptoAmount(v.Received, v.Precision); err != nil {
				return nil, err
			}
		}
		return Underpaid{Remaining: remaining, Received: received}, nil
	case StatusNoHash:
		return NoHash{}, nil
	default:
		return nil, fmt.Errorf("unknown outcome status %q", v.Status)
	}
}

// MarshalOutcome serializes the outcome in its tagged JSON form.
func MarshalOutcome(o PaymentOutcome) ([]byte, error) {
	if o == nil {
		return nil, fmt.Errorf("nil outcome")
	}
	return json.Marshal(NewOutcomeView(o))
}

// UnmarshalOutcome restores an outcome from its tagged JSON form.
func UnmarshalOutcome(buf []byte) (PaymentOutcome, error) {
	var view OutcomeView
	if err := json.Unmarshal(buf, &view); err != nil {
		return nil, err
	}
	return view.Outcome()
}
