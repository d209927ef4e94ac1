package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderExpired   OrderStatus = "expired"
)

// OrderStatus is the lifecycle state of an order, not to be confused with the
// status of the last reconciliation outcome.
type OrderStatus string

// Order is a request of payment of an expected amount to a dedicated address.
type Order struct {
	ID              string
	Asset           string
	AddressType     AddressType
	DerivationIndex uint32
	Address         string
	PaymentURI      string
	Price           FiatAmount
	Rate            ExchangeRate
	ExpectedAmount  CryptoAmount
	Policy          ConfirmationPolicy
	Status          OrderStatus
	Outcome         *OutcomeView
	CreatedAt       time.Time
	UpdatedAt       time.Time
	// ExpiresAt is zero for orders that never expire.
	ExpiresAt time.Time
}

// NewOrderArgs holds what's needed to open a new order.
type NewOrderArgs struct {
	Asset           string
	AddressType     AddressType
	DerivationIndex uint32
	Address         string
	PaymentURI      string
	Price           FiatAmount
	Rate            ExchangeRate
	ExpectedAmount  CryptoAmount
	Policy          ConfirmationPolicy
	TTL             time.Duration
	Now             time.Time
}

// NewOrder returns a pending order with a random id.
func NewOrder(args NewOrderArgs) (*Order, error) {
	if args.Address == "" {
		return nil, ErrInvalidAddress
	}
	if !args.ExpectedAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := args.Policy.Validate(); err != nil {
		return nil, err
	}

	var expiresAt time.Time
	if args.TTL > 0 {
		expiresAt = args.Now.Add(args.TTL)
	}

	return &Order{
		ID:              uuid.New().String(),
		Asset:           args.Asset,
		AddressType:     args.AddressType,
		DerivationIndex: args.DerivationIndex,
		Address:         args.Address,
		PaymentURI:      args.PaymentURI,
		Price:           args.Price,
		Rate:            args.Rate,
		ExpectedAmount:  args.ExpectedAmount,
		Policy:          args.Policy,
		Status:          OrderPending,
		CreatedAt:       args.Now,
		UpdatedAt:       args.Now,
		ExpiresAt:       expiresAt,
	}, nil
}

// IsTerminal returns whether the order must not be evaluated anymore.
func (o *Order) IsTerminal() bool {
	return o.Status != OrderPending
}

// IsExpired returns whether the order TTL elapsed at time now.
func (o *Order) IsExpired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}

// LastOutcome returns the last stored reconciliation outcome, if any.
func (o *Order) LastOutcome() (PaymentOutcome, error) {
	if o.Outcome == nil {
		return nil, nil
	}
	return o.Outcome.Outcome()
}

// ApplyOutcome records the given outcome and returns whether anything changed.
// A confirmed order is never downgraded.
func (o *Order) ApplyOutcome(outcome PaymentOutcome, now time.Time) bool {
	if o.IsTerminal() {
		return false
	}

	view := NewOutcomeView(outcome)
	if o.Outcome != nil && outcomeViewEqual(*o.Outcome, view) {
		return false
	}

	o.Outcome = &view
	if IsTerminal(outcome) {
		o.Status = OrderConfirmed
	}
	o.UpdatedAt = now
	return true
}

// Expire marks the order as expired unless already terminal.
func (o *Order) Expire(now time.Time) bool {
	if o.IsTerminal() {
		return false
	}
	o.Status = OrderExpired
	o.UpdatedAt = now
	return true
}

func outcomeViewEqual(a, b OutcomeView) bool {
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return string(ja) == string(jb)
}

// OrderFilter narrows down the orders returned by ListOrders. Empty fields
// match everything.
type OrderFilter struct {
	Status OrderStatus
	Asset  string
}

func (f OrderFilter) Match(o Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Asset != "" && o.Asset != f.Asset {
		return false
	}
	return true
}
