package domain

import "time"

// ConfirmationPolicy tells the reconciliation how deep transactions must be
// and whether an already confirmed balance without tx hash can be accepted.
type ConfirmationPolicy struct {
	RequiredConfirmations int `json:"required_confirmations"`
	// AcceptWithoutHashWindowMinutes is the max age of a confirmed balance
	// without tx hash to be accepted as payment. 0 disables the acceptance.
	AcceptWithoutHashWindowMinutes int `json:"accept_without_hash_window_minutes"`
}

// DefaultPolicy returns the non-strict policy: 1 confirmation, balances
// without hash accepted if confirmed within the last 20 minutes.
func DefaultPolicy() ConfirmationPolicy {
	return ConfirmationPolicy{
		RequiredConfirmations:          DefaultRequiredConfirmations,
		AcceptWithoutHashWindowMinutes: DefaultAcceptWithoutHashWindow,
	}
}

// StrictPolicy returns a policy that never accepts balances without hash.
func StrictPolicy(requiredConfirmations int) ConfirmationPolicy {
	return ConfirmationPolicy{RequiredConfirmations: requiredConfirmations}
}

func (p ConfirmationPolicy) Validate() error {
	if p.RequiredConfirmations < 0 || p.AcceptWithoutHashWindowMinutes < 0 {
		return ErrInvalidPolicy
	}
	return nil
}

func (p ConfirmationPolicy) IsStrict() bool {
	return p.AcceptWithoutHashWindowMinutes == 0
}

func (p ConfirmationPolicy) acceptWindow() time.Duration {
	return time.Duration(p.AcceptWithoutHashWindowMinutes) * time.Minute
}
