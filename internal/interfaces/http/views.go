package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/merchantd/internal/core/application"
	"github.com/tdex-network/merchantd/internal/core/domain"
)

type orderView struct {
	ID              string                    `json:"id"`
	Asset           string                    `json:"asset"`
	AddressType     string                    `json:"address_type"`
	DerivationIndex uint32                    `json:"derivation_index"`
	Address         string                    `json:"address"`
	PaymentURI      string                    `json:"payment_uri"`
	Price           domain.FiatAmount         `json:"price"`
	Rate            domain.ExchangeRate       `json:"rate"`
	ExpectedAmount  string                    `json:"expected_amount"`
	Policy          domain.ConfirmationPolicy `json:"policy"`
	Status          string                    `json:"status"`
	Outcome         *domain.OutcomeView       `json:"outcome,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
	ExpiresAt       *time.Time                `json:"expires_at,omitempty"`
}

func newOrderView(o *domain.Order) orderView {
	var expiresAt *time.Time
	if !o.ExpiresAt.IsZero() {
		t := o.ExpiresAt
		expiresAt = &t
	}
	return orderView{
		ID:              o.ID,
		Asset:           o.Asset,
		AddressType:     string(o.AddressType),
		DerivationIndex: o.DerivationIndex,
		Address:         o.Address,
		PaymentURI:      o.PaymentURI,
		Price:           o.Price,
		Rate:            o.Rate,
		ExpectedAmount:  o.ExpectedAmount.String(),
		Policy:          o.Policy,
		Status:          string(o.Status),
		Outcome:         o.Outcome,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ExpiresAt:       expiresAt,
	}
}

type conversionView struct {
	Asset  string              `json:"asset"`
	Crypto string              `json:"crypto_amount"`
	Fiat   domain.FiatAmount   `json:"fiat_amount"`
	Rate   domain.ExchangeRate `json:"rate"`
}

func newConversionView(c *application.Conversion) conversionView {
	return conversionView{c.Asset.Ticker, c.Crypto.String(), c.Fiat, c.Rate}
}

type assetView struct {
	Ticker    string `json:"ticker"`
	Name      string `json:"name"`
	Precision int32  `json:"precision"`
}

type webhookView struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

var (
	badRequestErrors = []error{
		application.ErrInvalidRequest,
		domain.ErrUnsupportedAddressType,
		domain.ErrInvalidDerivationPath,
		domain.ErrInvalidMasterPublicKey,
		domain.ErrAmountTooSmall,
		domain.ErrStaleOrMissingRate,
		domain.ErrInvalidAmount,
		domain.ErrInvalidPolicy,
		domain.ErrInvalidAddress,
		domain.ErrUnknownAsset,
		domain.ErrPrecisionMismatch,
	}
	notFoundErrors = []error{
		domain.ErrOrderNotFound,
		domain.ErrWebhookNotFound,
	}
)

func statusCodeForError(err error) int {
	if domain.IsRetryable(err) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, application.ErrPubSubNotConfigured) {
		return http.StatusNotImplemented
	}
	for _, e := range notFoundErrors {
		if errors.Is(err, e) {
			return http.StatusNotFound
		}
	}
	for _, e := range badRequestErrors {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusCodeForError(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("internal error")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}
