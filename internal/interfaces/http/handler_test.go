package httpinterface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/merchantd/internal/core/application"
	"github.com/tdex-network/merchantd/internal/core/domain"
)

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) Start() error { return nil }
func (m *mockPaymentService) Stop()        {}

func (m *mockPaymentService) NewOrder(
	ctx context.Context, args application.NewOrderArgs,
) (*domain.Order, error) {
	a := m.Called(args)
	return orderOrNil(a.Get(0)), a.Error(1)
}

func (m *mockPaymentService) GetOrder(
	ctx context.Context, id string,
) (*domain.Order, error) {
	a := m.Called(id)
	return orderOrNil(a.Get(0)), a.Error(1)
}

func (m *mockPaymentService) ListOrders(
	ctx context.Context, filter domain.OrderFilter, page domain.Page,
) ([]domain.Order, error) {
	a := m.Called(filter, page)
	return a.Get(0).([]domain.Order), a.Error(1)
}

func (m *mockPaymentService) CheckOrder(
	ctx context.Context, id string,
) (*domain.Order, error) {
	a := m.Called(id)
	return orderOrNil(a.Get(0)), a.Error(1)
}

func (m *mockPaymentService) ConvertToFiat(
	ctx context.Context, asset, amount, currency string,
) (*application.Conversion, error) {
	a := m.Called(asset, amount, currency)
	return conversionOrNil(a.Get(0)), a.Error(1)
}

func (m *mockPaymentService) ConvertToCrypto(
	ctx context.Context, asset, amount, currency string,
) (*application.Conversion, error) {
	a := m.Called(asset, amount, currency)
	return conversionOrNil(a.Get(0)), a.Error(1)
}

func (m *mockPaymentService) ListAssets() []domain.Asset {
	return []domain.Asset{domain.BTC, domain.ETH}
}

func (m *mockPaymentService) AddWebhook(
	ctx context.Context, topic, endpoint, secret string,
) (string, error) {
	a := m.Called(topic, endpoint, secret)
	return a.String(0), a.Error(1)
}

func (m *mockPaymentService) RemoveWebhook(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *mockPaymentService) ListWebhooks(
	ctx context.Context,
) ([]domain.Webhook, error) {
	a := m.Called()
	return a.Get(0).([]domain.Webhook), a.Error(1)
}

func orderOrNil(v interface{}) *domain.Order {
	if v == nil {
		return nil
	}
	return v.(*domain.Order)
}

func conversionOrNil(v interface{}) *application.Conversion {
	if v == nil {
		return nil
	}
	return v.(*application.Conversion)
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:             "order1",
		Asset:          "BTC",
		AddressType:    domain.AddressTypeP2WPKH,
		Address:        "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
		PaymentURI:     "bitcoin:bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu?amount=0.002",
		ExpectedAmount: domain.NewCryptoAmount(200000, 8),
		Policy:         domain.DefaultPolicy(),
		Status:         domain.OrderPending,
		CreatedAt:      time.Unix(1700000000, 0),
		UpdatedAt:      time.Unix(1700000000, 0),
	}
}

func doRequest(
	t *testing.T, svc application.PaymentService, method, target, body string,
) (int, map[string]interface{}) {
	t.Helper()

	router := newRouter(svc, prometheus.NewRegistry())
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestNewOrderHandler(t *testing.T) {
	t.Parallel()

	svc := &mockPaymentService{}
	svc.On("NewOrder", mock.MatchedBy(func(args application.NewOrderArgs) bool {
		return args.Asset == "BTC" && args.Amount == "100" &&
			args.RequiredConfirmations != nil && *args.RequiredConfirmations == 3
	})).Return(testOrder(), nil)

	status, resp := doRequest(
		t, svc, http.MethodPost, "/v1/orders",
		`{"asset":"BTC","amount":"100","currency":"USD","required_confirmations":3}`,
	)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "order1", resp["id"])
	require.Equal(t, "0.00200000", resp["expected_amount"])
	require.Equal(t, "pending", resp["status"])
	require.NotContains(t, resp, "expires_at")
}

func TestHandlerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setup          func(svc *mockPaymentService)
		method         string
		target         string
		body           string
		expectedStatus int
	}{
		{
			name:           "malformed_body",
			setup:          func(*mockPaymentService) {},
			method:         http.MethodPost,
			target:         "/v1/orders",
			body:           `{"asset":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid_request",
			setup: func(svc *mockPaymentService) {
				svc.On("NewOrder", mock.Anything).Return(
					nil, fmt.Errorf("%w: amount", application.ErrInvalidRequest),
				)
			},
			method:         http.MethodPost,
			target:         "/v1/orders",
			body:           `{"asset":"BTC"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unsupported_address_type",
			setup: func(svc *mockPaymentService) {
				svc.On("NewOrder", mock.Anything).Return(
					nil, domain.ErrUnsupportedAddressType,
				)
			},
			method:         http.MethodPost,
			target:         "/v1/orders",
			body:           `{"asset":"BTC","amount":"1","currency":"USD","address_type":"eip55"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "order_not_found",
			setup: func(svc *mockPaymentService) {
				svc.On("GetOrder", "missing").Return(nil, domain.ErrOrderNotFound)
			},
			method:         http.MethodGet,
			target:         "/v1/orders/missing",
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "chain_data_unavailable",
			setup: func(svc *mockPaymentService) {
				svc.On("CheckOrder", "order1").Return(
					nil, fmt.Errorf("%w: timeout", domain.ErrChainDataUnavailable),
				)
			},
			method:         http.MethodPost,
			target:         "/v1/orders/order1/check",
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "internal_error",
			setup: func(svc *mockPaymentService) {
				svc.On("ListWebhooks").Return([]domain.Webhook(nil), fmt.Errorf("db closed"))
			},
			method:         http.MethodGet,
			target:         "/v1/webhooks",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "invalid_direction",
			setup:          func(*mockPaymentService) {},
			method:         http.MethodGet,
			target:         "/v1/convert?asset=BTC&amount=1&currency=USD&direction=up",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_page",
			setup:          func(*mockPaymentService) {},
			method:         http.MethodGet,
			target:         "/v1/orders?page=first",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockPaymentService{}
			tt.setup(svc)

			status, resp := doRequest(t, svc, tt.method, tt.target, tt.body)
			require.Equal(t, tt.expectedStatus, status)
			require.NotEmpty(t, resp["error"])
		})
	}
}

func TestListOrdersHandler(t *testing.T) {
	t.Parallel()

	svc := &mockPaymentService{}
	svc.On(
		"ListOrders",
		domain.OrderFilter{Status: domain.OrderPending, Asset: "BTC"},
		domain.NewPage(2, 5),
	).Return([]domain.Order{*testOrder()}, nil)

	status, resp := doRequest(
		t, svc, http.MethodGet, "/v1/orders?status=pending&asset=BTC&page=2&size=5", "",
	)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp["orders"], 1)
}

func TestConvertHandler(t *testing.T) {
	t.Parallel()

	conv := &application.Conversion{
		Asset:  domain.BTC,
		Crypto: domain.NewCryptoAmount(50000000, 8),
		Fiat:   domain.FiatAmount{Value: decimal.NewFromInt(25000), Currency: "USD"},
		Rate: domain.ExchangeRate{
			Currency: "USD", Rate: decimal.NewFromInt(50000), AsOf: time.Now(),
		},
	}
	svc := &mockPaymentService{}
	svc.On("ConvertToFiat", "BTC", "0.5", "USD").Return(conv, nil)
	svc.On("ConvertToCrypto", "BTC", "25000", "USD").Return(conv, nil)

	status, resp := doRequest(
		t, svc, http.MethodGet,
		"/v1/convert?asset=BTC&amount=0.5&currency=USD&direction=to-fiat", "",
	)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "0.50000000", resp["crypto_amount"])

	status, _ = doRequest(
		t, svc, http.MethodGet, "/v1/convert?asset=BTC&amount=25000&currency=USD", "",
	)
	require.Equal(t, http.StatusOK, status)
	svc.AssertExpectations(t)
}

func TestWebhookHandlers(t *testing.T) {
	t.Parallel()

	svc := &mockPaymentService{}
	svc.On("AddWebhook", "OrderConfirmed", "https://shop.example/hook", "s3cr3t").
		Return("hook1", nil)
	svc.On("ListWebhooks").Return([]domain.Webhook{{
		ID: "hook1", Topic: "OrderConfirmed", Endpoint: "https://shop.example/hook",
		Secret: "s3cr3t",
	}}, nil)
	svc.On("RemoveWebhook", "hook1").Return(nil)
	svc.On("RemoveWebhook", "hook2").Return(domain.ErrWebhookNotFound)

	status, resp := doRequest(
		t, svc, http.MethodPost, "/v1/webhooks",
		`{"topic":"OrderConfirmed","endpoint":"https://shop.example/hook","secret":"s3cr3t"}`,
	)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "hook1", resp["id"])

	status, resp = doRequest(t, svc, http.MethodGet, "/v1/webhooks", "")
	require.Equal(t, http.StatusOK, status)
	hooks := resp["webhooks"].([]interface{})
	require.Len(t, hooks, 1)
	hook := hooks[0].(map[string]interface{})
	require.Equal(t, true, hook["is_secured"])
	require.NotContains(t, hook, "secret")

	status, _ = doRequest(t, svc, http.MethodDelete, "/v1/webhooks/hook1", "")
	require.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, svc, http.MethodDelete, "/v1/webhooks/hook2", "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestHealthzAndMetrics(t *testing.T) {
	t.Parallel()

	router := newRouter(&mockPaymentService{}, prometheus.NewRegistry())
	for _, target := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestFailingNewService(t *testing.T) {
	t.Parallel()

	_, err := NewService(ServiceOpts{Address: "nope", PaymentSvc: &mockPaymentService{}})
	require.Error(t, err)

	_, err = NewService(ServiceOpts{Address: ":8080"})
	require.Error(t, err)
}
