package httpinterface

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tdex-network/merchantd/internal/core/application"
	"github.com/tdex-network/merchantd/internal/core/domain"
)

const (
	directionToFiat   = "to-fiat"
	directionToCrypto = "to-crypto"
)

type handler struct {
	svc application.PaymentService
}

type newOrderRequest struct {
	Asset                          string `json:"asset"`
	Amount                         string `json:"amount"`
	Currency                       string `json:"currency"`
	AddressType                    string `json:"address_type"`
	RequiredConfirmations          *int   `json:"required_confirmations"`
	AcceptWithoutHashWindowMinutes *int   `json:"accept_without_hash_window_minutes"`
}

type addWebhookRequest struct {
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

func (h *handler) newOrder(w http.ResponseWriter, req *http.Request) {
	var body newOrderRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.svc.NewOrder(req.Context(), application.NewOrderArgs{
		Asset:                          body.Asset,
		Amount:                         body.Amount,
		Currency:                       body.Currency,
		AddressType:                    body.AddressType,
		RequiredConfirmations:          body.RequiredConfirmations,
		AcceptWithoutHashWindowMinutes: body.AcceptWithoutHashWindowMinutes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newOrderView(order))
}

func (h *handler) listOrders(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	page, err := parsePage(query.Get("page"), query.Get("size"))
	if err != nil {
		writeError(w, err)
		return
	}
	filter := domain.OrderFilter{
		Status: domain.OrderStatus(strings.ToLower(query.Get("status"))),
		Asset:  query.Get("asset"),
	}

	orders, err := h.svc.ListOrders(req.Context(), filter, page)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i]))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": views})
}

func (h *handler) getOrder(w http.ResponseWriter, req *http.Request) {
	order, err := h.svc.GetOrder(req.Context(), req.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(order))
}

func (h *handler) checkOrder(w http.ResponseWriter, req *http.Request) {
	order, err := h.svc.CheckOrder(req.Context(), req.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(order))
}

func (h *handler) convert(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	asset, amount, currency := query.Get("asset"), query.Get("amount"), query.Get("currency")

	var (
		conv *application.Conversion
		err  error
	)
	switch direction := query.Get("direction"); direction {
	case directionToCrypto, "":
		conv, err = h.svc.ConvertToCrypto(req.Context(), asset, amount, currency)
	case directionToFiat:
		conv, err = h.svc.ConvertToFiat(req.Context(), asset, amount, currency)
	default:
		err = fmt.Errorf(
			"%w: direction must be either %s or %s",
			application.ErrInvalidRequest, directionToFiat, directionToCrypto,
		)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newConversionView(conv))
}

func (h *handler) listAssets(w http.ResponseWriter, _ *http.Request) {
	assets := h.svc.ListAssets()
	views := make([]assetView, 0, len(assets))
	for _, a := range assets {
		views = append(views, assetView{a.Ticker, a.DisplayName, a.Precision})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assets": views})
}

func (h *handler) addWebhook(w http.ResponseWriter, req *http.Request) {
	var body addWebhookRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.svc.AddWebhook(
		req.Context(), body.Topic, body.Endpoint, body.Secret,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *handler) listWebhooks(w http.ResponseWriter, req *http.Request) {
	hooks, err := h.svc.ListWebhooks(req.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]webhookView, 0, len(hooks))
	for _, hook := range hooks {
		views = append(views, webhookView{
			ID:        hook.ID,
			Topic:     hook.Topic,
			Endpoint:  hook.Endpoint,
			IsSecured: hook.Secret != "",
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"webhooks": views})
}

func (h *handler) removeWebhook(w http.ResponseWriter, req *http.Request) {
	if err := h.svc.RemoveWebhook(req.Context(), req.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(req *http.Request, v interface{}) error {
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %s", application.ErrInvalidRequest, err)
	}
	return nil
}

func parsePage(number, size string) (domain.Page, error) {
	var n, s int
	var err error
	if number != "" {
		if n, err = strconv.Atoi(number); err != nil {
			return domain.Page{}, fmt.Errorf(
				"%w: invalid page number", application.ErrInvalidRequest,
			)
		}
	}
	if size != "" {
		if s, err = strconv.Atoi(size); err != nil {
			return domain.Page{}, fmt.Errorf(
				"%w: invalid page size", application.ErrInvalidRequest,
			)
		}
	}
	return domain.NewPage(n, s), nil
}
