package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/merchantd/internal/core/application"
	interfaces "github.com/tdex-network/merchantd/internal/interfaces"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// ServiceOpts defines the parameters needed for creating the HTTP interface.
type ServiceOpts struct {
	Address    string
	PaymentSvc application.PaymentService
	// Gatherer is the source of the metrics served on /metrics. Defaults to
	// the prometheus default gatherer.
	Gatherer prometheus.Gatherer
}

func (o ServiceOpts) validate() error {
	if !isValidAddress(o.Address) {
		return fmt.Errorf("invalid listening address %q", o.Address)
	}
	if o.PaymentSvc == nil {
		return fmt.Errorf("missing payment service")
	}
	return nil
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

// NewService returns the REST interface of the daemon.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              opts.Address,
			Handler:           newRouter(opts.PaymentSvc, opts.Gatherer),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server stopped unexpectedly")
		}
	}()

	log.Infof("http server listening on %s", s.opts.Address)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http server")
	}
	log.Debug("http server stopped")
}

func newRouter(
	svc application.PaymentService, gatherer prometheus.Gatherer,
) http.Handler {
	h := &handler{svc}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/orders", h.newOrder)
	mux.HandleFunc("GET /v1/orders", h.listOrders)
	mux.HandleFunc("GET /v1/orders/{id}", h.getOrder)
	mux.HandleFunc("POST /v1/orders/{id}/check", h.checkOrder)
	mux.HandleFunc("GET /v1/convert", h.convert)
	mux.HandleFunc("GET /v1/assets", h.listAssets)
	mux.HandleFunc("POST /v1/webhooks", h.addWebhook)
	mux.HandleFunc("GET /v1/webhooks", h.listWebhooks)
	mux.HandleFunc("DELETE /v1/webhooks/{id}", h.removeWebhook)
	mux.Handle(
		"GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

func isValidAddress(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return false
	}
	if parts[0] != "" {
		if ip := net.ParseIP(parts[0]); ip == nil && parts[0] != "localhost" {
			return false
		}
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return port >= 0 && port <= 65535
}
