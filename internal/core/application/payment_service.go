package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"github.com/tdex-network/merchantd/pkg/crawler"
	"github.com/tdex-network/merchantd/pkg/wallet"
)

const defaultRetryBackoff = 500 * time.Millisecond

// PaymentService manages the lifecycle of payment orders: it opens them,
// watches their addresses and decides when they are paid.
type PaymentService interface {
	Start() error
	Stop()

	NewOrder(ctx context.Context, args NewOrderArgs) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(
		ctx context.Context, filter domain.OrderFilter, page domain.Page,
	) ([]domain.Order, error)
	// CheckOrder reconciles the order against the current chain facts. On
	// chain data failures the order is left untouched and an error wrapping
	// domain.ErrChainDataUnavailable is returned.
	CheckOrder(ctx context.Context, id string) (*domain.Order, error)

	ConvertToFiat(
		ctx context.Context, asset, amount, currency string,
	) (*Conversion, error)
	ConvertToCrypto(
		ctx context.Context, asset, amount, currency string,
	) (*Conversion, error)
	ListAssets() []domain.Asset

	AddWebhook(ctx context.Context, topic, endpoint, secret string) (string, error)
	RemoveWebhook(ctx context.Context, id string) error
	ListWebhooks(ctx context.Context) ([]domain.Webhook, error)
}

type paymentService struct {
	backends    BackendRegistry
	repoManager ports.RepoManager
	rateSource  ports.RateSource
	crawlerSvc  crawler.Service
	pubsub      ports.PubSub
	metrics     *Metrics
	engine      ports.ReconciliationEngine

	defaultPolicy  domain.ConfirmationPolicy
	derivationPath string
	orderTTL       time.Duration
	fetchRetries   int
	retryBackoff   time.Duration

	lock    *sync.RWMutex
	started bool
	now     func() time.Time
}

// NewPaymentService returns a PaymentService with the given dependencies.
func NewPaymentService(opts Opts) (PaymentService, error) {
	return newPaymentService(opts)
}

func newPaymentService(opts Opts) (*paymentService, error) {
	if err := validateStruct(opts); err != nil {
		return nil, err
	}
	if err := opts.DefaultPolicy.Validate(); err != nil {
		return nil, err
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	derivationPath := opts.DerivationPath
	if derivationPath == "" {
		derivationPath = domain.DefaultDerivationPath
	}
	retryBackoff := opts.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}

	return &paymentService{
		backends:       opts.Backends,
		repoManager:    opts.RepoManager,
		rateSource:     opts.RateSource,
		crawlerSvc:     opts.Crawler,
		pubsub:         opts.PubSub,
		metrics:        metrics,
		engine:         domain.NewReconciliationEngine(),
		defaultPolicy:  opts.DefaultPolicy,
		derivationPath: derivationPath,
		orderTTL:       opts.OrderTTL,
		fetchRetries:   opts.FetchRetries,
		retryBackoff:   retryBackoff,
		lock:           &sync.RWMutex{},
		now:            time.Now,
	}, nil
}

// Start starts the rate source and the crawler, and resumes watching all
// pending orders.
func (s *paymentService) Start() error {
	if err := s.rateSource.Start(); err != nil {
		return fmt.Errorf("failed to start rate source: %w", err)
	}

	go s.crawlerSvc.Start()
	go s.listenToCrawlerEvents()

	s.lock.Lock()
	s.started = true
	s.lock.Unlock()

	orders, err := s.repoManager.OrderRepository().ListPendingOrders(
		context.Background(),
	)
	if err != nil {
		return fmt.Errorf("failed to list pending orders: %w", err)
	}
	for _, order := range orders {
		s.watchOrder(order.ID)
	}
	log.Debugf("resumed watching %d pending orders", len(orders))

	return nil
}

func (s *paymentService) Stop() {
	s.lock.Lock()
	s.started = false
	s.lock.Unlock()

	s.crawlerSvc.Stop()
	s.rateSource.Stop()
}

func (s *paymentService) NewOrder(
	ctx context.Context, args NewOrderArgs,
) (*domain.Order, error) {
	args = args.normalize()
	if err := validateStruct(args); err != nil {
		return nil, err
	}

	backend, err := s.backends.Get(args.Asset)
	if err != nil {
		return nil, err
	}
	asset := backend.Asset()

	addressType := backend.DefaultAddressType()
	if args.AddressType != "" {
		addressType = domain.AddressType(args.AddressType)
	}
	if !isSupportedAddressType(backend.AddressDeriver(), addressType) {
		return nil, fmt.Errorf(
			"%w: %s for %s", domain.ErrUnsupportedAddressType, addressType, asset.Ticker,
		)
	}

	policy := args.policy(s.defaultPolicy)
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if policy.IsStrict() && ports.IsBalanceOnly(backend.ChainObserver()) {
		return nil, fmt.Errorf(
			"%w: %s payments can only be confirmed as balances without tx "+
				"hash, accept_without_hash_window_minutes must be positive",
			domain.ErrInvalidPolicy, asset.Ticker,
		)
	}

	price, err := domain.NewFiatAmount(args.Amount, args.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	rate, err := s.rateSource.GetRate(ctx, asset, price.Currency)
	if err != nil {
		return nil, err
	}
	expectedAmount, err := backend.FiatConverter().ToCrypto(price, rate)
	if err != nil {
		return nil, err
	}

	keyID := fmt.Sprintf(
		"%s/%s", asset.Ticker, wallet.KeyFingerprint(backend.MasterPublicKey()),
	)
	index, err := s.repoManager.OrderRepository().NextDerivationIndex(ctx, keyID)
	if err != nil {
		return nil, err
	}
	address, err := backend.AddressDeriver().Derive(
		backend.MasterPublicKey(), index, addressType, s.derivationPath,
	)
	if err != nil {
		return nil, err
	}
	uri, err := backend.PaymentURIBuilder().Build(address, expectedAmount)
	if err != nil {
		return nil, err
	}

	order, err := domain.NewOrder(domain.NewOrderArgs{
		Asset:           asset.Ticker,
		AddressType:     addressType,
		DerivationIndex: index,
		Address:         address,
		PaymentURI:      uri,
		Price:           price,
		Rate:            *rate,
		ExpectedAmount:  expectedAmount,
		Policy:          policy,
		TTL:             s.orderTTL,
		Now:             s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repoManager.OrderRepository().AddOrder(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.orderCreated(asset.Ticker)

	log.WithFields(log.Fields{
		"order":   order.ID,
		"address": order.Address,
		"amount":  order.ExpectedAmount.String(),
		"asset":   order.Asset,
	}).Info("new order")

	s.watchOrder(order.ID)
	return order, nil
}

func (s *paymentService) GetOrder(
	ctx context.Context, id string,
) (*domain.Order, error) {
	return s.repoManager.OrderRepository().GetOrder(ctx, id)
}

func (s *paymentService) ListOrders(
	ctx context.Context, filter domain.OrderFilter, page domain.Page,
) ([]domain.Order, error) {
	filter.Asset = strings.ToUpper(strings.TrimSpace(filter.Asset))
	return s.repoManager.OrderRepository().ListOrders(ctx, filter, page)
}

func (s *paymentService) CheckOrder(
	ctx context.Context, id string,
) (*domain.Order, error) {
	repo := s.repoManager.OrderRepository()

	order, err := repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return order, nil
	}

	backend, err := s.backends.Get(order.Asset)
	if err != nil {
		return nil, err
	}

	facts, err := s.fetchChainFacts(
		ctx, backend, order.Address, order.Policy.RequiredConfirmations,
	)
	if err != nil {
		if now := s.now(); order.IsExpired(now) {
			log.WithError(err).WithField("order", order.ID).Warn(
				"chain data unavailable, expiring order",
			)
			return s.expireOrder(ctx, id, now)
		}
		log.WithError(err).WithField("order", order.ID).Warn(
			"chain data unavailable, order left untouched",
		)
		return nil, err
	}

	now := s.now()
	evaluatedAt := facts.ObservedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = now
	}
	outcome, err := s.engine.Evaluate(domain.EvaluationInput{
		Address:            order.Address,
		Expected:           order.ExpectedAmount,
		Policy:             order.Policy,
		Transactions:       facts.Transactions,
		PreexistingBalance: facts.ConfirmedBalance,
		EvaluatedAt:        evaluatedAt,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.orderEvaluated(order.Asset, outcome.Status())

	var outcomeChanged, expired bool
	if err := repo.UpdateOrder(ctx, id, func(o *domain.Order) (*domain.Order, error) {
		outcomeChanged = o.ApplyOutcome(outcome, now)
		if o.IsExpired(now) {
			expired = o.Expire(now)
		}
		order = o
		return o, nil
	}); err != nil {
		return nil, err
	}

	if outcomeChanged {
		log.WithFields(log.Fields{
			"order":  order.ID,
			"status": outcome.Status(),
		}).Info("order outcome changed")

		if topic := ports.TopicForOutcome(outcome.Status()); topic != "" {
			s.publish(ctx, topic, order)
		}
	}
	if expired {
		log.WithField("order", order.ID).Info("order expired")
		s.publish(ctx, ports.TopicOrderExpired, order)
	}

	return order, nil
}

// expireOrder marks the order as expired without touching its outcome.
func (s *paymentService) expireOrder(
	ctx context.Context, id string, now time.Time,
) (*domain.Order, error) {
	var (
		order   *domain.Order
		expired bool
	)
	if err := s.repoManager.OrderRepository().UpdateOrder(
		ctx, id, func(o *domain.Order) (*domain.Order, error) {
			expired = o.Expire(now)
			order = o
			return o, nil
		},
	); err != nil {
		return nil, err
	}

	if expired {
		log.WithField("order", order.ID).Info("order expired")
		s.publish(ctx, ports.TopicOrderExpired, order)
	}
	return order, nil
}

func (s *paymentService) ConvertToFiat(
	ctx context.Context, ticker, amount, currency string,
) (*Conversion, error) {
	backend, err := s.backends.Get(ticker)
	if err != nil {
		return nil, err
	}
	asset := backend.Asset()

	cryptoAmount, err := domain.ParseCryptoAmount(amount, asset.Precision)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, err)
	}
	rate, err := s.rateSource.GetRate(ctx, asset, currency)
	if err != nil {
		return nil, err
	}
	fiatAmount, err := backend.FiatConverter().ToFiat(cryptoAmount, rate)
	if err != nil {
		return nil, err
	}

	return &Conversion{asset, cryptoAmount, fiatAmount, *rate}, nil
}

func (s *paymentService) ConvertToCrypto(
	ctx context.Context, ticker, amount, currency string,
) (*Conversion, error) {
	backend, err := s.backends.Get(ticker)
	if err != nil {
		return nil, err
	}
	asset := backend.Asset()

	fiatAmount, err := domain.NewFiatAmount(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	rate, err := s.rateSource.GetRate(ctx, asset, fiatAmount.Currency)
	if err != nil {
		return nil, err
	}
	cryptoAmount, err := backend.FiatConverter().ToCrypto(fiatAmount, rate)
	if err != nil {
		return nil, err
	}

	return &Conversion{asset, cryptoAmount, fiatAmount, *rate}, nil
}

func (s *paymentService) ListAssets() []domain.Asset {
	tickers := s.backends.Assets()
	assets := make([]domain.Asset, 0, len(tickers))
	for _, ticker := range tickers {
		if backend, err := s.backends.Get(ticker); err == nil {
			assets = append(assets, backend.Asset())
		}
	}
	return assets
}

func (s *paymentService) AddWebhook(
	ctx context.Context, topic, endpoint, secret string,
) (string, error) {
	if s.pubsub == nil {
		return "", ErrPubSubNotConfigured
	}
	if err := validateStruct(webhookArgs{topic, endpoint}); err != nil {
		return "", err
	}
	if !isValidTopic(topic) {
		return "", fmt.Errorf("%w: unknown topic %s", ErrInvalidRequest, topic)
	}
	return s.pubsub.Subscribe(ctx, topic, endpoint, secret)
}

func (s *paymentService) RemoveWebhook(ctx context.Context, id string) error {
	if s.pubsub == nil {
		return ErrPubSubNotConfigured
	}
	return s.pubsub.Unsubscribe(ctx, id)
}

func (s *paymentService) ListWebhooks(ctx context.Context) ([]domain.Webhook, error) {
	if s.pubsub == nil {
		return nil, ErrPubSubNotConfigured
	}
	return s.pubsub.ListSubscriptions(ctx)
}

// fetchChainFacts queries the chain observer of the backend, retrying with
// exponential backoff on failure.
func (s *paymentService) fetchChainFacts(
	ctx context.Context, backend ports.Backend,
	address string, requiredConfirmations int,
) (*domain.ChainFacts, error) {
	ticker := backend.Asset().Ticker
	backoff := s.retryBackoff

	var err error
	for attempt := 0; attempt <= s.fetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf(
					"%w: %s", domain.ErrChainDataUnavailable, ctx.Err(),
				)
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		var facts *domain.ChainFacts
		start := time.Now()
		facts, err = backend.ChainObserver().ObserveAddress(
			ctx, address, requiredConfirmations,
		)
		if err == nil && facts == nil {
			err = fmt.Errorf("no chain facts returned")
		}
		s.metrics.chainFetched(ticker, time.Since(start), err)
		if err == nil {
			return facts, nil
		}

		log.WithError(err).Debugf(
			"attempt %d to fetch chain facts for %s failed", attempt+1, address,
		)
	}

	if !errors.Is(err, domain.ErrChainDataUnavailable) {
		err = fmt.Errorf("%w: %s", domain.ErrChainDataUnavailable, err)
	}
	return nil, err
}

func (s *paymentService) watchOrder(id string) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if !s.started {
		return
	}
	s.crawlerSvc.AddObservable(orderObservable{id, s.CheckOrder})
}

func (s *paymentService) listenToCrawlerEvents() {
	for event := range s.crawlerSvc.GetEventChannel() {
		switch e := event.(type) {
		case crawler.QuitEvent:
			log.Debug("stopped listening to crawler events")
			return
		case crawler.ObservationEvent:
			order, ok := e.Payload.(*domain.Order)
			if !ok || !order.IsTerminal() {
				continue
			}
			s.crawlerSvc.RemoveObservable(e.Key)
			log.Debugf("stopped watching order %s with status %s", order.ID, order.Status)
		}
	}
}

func (s *paymentService) publish(
	ctx context.Context, topic string, order *domain.Order,
) {
	if s.pubsub == nil {
		return
	}

	message, _ := json.Marshal(orderEventPayload(order))
	if err := s.pubsub.Publish(ctx, topic, string(message)); err != nil {
		log.WithError(err).WithField("order", order.ID).Warnf(
			"failed to publish %s event", topic,
		)
	}
}

func orderEventPayload(order *domain.Order) map[string]interface{} {
	return map[string]interface{}{
		"order_id": order.ID,
		"address":  order.Address,
		"asset":    order.Asset,
		"status":   order.Status,
		"outcome":  order.Outcome,
	}
}

func isSupportedAddressType(
	deriver ports.AddressDeriver, addressType domain.AddressType,
) bool {
	for _, t := range deriver.SupportedAddressTypes() {
		if t == addressType {
			return true
		}
	}
	return false
}

func isValidTopic(topic string) bool {
	for _, t := range ports.Topics() {
		if t == topic {
			return true
		}
	}
	return false
}
