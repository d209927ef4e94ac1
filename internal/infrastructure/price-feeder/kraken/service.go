package krakenfeeder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
)

const (
	// KrakenWebSocketURL is the url to open a connection with kraken.
	KrakenWebSocketURL = "wss://ws.kraken.com"

	defaultReconnectInterval = 2 * time.Second
	maxReconnectAttempts     = 10
)

var (
	// kraken tickers of the supported assets. LBTC is pegged 1:1 to BTC.
	tickerByAsset = map[string]string{
		domain.BTC.Ticker:  "XBT",
		domain.LBTC.Ticker: "XBT",
		domain.ETH.Ticker:  "ETH",
	}
)

type service struct {
	url               string
	reconnectInterval time.Duration
	pairs             []string

	connMtx *sync.Mutex
	conn    *websocket.Conn

	latestRatesByPairMtx *sync.RWMutex
	latestRatesByPair    map[string]domain.ExchangeRate

	quitChan chan struct{}
	now      func() time.Time
}

// Opts defines the parameters needed for creating a kraken RateSource with
// NewService.
type Opts struct {
	// URL defaults to KrakenWebSocketURL.
	URL string
	// Currencies are the fiat currencies to subscribe prices for.
	Currencies        []string
	ReconnectInterval time.Duration
}

// NewService returns a RateSource that keeps the latest kraken ticker prices
// of BTC and ETH for the given currencies.
func NewService(opts Opts) (ports.RateSource, error) {
	if len(opts.Currencies) <= 0 {
		return nil, fmt.Errorf("missing currencies")
	}

	url := opts.URL
	if url == "" {
		url = KrakenWebSocketURL
	}
	reconnectInterval := opts.ReconnectInterval
	if reconnectInterval <= 0 {
		reconnectInterval = defaultReconnectInterval
	}

	pairs := make([]string, 0, 2*len(opts.Currencies))
	for _, cur := range opts.Currencies {
		currency := domain.NormalizeCurrency(cur)
		if len(currency) != 3 {
			return nil, fmt.Errorf("invalid currency code %q", cur)
		}
		pairs = append(pairs, pairName("XBT", currency), pairName("ETH", currency))
	}

	return &service{
		url:                  url,
		reconnectInterval:    reconnectInterval,
		pairs:                pairs,
		connMtx:              &sync.Mutex{},
		latestRatesByPairMtx: &sync.RWMutex{},
		latestRatesByPair:    make(map[string]domain.ExchangeRate),
		quitChan:             make(chan struct{}),
		now:                  time.Now,
	}, nil
}

// Start connects to kraken and keeps reading prices in background until Stop
// is called.
func (s *service) Start() error {
	conn, err := s.connectAndSubscribe()
	if err != nil {
		return err
	}
	s.setConn(conn)

	go s.listen()

	log.Debugf("kraken price feeder subscribed to %s", strings.Join(s.pairs, ", "))
	return nil
}

func (s *service) Stop() {
	close(s.quitChan)

	s.connMtx.Lock()
	defer s.connMtx.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *service) GetRate(
	_ context.Context, asset domain.Asset, currency string,
) (*domain.ExchangeRate, error) {
	ticker, ok := tickerByAsset[asset.Ticker]
	if !ok {
		return nil, domain.ErrStaleOrMissingRate
	}
	pair := pairName(ticker, domain.NormalizeCurrency(currency))

	s.latestRatesByPairMtx.RLock()
	defer s.latestRatesByPairMtx.RUnlock()

	rate, ok := s.latestRatesByPair[pair]
	if !ok {
		return nil, domain.ErrStaleOrMissingRate
	}
	return &rate, nil
}

func (s *service) listen() {
	for {
		message, err := s.readMessage()
		if err != nil {
			if s.isQuitting() {
				return
			}

			log.WithError(err).Warn(
				"connection dropped unexpectedly. Trying to reconnect...",
			)
			if err := s.reconnect(); err != nil {
				log.WithError(err).Error("failed to reconnect to kraken")
				return
			}
			log.Debug("connection and subscriptions re-established")
			continue
		}

		pair, rate := s.parseFeed(message)
		if rate == nil {
			continue
		}
		s.writeRate(pair, *rate)
	}
}

// readMessage reads the next message from the socket. Sometimes the
// underlying read panics on dropped connections instead of returning an
// error, hence the recover.
//
// https://support.kraken.com/hc/en-us/articles/360044504011-WebSocket-API-unexpected-disconnections-from-market-data-feeds
func (s *service) readMessage() (message []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	_, message, err = s.getConn().ReadMessage()
	return
}

func (s *service) reconnect() error {
	var err error
	for i := 0; i < maxReconnectAttempts; i++ {
		select {
		case <-s.quitChan:
			return nil
		case <-time.After(s.reconnectInterval):
		}

		var conn *websocket.Conn
		conn, err = s.connectAndSubscribe()
		if err != nil {
			log.WithError(err).Debugf("reconnection attempt %d failed", i+1)
			continue
		}
		s.setConn(conn)
		if s.isQuitting() {
			conn.Close()
		}
		return nil
	}
	return err
}

// parseFeed extracts the last trade price from a ticker message like:
//
//	[340, {"c": ["65000.10000", "0.00100000"], ...}, "ticker", "XBT/USD"]
func (s *service) parseFeed(msg []byte) (string, *domain.ExchangeRate) {
	var i []interface{}
	if err := json.Unmarshal(msg, &i); err != nil {
		return "", nil
	}
	if len(i) != 4 {
		return "", nil
	}

	pair, ok := i[3].(string)
	if !ok {
		return "", nil
	}
	_, currency, ok := strings.Cut(pair, "/")
	if !ok {
		return "", nil
	}

	ii, ok := i[1].(map[string]interface{})
	if !ok {
		return "", nil
	}
	iii, ok := ii["c"].([]interface{})
	if !ok || len(iii) < 1 {
		return "", nil
	}
	priceStr, ok := iii[0].(string)
	if !ok {
		return "", nil
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil || !price.IsPositive() {
		return "", nil
	}

	return pair, &domain.ExchangeRate{
		Currency: currency,
		Rate:     price,
		AsOf:     s.now(),
	}
}

func (s *service) connectAndSubscribe() (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return nil, err
	}

	msg := map[string]interface{}{
		"event": "subscribe",
		"pair":  s.pairs,
		"subscription": map[string]string{
			"name": "ticker",
		},
	}
	if err := conn.WriteJSON(msg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cannot subscribe to pairs: %s", err)
	}

	return conn, nil
}

func (s *service) isQuitting() bool {
	select {
	case <-s.quitChan:
		return true
	default:
		return false
	}
}

func (s *service) getConn() *websocket.Conn {
	s.connMtx.Lock()
	defer s.connMtx.Unlock()
	return s.conn
}

func (s *service) setConn(conn *websocket.Conn) {
	s.connMtx.Lock()
	defer s.connMtx.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
}

func (s *service) writeRate(pair string, rate domain.ExchangeRate) {
	s.latestRatesByPairMtx.Lock()
	defer s.latestRatesByPairMtx.Unlock()

	s.latestRatesByPair[pair] = rate
}

func pairName(ticker, currency string) string {
	return fmt.Sprintf("%s/%s", ticker, currency)
}
