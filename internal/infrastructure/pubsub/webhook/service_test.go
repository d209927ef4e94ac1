package webhookpubsub_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	webhookpubsub "github.com/tdex-network/merchantd/internal/infrastructure/pubsub/webhook"
	"github.com/tdex-network/merchantd/internal/infrastructure/storage/db/inmemory"
)

const (
	testSecret  = "s3cr3t"
	testMessage = `{"order_id":"a5b4b8f0-7b0c-4c1b-9d53-5b1c1f5f2a10","address":"bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu","asset":"BTC","status":"confirmed","outcome":{"status":"confirmed","amount":"0.001","transactionHash":"aa","precision":8}}`
)

type received struct {
	path  string
	body  string
	token string
}

type testServer struct {
	*httptest.Server
	lock     *sync.Mutex
	requests []received
}

func newTestServer(t *testing.T) *testServer {
	srv := &testServer{lock: &sync.Mutex{}}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/failing" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		body, _ := io.ReadAll(r.Body)
		srv.lock.Lock()
		srv.requests = append(srv.requests, received{
			path:  r.URL.Path,
			body:  string(body),
			token: strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
		})
		srv.lock.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (s *testServer) received() []received {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]received(nil), s.requests...)
}

func TestPubSubService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	server := newTestServer(t)
	pubsubSvc, err := webhookpubsub.NewService(
		inmemory.NewWebhookRepositoryImpl(), 0,
	)
	require.NoError(t, err)

	confirmedID, err := pubsubSvc.Subscribe(
		ctx, ports.TopicOrderConfirmed, server.URL+"/confirmed", testSecret,
	)
	require.NoError(t, err)
	require.NotEmpty(t, confirmedID)

	_, err = pubsubSvc.Subscribe(ctx, ports.AnyTopic, server.URL+"/all", "")
	require.NoError(t, err)

	_, err = pubsubSvc.Subscribe(
		ctx, ports.TopicOrderExpired, server.URL+"/expired", "",
	)
	require.NoError(t, err)

	subs, err := pubsubSvc.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	for _, sub := range subs {
		require.NotEqual(t, testSecret, sub.Secret)
		if sub.Topic == ports.TopicOrderConfirmed {
			require.NotEmpty(t, sub.Secret)
		}
	}

	err = pubsubSvc.Publish(ctx, ports.TopicOrderConfirmed, testMessage)
	require.NoError(t, err)

	requests := server.received()
	require.Len(t, requests, 2)

	paths := make([]string, 0, len(requests))
	for _, req := range requests {
		paths = append(paths, req.path)
		require.JSONEq(t, testMessage, req.body)

		if req.path != "/confirmed" {
			require.Empty(t, req.token)
			continue
		}
		token, err := jwt.Parse(req.token, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)
	}
	require.ElementsMatch(t, []string{"/confirmed", "/all"}, paths)

	err = pubsubSvc.Unsubscribe(ctx, confirmedID)
	require.NoError(t, err)

	err = pubsubSvc.Unsubscribe(ctx, confirmedID)
	require.ErrorIs(t, err, domain.ErrWebhookNotFound)

	subs, err = pubsubSvc.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
}

func TestFailingPubSubService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	server := newTestServer(t)

	_, err := webhookpubsub.NewService(nil, 0)
	require.ErrorIs(t, err, webhookpubsub.ErrNullRepository)

	pubsubSvc, err := webhookpubsub.NewService(
		inmemory.NewWebhookRepositoryImpl(), 0,
	)
	require.NoError(t, err)

	_, err = pubsubSvc.Subscribe(ctx, "TradeSettled", server.URL, "")
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidTopic)

	_, err = pubsubSvc.Subscribe(ctx, ports.AnyTopic, "not a url", "")
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidEndpoint)

	_, err = pubsubSvc.Subscribe(ctx, ports.AnyTopic, "ftp://host/path", "")
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidEndpoint)

	_, err = pubsubSvc.Subscribe(ctx, ports.AnyTopic, server.URL+"/failing", "")
	require.NoError(t, err)
	_, err = pubsubSvc.Subscribe(ctx, ports.AnyTopic, server.URL+"/ok", "")
	require.NoError(t, err)

	err = pubsubSvc.Publish(ctx, ports.TopicOrderUnderpaid, testMessage)
	require.Error(t, err)

	// A failing endpoint doesn't prevent the others from being notified.
	require.Len(t, server.received(), 1)
}
