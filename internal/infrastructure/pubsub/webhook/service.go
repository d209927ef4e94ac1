package webhookpubsub

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/sony/gobreaker"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"github.com/tdex-network/merchantd/pkg/circuitbreaker"
	"github.com/tdex-network/merchantd/pkg/httputil"
	"golang.org/x/sync/errgroup"
)

const defaultRequestTimeout = 15 * time.Second

type service struct {
	repository domain.WebhookRepository
	httpClient *httputil.Client
	cb         *gobreaker.CircuitBreaker
}

// NewService returns a PubSub notifying order events to webhooks, persisted
// with the given repository. Requests to endpoints of secured webhooks carry
// a HS256 JWT signed with the webhook secret as bearer token.
func NewService(
	repository domain.WebhookRepository, requestTimeout time.Duration,
) (ports.PubSub, error) {
	if repository == nil {
		return nil, ErrNullRepository
	}
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return &service{
		repository: repository,
		httpClient: httputil.NewClient(requestTimeout),
		cb:         circuitbreaker.NewCircuitBreaker("webhooks"),
	}, nil
}

func (ws *service) Subscribe(
	ctx context.Context, topic, endpoint, secret string,
) (string, error) {
	hook, err := newWebhook(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	if err := ws.repository.AddWebhook(ctx, *hook); err != nil {
		return "", err
	}
	return hook.ID, nil
}

func (ws *service) Unsubscribe(ctx context.Context, id string) error {
	return ws.repository.RemoveWebhook(ctx, id)
}

func (ws *service) ListSubscriptions(ctx context.Context) ([]domain.Webhook, error) {
	hooks, err := ws.repository.ListWebhooks(ctx)
	if err != nil {
		return nil, err
	}

	subs := make([]domain.Webhook, 0, len(hooks))
	for _, hook := range hooks {
		if isSecured(hook) {
			hook.Secret = maskedSecret
		}
		subs = append(subs, hook)
	}
	return subs, nil
}

// Publish makes a POST request to every webhook endpoint subscribed for the
// given topic or for any topic.
// Requests are made in parallel and go through a circuit breaker.
func (ws *service) Publish(ctx context.Context, topic, message string) error {
	hooks, err := ws.repository.ListWebhooks(ctx)
	if err != nil {
		return err
	}

	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		if !listensTo(hook, topic) {
			continue
		}
		eg.Go(func() error {
			if err := ws.doRequest(ctx, hook, message); err != nil {
				log.WithError(err).WithField("webhook", hook.ID).Warn(
					"failed to invoke webhook",
				)
				return fmt.Errorf("webhook %s: %w", hook.ID, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

func (ws *service) doRequest(
	ctx context.Context, hook domain.Webhook, payload string,
) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if isSecured(hook) {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				IssuedAt: time.Now().Unix(),
				Subject:  hook.Topic,
			})
			tokenString, err := token.SignedString([]byte(hook.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.NewHTTPRequest(
			ctx, http.MethodPost, hook.Endpoint, payload, headers,
		)
		if err != nil {
			return nil, err
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("endpoint returned status %d: %s", status, resp)
		}
		return nil, nil
	})

	return err
}
