package webhookpubsub

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
)

// maskedSecret replaces secrets of listed webhooks.
const maskedSecret = "********"

func newWebhook(topic, endpoint, secret string) (*domain.Webhook, error) {
	if !isValidTopic(topic) {
		return nil, ErrInvalidTopic
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}

	return &domain.Webhook{
		ID:       uuid.New().String(),
		Topic:    topic,
		Endpoint: endpoint,
		Secret:   secret,
	}, nil
}

func isValidTopic(topic string) bool {
	for _, t := range ports.Topics() {
		if t == topic {
			return true
		}
	}
	return false
}

func isSecured(hook domain.Webhook) bool {
	return len(hook.Secret) > 0
}

func listensTo(hook domain.Webhook, topic string) bool {
	return hook.Topic == ports.AnyTopic || hook.Topic == topic
}
