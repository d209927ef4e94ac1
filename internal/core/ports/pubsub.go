package ports

import (
	"context"

	"github.com/tdex-network/merchantd/internal/core/domain"
)

const (
	AnyTopic              = "*"
	TopicOrderUnconfirmed = "OrderUnconfirmed"
	TopicOrderConfirmed   = "OrderConfirmed"
	TopicOrderUnderpaid   = "OrderUnderpaid"
	TopicOrderExpired     = "OrderExpired"
)

// Topics returns the list of topics a client can subscribe to.
func Topics() []string {
	return []string{
		TopicOrderUnconfirmed, TopicOrderConfirmed,
		TopicOrderUnderpaid, TopicOrderExpired, AnyTopic,
	}
}

// TopicForOutcome returns the topic to publish the given outcome on, or an
// empty string if the outcome is not worth a notification.
func TopicForOutcome(status domain.OutcomeStatus) string {
	switch status {
	case domain.StatusUnconfirmed:
		return TopicOrderUnconfirmed
	case domain.StatusConfirmed:
		return TopicOrderConfirmed
	case domain.StatusUnderpaid:
		return TopicOrderUnderpaid
	default:
		return ""
	}
}

// PubSub defines the methods of a pubsub service notifying clients about
// order events.
type PubSub interface {
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(ctx context.Context, topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(ctx context.Context, id string) error
	// ListSubscriptions returns all subscriptions, secrets excluded.
	ListSubscriptions(ctx context.Context) ([]domain.Webhook, error)
	// Publish publishes a message for a certain topic. All clients subscribed
	// for such topic, or for any topic, will receive the message.
	Publish(ctx context.Context, topic string, message string) error
}
