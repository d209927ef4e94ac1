package domain

import "context"

// OrderRepository is the abstraction for any kind of database intended to
// persist Orders.
type OrderRepository interface {
	// AddOrder inserts a new order.
	AddOrder(ctx context.Context, order *Order) error
	// GetOrder returns the order with the given id or ErrOrderNotFound.
	GetOrder(ctx context.Context, id string) (*Order, error)
	// UpdateOrder applies updateFn to the order with the given id and stores
	// the result atomically.
	UpdateOrder(
		ctx context.Context,
		id string,
		updateFn func(o *Order) (*Order, error),
	) error
	// ListOrders returns the orders matching the filter, most recent first.
	ListOrders(ctx context.Context, filter OrderFilter, page Page) ([]Order, error)
	// ListPendingOrders returns all orders still waiting for a final decision.
	ListPendingOrders(ctx context.Context) ([]Order, error)
	// NextDerivationIndex returns the next unused derivation index for the
	// given key. Returned indexes are never given out twice.
	NextDerivationIndex(ctx context.Context, keyID string) (uint32, error)
}

// Webhook is an endpoint to notify about order events of the given topic.
type Webhook struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret,omitempty"`
}

// WebhookRepository persists webhooks.
type WebhookRepository interface {
	AddWebhook(ctx context.Context, hook Webhook) error
	RemoveWebhook(ctx context.Context, id string) error
	ListWebhooks(ctx context.Context) ([]Webhook, error)
}
