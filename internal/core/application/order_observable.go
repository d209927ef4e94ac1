package application

import (
	"context"
	"fmt"

	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/pkg/crawler"
)

// orderObservable lets the crawler periodically check a pending order.
type orderObservable struct {
	orderID string
	check   func(ctx context.Context, id string) (*domain.Order, error)
}

func (o orderObservable) Key() string {
	return o.orderID
}

func (o orderObservable) Observe(ctx context.Context) (crawler.Event, error) {
	order, err := o.check(ctx, o.orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check order %s: %w", o.orderID, err)
	}
	return crawler.ObservationEvent{Key: o.orderID, Payload: order}, nil
}
