package dbbadger

import (
	"context"
	"errors"

	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type webhookRepositoryImpl struct {
	store *badgerhold.Store
}

// NewWebhookRepositoryImpl initialize a badger implementation of the
// domain.WebhookRepository
func NewWebhookRepositoryImpl(store *badgerhold.Store) domain.WebhookRepository {
	return webhookRepositoryImpl{store}
}

func (r webhookRepositoryImpl) AddWebhook(
	_ context.Context, hook domain.Webhook,
) error {
	return r.store.Upsert(hook.ID, hook)
}

func (r webhookRepositoryImpl) RemoveWebhook(
	_ context.Context, id string,
) error {
	if err := r.store.Delete(id, domain.Webhook{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrWebhookNotFound
		}
		return err
	}
	return nil
}

func (r webhookRepositoryImpl) ListWebhooks(
	_ context.Context,
) ([]domain.Webhook, error) {
	var hooks []domain.Webhook
	if err := r.store.Find(&hooks, nil); err != nil {
		return nil, err
	}
	return hooks, nil
}
