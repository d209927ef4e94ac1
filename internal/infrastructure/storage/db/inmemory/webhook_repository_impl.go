package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/merchantd/internal/core/domain"
)

type webhookRepositoryImpl struct {
	locker *sync.RWMutex
	hooks  map[string]domain.Webhook
}

// NewWebhookRepositoryImpl returns a new empty in-memory WebhookRepository.
func NewWebhookRepositoryImpl() domain.WebhookRepository {
	return &webhookRepositoryImpl{
		locker: &sync.RWMutex{},
		hooks:  make(map[string]domain.Webhook),
	}
}

func (r *webhookRepositoryImpl) AddWebhook(
	_ context.Context, hook domain.Webhook,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	r.hooks[hook.ID] = hook
	return nil
}

func (r *webhookRepositoryImpl) RemoveWebhook(
	_ context.Context, id string,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.hooks[id]; !ok {
		return domain.ErrWebhookNotFound
	}
	delete(r.hooks, id)
	return nil
}

func (r *webhookRepositoryImpl) ListWebhooks(
	_ context.Context,
) ([]domain.Webhook, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	hooks := make([]domain.Webhook, 0, len(r.hooks))
	for _, hook := range r.hooks {
		hooks = append(hooks, hook)
	}
	sort.Slice(hooks, func(i, j int) bool { return hooks[i].ID < hooks[j].ID })
	return hooks, nil
}
