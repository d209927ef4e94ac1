package inmemory

import (
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
)

type repoManager struct {
	orderRepository   domain.OrderRepository
	webhookRepository domain.WebhookRepository
}

func NewRepoManager() ports.RepoManager {
	return &repoManager{
		orderRepository:   NewOrderRepositoryImpl(),
		webhookRepository: NewWebhookRepositoryImpl(),
	}
}

func (d *repoManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *repoManager) WebhookRepository() domain.WebhookRepository {
	return d.webhookRepository
}

func (d *repoManager) Close() {}
