package ports

import "github.com/tdex-network/merchantd/internal/core/domain"

// RepoManager interface defines the methods to access the repositories of
// orders and webhooks.
type RepoManager interface {
	OrderRepository() domain.OrderRepository
	WebhookRepository() domain.WebhookRepository

	Close()
}
