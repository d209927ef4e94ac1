package db_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/merchantd/internal/core/domain"
)

func TestWebhookRepositoryImplementations(t *testing.T) {
	managers := createRepoManagers(t)

	for i := range managers {
		repo := managers[i]

		t.Run(repo.Name, func(t *testing.T) {
			testAddListAndRemoveWebhooks(t, repo.Manager.WebhookRepository())
		})
	}
}

func testAddListAndRemoveWebhooks(t *testing.T, repo domain.WebhookRepository) {
	ctx := context.Background()

	hooks, err := repo.ListWebhooks(ctx)
	require.NoError(t, err)
	require.Empty(t, hooks)

	hook := domain.Webhook{
		ID:       uuid.New().String(),
		Topic:    "OrderConfirmed",
		Endpoint: "http://localhost:8080/hook",
		Secret:   "secret",
	}
	otherHook := domain.Webhook{
		ID:       uuid.New().String(),
		Topic:    "*",
		Endpoint: "http://localhost:8080/all",
	}
	require.NoError(t, repo.AddWebhook(ctx, hook))
	require.NoError(t, repo.AddWebhook(ctx, otherHook))

	hooks, err = repo.ListWebhooks(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []domain.Webhook{hook, otherHook}, hooks)

	require.NoError(t, repo.RemoveWebhook(ctx, hook.ID))
	err = repo.RemoveWebhook(ctx, hook.ID)
	require.ErrorIs(t, err, domain.ErrWebhookNotFound)

	hooks, err = repo.ListWebhooks(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Webhook{otherHook}, hooks)
}
