package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
	"github.com/nkjh2020/investment-manager/internal/infra/database/postgres"
	"github.com/nkjh2020/investment-manager/internal/pkg/config"
)

func newTestPool(t *testing.T) *postgres.Pool {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("Integration test - requires PostgreSQL (DATABASE_URL)")
	}

	ctx := context.Background()
	cfg, err := config.Load()
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.EnsureSchema(ctx))
	return pool
}

func TestPool_Health(t *testing.T) {
	pool := newTestPool(t)

	health := pool.Health(context.Background())
	assert.NotEqual(t, "unhealthy", health.Status)
	assert.Greater(t, health.MaxConns, int32(0))
}

func TestTargetRepository_SaveAndGet(t *testing.T) {
	pool := newTestPool(t)
	repo := postgres.NewTargetRepository(pool.Pool)
	ctx := context.Background()
	user := "it-targets"

	t.Cleanup(func() { _ = repo.SaveTargets(ctx, user, nil) })

	require.NoError(t, repo.SaveTargets(ctx, user, []portfolio.TargetWeight{
		{StockCode: "005930", TargetWeight: 40},
		{StockCode: "069500", TargetWeight: 30.5},
	}))

	got, err := repo.GetTargets(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []portfolio.TargetWeight{
		{StockCode: "005930", TargetWeight: 40},
		{StockCode: "069500", TargetWeight: 30.5},
	}, got)

	t.Run("replace drops missing codes", func(t *testing.T) {
		require.NoError(t, repo.SaveTargets(ctx, user, []portfolio.TargetWeight{
			{StockCode: "069500", TargetWeight: 50},
		}))

		got, err := repo.GetTargets(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []portfolio.TargetWeight{{StockCode: "069500", TargetWeight: 50}}, got)
	})
}
