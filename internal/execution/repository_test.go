package execution

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SaveAndLoad(t *testing.T) {
	// Skip if running in CI without database
	connString := os.Getenv("DATABASE_URL")
	if connString == "" || testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err, "database connection failed")
	defer pool.Close()

	repo := NewRepository(pool)
	plan := samplePlan()
	plan.Date = time.Date(1999, 1, 4, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Publish(ctx, plan))

	loaded, err := repo.PlanByDate(ctx, plan.Date)
	require.NoError(t, err)
	assert.Equal(t, plan.RunID, loaded.RunID)
	assert.Equal(t, plan.Weights, loaded.Weights)
	assert.Equal(t, plan.Instructions, loaded.Instructions)
	assert.Equal(t, plan.Excluded, loaded.Excluded)
	assert.Equal(t, plan.Skipped, loaded.Skipped)

	_, err = repo.PlanByDate(ctx, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.Is(err, ErrPlanNotFound))

	_, _ = pool.Exec(ctx, "DELETE FROM execution.target_weights WHERE plan_date = $1", plan.Date)
	_, _ = pool.Exec(ctx, "DELETE FROM execution.allocation_plans WHERE plan_date = $1", plan.Date)
}
