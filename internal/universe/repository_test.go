package universe

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CanTrade(t *testing.T) {
	// Skip if running in CI without database
	connString := os.Getenv("DATABASE_URL")
	if connString == "" || testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), connString)
	require.NoError(t, err, "database connection failed")
	defer pool.Close()

	repo := NewRepository(pool)

	result, err := repo.CanTrade(context.Background(), cycleDate, []string{"__missing__"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"__missing__": false}, result)

	bars, err := repo.Bars(context.Background(), nil, cycleDate, cycleDate)
	require.NoError(t, err)
	assert.Empty(t, bars)
}
