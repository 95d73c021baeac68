package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskPassword(t *testing.T) {
	masked := maskPassword("postgres://energyls:s3cret@db:5432/energyls")
	assert.NotContains(t, masked, "s3cret")
	assert.Contains(t, masked, "energyls:")
	assert.Contains(t, masked, "@db:5432/energyls")
	assert.Equal(t, "postgres://db:5432/energyls", maskPassword("postgres://db:5432/energyls"))
}

func TestCycleDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 22:00 New York is already the next day in UTC
	now := time.Date(2024, 3, 11, 22, 0, 0, 0, ny)
	date, err := cycleDate("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), date)

	date, err = cycleDate("2024-03-04", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), date)

	_, err = cycleDate("03/04/2024", now)
	assert.Error(t, err)
}
