package indicators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/energyls/internal/contracts"
)

type fakeBars struct {
	bars     []contracts.Bar
	err      error
	from, to time.Time
}

func (f *fakeBars) Bars(ctx context.Context, ids []string, from, to time.Time) (map[string][]contracts.Bar, error) {
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	var out []contracts.Bar
	for _, b := range f.bars {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return map[string][]contracts.Bar{ids[0]: out}, nil
}

func TestLoadBands(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var bars []contracts.Bar
	for i := 0; i < 60; i++ {
		bars = append(bars, contracts.Bar{SecurityID: "CVX", Date: start.AddDate(0, 0, i), Close: float64(100 + i)})
	}
	source := &fakeBars{bars: bars}

	from := start.AddDate(0, 0, 30)
	to := start.AddDate(0, 0, 39)
	bands, err := LoadBands(context.Background(), source, "CVX", from, to, BollingerConfig{Window: 5, K: 2})
	require.NoError(t, err)

	require.Len(t, bands, 10)
	assert.True(t, bands[0].Date.Equal(from))
	assert.True(t, source.from.Equal(from.AddDate(0, 0, -10)))

	// window ending at day 30 covers closes 126..130
	assert.InDelta(t, 128.0, bands[0].Mean, 1e-9)
}

func TestLoadBands_NoPrices(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bands, err := LoadBands(context.Background(), &fakeBars{}, "CVX", day, day.AddDate(0, 0, 5), DefaultBollingerConfig())
	require.NoError(t, err)
	assert.Empty(t, bands)
}

func TestLoadBands_SourceError(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := LoadBands(context.Background(), &fakeBars{err: errors.New("db down")}, "CVX", day, day, DefaultBollingerConfig())
	assert.Error(t, err)
}
