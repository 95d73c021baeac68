package indicators

import (
	"context"
	"time"

	"github.com/wonny/energyls/internal/contracts"
)

// BarSource loads daily bars per security
type BarSource interface {
	Bars(ctx context.Context, ids []string, from, to time.Time) (map[string][]contracts.Bar, error)
}

// LoadBands reads enough history before from to fill the window and returns
// the bands dated within [from, to]
func LoadBands(ctx context.Context, source BarSource, security string, from, to time.Time, cfg BollingerConfig) ([]Band, error) {
	warmup := from.AddDate(0, 0, -2*cfg.Window)

	bars, err := source.Bars(ctx, []string{security}, warmup, to)
	if err != nil {
		return nil, err
	}
	if len(bars[security]) == 0 {
		return nil, nil
	}

	all, err := BollingerBands(bars[security], cfg)
	if err != nil {
		return nil, err
	}

	bands := make([]Band, 0, len(all))
	for _, b := range all {
		if !b.Date.Before(from) {
			bands = append(bands, b)
		}
	}
	return bands, nil
}
