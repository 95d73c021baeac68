package indicators

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/wonny/energyls/internal/contracts"
)

// BollingerConfig holds the band parameters
type BollingerConfig struct {
	Window int     // rolling window in bars
	K      float64 // band width in standard deviations
}

// DefaultBollingerConfig is the 20-bar, 2σ band
func DefaultBollingerConfig() BollingerConfig {
	return BollingerConfig{Window: 20, K: 2}
}

// Validate checks band parameters
func (c BollingerConfig) Validate() error {
	if c.Window < 2 {
		return fmt.Errorf("bollinger window must be >= 2, got %d", c.Window)
	}
	if c.K <= 0 || math.IsNaN(c.K) {
		return fmt.Errorf("bollinger k must be positive, got %v", c.K)
	}
	return nil
}

// Band is one row of the Bollinger table. The first Window-1 rows have NaN bands.
type Band struct {
	Date  time.Time
	Close float64
	Mean  float64
	Upper float64
	Lower float64
}

// Bollinger computes the rolling mean and mean ± k·std (sample) of closes
func Bollinger(closes []float64, cfg BollingerConfig) (mean, upper, lower []float64, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	s := series.New(closes, series.Float, "close")
	rolling := s.Rolling(cfg.Window)
	mean = rolling.Mean().Float()
	std := rolling.StdDev().Float()

	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		if i < cfg.Window-1 {
			mean[i], upper[i], lower[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		upper[i] = mean[i] + cfg.K*std[i]
		lower[i] = mean[i] - cfg.K*std[i]
	}

	return mean, upper, lower, nil
}

// BollingerBands computes the band table for a bar series in date order
func BollingerBands(bars []contracts.Bar, cfg BollingerConfig) ([]Band, error) {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	mean, upper, lower, err := Bollinger(closes, cfg)
	if err != nil {
		return nil, err
	}

	bands := make([]Band, len(bars))
	for i, b := range bars {
		bands[i] = Band{Date: b.Date, Close: b.Close, Mean: mean[i], Upper: upper[i], Lower: lower[i]}
	}
	return bands, nil
}

// Frame renders bands as a dataframe (date, close, mean, upper, lower)
func Frame(bands []Band) dataframe.DataFrame {
	dates := make([]string, len(bands))
	closes := make([]float64, len(bands))
	means := make([]float64, len(bands))
	uppers := make([]float64, len(bands))
	lowers := make([]float64, len(bands))
	for i, b := range bands {
		dates[i] = b.Date.Format("2006-01-02")
		closes[i] = b.Close
		means[i] = b.Mean
		uppers[i] = b.Upper
		lowers[i] = b.Lower
	}

	return dataframe.New(
		series.New(dates, series.String, "date"),
		series.New(closes, series.Float, "close"),
		series.New(means, series.Float, "mean"),
		series.New(uppers, series.Float, "upper"),
		series.New(lowers, series.Float, "lower"),
	)
}

type bandJSON struct {
	Date  string   `json:"date"`
	Close float64  `json:"close"`
	Mean  *float64 `json:"mean"`
	Upper *float64 `json:"upper"`
	Lower *float64 `json:"lower"`
}

// MarshalJSON writes warm-up rows with null bands
func (b Band) MarshalJSON() ([]byte, error) {
	return json.Marshal(bandJSON{
		Date:  b.Date.Format("2006-01-02"),
		Close: b.Close,
		Mean:  finite(b.Mean),
		Upper: finite(b.Upper),
		Lower: finite(b.Lower),
	})
}

// UnmarshalJSON reads null bands back as NaN
func (b *Band) UnmarshalJSON(data []byte) error {
	var raw bandJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	date, err := time.Parse("2006-01-02", raw.Date)
	if err != nil {
		return fmt.Errorf("parse band date: %w", err)
	}

	*b = Band{Date: date, Close: raw.Close, Mean: orNaN(raw.Mean), Upper: orNaN(raw.Upper), Lower: orNaN(raw.Lower)}
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
