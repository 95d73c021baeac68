package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedSnapshot marks a snapshot that cannot be classified
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// SecuritySnapshot is the per-security factor row for one rebalance cycle
// ⭐ SSOT: Universe → Signals 데이터 전달
// Missing values are NaN. A snapshot is immutable once produced.
type SecuritySnapshot struct {
	SecurityID   string  `json:"security_id"`
	Sector       int     `json:"sector,omitempty"`
	Close        float64 `json:"close"`
	Mean10       float64 `json:"mean_10"`
	Mean30       float64 `json:"mean_30"`
	DollarVolume float64 `json:"dollar_volume,omitempty"` // 30일 평균 거래대금
	Tradable     bool    `json:"tradable"`
}

// Validate reports why a snapshot is unusable, wrapping ErrMalformedSnapshot.
// Only the id and the two means are checked; Close and DollarVolume are
// informational and may be missing.
func (s SecuritySnapshot) Validate() error {
	if s.SecurityID == "" {
		return fmt.Errorf("%w: empty security id", ErrMalformedSnapshot)
	}
	if !isFinite(s.Mean10) || s.Mean10 < 0 {
		return fmt.Errorf("%w: %s: missing 10-period mean", ErrMalformedSnapshot, s.SecurityID)
	}
	if !isFinite(s.Mean30) || s.Mean30 < 0 {
		return fmt.Errorf("%w: %s: missing 30-period mean", ErrMalformedSnapshot, s.SecurityID)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// snapshotJSON carries missing values as null
type snapshotJSON struct {
	SecurityID   string   `json:"security_id"`
	Sector       int      `json:"sector,omitempty"`
	Close        *float64 `json:"close"`
	Mean10       *float64 `json:"mean_10"`
	Mean30       *float64 `json:"mean_30"`
	DollarVolume *float64 `json:"dollar_volume"`
	Tradable     bool     `json:"tradable"`
}

// MarshalJSON encodes NaN and Inf as null
func (s SecuritySnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		SecurityID:   s.SecurityID,
		Sector:       s.Sector,
		Close:        finiteOrNil(s.Close),
		Mean10:       finiteOrNil(s.Mean10),
		Mean30:       finiteOrNil(s.Mean30),
		DollarVolume: finiteOrNil(s.DollarVolume),
		Tradable:     s.Tradable,
	})
}

// UnmarshalJSON decodes null as NaN
func (s *SecuritySnapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = SecuritySnapshot{
		SecurityID:   raw.SecurityID,
		Sector:       raw.Sector,
		Close:        nilToNaN(raw.Close),
		Mean10:       nilToNaN(raw.Mean10),
		Mean30:       nilToNaN(raw.Mean30),
		DollarVolume: nilToNaN(raw.DollarVolume),
		Tradable:     raw.Tradable,
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func nilToNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// SnapshotSet is the full cross-section delivered for one cycle
type SnapshotSet struct {
	Date      time.Time          `json:"date"`
	Snapshots []SecuritySnapshot `json:"snapshots"`
	Universe  int                `json:"universe"` // securities considered before filters
}

// Count returns the number of snapshots
func (s *SnapshotSet) Count() int {
	return len(s.Snapshots)
}

// IDs returns snapshot identifiers in delivery order
func (s *SnapshotSet) IDs() []string {
	ids := make([]string, 0, len(s.Snapshots))
	for _, snap := range s.Snapshots {
		ids = append(ids, snap.SecurityID)
	}
	return ids
}

// Bar is one daily OHLCV row from the price store
type Bar struct {
	SecurityID string    `json:"security_id"`
	Date       time.Time `json:"date"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     int64     `json:"volume"`
}

// DollarVolume is close × volume for the bar
func (b Bar) DollarVolume() float64 {
	return b.Close * float64(b.Volume)
}

// SecurityInfo is the static reference data for a listed security
type SecurityInfo struct {
	SecurityID string `json:"security_id"`
	Name       string `json:"name"`
	Sector     int    `json:"sector"` // Morningstar sector code (309 = energy)
	Halted     bool   `json:"halted"`
}
