package signals

import (
	"errors"
	"fmt"
	"time"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/pkg/logger"
)

// Default gross budgets per side
const (
	DefaultLongBudget  = 0.5
	DefaultShortBudget = 0.5
)

// ErrConflictingSignal is returned if a security lands in both books
var ErrConflictingSignal = errors.New("security classified both long and short")

// Config holds the per-side budgets
type Config struct {
	LongBudget  float64 // sum of long target weights
	ShortBudget float64 // sum of |short target weights|
}

// DefaultConfig returns the 50/50 long/short split
func DefaultConfig() Config {
	return Config{
		LongBudget:  DefaultLongBudget,
		ShortBudget: DefaultShortBudget,
	}
}

// Engine converts a snapshot cross-section into target weights
// ⭐ SSOT: 시그널 분류 및 목표 비중 계산은 여기서만
// It holds no per-cycle state; every call receives its inputs explicitly.
type Engine struct {
	config Config
	logger *logger.Logger
}

// NewEngine creates a new signal & weight engine
func NewEngine(config Config, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{config: config, logger: log}
}

// Partition is the classified cross-section
type Partition struct {
	Longs    []contracts.SecuritySnapshot
	Shorts   []contracts.SecuritySnapshot
	Signals  []contracts.Signal
	Excluded map[string]string // security: reason
}

// Partition validates and classifies snapshots, preserving input order.
// Malformed rows and repeated ids are excluded rather than failing the cycle.
func (e *Engine) Partition(snapshots []contracts.SecuritySnapshot) Partition {
	part := Partition{
		Longs:    make([]contracts.SecuritySnapshot, 0),
		Shorts:   make([]contracts.SecuritySnapshot, 0),
		Signals:  make([]contracts.Signal, 0, len(snapshots)),
		Excluded: make(map[string]string),
	}

	// first valid row per id wins; later rows are recorded under "id#row"
	first := make(map[string]int, len(snapshots))
	for i, snap := range snapshots {
		if _, ok := first[snap.SecurityID]; !ok && snap.Validate() == nil {
			first[snap.SecurityID] = i
		}
	}

	for i, snap := range snapshots {
		if err := snap.Validate(); err != nil {
			key := snap.SecurityID
			if _, ok := first[key]; ok || key == "" || part.Excluded[key] != "" {
				key = rowKey(key, i)
			}
			part.Excluded[key] = ReasonMissingData
			e.logger.WithFields(map[string]interface{}{
				"security": key,
				"error":    err.Error(),
			}).Warn("Snapshot rejected at ingestion")
			continue
		}

		if first[snap.SecurityID] != i {
			part.Excluded[rowKey(snap.SecurityID, i)] = ReasonDuplicate
			e.logger.WithSecurity(snap.SecurityID).Warn("Duplicate snapshot ignored")
			continue
		}

		sig := Classify(snap)
		part.Signals = append(part.Signals, sig)

		switch sig.Direction {
		case contracts.DirectionLong:
			part.Longs = append(part.Longs, snap)
		case contracts.DirectionShort:
			part.Shorts = append(part.Shorts, snap)
		default:
			part.Excluded[snap.SecurityID] = sig.Reason
		}
	}

	return part
}

// rowKey names an input row that cannot be keyed by its id alone
func rowKey(id string, row int) string {
	return fmt.Sprintf("%s#%d", id, row)
}

// ComputeWeights returns the per-security long and (negative) short weight
func (e *Engine) ComputeWeights(nLongs, nShorts int) (float64, float64) {
	return computeWeights(nLongs, nShorts, e.config.LongBudget, e.config.ShortBudget)
}

// BuildAllocationPlan produces target weights for one cycle.
//
// Held securities that are neither long nor short are liquidated (weight 0),
// then longs and shorts receive their equal share. Non-tradable securities
// get no instruction this cycle and are listed in plan.Skipped.
func (e *Engine) BuildAllocationPlan(date time.Time, snapshots []contracts.SecuritySnapshot, holdings []contracts.Holding) (*contracts.AllocationPlan, error) {
	plan := contracts.NewAllocationPlan(date)

	part := e.Partition(snapshots)
	plan.Excluded = part.Excluded

	longWeight, shortWeight := e.ComputeWeights(len(part.Longs), len(part.Shorts))
	plan.LongWeight = longWeight
	plan.ShortWeight = shortWeight

	inLongs := make(map[string]bool, len(part.Longs))
	for _, s := range part.Longs {
		inLongs[s.SecurityID] = true
	}
	inShorts := make(map[string]bool, len(part.Shorts))
	for _, s := range part.Shorts {
		if inLongs[s.SecurityID] {
			return nil, fmt.Errorf("%w: %s", ErrConflictingSignal, s.SecurityID)
		}
		inShorts[s.SecurityID] = true
	}

	// 1. 유니버스 이탈 종목 청산
	held := make(map[string]bool, len(holdings))
	for _, h := range holdings {
		if h.SecurityID == "" || held[h.SecurityID] {
			continue
		}
		held[h.SecurityID] = true

		if inLongs[h.SecurityID] || inShorts[h.SecurityID] {
			continue
		}
		if !h.Tradable {
			plan.Skipped = append(plan.Skipped, h.SecurityID)
			continue
		}
		plan.Add(h.SecurityID, 0, contracts.KindLiquidate)
	}

	// 2. Long
	for _, s := range part.Longs {
		if !s.Tradable {
			plan.Skipped = append(plan.Skipped, s.SecurityID)
			continue
		}
		plan.Add(s.SecurityID, longWeight, contracts.KindLong)
	}

	// 3. Short
	for _, s := range part.Shorts {
		if !s.Tradable {
			plan.Skipped = append(plan.Skipped, s.SecurityID)
			continue
		}
		plan.Add(s.SecurityID, shortWeight, contracts.KindShort)
	}

	e.logger.WithFields(map[string]interface{}{
		"date":         date.Format("2006-01-02"),
		"snapshots":    len(snapshots),
		"longs":        len(part.Longs),
		"shorts":       len(part.Shorts),
		"excluded":     len(part.Excluded),
		"liquidations": plan.CountKind(contracts.KindLiquidate),
		"skipped":      len(plan.Skipped),
		"long_weight":  longWeight,
		"short_weight": shortWeight,
	}).Info("Allocation plan built")

	return plan, nil
}
