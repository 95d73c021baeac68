package contracts

import (
	"context"
	"time"
)

// SnapshotProvider supplies the qualifying cross-section for a cycle
type SnapshotProvider interface {
	Snapshots(ctx context.Context, date time.Time) (*SnapshotSet, error)
}

// HoldingsSource lists securities currently held by the portfolio
type HoldingsSource interface {
	Holdings(ctx context.Context) ([]Holding, error)
}

// TradabilityChecker answers can_trade for a set of securities on a date
type TradabilityChecker interface {
	CanTrade(ctx context.Context, date time.Time, ids []string) (map[string]bool, error)
}

// PlanSink consumes an allocation plan (persistence, transport, logging)
type PlanSink interface {
	Name() string
	Publish(ctx context.Context, plan *AllocationPlan) error
}
