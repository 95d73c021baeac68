package rebalance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/internal/signals"
	"github.com/wonny/energyls/pkg/logger"
	"github.com/wonny/energyls/pkg/metrics"
)

// Deps wires the collaborators of one rebalance cycle.
// Holdings may be nil for an account with no positions. Without Tradability
// the snapshot's own Tradable flag is used.
type Deps struct {
	Provider    contracts.SnapshotProvider
	Holdings    contracts.HoldingsSource
	Tradability contracts.TradabilityChecker
	Engine      *signals.Engine
	Sinks       []contracts.PlanSink // live runs
	DryRunSinks []contracts.PlanSink // dry runs
	Metrics     *metrics.Recorder    // optional
	Logger      *logger.Logger
}

// Rebalancer runs the weekly cycle: snapshots → holdings → allocation → sinks
// ⭐ SSOT: 리밸런싱 사이클 조율은 여기서만
type Rebalancer struct {
	deps   Deps
	logger *logger.Logger
}

// RunConfig holds configuration for one cycle
type RunConfig struct {
	Date   time.Time
	RunID  string
	DryRun bool // publish to DryRunSinks only
}

// CycleResult holds the results of one cycle
type CycleResult struct {
	RunID           string
	Date            time.Time
	Success         bool
	Error           error
	CompletedStages []contracts.Stage
	Universe        int
	Snapshots       int
	Holdings        int
	Plan            *contracts.AllocationPlan
	Duration        time.Duration
}

// New creates a rebalancer
func New(deps Deps) (*Rebalancer, error) {
	if deps.Provider == nil {
		return nil, errors.New("rebalance: snapshot provider is required")
	}
	if deps.Engine == nil {
		return nil, errors.New("rebalance: engine is required")
	}
	if deps.Holdings != nil && deps.Tradability == nil {
		return nil, errors.New("rebalance: tradability checker is required with a holdings source")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &Rebalancer{deps: deps, logger: deps.Logger}, nil
}

// Run executes one cycle. The returned result is never nil.
func (r *Rebalancer) Run(ctx context.Context, config RunConfig) (*CycleResult, error) {
	startTime := time.Now()

	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.Date.IsZero() {
		config.Date = startTime
	}
	config.Date = truncateDay(config.Date)

	result := &CycleResult{
		RunID:           config.RunID,
		Date:            config.Date,
		CompletedStages: make([]contracts.Stage, 0, len(contracts.AllStages())),
	}
	log := r.logger.WithRun(config.RunID)

	log.WithFields(map[string]interface{}{
		"date":    config.Date.Format("2006-01-02"),
		"dry_run": config.DryRun,
	}).Info("Starting rebalance cycle")

	err := r.run(ctx, config, result, log)
	result.Duration = time.Since(startTime)
	result.Success = err == nil
	result.Error = err

	if r.deps.Metrics != nil {
		r.deps.Metrics.ObserveCycle(result.Success, result.Duration)
	}

	if err != nil {
		log.WithError(err).WithField("stages", len(result.CompletedStages)).Error("Rebalance cycle failed")
		return result, err
	}

	log.WithFields(map[string]interface{}{
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
	}).Info("Rebalance cycle completed")

	return result, nil
}

func (r *Rebalancer) run(ctx context.Context, config RunConfig, result *CycleResult, log *logger.Logger) error {
	// 1. Universe
	set, err := r.deps.Provider.Snapshots(ctx, config.Date)
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageUniverse, err)
	}
	if set == nil {
		log.Warn("Snapshot provider returned no set")
		set = &contracts.SnapshotSet{Date: config.Date}
	}
	result.Universe = set.Universe
	result.Snapshots = set.Count()
	result.CompletedStages = append(result.CompletedStages, contracts.StageUniverse)

	// 2. Holdings + can_trade
	holdings, err := r.loadHoldings(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageHoldings, err)
	}
	snapshots, err := r.resolveTradability(ctx, config.Date, set.Snapshots, holdings)
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageHoldings, err)
	}
	result.Holdings = len(holdings)
	result.CompletedStages = append(result.CompletedStages, contracts.StageHoldings)

	// 3. Allocation
	plan, err := r.deps.Engine.BuildAllocationPlan(config.Date, snapshots, holdings)
	if err != nil {
		return fmt.Errorf("%s: %w", contracts.StageAllocation, err)
	}
	plan.RunID = config.RunID
	result.Plan = plan
	result.CompletedStages = append(result.CompletedStages, contracts.StageAllocation)

	if r.deps.Metrics != nil {
		r.deps.Metrics.ObservePlan(metrics.CycleStats{
			Longs:        plan.CountKind(contracts.KindLong),
			Shorts:       plan.CountKind(contracts.KindShort),
			Liquidations: plan.CountKind(contracts.KindLiquidate),
			Skipped:      len(plan.Skipped),
			Excluded:     len(plan.Excluded),
			LongWeight:   plan.LongExposure(),
			ShortWeight:  plan.ShortExposure(),
		})
	}

	// 4. Publish
	sinks := r.deps.Sinks
	if config.DryRun {
		sinks = r.deps.DryRunSinks
	}
	if err := r.publish(ctx, plan, sinks, log); err != nil {
		return fmt.Errorf("%s: %w", contracts.StagePublish, err)
	}
	result.CompletedStages = append(result.CompletedStages, contracts.StagePublish)

	return nil
}

// loadHoldings reads current positions
func (r *Rebalancer) loadHoldings(ctx context.Context) ([]contracts.Holding, error) {
	if r.deps.Holdings == nil {
		return nil, nil
	}

	holdings, err := r.deps.Holdings.Holdings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get holdings: %w", err)
	}
	return holdings, nil
}

// resolveTradability asks can_trade once for every snapshot and holding on
// the cycle date. Snapshots are copied; the provider's set is not modified.
func (r *Rebalancer) resolveTradability(ctx context.Context, date time.Time, snapshots []contracts.SecuritySnapshot, holdings []contracts.Holding) ([]contracts.SecuritySnapshot, error) {
	if r.deps.Tradability == nil {
		return snapshots, nil
	}

	seen := make(map[string]bool, len(snapshots)+len(holdings))
	ids := make([]string, 0, len(snapshots)+len(holdings))
	for _, s := range snapshots {
		if s.SecurityID != "" && !seen[s.SecurityID] {
			seen[s.SecurityID] = true
			ids = append(ids, s.SecurityID)
		}
	}
	for _, h := range holdings {
		if h.SecurityID != "" && !seen[h.SecurityID] {
			seen[h.SecurityID] = true
			ids = append(ids, h.SecurityID)
		}
	}
	if len(ids) == 0 {
		return snapshots, nil
	}

	tradable, err := r.deps.Tradability.CanTrade(ctx, date, ids)
	if err != nil {
		return nil, fmt.Errorf("can trade: %w", err)
	}

	resolved := make([]contracts.SecuritySnapshot, len(snapshots))
	copy(resolved, snapshots)
	for i := range resolved {
		resolved[i].Tradable = tradable[resolved[i].SecurityID]
	}
	for i := range holdings {
		holdings[i].Tradable = tradable[holdings[i].SecurityID]
	}
	return resolved, nil
}

// publish delivers the plan to every sink; one failing sink does not stop the others
func (r *Rebalancer) publish(ctx context.Context, plan *contracts.AllocationPlan, sinks []contracts.PlanSink, log *logger.Logger) error {
	var errs []error
	for _, sink := range sinks {
		if err := sink.Publish(ctx, plan); err != nil {
			if r.deps.Metrics != nil {
				r.deps.Metrics.SinkError(sink.Name())
			}
			log.WithError(err).WithField("sink", sink.Name()).Error("Plan delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		log.WithFields(map[string]interface{}{
			"sink":         sink.Name(),
			"instructions": len(plan.Instructions),
		}).Debug("Plan delivered")
	}
	return errors.Join(errs...)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
