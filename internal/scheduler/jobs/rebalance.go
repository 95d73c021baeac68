package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/energyls/internal/rebalance"
	"github.com/wonny/energyls/pkg/logger"
)

// Rebalancer runs one rebalance cycle
type Rebalancer interface {
	Run(ctx context.Context, config rebalance.RunConfig) (*rebalance.CycleResult, error)
}

// RebalanceJob runs the weekly long/short rebalance
// ⭐ SSOT: 리밸런싱 스케줄은 이 Job에서만
type RebalanceJob struct {
	rebalancer Rebalancer
	schedule   string
	location   *time.Location
	now        func() time.Time
	logger     *logger.Logger

	mu sync.Mutex // one cycle at a time

	idMu      sync.Mutex
	lastRunID string
}

// NewRebalanceJob creates a new rebalance job. Dates are taken in loc.
func NewRebalanceJob(r Rebalancer, schedule string, loc *time.Location, log *logger.Logger) *RebalanceJob {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RebalanceJob{
		rebalancer: r,
		schedule:   schedule,
		location:   loc,
		now:        time.Now,
		logger:     log,
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "weekly_rebalance"
}

// Schedule returns the cron schedule (strategy weekday, market open + offset)
func (j *RebalanceJob) Schedule() string {
	return j.schedule
}

// Run executes one cycle for today's date in the strategy time zone.
// A trigger that arrives while a cycle is still running is skipped.
func (j *RebalanceJob) Run(ctx context.Context) error {
	if !j.mu.TryLock() {
		j.logger.Warn("Previous rebalance still running, skipping trigger")
		return nil
	}
	defer j.mu.Unlock()

	date := j.now().In(j.location)
	j.logger.WithField("date", date.Format("2006-01-02")).Info("Starting scheduled rebalance")

	result, err := j.rebalancer.Run(ctx, rebalance.RunConfig{Date: date})
	if result != nil {
		j.idMu.Lock()
		j.lastRunID = result.RunID
		j.idMu.Unlock()
	}
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":       result.RunID,
		"instructions": len(result.Plan.Instructions),
		"skipped":      len(result.Plan.Skipped),
	}).Info("Scheduled rebalance completed")

	return nil
}

// LastRunID returns the run id of the most recent cycle, failed or not
func (j *RebalanceJob) LastRunID() string {
	j.idMu.Lock()
	defer j.idMu.Unlock()
	return j.lastRunID
}
