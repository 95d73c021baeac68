package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/pkg/logger"
)

// SnapshotWarmupJob builds the cycle's snapshots ahead of the rebalance so
// the cached provider serves them when the cycle starts
type SnapshotWarmupJob struct {
	provider contracts.SnapshotProvider
	schedule string
	location *time.Location
	now      func() time.Time
	logger   *logger.Logger
}

// NewSnapshotWarmupJob creates a new warmup job
func NewSnapshotWarmupJob(provider contracts.SnapshotProvider, schedule string, loc *time.Location, log *logger.Logger) *SnapshotWarmupJob {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SnapshotWarmupJob{
		provider: provider,
		schedule: schedule,
		location: loc,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *SnapshotWarmupJob) Name() string {
	return "snapshot_warmup"
}

// Schedule returns the cron schedule
func (j *SnapshotWarmupJob) Schedule() string {
	return j.schedule
}

// Run builds and caches today's snapshot set
func (j *SnapshotWarmupJob) Run(ctx context.Context) error {
	date := j.now().In(j.location)

	set, err := j.provider.Snapshots(ctx, date)
	if err != nil {
		return fmt.Errorf("build snapshots: %w", err)
	}
	if set == nil {
		return fmt.Errorf("build snapshots: provider returned no set")
	}

	j.logger.WithFields(map[string]interface{}{
		"date":      date.Format("2006-01-02"),
		"universe":  set.Universe,
		"snapshots": set.Count(),
	}).Info("Snapshots warmed")

	return nil
}
