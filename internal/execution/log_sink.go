package execution

import (
	"context"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/pkg/logger"
)

// LogSink writes each instruction to the log; used for dry runs
type LogSink struct {
	logger *logger.Logger
}

// NewLogSink creates a logging sink
func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{logger: log}
}

// Name implements contracts.PlanSink
func (s *LogSink) Name() string {
	return "log"
}

// Publish implements contracts.PlanSink
func (s *LogSink) Publish(ctx context.Context, plan *contracts.AllocationPlan) error {
	for i, ins := range plan.Instructions {
		s.logger.WithFields(map[string]interface{}{
			"run_id":        plan.RunID,
			"seq":           i,
			"security":      ins.SecurityID,
			"kind":          string(ins.Kind),
			"target_weight": ins.TargetWeight,
		}).Info("order_target_percent")
	}

	for _, id := range plan.Skipped {
		s.logger.WithSecurity(id).Warn("Not tradable, no order this cycle")
	}
	return nil
}
