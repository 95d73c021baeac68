package execution

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/pkg/logger"
)

// Broadcaster is the pub/sub side of pkg/redis.Client
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// Publisher sends each plan as JSON on a pub/sub channel for the order router
type Publisher struct {
	client  Broadcaster
	channel string
	logger  *logger.Logger
}

// NewPublisher creates a plan publisher
func NewPublisher(client Broadcaster, channel string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{client: client, channel: channel, logger: log}
}

// Name implements contracts.PlanSink
func (p *Publisher) Name() string {
	return "redis"
}

// Publish implements contracts.PlanSink
func (p *Publisher) Publish(ctx context.Context, plan *contracts.AllocationPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload)
	if err != nil {
		return err
	}

	if receivers == 0 {
		p.logger.WithField("channel", p.channel).Warn("Plan published with no subscribers")
	}
	return nil
}
