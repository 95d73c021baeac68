package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/energyls/internal/contracts"
)

// ErrPlanNotFound is returned when no plan exists for the requested date
var ErrPlanNotFound = errors.New("allocation plan not found")

// Repository persists allocation plans.
// It implements contracts.PlanSink; one plan is kept per date.
// ⭐ SSOT: Execution 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new execution repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Name implements contracts.PlanSink
func (r *Repository) Name() string {
	return "postgres"
}

// Publish implements contracts.PlanSink by saving the plan
func (r *Repository) Publish(ctx context.Context, plan *contracts.AllocationPlan) error {
	return r.SavePlan(ctx, plan)
}

// SavePlan replaces the stored plan for plan.Date
func (r *Repository) SavePlan(ctx context.Context, plan *contracts.AllocationPlan) error {
	excludedJSON, err := json.Marshal(plan.Excluded)
	if err != nil {
		return fmt.Errorf("marshal excluded: %w", err)
	}

	skipped := plan.Skipped
	if skipped == nil {
		skipped = []string{}
	}

	// Begin transaction
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM execution.target_weights WHERE plan_date = $1", plan.Date)
	if err != nil {
		return fmt.Errorf("failed to delete old weights: %w", err)
	}

	planQuery := `
		INSERT INTO execution.allocation_plans (
			plan_date, run_id, long_weight, short_weight, excluded, skipped, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (plan_date) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			long_weight = EXCLUDED.long_weight,
			short_weight = EXCLUDED.short_weight,
			excluded = EXCLUDED.excluded,
			skipped = EXCLUDED.skipped,
			created_at = NOW()
	`

	_, err = tx.Exec(ctx, planQuery,
		plan.Date, plan.RunID, plan.LongWeight, plan.ShortWeight, excludedJSON, skipped,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	weightQuery := `
		INSERT INTO execution.target_weights (
			plan_date, seq, security_id, target_weight, kind
		) VALUES ($1, $2, $3, $4, $5)
	`

	for i, ins := range plan.Instructions {
		_, err := tx.Exec(ctx, weightQuery, plan.Date, i, ins.SecurityID, ins.TargetWeight, string(ins.Kind))
		if err != nil {
			return fmt.Errorf("failed to insert weight %s: %w", ins.SecurityID, err)
		}
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LatestPlan loads the most recent plan
func (r *Repository) LatestPlan(ctx context.Context) (*contracts.AllocationPlan, error) {
	query := `
		SELECT plan_date, run_id, long_weight, short_weight, excluded, skipped
		FROM execution.allocation_plans
		ORDER BY plan_date DESC
		LIMIT 1
	`
	return r.loadPlan(ctx, query)
}

// PlanByDate loads the plan for a date
func (r *Repository) PlanByDate(ctx context.Context, date time.Time) (*contracts.AllocationPlan, error) {
	query := `
		SELECT plan_date, run_id, long_weight, short_weight, excluded, skipped
		FROM execution.allocation_plans
		WHERE plan_date = $1
	`
	return r.loadPlan(ctx, query, date)
}

func (r *Repository) loadPlan(ctx context.Context, query string, args ...interface{}) (*contracts.AllocationPlan, error) {
	var (
		date         time.Time
		excludedJSON []byte
		skipped      []string
	)

	plan := contracts.NewAllocationPlan(time.Time{})
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&date, &plan.RunID, &plan.LongWeight, &plan.ShortWeight, &excludedJSON, &skipped,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	plan.Date = date
	if len(skipped) > 0 {
		plan.Skipped = skipped
	}
	if len(excludedJSON) > 0 {
		if err := json.Unmarshal(excludedJSON, &plan.Excluded); err != nil {
			return nil, fmt.Errorf("unmarshal excluded: %w", err)
		}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT security_id, target_weight, kind
		FROM execution.target_weights
		WHERE plan_date = $1
		ORDER BY seq ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     string
			weight float64
			kind   string
		)
		if err := rows.Scan(&id, &weight, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		plan.Add(id, weight, contracts.InstructionKind(kind))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return plan, nil
}
