package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/energyls/internal/contracts"
)

// Repository reads securities, prices and positions from Postgres.
// It implements PriceSource, contracts.HoldingsSource and contracts.TradabilityChecker.
// ⭐ SSOT: 가격/보유 데이터 조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActiveSecurities lists securities listed on date
func (r *Repository) ActiveSecurities(ctx context.Context, date time.Time) ([]contracts.SecurityInfo, error) {
	query := `
		SELECT security_id, name, COALESCE(sector, 0), halted
		FROM data.securities
		WHERE listed_on <= $1
		  AND (delisted_on IS NULL OR delisted_on > $1)
		ORDER BY security_id
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query securities: %w", err)
	}
	defer rows.Close()

	securities := make([]contracts.SecurityInfo, 0)
	for rows.Next() {
		var s contracts.SecurityInfo
		if err := rows.Scan(&s.SecurityID, &s.Name, &s.Sector, &s.Halted); err != nil {
			return nil, fmt.Errorf("scan security: %w", err)
		}
		securities = append(securities, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate securities: %w", rows.Err())
	}

	return securities, nil
}

// Bars returns daily bars per security in ascending date order
func (r *Repository) Bars(ctx context.Context, ids []string, from, to time.Time) (map[string][]contracts.Bar, error) {
	result := make(map[string][]contracts.Bar, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT security_id, trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_prices
		WHERE security_id = ANY($1) AND trade_date BETWEEN $2 AND $3
		ORDER BY security_id, trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ids, from, to)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.SecurityID, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		result[b.SecurityID] = append(result[b.SecurityID], b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate bars: %w", rows.Err())
	}

	return result, nil
}

// Holdings implements contracts.HoldingsSource.
// Tradable is left false; the caller resolves it with CanTrade.
func (r *Repository) Holdings(ctx context.Context) ([]contracts.Holding, error) {
	query := `
		SELECT security_id, shares
		FROM portfolio.positions
		WHERE shares <> 0
		ORDER BY security_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	holdings := make([]contracts.Holding, 0)
	for rows.Next() {
		var h contracts.Holding
		if err := rows.Scan(&h.SecurityID, &h.Shares); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		holdings = append(holdings, h)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate positions: %w", rows.Err())
	}

	return holdings, nil
}

// CanTrade implements contracts.TradabilityChecker: a security trades on date
// when it has a bar with positive volume and is not halted.
func (r *Repository) CanTrade(ctx context.Context, date time.Time, ids []string) (map[string]bool, error) {
	result := make(map[string]bool, len(ids))
	for _, id := range ids {
		result[id] = false
	}
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT s.security_id
		FROM data.securities s
		JOIN data.daily_prices p ON p.security_id = s.security_id
		WHERE s.security_id = ANY($1)
		  AND p.trade_date = $2
		  AND p.volume > 0
		  AND NOT s.halted
	`

	rows, err := r.pool.Query(ctx, query, ids, date)
	if err != nil {
		return nil, fmt.Errorf("query tradability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tradability: %w", err)
		}
		result[id] = true
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tradability: %w", rows.Err())
	}

	return result, nil
}
