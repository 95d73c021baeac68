package strategyconfig

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var hhmmPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil || cfg.Meta.Timezone == "" {
		return ValidationError{"meta.timezone", "must be an IANA time zone"}
	}
	if err := validateHHMM(cfg.Meta.MarketOpenLocal); err != nil {
		return ValidationError{"meta.market_open_local", err.Error()}
	}
	if !weekdays[strings.ToUpper(cfg.Meta.Rebalance.Weekday)] {
		return ValidationError{"meta.rebalance.weekday", "must be one of MON, TUE, WED, THU, FRI"}
	}
	open, _ := time.Parse("15:04", cfg.Meta.MarketOpenLocal)
	if end := open.Hour()*60 + open.Minute() + cfg.Meta.Rebalance.OffsetMinutes; cfg.Meta.Rebalance.OffsetMinutes < 0 || end >= 24*60 {
		return ValidationError{"meta.rebalance.offset_minutes", "must keep the cycle within the trading day"}
	}

	// === Universe ===
	if cfg.Universe.SectorCode < 0 {
		return ValidationError{"universe.sector_code", "must be >= 0"}
	}
	if cfg.Universe.DollarVolume.Window <= 0 {
		return ValidationError{"universe.dollar_volume.window", "must be > 0"}
	}
	if err := validatePercentileBand(cfg.Universe.DollarVolume.PercentileLow, cfg.Universe.DollarVolume.PercentileHigh, "universe.dollar_volume"); err != nil {
		return err
	}
	if cfg.Universe.PriceFilter.Enabled {
		if cfg.Universe.PriceFilter.TopByOpen <= 0 {
			return ValidationError{"universe.price_filter.top_by_open", "must be > 0"}
		}
		if err := validatePercentileBand(cfg.Universe.PriceFilter.ClosePercentileLow, cfg.Universe.PriceFilter.ClosePercentileHigh, "universe.price_filter"); err != nil {
			return err
		}
	}

	// === Signals ===
	if cfg.Signals.ShortWindow <= 0 {
		return ValidationError{"signals.short_window", "must be > 0"}
	}
	if cfg.Signals.LongWindow <= cfg.Signals.ShortWindow {
		return ValidationError{"signals.long_window", "must be greater than short_window"}
	}
	if cfg.Universe.LookbackDays < cfg.Signals.LongWindow {
		return ValidationError{"universe.lookback_days", "must cover signals.long_window"}
	}

	// === Allocation ===
	if err := validateBudget(cfg.Allocation.LongBudget, "allocation.long_budget"); err != nil {
		return err
	}
	if err := validateBudget(cfg.Allocation.ShortBudget, "allocation.short_budget"); err != nil {
		return err
	}

	// === Bands ===
	if cfg.Bands.Window < 2 {
		return ValidationError{"bands.window", "must be >= 2"}
	}
	if cfg.Bands.K <= 0 {
		return ValidationError{"bands.k", "must be > 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 달러 중립 아님
	if math.Abs(cfg.Allocation.LongBudget-cfg.Allocation.ShortBudget) > 1e-9 {
		warnings = append(warnings, Warning{
			Code:    "NOT_DOLLAR_NEUTRAL",
			Message: "long_budget != short_budget: 순 노출이 0이 아님",
		})
	}

	// 레버리지
	if cfg.Allocation.LongBudget+cfg.Allocation.ShortBudget > 1 {
		warnings = append(warnings, Warning{
			Code:    "LEVERAGED",
			Message: "총 노출 > 100%: 레버리지 사용",
		})
	}

	// 좁은 유니버스
	if cfg.Universe.DollarVolume.PercentileHigh-cfg.Universe.DollarVolume.PercentileLow < 5 {
		warnings = append(warnings, Warning{
			Code:    "NARROW_UNIVERSE",
			Message: "거래대금 백분위 밴드 < 5: 종목 수가 매우 적을 수 있음",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateHHMM(s string) error {
	if !hhmmPattern.MatchString(s) {
		return errors.New("must be HH:MM format")
	}
	_, err := time.Parse("15:04", s)
	return err
}

// validatePercentileBand는 0 <= low <= high <= 100 검증
func validatePercentileBand(low, high float64, field string) error {
	if low < 0 || high > 100 || low > high {
		return ValidationError{field, "percentile band must satisfy 0 <= low <= high <= 100"}
	}
	return nil
}

// validateBudget는 사이드 비중이 (0, 1] 범위인지 검증
func validateBudget(v float64, field string) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return ValidationError{field, "must be in range (0, 1]"}
	}
	return nil
}
