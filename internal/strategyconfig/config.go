package strategyconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/energyls/internal/indicators"
	"github.com/wonny/energyls/internal/signals"
	"github.com/wonny/energyls/internal/universe"
)

// Config는 롱/숏 리밸런싱 전략의 전체 설정
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Universe   Universe   `yaml:"universe" json:"universe"`
	Signals    Signals    `yaml:"signals" json:"signals"`
	Allocation Allocation `yaml:"allocation" json:"allocation"`
	Bands      Bands      `yaml:"bands" json:"bands"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID      string    `yaml:"strategy_id" json:"strategy_id"`
	Version         string    `yaml:"version" json:"version"`
	Timezone        string    `yaml:"timezone" json:"timezone"`
	MarketOpenLocal string    `yaml:"market_open_local" json:"market_open_local"` // HH:MM
	Rebalance       Rebalance `yaml:"rebalance" json:"rebalance"`
}

// Rebalance 주간 리밸런싱 시점 (장 시작 + offset)
type Rebalance struct {
	Weekday       string `yaml:"weekday" json:"weekday"` // MON..FRI
	OffsetMinutes int    `yaml:"offset_minutes" json:"offset_minutes"`
}

// Universe 섹터 + 거래대금 스크린
type Universe struct {
	SectorCode   int          `yaml:"sector_code" json:"sector_code"`
	LookbackDays int          `yaml:"lookback_days" json:"lookback_days"`
	DollarVolume DollarVolume `yaml:"dollar_volume" json:"dollar_volume"`
	PriceFilter  PriceFilter  `yaml:"price_filter" json:"price_filter"`
}

type DollarVolume struct {
	Window         int     `yaml:"window" json:"window"`
	PercentileLow  float64 `yaml:"percentile_low" json:"percentile_low"`
	PercentileHigh float64 `yaml:"percentile_high" json:"percentile_high"`
}

type PriceFilter struct {
	Enabled             bool    `yaml:"enabled" json:"enabled"`
	TopByOpen           int     `yaml:"top_by_open" json:"top_by_open"`
	ClosePercentileLow  float64 `yaml:"close_percentile_low" json:"close_percentile_low"`
	ClosePercentileHigh float64 `yaml:"close_percentile_high" json:"close_percentile_high"`
}

// Signals 이동평균 창
type Signals struct {
	ShortWindow int `yaml:"short_window" json:"short_window"`
	LongWindow  int `yaml:"long_window" json:"long_window"`
}

// Allocation 사이드별 총 비중
type Allocation struct {
	LongBudget  float64 `yaml:"long_budget" json:"long_budget"`
	ShortBudget float64 `yaml:"short_budget" json:"short_budget"`
}

// Bands 볼린저 밴드
type Bands struct {
	Window int     `yaml:"window" json:"window"`
	K      float64 `yaml:"k" json:"k"`
}

var weekdays = map[string]bool{"MON": true, "TUE": true, "WED": true, "THU": true, "FRI": true}

// CronSpec returns the six-field schedule (with seconds) for the weekly cycle,
// e.g. "CRON_TZ=America/New_York 0 30 10 * * MON"
func (c *Config) CronSpec() string {
	return c.cronAt(c.Meta.Rebalance.OffsetMinutes)
}

// WarmupCronSpec fires at market open on the rebalance weekday
func (c *Config) WarmupCronSpec() string {
	return c.cronAt(0)
}

func (c *Config) cronAt(offsetMinutes int) string {
	hh, mm := 0, 0
	fmt.Sscanf(c.Meta.MarketOpenLocal, "%d:%d", &hh, &mm)

	minutes := hh*60 + mm + offsetMinutes
	return fmt.Sprintf("CRON_TZ=%s 0 %d %d * * %s",
		c.Meta.Timezone, minutes%60, minutes/60, strings.ToUpper(c.Meta.Rebalance.Weekday))
}

// Location loads meta.timezone; Validate has already checked it
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Meta.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UniverseConfig maps the universe section onto the builder
func (c *Config) UniverseConfig() universe.Config {
	return universe.Config{
		SectorCode:         c.Universe.SectorCode,
		DollarVolumeWindow: c.Universe.DollarVolume.Window,
		DollarVolumeLow:    c.Universe.DollarVolume.PercentileLow,
		DollarVolumeHigh:   c.Universe.DollarVolume.PercentileHigh,
		PriceFilter:        c.Universe.PriceFilter.Enabled,
		TopByOpen:          c.Universe.PriceFilter.TopByOpen,
		CloseLow:           c.Universe.PriceFilter.ClosePercentileLow,
		CloseHigh:          c.Universe.PriceFilter.ClosePercentileHigh,
		ShortWindow:        c.Signals.ShortWindow,
		LongWindow:         c.Signals.LongWindow,
		LookbackDays:       c.Universe.LookbackDays,
	}
}

// EngineConfig maps the allocation section onto the engine
func (c *Config) EngineConfig() signals.Config {
	return signals.Config{
		LongBudget:  c.Allocation.LongBudget,
		ShortBudget: c.Allocation.ShortBudget,
	}
}

// BollingerConfig maps the bands section
func (c *Config) BollingerConfig() indicators.BollingerConfig {
	return indicators.BollingerConfig{Window: c.Bands.Window, K: c.Bands.K}
}
