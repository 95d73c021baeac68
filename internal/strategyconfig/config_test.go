package strategyconfig

import (
	"errors"
	"strings"
	"testing"
)

const validYAML = `
meta:
  strategy_id: energy_ls
  version: "1.0.0"
  timezone: America/New_York
  market_open_local: "09:30"
  rebalance:
    weekday: MON
    offset_minutes: 60
universe:
  sector_code: 309
  lookback_days: 60
  dollar_volume:
    window: 30
    percentile_low: 90
    percentile_high: 100
  price_filter:
    enabled: false
    top_by_open: 50
    close_percentile_low: 90
    close_percentile_high: 100
signals:
  short_window: 10
  long_window: 30
allocation:
  long_budget: 0.5
  short_budget: 0.5
bands:
  window: 20
  k: 2
`

func mustParse(t *testing.T) *Config {
	t.Helper()
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg, yamlData, err := Load("../../config/strategy/energy_ls.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.StrategyID != "energy_ls" {
		t.Errorf("expected strategy_id=energy_ls, got %s", cfg.Meta.StrategyID)
	}
	if cfg.Universe.SectorCode != 309 {
		t.Errorf("expected sector_code=309, got %d", cfg.Universe.SectorCode)
	}
	if cfg.Universe.PriceFilter.Enabled {
		t.Error("price filter should be off by default")
	}

	// 해시 생성
	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	// 동일 설정 → 동일 해시
	parsed := mustParse(t)
	hash2, _ := Hash(parsed)
	if hash != hash2 {
		t.Error("same settings must hash the same regardless of comments")
	}

	t.Logf("config hash: %s", hash)
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestParse_UnknownField(t *testing.T) {
	data := strings.Replace(validYAML, "short_window: 10", "short_window: 10\n  shortwindow: 5", 1)

	if _, err := Parse([]byte(data)); err == nil {
		t.Fatal("expected unknown field to fail")
	}
}

func TestHash_ChangesWithSettings(t *testing.T) {
	cfg := mustParse(t)
	before, _ := Hash(cfg)

	cfg.Signals.ShortWindow = 5
	after, _ := Hash(cfg)

	if before == after {
		t.Error("hash should change when a setting changes")
	}
}

func TestCronSpec(t *testing.T) {
	cfg := mustParse(t)

	want := "CRON_TZ=America/New_York 0 30 10 * * MON"
	if got := cfg.CronSpec(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := cfg.WarmupCronSpec(); got != "CRON_TZ=America/New_York 0 30 9 * * MON" {
		t.Errorf("unexpected warmup spec %q", got)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Errorf("unexpected location %s", cfg.Location())
	}

	cfg.Meta.Rebalance.Weekday = "tue"
	cfg.Meta.Rebalance.OffsetMinutes = 45
	want = "CRON_TZ=America/New_York 0 15 10 * * TUE"
	if got := cfg.CronSpec(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSectionMapping(t *testing.T) {
	cfg := mustParse(t)

	u := cfg.UniverseConfig()
	if u.SectorCode != 309 || u.DollarVolumeWindow != 30 || u.ShortWindow != 10 || u.LongWindow != 30 {
		t.Errorf("unexpected universe config: %+v", u)
	}
	if u.DollarVolumeLow != 90 || u.DollarVolumeHigh != 100 {
		t.Errorf("unexpected dollar volume band: %v-%v", u.DollarVolumeLow, u.DollarVolumeHigh)
	}

	e := cfg.EngineConfig()
	if e.LongBudget != 0.5 || e.ShortBudget != 0.5 {
		t.Errorf("unexpected engine config: %+v", e)
	}

	b := cfg.BollingerConfig()
	if b.Window != 20 || b.K != 2 {
		t.Errorf("unexpected bollinger config: %+v", b)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"bad timezone", func(c *Config) { c.Meta.Timezone = "Mars/Olympus" }, "meta.timezone"},
		{"bad open time", func(c *Config) { c.Meta.MarketOpenLocal = "9:30" }, "meta.market_open_local"},
		{"weekend", func(c *Config) { c.Meta.Rebalance.Weekday = "SAT" }, "meta.rebalance.weekday"},
		{"negative offset", func(c *Config) { c.Meta.Rebalance.OffsetMinutes = -5 }, "meta.rebalance.offset_minutes"},
		{"inverted band", func(c *Config) { c.Universe.DollarVolume.PercentileLow = 100; c.Universe.DollarVolume.PercentileHigh = 90 }, "universe.dollar_volume"},
		{"zero dollar volume window", func(c *Config) { c.Universe.DollarVolume.Window = 0 }, "universe.dollar_volume.window"},
		{"price filter without top", func(c *Config) { c.Universe.PriceFilter.Enabled = true; c.Universe.PriceFilter.TopByOpen = 0 }, "universe.price_filter.top_by_open"},
		{"windows inverted", func(c *Config) { c.Signals.LongWindow = 10 }, "signals.long_window"},
		{"short lookback", func(c *Config) { c.Universe.LookbackDays = 20 }, "universe.lookback_days"},
		{"zero long budget", func(c *Config) { c.Allocation.LongBudget = 0 }, "allocation.long_budget"},
		{"short budget over 1", func(c *Config) { c.Allocation.ShortBudget = 1.5 }, "allocation.short_budget"},
		{"band window", func(c *Config) { c.Bands.Window = 1 }, "bands.window"},
		{"band k", func(c *Config) { c.Bands.K = 0 }, "bands.k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mustParse(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestWarn(t *testing.T) {
	cfg := mustParse(t)
	if warnings := Warn(cfg); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	cfg.Allocation.LongBudget = 0.8
	cfg.Allocation.ShortBudget = 0.5
	cfg.Universe.DollarVolume.PercentileLow = 98

	codes := map[string]bool{}
	for _, w := range Warn(cfg) {
		codes[w.Code] = true
	}
	for _, code := range []string{"NOT_DOLLAR_NEUTRAL", "LEVERAGED", "NARROW_UNIVERSE"} {
		if !codes[code] {
			t.Errorf("expected warning %s", code)
		}
	}
}

func TestValidateHHMM(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"09:30", false},
		{"23:59", false},
		{"9:30", true},
		{"24:00", true},
		{"0930", true},
	}

	for _, tt := range tests {
		err := validateHHMM(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateHHMM(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
