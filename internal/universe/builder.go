package universe

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/pkg/logger"
)

// PriceSource is the read side of the price store
type PriceSource interface {
	ActiveSecurities(ctx context.Context, date time.Time) ([]contracts.SecurityInfo, error)
	Bars(ctx context.Context, ids []string, from, to time.Time) (map[string][]contracts.Bar, error)
}

// Config holds universe filter criteria
type Config struct {
	SectorCode         int     // 0 disables the sector filter
	DollarVolumeWindow int     // bars in the average dollar volume
	DollarVolumeLow    float64 // percentile band, inclusive
	DollarVolumeHigh   float64
	PriceFilter        bool // top-by-open then close percentile
	TopByOpen          int
	CloseLow           float64
	CloseHigh          float64
	ShortWindow        int // mean10
	LongWindow         int // mean30
	LookbackDays       int // calendar days of history loaded per cycle
}

// DefaultConfig is the energy-sector screen
func DefaultConfig() Config {
	return Config{
		SectorCode:         309,
		DollarVolumeWindow: 30,
		DollarVolumeLow:    90,
		DollarVolumeHigh:   100,
		PriceFilter:        false,
		TopByOpen:          50,
		CloseLow:           90,
		CloseHigh:          100,
		ShortWindow:        10,
		LongWindow:         30,
		LookbackDays:       60,
	}
}

// Builder constructs the cycle's snapshot cross-section
// ⭐ SSOT: Universe → SecuritySnapshot 생성은 여기서만
type Builder struct {
	source PriceSource
	config Config
	logger *logger.Logger
}

// NewBuilder creates a new universe builder
func NewBuilder(source PriceSource, config Config, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{source: source, config: config, logger: log}
}

// Snapshots implements contracts.SnapshotProvider.
// Factors use bars strictly before date; tradability uses the bar on date.
func (b *Builder) Snapshots(ctx context.Context, date time.Time) (*contracts.SnapshotSet, error) {
	day := truncateDay(date)

	// 1. 활성 종목 조회
	securities, err := b.source.ActiveSecurities(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("get active securities: %w", err)
	}

	set := &contracts.SnapshotSet{
		Date:      day,
		Snapshots: make([]contracts.SecuritySnapshot, 0),
		Universe:  len(securities),
	}

	// 2. 종목 정리 (중복 제거)
	infos := make(map[string]contracts.SecurityInfo, len(securities))
	ids := make([]string, 0, len(securities))
	for _, sec := range securities {
		if _, dup := infos[sec.SecurityID]; dup {
			continue
		}
		infos[sec.SecurityID] = sec
		ids = append(ids, sec.SecurityID)
	}
	sort.Strings(ids)

	inSector := make(map[string]bool, len(ids))
	for _, id := range ids {
		if b.config.SectorCode == 0 || infos[id].Sector == b.config.SectorCode {
			inSector[id] = true
		}
	}

	if len(inSector) == 0 {
		b.logger.WithField("date", day.Format("2006-01-02")).Warn("No securities in sector")
		return set, nil
	}

	// 3. 가격 이력 조회 (거래대금 순위는 전체 유니버스 기준)
	from := day.AddDate(0, 0, -b.lookbackDays())
	bars, err := b.source.Bars(ctx, ids, from, day)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}

	history := make(map[string][]contracts.Bar, len(ids))
	today := make(map[string]contracts.Bar, len(ids))
	for _, id := range ids {
		for _, bar := range bars[id] {
			switch {
			case bar.Date.Before(day):
				history[id] = append(history[id], bar)
			case sameDay(bar.Date, day):
				today[id] = bar
			}
		}
	}

	// 4. 거래대금 백분위 필터 (전체 유니버스)
	dollarVolume := make(map[string]float64, len(ids))
	for _, id := range ids {
		dollarVolume[id] = AverageDollarVolume(history[id], b.config.DollarVolumeWindow)
	}
	keep := PercentileBetween(dollarVolume, b.config.DollarVolumeLow, b.config.DollarVolumeHigh)

	// 5. 가격 필터 (선택, 고거래대금 집합 기준)
	if b.config.PriceFilter {
		keep = b.priceFilter(keep, history)
	}

	// 6. 이동평균 계산
	for _, id := range ids {
		if !keep[id] || !inSector[id] {
			continue
		}

		hist := history[id]
		closeSeries := closes(hist)
		last := math.NaN()
		if len(hist) > 0 {
			last = hist[len(hist)-1].Close
		}

		bar, ok := today[id]
		set.Snapshots = append(set.Snapshots, contracts.SecuritySnapshot{
			SecurityID:   id,
			Sector:       infos[id].Sector,
			Close:        last,
			Mean10:       SMA(closeSeries, b.config.ShortWindow),
			Mean30:       SMA(closeSeries, b.config.LongWindow),
			DollarVolume: dollarVolume[id],
			Tradable:     ok && bar.Volume > 0 && !infos[id].Halted,
		})
	}

	b.logger.WithFields(map[string]interface{}{
		"date":      day.Format("2006-01-02"),
		"universe":  set.Universe,
		"sector":    len(inSector),
		"snapshots": set.Count(),
	}).Info("Universe built")

	return set, nil
}

// priceFilter keeps the top-by-open names, then those in the close band
func (b *Builder) priceFilter(keep map[string]bool, history map[string][]contracts.Bar) map[string]bool {
	opens := make(map[string]float64, len(keep))
	for id := range keep {
		opens[id] = lastField(history[id], func(bar contracts.Bar) float64 { return bar.Open })
	}

	lastCloses := make(map[string]float64)
	for _, id := range Top(opens, b.config.TopByOpen) {
		lastCloses[id] = lastField(history[id], func(bar contracts.Bar) float64 { return bar.Close })
	}

	return PercentileBetween(lastCloses, b.config.CloseLow, b.config.CloseHigh)
}

func (b *Builder) lookbackDays() int {
	days := b.config.LookbackDays
	// 영업일 기준 창을 채우려면 달력일이 더 필요
	need := 2 * max(b.config.LongWindow, b.config.DollarVolumeWindow)
	if days < need {
		days = need
	}
	return days
}

func lastField(bars []contracts.Bar, field func(contracts.Bar) float64) float64 {
	if len(bars) == 0 {
		return math.NaN()
	}
	return field(bars[len(bars)-1])
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
