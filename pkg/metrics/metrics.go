package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the Prometheus collectors for rebalance cycles
// ⭐ SSOT: 메트릭 정의는 여기서만
type Recorder struct {
	registry *prometheus.Registry

	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	planSize      *prometheus.GaugeVec
	grossExposure *prometheus.GaugeVec
	sinkErrors    *prometheus.CounterVec
}

// CycleStats summarises one allocation plan for the gauges
type CycleStats struct {
	Longs        int
	Shorts       int
	Liquidations int
	Skipped      int
	Excluded     int
	LongWeight   float64 // sum of long weights
	ShortWeight  float64 // sum of |short weights|
}

// NewRecorder registers all collectors on a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energyls_rebalance_cycles_total",
				Help: "Rebalance cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "energyls_rebalance_duration_seconds",
				Help:    "Wall time of one rebalance cycle",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		planSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "energyls_plan_securities",
				Help: "Securities per bucket in the latest allocation plan",
			},
			[]string{"bucket"},
		),
		grossExposure: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "energyls_plan_exposure",
				Help: "Absolute target weight per side in the latest allocation plan",
			},
			[]string{"side"},
		),
		sinkErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energyls_plan_sink_errors_total",
				Help: "Failures delivering a plan to a sink",
			},
			[]string{"sink"},
		),
	}

	reg.MustRegister(r.cycles, r.cycleDuration, r.planSize, r.grossExposure, r.sinkErrors)
	return r
}

// ObserveCycle records the outcome and duration of a cycle
func (r *Recorder) ObserveCycle(success bool, d time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	r.cycles.WithLabelValues(result).Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// ObservePlan updates plan gauges
func (r *Recorder) ObservePlan(s CycleStats) {
	r.planSize.WithLabelValues("long").Set(float64(s.Longs))
	r.planSize.WithLabelValues("short").Set(float64(s.Shorts))
	r.planSize.WithLabelValues("liquidate").Set(float64(s.Liquidations))
	r.planSize.WithLabelValues("skipped").Set(float64(s.Skipped))
	r.planSize.WithLabelValues("excluded").Set(float64(s.Excluded))
	r.grossExposure.WithLabelValues("long").Set(s.LongWeight)
	r.grossExposure.WithLabelValues("short").Set(s.ShortWeight)
}

// SinkError counts a failed plan delivery
func (r *Recorder) SinkError(sink string) {
	r.sinkErrors.WithLabelValues(sink).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Cycles exposes the cycle counter for callers asserting on it
func (r *Recorder) Cycles() *prometheus.CounterVec {
	return r.cycles
}

// SinkErrors exposes the sink failure counter
func (r *Recorder) SinkErrors() *prometheus.CounterVec {
	return r.sinkErrors
}
