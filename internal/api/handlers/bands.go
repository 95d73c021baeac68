package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/energyls/internal/indicators"
	"github.com/wonny/energyls/pkg/logger"
	"github.com/wonny/energyls/pkg/redis"
)

// BandsHandler serves Bollinger bands for one security
type BandsHandler struct {
	bars   indicators.BarSource
	cache  *redis.Cache // optional
	config indicators.BollingerConfig
	now    func() time.Time
	logger *logger.Logger
}

// BandsResponse is the body of GET /api/bands/{security}
type BandsResponse struct {
	Security string            `json:"security"`
	Window   int               `json:"window"`
	K        float64           `json:"k"`
	Bands    []indicators.Band `json:"bands"`
}

// NewBandsHandler creates a new bands handler
func NewBandsHandler(bars indicators.BarSource, cache *redis.Cache, cfg indicators.BollingerConfig, log *logger.Logger) *BandsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BandsHandler{bars: bars, cache: cache, config: cfg, now: time.Now, logger: log}
}

// Get returns the band table
// GET /api/bands/{security}?from=YYYY-MM-DD&to=YYYY-MM-DD (default: last 180 days)
func (h *BandsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	security := mux.Vars(r)["security"]

	y, m, d := h.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	to, err := parseDate(r.URL.Query().Get("to"), today)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'to' date format (expected YYYY-MM-DD)")
		return
	}
	from, err := parseDate(r.URL.Query().Get("from"), to.AddDate(0, 0, -180))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'from' date format (expected YYYY-MM-DD)")
		return
	}
	if from.After(to) {
		respondError(w, http.StatusBadRequest, "'from' must not be after 'to'")
		return
	}

	key := redis.BandsKey(security, from.Format(dateLayout), to.Format(dateLayout))
	if h.cache != nil {
		var cached BandsResponse
		if found, err := h.cache.Get(ctx, key, &cached); err == nil && found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	bands, err := indicators.LoadBands(ctx, h.bars, security, from, to, h.config)
	if err != nil {
		h.logger.WithError(err).WithSecurity(security).Error("Failed to compute bands")
		respondError(w, http.StatusInternalServerError, "Failed to compute bands")
		return
	}
	if len(bands) == 0 {
		respondError(w, http.StatusNotFound, "No prices for security")
		return
	}

	resp := BandsResponse{Security: security, Window: h.config.Window, K: h.config.K, Bands: bands}
	if h.cache != nil {
		if err := h.cache.Set(ctx, key, resp, redis.TTLLong); err != nil {
			h.logger.WithError(err).Warn("Bands cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
