package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/internal/execution"
	"github.com/wonny/energyls/pkg/logger"
)

// PlanStore loads persisted allocation plans
type PlanStore interface {
	LatestPlan(ctx context.Context) (*contracts.AllocationPlan, error)
	PlanByDate(ctx context.Context, date time.Time) (*contracts.AllocationPlan, error)
}

// PlanHandler serves allocation plans
// ⭐ SSOT: 플랜 조회 API 핸들러는 이 구조체에서만
type PlanHandler struct {
	store  PlanStore
	logger *logger.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(store PlanStore, log *logger.Logger) *PlanHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PlanHandler{store: store, logger: log}
}

// GetLatest returns the most recent plan
// GET /api/plans/latest
func (h *PlanHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	plan, err := h.store.LatestPlan(r.Context())
	h.respondPlan(w, plan, err)
}

// GetByDate returns the plan for a date
// GET /api/plans/{date}
func (h *PlanHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(dateLayout, mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)")
		return
	}

	plan, err := h.store.PlanByDate(r.Context(), date)
	h.respondPlan(w, plan, err)
}

func (h *PlanHandler) respondPlan(w http.ResponseWriter, plan *contracts.AllocationPlan, err error) {
	if errors.Is(err, execution.ErrPlanNotFound) {
		respondError(w, http.StatusNotFound, "Plan not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get plan")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve plan")
		return
	}

	respondJSON(w, http.StatusOK, plan)
}
