package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/internal/execution"
	"github.com/wonny/energyls/internal/indicators"
)

type stubPlanStore struct {
	plans map[string]*contracts.AllocationPlan
	err   error
}

func (s *stubPlanStore) LatestPlan(ctx context.Context) (*contracts.AllocationPlan, error) {
	if s.err != nil {
		return nil, s.err
	}
	var latest *contracts.AllocationPlan
	for _, p := range s.plans {
		if latest == nil || p.Date.After(latest.Date) {
			latest = p
		}
	}
	if latest == nil {
		return nil, execution.ErrPlanNotFound
	}
	return latest, nil
}

func (s *stubPlanStore) PlanByDate(ctx context.Context, date time.Time) (*contracts.AllocationPlan, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.plans[date.Format(dateLayout)]
	if !ok {
		return nil, execution.ErrPlanNotFound
	}
	return p, nil
}

func day(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func planFor(date string, weights map[string]float64) *contracts.AllocationPlan {
	p := contracts.NewAllocationPlan(day(date))
	p.RunID = "run-" + date
	for id, w := range weights {
		p.Weights[id] = w
	}
	return p
}

func serve(method, path string, route string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc(route, h).Methods(method)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestPlanHandler_GetLatest(t *testing.T) {
	store := &stubPlanStore{plans: map[string]*contracts.AllocationPlan{
		"2024-03-04": planFor("2024-03-04", map[string]float64{"A": 0.5}),
		"2024-03-11": planFor("2024-03-11", map[string]float64{"B": 0.5, "C": -0.5}),
	}}
	h := NewPlanHandler(store, nil)

	rec := serve("GET", "/api/plans/latest", "/api/plans/latest", h.GetLatest)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got contracts.AllocationPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-2024-03-11", got.RunID)
	assert.InDelta(t, -0.5, got.Weights["C"], 1e-12)
}

func TestPlanHandler_GetByDate(t *testing.T) {
	store := &stubPlanStore{plans: map[string]*contracts.AllocationPlan{
		"2024-03-04": planFor("2024-03-04", map[string]float64{"A": 0.5}),
	}}
	h := NewPlanHandler(store, nil)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"found", "/api/plans/2024-03-04", http.StatusOK},
		{"missing", "/api/plans/2024-03-11", http.StatusNotFound},
		{"bad date", "/api/plans/march", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve("GET", tt.path, "/api/plans/{date}", h.GetByDate)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestPlanHandler_StoreError(t *testing.T) {
	h := NewPlanHandler(&stubPlanStore{err: errors.New("connection refused")}, nil)

	rec := serve("GET", "/api/plans/latest", "/api/plans/latest", h.GetLatest)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to retrieve plan", body["error"])
}

type stubBars struct {
	bars     map[string][]contracts.Bar
	from, to time.Time
}

func (s *stubBars) Bars(ctx context.Context, ids []string, from, to time.Time) (map[string][]contracts.Bar, error) {
	s.from, s.to = from, to
	out := make(map[string][]contracts.Bar)
	for _, id := range ids {
		for _, b := range s.bars[id] {
			if !b.Date.Before(from) && !b.Date.After(to) {
				out[id] = append(out[id], b)
			}
		}
	}
	return out, nil
}

// dailyBars returns n consecutive daily bars ending at end
func dailyBars(id string, end time.Time, n int) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	for i := 0; i < n; i++ {
		bars[i] = contracts.Bar{
			SecurityID: id,
			Date:       end.AddDate(0, 0, i-n+1),
			Close:      100 + float64(i%5),
			Volume:     1000,
		}
	}
	return bars
}

func TestBandsHandler_Get(t *testing.T) {
	source := &stubBars{bars: map[string][]contracts.Bar{
		"XOM": dailyBars("XOM", day("2024-03-29"), 120),
	}}
	h := NewBandsHandler(source, nil, indicators.BollingerConfig{Window: 5, K: 2}, nil)

	rec := serve("GET", "/api/bands/XOM?from=2024-03-20&to=2024-03-29", "/api/bands/{security}", h.Get)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BandsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "XOM", resp.Security)
	assert.Equal(t, 5, resp.Window)
	require.Len(t, resp.Bands, 10)
	assert.True(t, resp.Bands[0].Date.Equal(day("2024-03-20")))

	// history before from warms the window
	assert.True(t, source.from.Before(day("2024-03-20")))
	for _, b := range resp.Bands {
		assert.False(t, math.IsNaN(b.Mean))
		assert.Greater(t, b.Upper, b.Lower)
	}
}

func TestBandsHandler_DefaultRange(t *testing.T) {
	source := &stubBars{bars: map[string][]contracts.Bar{}}
	h := NewBandsHandler(source, nil, indicators.DefaultBollingerConfig(), nil)
	h.now = func() time.Time { return time.Date(2024, 3, 29, 15, 0, 0, 0, time.UTC) }

	rec := serve("GET", "/api/bands/XOM", "/api/bands/{security}", h.Get)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, source.to.Equal(day("2024-03-29")))
	assert.True(t, source.from.Equal(day("2024-03-29").AddDate(0, 0, -180-40)))
}

func TestBandsHandler_BadParams(t *testing.T) {
	h := NewBandsHandler(&stubBars{}, nil, indicators.DefaultBollingerConfig(), nil)

	for _, path := range []string{
		"/api/bands/XOM?from=yesterday",
		"/api/bands/XOM?to=2024-13-01",
		"/api/bands/XOM?from=2024-03-29&to=2024-03-01",
	} {
		rec := serve("GET", path, "/api/bands/{security}", h.Get)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
