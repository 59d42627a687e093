package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kokurikulumAPI/services"
)

type AdminHandler struct {
	reportService    *services.ReportService
	analyticsService *services.AnalyticsService
}

func NewAdminHandler(reportService *services.ReportService, analyticsService *services.AnalyticsService) *AdminHandler {
	return &AdminHandler{
		reportService:    reportService,
		analyticsService: analyticsService,
	}
}

type reportListResponse struct {
	Count   int              `json:"count"`
	Reports []services.Entry `json:"reports"`
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	filter, err := parseFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.reportService.ListReports(ctx, filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reportListResponse{Count: len(entries), Reports: entries})
}

func (h *AdminHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	filter, err := parseFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.analyticsService.Summary(ctx, filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// parseFilter reads the q, from and to query parameters.
func parseFilter(r *http.Request) (services.Filter, error) {
	q := r.URL.Query()
	f := services.Filter{Student: strings.TrimSpace(q.Get("q"))}

	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		t, err := time.Parse(services.DateLayout, v)
		if err != nil {
			return services.Filter{}, fmt.Errorf("query parameter '%s' must be a date in YYYY-MM-DD format", p.key)
		}
		*p.dst = t
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return services.Filter{}, errors.New("query parameter 'to' must not be before 'from'")
	}
	return f, nil
}
