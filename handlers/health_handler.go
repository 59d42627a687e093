package handlers

import (
	"context"
	"net/http"
	"time"

	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/services"
)

type HealthHandler struct {
	reportService *services.ReportService
}

func NewHealthHandler(reportService *services.ReportService) *HealthHandler {
	return &HealthHandler{reportService: reportService}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.reportService.Ping(ctx); err != nil {
		logger.Warn("Health check failed", "err", err)
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "report store unreachable",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "kokurikulum-api",
	})
}
