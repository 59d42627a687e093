package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/internal/report"
	"kokurikulumAPI/services"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// respondWithServiceError maps service errors onto status codes. Validation
// problems are returned per field so the form can show them inline; store
// failures ask the user to try again.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var vErr *report.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondWithJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "Please correct the highlighted fields",
			Fields: vErr.FieldMap(),
		})
	case errors.Is(err, services.ErrReportNotFound):
		respondWithError(w, http.StatusNotFound, "Report not found")
	case errors.Is(err, report.ErrUpload):
		logger.Error("File store failure", "err", err)
		respondWithError(w, http.StatusBadGateway, "Failed to upload files, please try again")
	case errors.Is(err, report.ErrStore):
		logger.Error("Report store failure", "err", err)
		respondWithError(w, http.StatusBadGateway, "Failed to save the report, please try again")
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out, please try again")
	default:
		logger.Error("Unexpected error", "err", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
