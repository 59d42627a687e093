package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"

	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/internal/report"
	"kokurikulumAPI/services"
)

const (
	// MaxRequestBytes caps a submission: up to four photos and a letter.
	MaxRequestBytes = 32 << 20
	maxMemory       = 8 << 20

	readTimeout = 10 * time.Second
	pdfTimeout  = 45 * time.Second
)

type ReportHandler struct {
	reportService *services.ReportService
	pdfService    *services.PDFService
	uploadTimeout time.Duration
}

func NewReportHandler(reportService *services.ReportService, pdfService *services.PDFService, uploadTimeout time.Duration) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		pdfService:    pdfService,
		uploadTimeout: uploadTimeout,
	}
}

func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.uploadTimeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d MB", MaxRequestBytes>>20))
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	form, err := formFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read uploaded files")
		return
	}

	// Form carries a single letter, so extra ones are reported here together
	// with every other problem instead of being dropped.
	if err := report.ValidateInvitationCount(len(r.MultipartForm.File["surat_jemputan"])); err != nil {
		respondWithServiceError(w, report.Merge(err, report.Validate(form)))
		return
	}

	result, err := h.reportService.Submit(ctx, form)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func formFromRequest(r *http.Request) (report.Form, error) {
	form := report.Form{Fields: report.Fields{
		CompetitionName: r.FormValue("nama_pertandingan"),
		Date:            r.FormValue("tarikh"),
		Location:        r.FormValue("tempat"),
		StudentNames:    r.FormValue("nama_pelajar"),
		Achievement:     r.FormValue("pencapaian"),
	}}

	for _, fh := range r.MultipartForm.File["gambar"] {
		a, err := readAttachment(fh)
		if err != nil {
			return report.Form{}, err
		}
		form.Photos = append(form.Photos, a)
	}

	if files := r.MultipartForm.File["surat_jemputan"]; len(files) > 0 {
		a, err := readAttachment(files[0])
		if err != nil {
			return report.Form{}, err
		}
		form.Invitation = &a
	}
	return form, nil
}

func readAttachment(fh *multipart.FileHeader) (report.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return report.Attachment{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return report.Attachment{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return report.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *ReportHandler) SearchReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Search query parameter 'q' is required")
		return
	}

	entries, err := h.reportService.SearchByStudent(ctx, query)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *ReportHandler) DownloadReportPDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pdfTimeout)
	defer cancel()

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report index")
		return
	}

	rec, err := h.reportService.GetReport(ctx, index)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	doc, err := h.pdfService.Render(ctx, rec)
	if err != nil {
		logger.Error("Failed to render report pdf", "index", index, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, pdfFilename(index, rec)))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func pdfFilename(index int, rec report.Record) string {
	name := slug.Make(rec.CompetitionName)
	if name == "" {
		name = strconv.Itoa(index)
	}
	return "Laporan_" + name + ".pdf"
}
