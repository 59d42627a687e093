package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/internal/report"
)

const (
	pageMargin  = 15.0
	labelWidth  = 45.0
	photoWidth  = 85.0
	photoHeight = 64.0
	qrSize      = 35.0
)

// PDFService renders a single report, photos included, as an A4 document.
type PDFService struct {
	files FileStore
}

func NewPDFService(files FileStore) *PDFService {
	return &PDFService{files: files}
}

func (s *PDFService) Render(ctx context.Context, rec report.Record) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Laporan Aktiviti Kokurikulum", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "LAPORAN AKTIVITI KOKURIKULUM", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	fields := []struct{ label, value string }{
		{"Nama Pertandingan", rec.CompetitionName},
		{"Tarikh", rec.Date},
		{"Tempat", rec.Location},
		{"Nama Pelajar", strings.Join(rec.Students(), "\n")},
		{"Pencapaian", rec.Achievement},
		{"Dihantar", rec.Timestamp},
	}
	for _, f := range fields {
		pdf.SetFont("Helvetica", "B", 11)
		x, y := pdf.GetXY()
		pdf.CellFormat(labelWidth, 7, tr(f.label), "", 0, "L", false, 0, "")
		pdf.SetXY(x+labelWidth, y)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, tr(orDash(f.value)), "", "L", false)
	}

	s.drawPhotos(ctx, pdf, rec)
	s.drawInvitation(ctx, pdf, rec.InvitationLink)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *PDFService) drawPhotos(ctx context.Context, pdf *gofpdf.Fpdf, rec report.Record) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Gambar Aktiviti", "", 1, "L", false, 0, "")

	slot := 0
	var rowY float64
	for i, link := range rec.PhotoLinks {
		if link == "" {
			continue
		}
		col := slot % 2
		if col == 0 {
			if pdf.GetY()+photoHeight > 297-pageMargin {
				pdf.AddPage()
			}
			rowY = pdf.GetY()
		}
		x := pageMargin + float64(col)*(photoWidth+5)
		name := fmt.Sprintf("gambar_%d", i+1)
		if !s.placeImage(ctx, pdf, name, link, x, rowY, photoWidth, photoHeight) {
			pdf.SetXY(x, rowY)
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(photoWidth, 5, fmt.Sprintf("Gambar %d tidak dapat dipaparkan:\n%s", i+1, link), "1", "L", false)
		}
		if col == 1 {
			pdf.SetXY(pageMargin, rowY+photoHeight+5)
		}
		slot++
	}
	if slot%2 == 1 {
		pdf.SetXY(pageMargin, rowY+photoHeight+5)
	}
}

func (s *PDFService) drawInvitation(ctx context.Context, pdf *gofpdf.Fpdf, link string) {
	if link == "" {
		return
	}
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Surat Jemputan", "", 1, "L", false, 0, "")

	// Images are embedded; anything else (PDF letters) is linked with a QR code.
	if s.placeImage(ctx, pdf, "surat", link, pageMargin, pdf.GetY(), 210-2*pageMargin, 0) {
		return
	}
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		logger.Warn("Failed to encode invitation QR code", "err", err)
	} else {
		pdf.RegisterImageOptionsReader("surat_qr", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		pdf.ImageOptions("surat_qr", pageMargin, pdf.GetY(), qrSize, qrSize, true, gofpdf.ImageOptions{ImageType: "PNG"}, 0, link)
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, link, "", "L", false)
}

// placeImage downloads link and draws it inside the given box. It reports
// false, leaving the document usable, when the file cannot be drawn.
func (s *PDFService) placeImage(ctx context.Context, pdf *gofpdf.Fpdf, name, link string, x, y, w, h float64) bool {
	data, err := s.files.Download(ctx, link)
	if err != nil {
		logger.Warn("Failed to download attachment for pdf", "link", link, "err", err)
		return false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false
	}
	var imgType string
	switch format {
	case "jpeg":
		imgType = "JPG"
	case "png":
		imgType = "PNG"
	default:
		return false
	}

	opts := gofpdf.ImageOptions{ImageType: imgType}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if !pdf.Ok() || info == nil {
		logger.Warn("Failed to embed attachment in pdf", "link", link, "err", pdf.Error())
		pdf.ClearError()
		return false
	}
	if h > 0 {
		// fit inside the box, keeping the aspect ratio
		iw, ih := info.Extent()
		if iw/ih > w/h {
			h = 0
		} else {
			w = 0
		}
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, link)
	return pdf.Ok()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
