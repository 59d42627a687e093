package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kokurikulumAPI/internal/report"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPDFService_Render(t *testing.T) {
	files := &fakeFileStore{content: map[string][]byte{
		"https://drive.google.com/file/d/p1/view": testPNG(t, 64, 48),
		"https://drive.google.com/file/d/p2/view": testPNG(t, 30, 60),
		"https://drive.google.com/file/d/p3/view": []byte("not an image"),
		"https://drive.google.com/file/d/s1/view": pdfData,
	}}
	svc := NewPDFService(files)

	out, err := svc.Render(context.Background(), report.Record{
		Timestamp:       "20250314_093005",
		CompetitionName: "Pertandingan Pidato",
		Date:            "2025-03-14",
		Location:        "Dewan Sekolah",
		StudentNames:    "Ali bin Abu, Siti binti Aminah",
		Achievement:     "Johan",
		PhotoLinks: [report.MaxPhotos]string{
			"https://drive.google.com/file/d/p1/view",
			"https://drive.google.com/file/d/p2/view",
			"https://drive.google.com/file/d/p3/view",
			"https://drive.google.com/file/d/missing/view",
		},
		InvitationLink: "https://drive.google.com/file/d/s1/view",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFService_RenderMinimal(t *testing.T) {
	out, err := NewPDFService(&fakeFileStore{}).Render(context.Background(), report.Record{
		CompetitionName: "Catur",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash("  "))
	assert.Equal(t, "Johan", orDash("Johan"))
}
