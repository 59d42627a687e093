package report

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegData = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")
	pdfData  = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	textData = []byte("just some text, not an image")
)

func validFields() Fields {
	return Fields{
		CompetitionName: "Pertandingan Pidato",
		Date:            "2025-03-14",
		Location:        "Dewan SMK Damansara",
		StudentNames:    "Ali bin Abu\nSiti binti Aminah",
		Achievement:     "Johan",
	}
}

func photos(n int) []Attachment {
	out := make([]Attachment, n)
	for i := range out {
		out[i] = Attachment{Filename: fmt.Sprintf("g%d.jpg", i+1), Data: jpegData}
	}
	return out
}

func TestValidatePhotoCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "at least 2 photos are required, add 2 more"},
		{1, "at least 2 photos are required, add 1 more"},
		{2, ""},
		{3, ""},
		{4, ""},
		{5, "at most 4 photos are allowed, remove 1"},
		{6, "at most 4 photos are allowed, remove 2"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			err := ValidatePhotoCount(tt.n)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, "gambar", vErr.Fields[0].Field)
			assert.Equal(t, tt.want, vErr.Fields[0].Error)
		})
	}
}

func TestValidateFields_ReportsEveryBlankField(t *testing.T) {
	err := ValidateFields(Fields{CompetitionName: "  ", Location: "Dewan", StudentNames: "\n\t"})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	fields := vErr.FieldMap()
	assert.Len(t, fields, 4)
	for _, name := range []string{"nama_pertandingan", "tarikh", "nama_pelajar", "pencapaian"} {
		assert.Equal(t, "this field is required", fields[name], name)
	}
	assert.NotContains(t, fields, "tempat")
}

func TestValidateFields_Valid(t *testing.T) {
	assert.NoError(t, ValidateFields(validFields()))
}

func TestValidateAttachments(t *testing.T) {
	t.Run("accepts jpeg and png photos and a pdf invitation", func(t *testing.T) {
		ps := []Attachment{{Filename: "a.jpg", Data: jpegData}, {Filename: "b.png", Data: pngData}}
		inv := &Attachment{Filename: "surat.pdf", Data: pdfData}
		assert.NoError(t, ValidateAttachments(ps, inv))
	})

	t.Run("rejects a pdf photo and an empty invitation", func(t *testing.T) {
		ps := []Attachment{{Filename: "a.jpg", Data: jpegData}, {Filename: "b.pdf", Data: pdfData}}
		inv := &Attachment{Filename: "surat.pdf"}

		var vErr *ValidationError
		require.True(t, errors.As(ValidateAttachments(ps, inv), &vErr))
		fields := vErr.FieldMap()
		assert.Equal(t, "photo 2 (b.pdf) must be a JPEG or PNG image", fields["gambar"])
		assert.Equal(t, "surat.pdf is empty", fields["surat_jemputan"])
	})

	t.Run("ignores the client content type", func(t *testing.T) {
		ps := []Attachment{{Filename: "a.jpg", ContentType: "image/jpeg", Data: textData}}
		assert.Error(t, ValidateAttachments(ps, nil))
	})
}

func TestValidate_MergesAllPasses(t *testing.T) {
	f := validFields()
	f.Achievement = ""
	err := Validate(Form{Fields: f, Photos: photos(5)})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	fields := vErr.FieldMap()
	assert.Equal(t, "this field is required", fields["pencapaian"])
	assert.Equal(t, "at most 4 photos are allowed, remove 1", fields["gambar"])
}

func TestValidate_Valid(t *testing.T) {
	inv := Attachment{Filename: "surat.pdf", Data: pdfData}
	for n := MinPhotos; n <= MaxPhotos; n++ {
		assert.NoError(t, Validate(Form{Fields: validFields(), Photos: photos(n)}))
		assert.NoError(t, Validate(Form{Fields: validFields(), Photos: photos(n), Invitation: &inv}))
	}
}

func TestValidateInvitationCount(t *testing.T) {
	assert.NoError(t, ValidateInvitationCount(0))
	assert.NoError(t, ValidateInvitationCount(1))

	var vErr *ValidationError
	require.ErrorAs(t, ValidateInvitationCount(3), &vErr)
	assert.Equal(t, "only one invitation letter can be attached, remove 2", vErr.FieldMap()["surat_jemputan"])
}

func TestMerge(t *testing.T) {
	assert.NoError(t, Merge(nil, nil))

	merged := Merge(ValidateInvitationCount(2), ValidatePhotoCount(1))
	var vErr *ValidationError
	require.ErrorAs(t, merged, &vErr)
	assert.Len(t, vErr.Fields, 2)

	plain := errors.New("boom")
	assert.Equal(t, plain, Merge(ValidatePhotoCount(1), plain))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectContentType(jpegData))
	assert.Equal(t, "image/png", DetectContentType(pngData))
	assert.Equal(t, "application/pdf", DetectContentType(pdfData))
	assert.Equal(t, "text/plain", DetectContentType(textData))
	assert.Equal(t, "application/octet-stream", DetectContentType(nil))
}
