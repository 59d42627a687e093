package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhotoLinks(t *testing.T) {
	links := []string{"l1", "l2", "l3", "l4"}
	for n := MinPhotos; n <= MaxPhotos; n++ {
		got := NormalizePhotoLinks(links[:n])
		assert.Len(t, got, MaxPhotos)
		for i := 0; i < MaxPhotos; i++ {
			if i < n {
				assert.Equal(t, links[i], got[i])
			} else {
				assert.Equal(t, "", got[i])
			}
		}
	}
}

func TestNormalizePhotoLinks_PanicsOnOverflow(t *testing.T) {
	assert.Panics(t, func() { NormalizePhotoLinks([]string{"1", "2", "3", "4", "5"}) })
}

func TestNormalizeInvitationLink(t *testing.T) {
	assert.Equal(t, "", NormalizeInvitationLink(nil))
	link := "https://drive.google.com/file/d/abc/view?usp=drivesdk"
	assert.Equal(t, link, NormalizeInvitationLink(&link))
}

func TestAssemble_PidatoWithTwoPhotos(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 5, 0, time.Local)
	f := validFields()

	rec := Assemble(f, NormalizePhotoLinks([]string{"p1", "p2"}), NormalizeInvitationLink(nil), now)

	assert.Equal(t, "20250314_093005", rec.Timestamp)
	assert.Equal(t, "Pertandingan Pidato", rec.CompetitionName)
	assert.Equal(t, "Ali bin Abu, Siti binti Aminah", rec.StudentNames)
	row := rec.Row()
	assert.Len(t, row, len(Columns))
	assert.Equal(t, "p1", row[6])
	assert.Equal(t, "p2", row[7])
	assert.Equal(t, "", row[8], "Gambar_3")
	assert.Equal(t, "", row[9], "Gambar_4")
	assert.Equal(t, "", row[10], "Surat_Jemputan")
}

func TestAssemble_ShapeIsFixed(t *testing.T) {
	now := time.Now()
	inv := "inv-link"
	sparse := Assemble(validFields(), NormalizePhotoLinks([]string{"a", "b"}), NormalizeInvitationLink(nil), now)
	full := Assemble(validFields(), NormalizePhotoLinks([]string{"a", "b", "c", "d"}), NormalizeInvitationLink(&inv), now)

	assert.Equal(t, len(sparse.Row()), len(full.Row()))
	assert.Len(t, full.Row(), 11)
	assert.Equal(t, "inv-link", full.Row()[10])
}

func TestRecordFromRow(t *testing.T) {
	rec := Record{
		Timestamp:       "20250314_093005",
		CompetitionName: "Pidato",
		Date:            "2025-03-14",
		Location:        "Dewan",
		StudentNames:    "Ali",
		Achievement:     "Johan",
		PhotoLinks:      [4]string{"p1", "p2", "p3", ""},
	}
	assert.Equal(t, rec, RecordFromRow(rec.Row()))

	// The Sheets API drops trailing empty cells.
	assert.Equal(t, rec, RecordFromRow(rec.Row()[:9]))
}

func TestIsHeaderRow(t *testing.T) {
	assert.True(t, IsHeaderRow(Columns))
	assert.False(t, IsHeaderRow([]string{"20250314_093005", "Pidato"}))
	assert.False(t, IsHeaderRow(nil))
}

func TestStudents(t *testing.T) {
	assert.Equal(t, []string{"Ali", "Siti"}, Students(" Ali \n\n Siti\n"))
	rec := Record{StudentNames: "Ali, Siti binti Aminah"}
	assert.Equal(t, []string{"Ali", "Siti binti Aminah"}, rec.Students())
}

func TestAssemble_StudentNamesRoundTrip(t *testing.T) {
	f := validFields()
	f.StudentNames = "Tan, Wei Ming\n  Siti binti Aminah \n,\n"

	rec := Assemble(f, NormalizePhotoLinks([]string{"p1", "p2"}), "", time.Now())

	assert.Equal(t, "Tan Wei Ming, Siti binti Aminah", rec.StudentNames)
	assert.Equal(t, []string{"Tan Wei Ming", "Siti binti Aminah"}, rec.Students())
	assert.Equal(t, rec.Students(), RecordFromRow(rec.Row()).Students())
}

func TestSubmittedAt(t *testing.T) {
	ts, ok := Record{Timestamp: "20250314_093005"}.SubmittedAt()
	assert.True(t, ok)
	assert.Equal(t, 2025, ts.Year())

	_, ok = Record{Timestamp: "yesterday"}.SubmittedAt()
	assert.False(t, ok)
}
