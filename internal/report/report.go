package report

import (
	"strings"
	"time"
)

// TimestampLayout is how Record.Timestamp is rendered in the store.
const TimestampLayout = "20060102_150405"

// Columns is the persisted row layout. Downstream readers depend on this order.
var Columns = []string{
	"Timestamp",
	"Nama_Pertandingan",
	"Tarikh",
	"Tempat",
	"Nama_Pelajar",
	"Pencapaian",
	"Gambar_1",
	"Gambar_2",
	"Gambar_3",
	"Gambar_4",
	"Surat_Jemputan",
}

const (
	MinPhotos = 2
	MaxPhotos = 4
)

// Fields holds the user-typed part of a report form.
type Fields struct {
	CompetitionName string `json:"nama_pertandingan" validate:"notblank"`
	Date            string `json:"tarikh" validate:"notblank"`
	Location        string `json:"tempat" validate:"notblank"`
	StudentNames    string `json:"nama_pelajar" validate:"notblank"`
	Achievement     string `json:"pencapaian" validate:"notblank"`
}

// Attachment is an uploaded file as received from the form.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Form is a report submission before validation.
type Form struct {
	Fields
	Photos     []Attachment
	Invitation *Attachment
}

// Record is the flat, fixed-shape row persisted for every accepted report.
type Record struct {
	Timestamp       string    `json:"timestamp"`
	CompetitionName string    `json:"nama_pertandingan"`
	Date            string    `json:"tarikh"`
	Location        string    `json:"tempat"`
	StudentNames    string    `json:"nama_pelajar"`
	Achievement     string    `json:"pencapaian"`
	PhotoLinks      [4]string `json:"gambar"`
	InvitationLink  string    `json:"surat_jemputan"`
}

// Row renders the record in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Timestamp,
		r.CompetitionName,
		r.Date,
		r.Location,
		r.StudentNames,
		r.Achievement,
		r.PhotoLinks[0],
		r.PhotoLinks[1],
		r.PhotoLinks[2],
		r.PhotoLinks[3],
		r.InvitationLink,
	}
}

// RecordFromRow is the inverse of Record.Row. Missing trailing cells read as "".
func RecordFromRow(row []string) Record {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Record{
		Timestamp:       cell(0),
		CompetitionName: cell(1),
		Date:            cell(2),
		Location:        cell(3),
		StudentNames:    cell(4),
		Achievement:     cell(5),
		PhotoLinks:      [4]string{cell(6), cell(7), cell(8), cell(9)},
		InvitationLink:  cell(10),
	}
}

// IsHeaderRow reports whether row is the column header line.
func IsHeaderRow(row []string) bool {
	return len(row) > 0 && row[0] == Columns[0] && (len(row) < 2 || row[1] == Columns[1])
}

// SubmittedAt parses the record timestamp. ok is false for malformed values.
func (r Record) SubmittedAt() (t time.Time, ok bool) {
	t, err := time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
	return t, err == nil
}

// Students splits a newline separated name list, dropping blank lines.
func Students(names string) []string {
	var out []string
	for _, n := range strings.Split(names, "\n") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Students returns the individual names stored in the record.
// Stored names are comma separated; newline separated values are accepted too.
func (r Record) Students() []string {
	return Students(strings.ReplaceAll(r.StudentNames, ",", "\n"))
}
