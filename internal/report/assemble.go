package report

import (
	"fmt"
	"strings"
	"time"
)

// NormalizePhotoLinks returns exactly MaxPhotos slots, keeping order and
// filling trailing slots with "". Callers must validate the count first;
// more than MaxPhotos links is a programming error.
func NormalizePhotoLinks(links []string) [MaxPhotos]string {
	if len(links) > MaxPhotos {
		panic(fmt.Sprintf("report: %d photo links exceed %d slots", len(links), MaxPhotos))
	}
	var out [MaxPhotos]string
	copy(out[:], links)
	return out
}

// NormalizeInvitationLink returns the link unmodified, or "" when absent.
func NormalizeInvitationLink(link *string) string {
	if link == nil {
		return ""
	}
	return *link
}

// Assemble builds the persisted record. It performs no I/O.
func Assemble(f Fields, photos [MaxPhotos]string, invitation string, now time.Time) Record {
	return Record{
		Timestamp:       now.Format(TimestampLayout),
		CompetitionName: strings.TrimSpace(f.CompetitionName),
		Date:            strings.TrimSpace(f.Date),
		Location:        strings.TrimSpace(f.Location),
		StudentNames:    JoinStudents(Students(f.StudentNames)),
		Achievement:     strings.TrimSpace(f.Achievement),
		PhotoLinks:      photos,
		InvitationLink:  invitation,
	}
}

// JoinStudents renders names in the stored comma separated form. A comma
// inside a single name becomes a space, so that Record.Students returns the
// same names.
func JoinStudents(names []string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.Join(strings.Fields(strings.ReplaceAll(n, ",", " ")), " ")
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, ", ")
}
