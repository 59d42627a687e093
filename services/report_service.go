package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/internal/report"
)

const (
	// DateLayout is the expected format of the Tarikh field.
	DateLayout = "2006-01-02"

	folderStudentsMaxLen = 30
	notifyTimeout        = 5 * time.Second
)

var ErrReportNotFound = errors.New("report not found")

type ReportService struct {
	files          FileStore
	rows           TabularStore
	notifier       Notifier
	parentFolderID string

	now   func() time.Time
	newID func() uuid.UUID
}

func NewReportService(files FileStore, rows TabularStore, parentFolderID string) *ReportService {
	return &ReportService{
		files:          files,
		rows:           rows,
		parentFolderID: parentFolderID,
		now:            time.Now,
		newID:          uuid.New,
	}
}

// SetNotifier enables new-report notifications.
func (s *ReportService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SubmitResult struct {
	SubmissionID uuid.UUID     `json:"submission_id"`
	FolderID     string        `json:"folder_id"`
	Record       report.Record `json:"record"`
}

// Submit validates the form, uploads every attachment and appends the row.
// Nothing is uploaded for an invalid form, and the row is only appended
// after all uploads succeeded.
func (s *ReportService) Submit(ctx context.Context, form report.Form) (*SubmitResult, error) {
	if err := report.Validate(form); err != nil {
		reportSubmissions.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	id := s.newID()
	now := s.now()
	ts := now.Format(report.TimestampLayout)
	log := logger.With("submission_id", id)

	folderName := FolderName(ts, form.Fields)
	folderID, err := s.files.CreateFolder(ctx, folderName, s.parentFolderID)
	if err != nil {
		reportSubmissions.WithLabelValues(outcomeUploadFailed).Inc()
		return nil, uploadError("create folder", err)
	}

	photoLinks := make([]string, 0, len(form.Photos))
	for i, photo := range form.Photos {
		name := fmt.Sprintf("%s_Gambar_%d%s", ts, i+1, extension(photo))
		link, err := s.upload(ctx, "photo", photo, name, folderID)
		if err != nil {
			log.Error("Photo upload failed, report not saved", "file", name, "folder_id", folderID, "err", err)
			reportSubmissions.WithLabelValues(outcomeUploadFailed).Inc()
			return nil, err
		}
		photoLinks = append(photoLinks, link)
	}

	var invitationLink *string
	if form.Invitation != nil {
		name := fmt.Sprintf("%s_Surat%s", ts, extension(*form.Invitation))
		link, err := s.upload(ctx, "invitation", *form.Invitation, name, folderID)
		if err != nil {
			log.Error("Invitation upload failed, report not saved", "file", name, "folder_id", folderID, "err", err)
			reportSubmissions.WithLabelValues(outcomeUploadFailed).Inc()
			return nil, err
		}
		invitationLink = &link
	}

	rec := report.Assemble(
		form.Fields,
		report.NormalizePhotoLinks(photoLinks),
		report.NormalizeInvitationLink(invitationLink),
		now,
	)

	if err := s.rows.AppendRow(ctx, rec); err != nil {
		reportSubmissions.WithLabelValues(outcomeStoreFailed).Inc()
		return nil, storeError("append row", err)
	}
	reportSubmissions.WithLabelValues(outcomeAccepted).Inc()
	log.Info("Report saved", "folder", folderName, "photos", len(photoLinks), "invitation", invitationLink != nil)

	s.notify(ctx, rec)

	return &SubmitResult{SubmissionID: id, FolderID: folderID, Record: rec}, nil
}

func (s *ReportService) upload(ctx context.Context, kind string, file report.Attachment, name, folderID string) (string, error) {
	link, err := s.files.Upload(ctx, file, name, folderID)
	if err != nil {
		attachmentUploads.WithLabelValues(kind, "error").Inc()
		return "", uploadError("upload "+name, err)
	}
	attachmentUploads.WithLabelValues(kind, "ok").Inc()
	attachmentBytes.Observe(float64(len(file.Data)))
	return link, nil
}

func (s *ReportService) notify(ctx context.Context, rec report.Record) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyReportSubmitted(ctx, rec); err != nil {
		logger.Warn("Failed to send new report notification", "timestamp", rec.Timestamp, "err", err)
	}
}

// Filter narrows ListReports. Zero values match everything.
type Filter struct {
	// Student is a case-insensitive substring of Nama_Pelajar.
	Student string
	From    time.Time
	To      time.Time
}

func (f Filter) match(rec report.Record) bool {
	if f.Student != "" && !strings.Contains(strings.ToLower(rec.StudentNames), strings.ToLower(f.Student)) {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(rec.Date))
	if err != nil {
		return false
	}
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}

// Entry is a stored report with its position among all rows.
type Entry struct {
	Index int `json:"index"`
	report.Record
}

// ListReports returns every stored report matching f, in store order.
func (s *ReportService) ListReports(ctx context.Context, f Filter) ([]Entry, error) {
	records, err := s.rows.ReadAllRows(ctx)
	if err != nil {
		return nil, storeError("read rows", err)
	}
	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		if f.match(rec) {
			entries = append(entries, Entry{Index: i, Record: rec})
		}
	}
	return entries, nil
}

// SearchByStudent finds reports naming student, latest activity date first.
func (s *ReportService) SearchByStudent(ctx context.Context, student string) ([]Entry, error) {
	entries, err := s.ListReports(ctx, Filter{Student: strings.TrimSpace(student)})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
	return entries, nil
}

// GetReport returns the report at index as numbered by ListReports.
func (s *ReportService) GetReport(ctx context.Context, index int) (report.Record, error) {
	records, err := s.rows.ReadAllRows(ctx)
	if err != nil {
		return report.Record{}, storeError("read rows", err)
	}
	if index < 0 || index >= len(records) {
		return report.Record{}, ErrReportNotFound
	}
	return records[index], nil
}

func (s *ReportService) Ping(ctx context.Context) error {
	return s.rows.Ping(ctx)
}

// FolderName names the Drive folder of one submission:
// <timestamp>_<students>_<competition>.
func FolderName(ts string, f report.Fields) string {
	students := []rune(strings.Join(report.Students(f.StudentNames), "_"))
	if len(students) > folderStudentsMaxLen {
		students = students[:folderStudentsMaxLen]
	}
	title := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			return r
		}
		return -1
	}, strings.TrimSpace(f.CompetitionName))
	return fmt.Sprintf("%s_%s_%s", ts, string(students), title)
}

func extension(a report.Attachment) string {
	if ext := strings.ToLower(filepath.Ext(a.Filename)); ext != "" {
		return ext
	}
	return mimetype.Detect(a.Data).Extension()
}

func uploadError(op string, err error) error {
	if errors.Is(err, report.ErrUpload) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, report.ErrUpload, err)
}

func storeError(op string, err error) error {
	if errors.Is(err, report.ErrStore) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, report.ErrStore, err)
}
