package services

import (
	"context"

	"kokurikulumAPI/internal/report"
)

// FileStore keeps report attachments. Errors wrap report.ErrUpload.
type FileStore interface {
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	// Upload stores file under name inside folderID and returns a shareable link.
	Upload(ctx context.Context, file report.Attachment, name, folderID string) (string, error)
	Download(ctx context.Context, link string) ([]byte, error)
}

// TabularStore is the append-only sink for report rows. Errors wrap report.ErrStore.
type TabularStore interface {
	// EnsureSchema prepares an empty store (header row, table) and is a no-op otherwise.
	EnsureSchema(ctx context.Context) error
	AppendRow(ctx context.Context, rec report.Record) error
	ReadAllRows(ctx context.Context) ([]report.Record, error)
	Ping(ctx context.Context) error
}

// Notifier is told about every report that was stored.
type Notifier interface {
	NotifyReportSubmitted(ctx context.Context, rec report.Record) error
}
