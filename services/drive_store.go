package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/internal/report"
)

const (
	folderMimeType   = "application/vnd.google-apps.folder"
	maxDownloadBytes = 20 << 20
)

var (
	driveFilePathRe  = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	driveIDQueryRe   = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	errNotADriveLink = errors.New("link does not contain a Drive file ID")
	errFileTooLarge  = errors.New("file exceeds download limit")
)

// DriveStore is the Google Drive FileStore.
type DriveStore struct {
	srv         *drive.Service
	maxDownload int64
}

func NewDriveStore(ctx context.Context, opts ...option.ClientOption) (*DriveStore, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return &DriveStore{srv: srv, maxDownload: maxDownloadBytes}, nil
}

func (s *DriveStore) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	folder, err := s.srv.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: drive create folder %q: %w", report.ErrUpload, name, err)
	}
	logger.Info("Drive folder created", "name", name, "id", folder.Id)
	return folder.Id, nil
}

// Upload stores the file and makes it readable by anyone with the link. A
// failure to share is logged; the link is still returned.
func (s *DriveStore) Upload(ctx context.Context, file report.Attachment, name, folderID string) (string, error) {
	contentType := report.DetectContentType(file.Data)
	created, err := s.srv.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).Media(bytes.NewReader(file.Data), googleapi.ContentType(contentType)).
		Fields("id", "webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: drive upload %q: %w", report.ErrUpload, name, err)
	}

	_, err = s.srv.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		logger.Warn("Failed to make file public", "file", name, "id", created.Id, "err", err)
	}

	link := created.WebViewLink
	if link == "" {
		link = fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id)
	}
	logger.Info("File uploaded", "file", name, "bytes", len(file.Data))
	return link, nil
}

func (s *DriveStore) Download(ctx context.Context, link string) ([]byte, error) {
	id := ExtractDriveID(link)
	if id == "" {
		return nil, fmt.Errorf("%w: %q", errNotADriveLink, link)
	}
	resp, err := s.srv.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("%w: drive download %s: %w", report.ErrUpload, id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: drive read %s: %w", report.ErrUpload, id, err)
	}
	if int64(len(data)) > s.maxDownload {
		return nil, fmt.Errorf("%w: drive file %s: %w (%d bytes)", report.ErrUpload, id, errFileTooLarge, s.maxDownload)
	}
	return data, nil
}

// ExtractDriveID returns the file ID of a Drive share link, or "".
func ExtractDriveID(link string) string {
	if m := driveFilePathRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if m := driveIDQueryRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}
