package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kokurikulumAPI/internal/report"
)

type uploadCall struct {
	Name     string
	FolderID string
}

type fakeFileStore struct {
	mu        sync.Mutex
	folders   []string
	uploads   []uploadCall
	failOn    string // upload name that fails
	folderErr error
	content   map[string][]byte
}

func (f *fakeFileStore) CreateFolder(_ context.Context, name, parentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.folderErr != nil {
		return "", f.folderErr
	}
	f.folders = append(f.folders, name)
	return "folder-" + parentID, nil
}

func (f *fakeFileStore) Upload(_ context.Context, _ report.Attachment, name, folderID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && name == f.failOn {
		return "", errors.New("permission denied")
	}
	f.uploads = append(f.uploads, uploadCall{Name: name, FolderID: folderID})
	return "https://drive.google.com/file/d/" + name + "/view", nil
}

func (f *fakeFileStore) Download(_ context.Context, link string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.content[link]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", report.ErrUpload, link)
	}
	return data, nil
}

func (f *fakeFileStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.folders) + len(f.uploads)
}

type fakeTabularStore struct {
	mu        sync.Mutex
	rows      []report.Record
	appendErr error
	readErr   error
}

func (f *fakeTabularStore) EnsureSchema(context.Context) error { return nil }

func (f *fakeTabularStore) AppendRow(_ context.Context, rec report.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, rec)
	return nil
}

func (f *fakeTabularStore) ReadAllRows(context.Context) ([]report.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]report.Record(nil), f.rows...), nil
}

func (f *fakeTabularStore) Ping(context.Context) error { return f.readErr }

type fakeNotifier struct {
	got []report.Record
	err error
}

func (n *fakeNotifier) NotifyReportSubmitted(_ context.Context, rec report.Record) error {
	n.got = append(n.got, rec)
	return n.err
}
