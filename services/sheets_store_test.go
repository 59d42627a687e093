package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"kokurikulumAPI/internal/report"
)

type valueRange struct {
	Range  string          `json:"range,omitempty"`
	Values [][]interface{} `json:"values,omitempty"`
}

type fakeSheet struct {
	mu        sync.Mutex
	rows      [][]interface{}
	updates   []valueRange
	appends   []valueRange
	appendErr bool
	queries   []string
}

func (s *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	s.queries = append(s.queries, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		if s.appendErr {
			http.Error(w, `{"error":{"code":403,"message":"protected range"}}`, http.StatusForbidden)
			return
		}
		var vr valueRange
		json.NewDecoder(r.Body).Decode(&vr)
		s.appends = append(s.appends, vr)
		s.rows = append(s.rows, vr.Values...)
		io.WriteString(w, `{"updates":{"updatedRows":1}}`)

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr valueRange
		json.NewDecoder(r.Body).Decode(&vr)
		s.updates = append(s.updates, vr)
		s.rows = append(vr.Values, s.rows...)
		io.WriteString(w, `{"updatedRows":1}`)

	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		rows := s.rows
		if strings.HasSuffix(path, "1:K1") && len(rows) > 1 {
			rows = rows[:1]
		}
		json.NewEncoder(w).Encode(valueRange{Values: rows})

	case r.Method == http.MethodGet:
		io.WriteString(w, `{"spreadsheetId":"sheet-1"}`)

	default:
		http.Error(w, `{"error":{"code":400,"message":"unexpected request"}}`, http.StatusBadRequest)
	}
}

func newTestSheetsStore(t *testing.T, fake *fakeSheet) *SheetsStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewSheetsStore(context.Background(), "sheet-1", "Sheet1",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return store
}

func TestSheetsStore_EnsureSchemaWritesHeaderOnce(t *testing.T) {
	fake := &fakeSheet{}
	store := newTestSheetsStore(t, fake)
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	require.Len(t, fake.updates, 1)
	assert.Equal(t, toCells(report.Columns), fake.updates[0].Values[0])

	require.NoError(t, store.EnsureSchema(ctx))
	assert.Len(t, fake.updates, 1, "an existing header is left alone")
}

func TestSheetsStore_AppendAndRead(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{toCells(report.Columns)}}
	store := newTestSheetsStore(t, fake)
	ctx := context.Background()

	rec := report.Record{
		Timestamp:       "20250314_093005",
		CompetitionName: "Pertandingan Pidato",
		Date:            "2025-03-14",
		Location:        "Dewan",
		StudentNames:    "Ali, Siti",
		Achievement:     "Johan",
		PhotoLinks:      [report.MaxPhotos]string{"p1", "p2"},
	}
	require.NoError(t, store.AppendRow(ctx, rec))
	require.Len(t, fake.appends, 1)
	assert.Len(t, fake.appends[0].Values[0], len(report.Columns))

	last := fake.queries[len(fake.queries)-1]
	assert.Contains(t, last, "valueInputOption=RAW")
	assert.Contains(t, last, "insertDataOption=INSERT_ROWS")

	// Sheets drops trailing empty cells.
	fake.rows = append(fake.rows, []interface{}{}, []interface{}{"20250315_100000", "Catur", "2025-03-15", "", "Abu"})

	got, err := store.ReadAllRows(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rec, got[0])
	assert.Equal(t, "Abu", got[1].StudentNames)
	assert.Equal(t, "", got[1].InvitationLink)
}

func TestSheetsStore_AppendFailure(t *testing.T) {
	store := newTestSheetsStore(t, &fakeSheet{appendErr: true})

	err := store.AppendRow(context.Background(), report.Record{Timestamp: "20250314_093005"})
	assert.ErrorIs(t, err, report.ErrStore)
}

func TestSheetsStore_Ping(t *testing.T) {
	store := newTestSheetsStore(t, &fakeSheet{})
	assert.NoError(t, store.Ping(context.Background()))
}

func TestSheetsStore_QuotesSheetName(t *testing.T) {
	s := &SheetsStore{sheetName: "Laporan '25"}
	assert.Equal(t, "'Laporan ''25'!A:K", s.a1("A:"+lastColumn()))
}
