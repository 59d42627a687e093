package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"kokurikulumAPI/internal/logger"
	"kokurikulumAPI/internal/report"
)

// SheetsStore is the Google Sheets TabularStore. Rows live in columns A:K of
// one worksheet, the first row being the header.
type SheetsStore struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetsStore(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*SheetsStore, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &SheetsStore{srv: srv, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func (s *SheetsStore) a1(cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(s.sheetName, "'", "''"), cells)
}

func lastColumn() string {
	return string(rune('A' + len(report.Columns) - 1))
}

func (s *SheetsStore) EnsureSchema(ctx context.Context) error {
	headerRange := s.a1("A1:" + lastColumn() + "1")
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: sheets read header: %w", report.ErrStore, err)
	}
	if len(resp.Values) > 0 {
		if header := toStrings(resp.Values[0]); !report.IsHeaderRow(header) {
			logger.Warn("Sheet header does not match report columns", "header", header)
		}
		return nil
	}

	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, s.a1("A1"), &sheets.ValueRange{
		Values: [][]interface{}{toCells(report.Columns)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: sheets write header: %w", report.ErrStore, err)
	}
	logger.Info("Sheet header written", "sheet", s.sheetName)
	return nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, rec report.Record) error {
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.a1("A:"+lastColumn()), &sheets.ValueRange{
		Values: [][]interface{}{toCells(rec.Row())},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: sheets append: %w", report.ErrStore, err)
	}
	logger.Info("Row appended", "timestamp", rec.Timestamp, "competition", rec.CompetitionName)
	return nil
}

func (s *SheetsStore) ReadAllRows(ctx context.Context) ([]report.Record, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.a1("A:"+lastColumn())).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: sheets read: %w", report.ErrStore, err)
	}

	records := make([]report.Record, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := toStrings(raw)
		if report.IsHeaderRow(row) || isBlank(row) {
			continue
		}
		records = append(records, report.RecordFromRow(row))
	}
	logger.Debug("Rows loaded", "count", len(records))
	return records, nil
}

func (s *SheetsStore) Ping(ctx context.Context) error {
	_, err := s.srv.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: sheets ping: %w", report.ErrStore, err)
	}
	return nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

func toStrings(cells []interface{}) []string {
	row := make([]string, len(cells))
	for i, c := range cells {
		if c != nil {
			row[i] = fmt.Sprint(c)
		}
	}
	return row
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
