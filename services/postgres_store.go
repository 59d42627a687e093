package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"kokurikulumAPI/internal/report"
)

// pgxPool is the subset of *pgxpool.Pool the store uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

const reportTable = "laporan"

var (
	quotedColumns = func() string {
		cols := make([]string, len(report.Columns))
		for i, c := range report.Columns {
			cols[i] = pgx.Identifier{c}.Sanitize()
		}
		return strings.Join(cols, ", ")
	}()

	createTableQuery = func() string {
		defs := make([]string, len(report.Columns))
		for i, c := range report.Columns {
			defs[i] = pgx.Identifier{c}.Sanitize() + " TEXT NOT NULL DEFAULT ''"
		}
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		%s
	)`, reportTable, strings.Join(defs, ",\n\t\t"))
	}()

	insertQuery = func() string {
		params := make([]string, len(report.Columns))
		for i := range params {
			params[i] = fmt.Sprintf("$%d", i+1)
		}
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			reportTable, quotedColumns, strings.Join(params, ", "))
	}()

	selectAllQuery = fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, quotedColumns, reportTable)
)

// PostgresStore is a TabularStore backed by one PostgreSQL table whose
// columns mirror the sheet layout. Absent values are stored as ''.
type PostgresStore struct {
	db pgxPool
}

func NewPostgresStore(db pgxPool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("%w: create table: %w", report.ErrStore, err)
	}
	return nil
}

func (s *PostgresStore) AppendRow(ctx context.Context, rec report.Record) error {
	row := rec.Row()
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	if _, err := s.db.Exec(ctx, insertQuery, args...); err != nil {
		return fmt.Errorf("%w: insert report: %w", report.ErrStore, err)
	}
	return nil
}

func (s *PostgresStore) ReadAllRows(ctx context.Context) ([]report.Record, error) {
	rows, err := s.db.Query(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query reports: %w", report.ErrStore, err)
	}
	defer rows.Close()

	var records []report.Record
	for rows.Next() {
		row := make([]string, len(report.Columns))
		dest := make([]any, len(row))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan report: %w", report.ErrStore, err)
		}
		records = append(records, report.RecordFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read reports: %w", report.ErrStore, err)
	}
	return records, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", report.ErrStore, err)
	}
	return nil
}
