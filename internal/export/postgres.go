package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
)

// DefaultTable is the table records are copied into.
const DefaultTable = "voter_records"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Columns with a non-text type; everything else is TEXT.
var columnTypes = map[string]string{
	"extraction_order":   "INTEGER",
	"page_number":        "INTEGER",
	"confidence":         "INTEGER",
	"relation_defaulted": "BOOLEAN",
}

// PostgresSink appends records to a PostgreSQL table using COPY.
type PostgresSink struct {
	db    *sql.DB
	table string
}

// NewPostgresSink connects to databaseURL and makes sure the table exists.
func NewPostgresSink(ctx context.Context, databaseURL, table string) (*PostgresSink, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresSink{db: db, table: table}
	if _, err := db.ExecContext(ctx, createTableSQL(table)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return s, nil
}

// sinkColumns are the table columns in COPY order.
func sinkColumns() []string {
	return append([]string{"run_id"}, Columns()...)
}

func createTableSQL(table string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", pq.QuoteIdentifier(table))
	b.WriteString("\tid BIGSERIAL PRIMARY KEY,\n")
	for _, col := range sinkColumns() {
		typ := columnTypes[col]
		if typ == "" {
			typ = "TEXT"
		}
		fmt.Fprintf(&b, "\t%s %s NOT NULL,\n", pq.QuoteIdentifier(col), typ)
	}
	b.WriteString("\tcreated_at TIMESTAMPTZ NOT NULL DEFAULT now()\n)")
	return b.String()
}

// Write copies every record of doc in one transaction and returns the
// number of rows written.
func (s *PostgresSink) Write(ctx context.Context, doc Document) (int, error) {
	if len(doc.Records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(s.table, sinkColumns()...))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare COPY: %w", err)
	}
	for _, rec := range doc.Records {
		row := Row(rec, doc.Template)
		args := make([]any, 0, len(row)+1)
		args = append(args, doc.RunID)
		for _, v := range row {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("failed to copy record %d: %w", rec.ExtractionOrder, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return 0, fmt.Errorf("failed to flush COPY: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close COPY: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(doc.Records), nil
}

// Close closes the database handle.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
