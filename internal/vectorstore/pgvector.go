package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// PGVectorBackend PostgreSQL + pgvector。整表替换在一个事务内完成，
// 读取方只会看到旧快照或新快照
type PGVectorBackend struct {
	db         *sql.DB
	table      string
	metaTable  string
	dimensions int
	logger     zerolog.Logger
}

// NewPGVector 使用已打开的 *sql.DB（lib/pq 驱动）
func NewPGVector(db *sql.DB, table string, dimensions int, logger zerolog.Logger) (*PGVectorBackend, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("pgvector: dimensions must be positive")
	}
	return &PGVectorBackend{
		db:         db,
		table:      table,
		metaTable:  table + "_build",
		dimensions: dimensions,
		logger:     logger,
	}, nil
}

// Name 实现 Backend
func (p *PGVectorBackend) Name() string { return "pgvector" }

// EnsureSchema 建扩展和表（构建前调用）
func (p *PGVectorBackend) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			seq INTEGER PRIMARY KEY,
			body TEXT NOT NULL,
			title TEXT NOT NULL,
			year TEXT NOT NULL,
			mood_labels TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, pq.QuoteIdentifier(p.table), p.dimensions),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			doc_count INTEGER NOT NULL,
			built_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, pq.QuoteIdentifier(p.metaTable)),
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Replace 实现 Backend：TRUNCATE + COPY + 写构建记录，同一事务
func (p *PGVectorBackend) Replace(ctx context.Context, records []Record) (err error) {
	if err := p.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("TRUNCATE %s, %s",
		pq.QuoteIdentifier(p.table), pq.QuoteIdentifier(p.metaTable))); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(p.table, "seq", "body", "title", "year", "mood_labels", "embedding"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for _, r := range records {
		meta := r.Document.Metadata
		if _, err = stmt.ExecContext(ctx, r.Seq, r.Document.Body, meta.Title, meta.Year, meta.MoodLabels, pgvector.NewVector(r.Vector)); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy record %d: %w", r.Seq, err)
		}
	}
	if _, err = stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err = stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (doc_count) VALUES ($1)",
		pq.QuoteIdentifier(p.metaTable)), len(records)); err != nil {
		return fmt.Errorf("write build marker: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load 实现 Backend。在一个只读事务里同时读取构建记录和数据
func (p *PGVectorBackend) Load(ctx context.Context) ([]Record, error) {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT doc_count FROM %s WHERE id = 1", pq.QuoteIdentifier(p.metaTable))).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
		return nil, fmt.Errorf("%w: no completed build in %s", ErrIndexUnavailable, p.table)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(
		"SELECT seq, body, title, year, mood_labels, embedding FROM %s ORDER BY seq", pq.QuoteIdentifier(p.table)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer rows.Close()

	records := make([]Record, 0, count)
	for rows.Next() {
		var (
			r   Record
			vec pgvector.Vector
		)
		meta := &r.Document.Metadata
		if err := rows.Scan(&r.Seq, &r.Document.Body, &meta.Title, &meta.Year, &meta.MoodLabels, &vec); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrIndexUnavailable, err)
		}
		r.Vector = vec.Slice()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if len(records) != count {
		return nil, fmt.Errorf("%w: expected %d records, found %d", ErrIndexUnavailable, count, len(records))
	}
	return records, nil
}

// Close 连接由调用方管理
func (p *PGVectorBackend) Close() error { return nil }

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}
