package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/finwise-app/statement-ingest/internal/txn"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file TEXT NOT NULL,
	tx_date     TEXT NOT NULL,
	description TEXT NOT NULL,
	amount      TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	payee       TEXT NOT NULL DEFAULT '',
	confidence  REAL NOT NULL DEFAULT 0,
	tags        TEXT NOT NULL DEFAULT '',
	raw_line    TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (source_file, tx_date, description, amount)
);
`

// Store is the embedded hand-off point for accepted transactions. The real
// persistence layer sits behind the upload handler; this one backs the
// command-line runner and local development.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTransactions inserts accepted transactions, silently skipping rows
// already present for the same source file. Returns the number inserted.
func (s *Store) SaveTransactions(ctx context.Context, sourceFile string, txns []txn.Transaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (source_file, tx_date, description, amount, category, payee, confidence, tags, raw_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_file, tx_date, description, amount) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, t := range txns {
		r, err := stmt.ExecContext(ctx,
			sourceFile,
			t.Date.Format("2006-01-02"),
			t.Description,
			t.Amount.StringFixed(2),
			t.Category,
			t.Payee,
			t.Confidence,
			strings.Join(t.Tags, ","),
			t.RawSourceLine,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert transaction: %w", err)
		}
		if n, _ := r.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("store.saved",
		"source_file", sourceFile,
		"transactions", len(txns),
		"inserted", inserted,
	)
	return inserted, nil
}

// CountBySource reports how many transactions are stored for a file.
func (s *Store) CountBySource(ctx context.Context, sourceFile string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE source_file = ?`, sourceFile).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
