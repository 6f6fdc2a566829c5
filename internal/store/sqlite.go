package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/georepute/visibility-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local runs
// without a Postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	account_id   TEXT NOT NULL,
	domain       TEXT NOT NULL,
	report_type  TEXT NOT NULL,
	generated_at DATETIME NOT NULL,
	payload      TEXT NOT NULL,
	PRIMARY KEY (account_id, domain, report_type)
);

CREATE TABLE IF NOT EXISTS run_stats (
	id          TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL,
	domain      TEXT NOT NULL,
	report_type TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	payload     TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_run_stats_account_domain ON run_stats(account_id, domain);
`

// Migrate creates the store's tables if they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertReport replaces the report for its (account, domain, type) key.
func (s *SQLiteStore) UpsertReport(ctx context.Context, report *model.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (account_id, domain, report_type, generated_at, payload)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (account_id, domain, report_type) DO UPDATE SET generated_at = excluded.generated_at, payload = excluded.payload`,
		report.AccountID, report.Domain, string(report.Type), report.GeneratedAt, string(payload),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: upsert report")
	}
	return nil
}

// GetReport fetches the last persisted report, or (nil, nil) when absent.
func (s *SQLiteStore) GetReport(ctx context.Context, accountID, domain string, typ model.ReportType) (*model.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE account_id = ? AND domain = ? AND report_type = ?`,
		accountID, domain, string(typ),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get report")
	}

	var report model.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	return &report, nil
}

// RecordRunStats inserts one analytics row.
func (s *SQLiteStore) RecordRunStats(ctx context.Context, stats model.RunStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run stats")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_stats (id, account_id, domain, report_type, duration_ms, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stats.ID, stats.AccountID, stats.Domain, string(stats.Type), stats.DurationMS, string(payload), stats.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert run stats")
	}
	return nil
}
