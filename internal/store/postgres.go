package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/georepute/visibility-cli/internal/db"
	"github.com/georepute/visibility-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the store's hot paths.
var preparedStatements = map[string]string{
	"upsert_report": `INSERT INTO reports (account_id, domain, report_type, generated_at, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (account_id, domain, report_type) DO UPDATE SET generated_at = $4, payload = $5`,
	"get_report": `SELECT payload FROM reports
		 WHERE account_id = $1 AND domain = $2 AND report_type = $3`,
	"insert_run_stats": `INSERT INTO run_stats (id, account_id, domain, report_type, duration_ms, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	account_id   TEXT NOT NULL,
	domain       TEXT NOT NULL,
	report_type  TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	payload      JSONB NOT NULL,
	PRIMARY KEY (account_id, domain, report_type)
);

CREATE TABLE IF NOT EXISTS run_stats (
	id          TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL,
	domain      TEXT NOT NULL,
	report_type TEXT NOT NULL,
	duration_ms BIGINT NOT NULL,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_run_stats_account_domain ON run_stats(account_id, domain);
`

// Migrate creates the store's tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// UpsertReport replaces the report for its (account, domain, type) key.
func (s *PostgresStore) UpsertReport(ctx context.Context, report *model.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO reports (account_id, domain, report_type, generated_at, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (account_id, domain, report_type) DO UPDATE SET generated_at = $4, payload = $5`,
		report.AccountID, report.Domain, string(report.Type), report.GeneratedAt, payload,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: upsert report")
	}
	return nil
}

// GetReport fetches the last persisted report, or (nil, nil) when absent.
func (s *PostgresStore) GetReport(ctx context.Context, accountID, domain string, typ model.ReportType) (*model.Report, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM reports WHERE account_id = $1 AND domain = $2 AND report_type = $3`,
		accountID, domain, string(typ),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get report")
	}

	var report model.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	return &report, nil
}

// RecordRunStats inserts one analytics row.
func (s *PostgresStore) RecordRunStats(ctx context.Context, stats model.RunStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run stats")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_stats (id, account_id, domain, report_type, duration_ms, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		stats.ID, stats.AccountID, stats.Domain, string(stats.Type), stats.DurationMS, payload, stats.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert run stats")
	}
	return nil
}
