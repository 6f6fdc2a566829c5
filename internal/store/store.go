// Package store persists visibility reports. A report is owned by one
// (account, domain, report type) triple; each pipeline run fully replaces
// the previous report for its triple.
package store

import (
	"context"

	"github.com/georepute/visibility-cli/internal/model"
)

// Store defines the persistence interface for the visibility pipeline.
type Store interface {
	// UpsertReport replaces the report for the report's
	// (account, domain, type) key. Re-running with identical content
	// converges to the same stored row.
	UpsertReport(ctx context.Context, report *model.Report) error

	// GetReport returns the most recently persisted report for the key,
	// or (nil, nil) when none exists yet.
	GetReport(ctx context.Context, accountID, domain string, typ model.ReportType) (*model.Report, error)

	// RecordRunStats writes a best-effort analytics row for one run.
	RecordRunStats(ctx context.Context, stats model.RunStats) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
