package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/georepute/visibility-cli/internal/config"
	"github.com/georepute/visibility-cli/internal/cost"
	"github.com/georepute/visibility-cli/internal/engine"
	"github.com/georepute/visibility-cli/internal/model"
	"github.com/georepute/visibility-cli/internal/resilience"
	"github.com/georepute/visibility-cli/internal/store"
)

// Source provides raw per-query search performance rows for a domain.
type Source interface {
	FetchRows(ctx context.Context, domain string) ([]model.PerformanceRow, error)
}

// Pipeline runs the cross-engine visibility gap pipeline: aggregate, fan out,
// score, persist.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	registry *engine.Registry
	source   Source
	costCalc *cost.Calculator
	now      func() time.Time
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, registry *engine.Registry, source Source) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		registry: registry,
		source:   source,
		costCalc: cost.NewCalculator(cfg.Pricing),
		now:      time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (p *Pipeline) WithNow(fn func() time.Time) *Pipeline {
	p.now = fn
	return p
}

// GenerateGapReport runs the gap variant for one (account, domain).
func (p *Pipeline) GenerateGapReport(ctx context.Context, accountID, domain string) (*model.Report, error) {
	return p.generate(ctx, accountID, domain, model.ReportTypeGap)
}

// GenerateBlindSpotReport runs the blind-spot variant for one (account, domain).
func (p *Pipeline) GenerateBlindSpotReport(ctx context.Context, accountID, domain string) (*model.Report, error) {
	return p.generate(ctx, accountID, domain, model.ReportTypeBlindSpot)
}

// LastReport returns the most recently persisted report without
// recomputation, or (nil, nil) when none exists.
func (p *Pipeline) LastReport(ctx context.Context, accountID, domain string, typ model.ReportType) (*model.Report, error) {
	return p.store.GetReport(ctx, accountID, domain, typ)
}

// generate is the shared run: both variants use the identical fan-out and
// sanitization core and differ only in the scoring step.
func (p *Pipeline) generate(ctx context.Context, accountID, domain string, typ model.ReportType) (*model.Report, error) {
	log := zap.L().With(
		zap.String("account", accountID),
		zap.String("domain", domain),
		zap.String("variant", string(typ)),
	)
	start := p.now()

	engines := p.registry.Available()
	if len(engines) == 0 {
		return nil, ErrNoEngines
	}

	rows, err := p.source.FetchRows(ctx, domain)
	if err != nil {
		return nil, eris.Wrapf(ErrNoQueries, "fetch rows for %s: %v", domain, err)
	}

	queries := Aggregate(rows, p.cfg.Pipeline.MaxQueries)
	log.Info("pipeline: aggregated queries",
		zap.Int("raw_rows", len(rows)),
		zap.Int("queries", len(queries)),
		zap.Int("engines", len(engines)),
	)

	runner := newBatchRunner(p.cfg.Pipeline.BatchSize, time.Duration(p.cfg.Pipeline.EngineTimeoutSecs)*time.Second)
	results, stats := runner.run(ctx, queries, domain, engines)
	used := enginesUsed(engines, stats)
	totalUSD := p.costCalc.Annotate(stats)

	report := &model.Report{
		AccountID:   accountID,
		Domain:      domain,
		Type:        typ,
		GeneratedAt: p.now().UTC(),
		EnginesUsed: used,
		Stats:       flattenStats(stats),
	}
	switch typ {
	case model.ReportTypeGap:
		report.Queries = ComputeGapScores(queries, results, len(used))
		report.Summary = GapSummary(report.Queries)
	case model.ReportTypeBlindSpot:
		report.BlindSpots = ComputeBlindSpots(queries, results)
		report.Summary = BlindSpotSummary(report.BlindSpots)
	default:
		return nil, eris.Errorf("pipeline: unknown report type %q", typ)
	}

	log.Info("pipeline: scoring complete",
		zap.Int("queries", report.Summary.TotalQueries),
		zap.Strings("engines_used", used),
		zap.Float64("estimated_usd", totalUSD),
	)

	persistErr := p.persist(ctx, report)

	// Best-effort analytics row; never affects the run's outcome.
	p.recordRunStats(ctx, report, start, totalUSD)

	if persistErr != nil {
		log.Error("pipeline: persist failed, returning in-memory report", zap.Error(persistErr))
		return report, eris.Wrapf(ErrNotPersisted, "upsert report: %v", persistErr)
	}
	return report, nil
}

// persist upserts the report, retrying only transient store failures.
func (p *Pipeline) persist(ctx context.Context, report *model.Report) error {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("store", "upsert_report")
	return resilience.Do(ctx, retryCfg, func(ctx context.Context) error {
		return p.store.UpsertReport(ctx, report)
	})
}

func (p *Pipeline) recordRunStats(ctx context.Context, report *model.Report, start time.Time, totalUSD float64) {
	stats := model.RunStats{
		ID:          uuid.NewString(),
		AccountID:   report.AccountID,
		Domain:      report.Domain,
		Type:        report.Type,
		DurationMS:  p.now().Sub(start).Milliseconds(),
		EnginesUsed: report.EnginesUsed,
		Stats:       report.Stats,
		TotalUSD:    totalUSD,
		CreatedAt:   report.GeneratedAt,
	}
	if err := p.store.RecordRunStats(ctx, stats); err != nil {
		zap.L().Warn("pipeline: run stats write failed",
			zap.String("domain", report.Domain),
			zap.Error(err),
		)
	}
}

func flattenStats(stats map[string]*model.EngineStats) map[string]model.EngineStats {
	out := make(map[string]model.EngineStats, len(stats))
	for key, st := range stats {
		out[key] = *st
	}
	return out
}
