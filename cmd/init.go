package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/georepute/visibility-cli/internal/engine"
	"github.com/georepute/visibility-cli/internal/model"
	"github.com/georepute/visibility-cli/internal/pipeline"
	"github.com/georepute/visibility-cli/internal/store"
	"github.com/georepute/visibility-cli/pkg/searchconsole"
)

// pipelineEnv holds the initialized store, engine registry, and pipeline
// shared by the run/report/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Registry *engine.Registry
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, the engine registry, and the performance
// source, then builds the Pipeline. Callers should defer env.Close().
// inputPath optionally replaces the Search Console source with a CSV fixture.
func initPipeline(ctx context.Context, inputPath string) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	registry := engine.NewRegistryFromConfig(cfg.Engines)
	if registry.Len() == 0 {
		zap.L().Warn("no engine credentials configured; report generation will fail")
	}

	var source pipeline.Source
	if inputPath != "" {
		rows, err := loadRowsCSV(inputPath)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		source = pipeline.StaticSource(rows)
		zap.L().Info("using csv performance source", zap.String("path", inputPath), zap.Int("rows", len(rows)))
	} else {
		client := searchconsole.NewClient(cfg.SearchConsole.Token,
			searchconsole.WithBaseURL(cfg.SearchConsole.BaseURL))
		source = pipeline.NewSearchConsoleSource(client, cfg.SearchConsole.Months)
	}

	return &pipelineEnv{
		Store:    st,
		Registry: registry,
		Pipeline: pipeline.New(cfg, st, registry, source),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite store")
		}
		return s, nil
	default:
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		return s, nil
	}
}

// loadRowsCSV reads performance rows from a CSV file with a header of
// query,clicks,impressions,ctr,position.
func loadRowsCSV(path string) ([]model.PerformanceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	// Skip header.
	if _, err := r.Read(); err != nil {
		return nil, eris.Wrapf(err, "read header of %s", path)
	}

	var rows []model.PerformanceRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}

		clicks, _ := strconv.Atoi(rec[1])
		impressions, _ := strconv.Atoi(rec[2])
		ctr, _ := strconv.ParseFloat(rec[3], 64)
		position, _ := strconv.ParseFloat(rec[4], 64)
		rows = append(rows, model.PerformanceRow{
			Query:       rec[0],
			Clicks:      clicks,
			Impressions: impressions,
			CTR:         ctr,
			Position:    position,
		})
	}
}
