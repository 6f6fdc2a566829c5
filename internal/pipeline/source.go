package pipeline

import (
	"context"
	"time"

	"github.com/georepute/visibility-cli/internal/model"
	"github.com/georepute/visibility-cli/pkg/searchconsole"
)

// searchConsoleSource fetches performance rows from the Search Console API
// for a domain property.
type searchConsoleSource struct {
	client searchconsole.Client
	months int
}

// NewSearchConsoleSource wraps a Search Console client as a Source covering
// the trailing window of the given number of months.
func NewSearchConsoleSource(client searchconsole.Client, months int) Source {
	if months <= 0 {
		months = 12
	}
	return &searchConsoleSource{client: client, months: months}
}

func (s *searchConsoleSource) FetchRows(ctx context.Context, domain string) ([]model.PerformanceRow, error) {
	end := time.Now().UTC()
	rows, err := s.client.QueryPerformance(ctx, searchconsole.PerformanceRequest{
		SiteURL:   "sc-domain:" + domain,
		StartDate: end.AddDate(0, -s.months, 0),
		EndDate:   end,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.PerformanceRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.PerformanceRow{
			Query:       r.Query(),
			Clicks:      int(r.Clicks),
			Impressions: int(r.Impressions),
			CTR:         r.CTR,
			Position:    r.Position,
		})
	}
	return out, nil
}

// StaticSource serves a fixed row set; used by the CLI's file input mode
// and by tests.
type StaticSource []model.PerformanceRow

// FetchRows returns the fixed rows for any domain.
func (s StaticSource) FetchRows(_ context.Context, _ string) ([]model.PerformanceRow, error) {
	return s, nil
}
