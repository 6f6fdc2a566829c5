package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georepute/visibility-cli/internal/model"
	"github.com/georepute/visibility-cli/pkg/searchconsole"
)

type fakeSearchConsole struct {
	lastReq searchconsole.PerformanceRequest
	rows    []searchconsole.Row
}

func (f *fakeSearchConsole) QueryPerformance(_ context.Context, req searchconsole.PerformanceRequest) ([]searchconsole.Row, error) {
	f.lastReq = req
	return f.rows, nil
}

func TestSearchConsoleSourceFetchRows(t *testing.T) {
	client := &fakeSearchConsole{
		rows: []searchconsole.Row{
			{Keys: []string{"best crm software"}, Clicks: 12, Impressions: 340, CTR: 0.035, Position: 4.2},
			{Keys: nil, Clicks: 1, Impressions: 10, CTR: 0.1, Position: 9},
		},
	}
	source := NewSearchConsoleSource(client, 6)

	rows, err := source.FetchRows(context.Background(), "acme.com")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "sc-domain:acme.com", client.lastReq.SiteURL)
	window := client.lastReq.EndDate.Sub(client.lastReq.StartDate)
	assert.InDelta(t, 6*30, window.Hours()/24, 10)

	assert.Equal(t, model.PerformanceRow{
		Query: "best crm software", Clicks: 12, Impressions: 340, CTR: 0.035, Position: 4.2,
	}, rows[0])
	assert.Equal(t, "", rows[1].Query)
}

func TestSearchConsoleSourceDefaultWindow(t *testing.T) {
	client := &fakeSearchConsole{}
	source := NewSearchConsoleSource(client, 0)

	_, err := source.FetchRows(context.Background(), "acme.com")
	require.NoError(t, err)

	window := client.lastReq.EndDate.Sub(client.lastReq.StartDate)
	assert.InDelta(t, 365, window.Hours()/24, 10)
	assert.WithinDuration(t, time.Now().UTC(), client.lastReq.EndDate, time.Minute)
}

func TestStaticSource(t *testing.T) {
	rows := StaticSource{
		{Query: "q", Clicks: 1, Impressions: 2, Position: 3},
	}

	got, err := rows.FetchRows(context.Background(), "anything.com")
	require.NoError(t, err)
	assert.Equal(t, []model.PerformanceRow(rows), got)
}
