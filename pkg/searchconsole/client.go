// Package searchconsole fetches per-query search performance rows from the
// Search Console Search Analytics API.
package searchconsole

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/webmasters/v3"
	defaultRowLimit = 5000
)

// Client queries search performance data for a site.
type Client interface {
	QueryPerformance(ctx context.Context, req PerformanceRequest) ([]Row, error)
}

// PerformanceRequest bounds one performance query.
type PerformanceRequest struct {
	SiteURL   string    // "sc-domain:example.com" or a URL-prefix property
	StartDate time.Time
	EndDate   time.Time
}

// Row is one per-query performance row. The API returns the query text as
// the single dimension key.
type Row struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

// Query returns the row's query text, or "" when the row carries no keys.
func (r Row) Query() string {
	if len(r.Keys) == 0 {
		return ""
	}
	return r.Keys[0]
}

type queryRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
	StartRow   int      `json:"startRow"`
}

type queryResponse struct {
	Rows []Row `json:"rows"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRowLimit overrides the per-page row limit.
func WithRowLimit(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.rowLimit = n
		}
	}
}

type httpClient struct {
	token    string
	baseURL  string
	rowLimit int
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a Search Console client authenticated by a bearer token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:    token,
		baseURL:  defaultBaseURL,
		rowLimit: defaultRowLimit,
		limiter:  rate.NewLimiter(5, 1),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// QueryPerformance pages through the Search Analytics query endpoint until a
// short page signals the end of the window.
func (c *httpClient) QueryPerformance(ctx context.Context, req PerformanceRequest) ([]Row, error) {
	endpoint := c.baseURL + "/sites/" + url.PathEscape(req.SiteURL) + "/searchAnalytics/query"

	var all []Row
	for startRow := 0; ; startRow += c.rowLimit {
		page, err := c.queryPage(ctx, endpoint, queryRequest{
			StartDate:  req.StartDate.Format("2006-01-02"),
			EndDate:    req.EndDate.Format("2006-01-02"),
			Dimensions: []string{"query"},
			RowLimit:   c.rowLimit,
			StartRow:   startRow,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.rowLimit {
			return all, nil
		}
	}
}

func (c *httpClient) queryPage(ctx context.Context, endpoint string, q queryRequest) ([]Row, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "searchconsole: rate limit wait")
	}

	body, err := json.Marshal(q)
	if err != nil {
		return nil, eris.Wrap(err, "searchconsole: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "searchconsole: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "searchconsole: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "searchconsole: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("searchconsole: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result queryResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "searchconsole: unmarshal response")
	}

	return result.Rows, nil
}
