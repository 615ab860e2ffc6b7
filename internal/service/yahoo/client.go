package yahoo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"MacroLens/internal/domain/models"
	xhttp "MacroLens/pkg/http"
	"MacroLens/pkg/util"
)

// Client fetches daily price history from the Yahoo Finance chart API.
type Client struct {
	baseURL  string
	rangeStr string
	interval string
	client   *xhttp.Client
}

// New creates a Yahoo chart API client.
func New(baseURL, rangeStr, interval string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	if rangeStr == "" {
		rangeStr = "10y"
	}
	if interval == "" {
		interval = "1d"
	}
	return &Client{
		baseURL:  baseURL,
		rangeStr: rangeStr,
		interval: interval,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type chartQuote struct {
	Close []*float64 `json:"close"`
}

type chartAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type chartIndicators struct {
	Quote    []chartQuote    `json:"quote"`
	AdjClose []chartAdjClose `json:"adjclose"`
}

type chartResult struct {
	Timestamp  []int64         `json:"timestamp"`
	Indicators chartIndicators `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

// FetchDaily returns the adjusted close history for a symbol. Prefers the
// adjusted close, falling back to raw close; missing sessions are skipped.
// An empty series with a nil error means the symbol has no data.
func (c *Client) FetchDaily(ctx context.Context, symbol string) (models.TimeSeries, error) {
	var resp chartResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, symbol),
		QueryParams: map[string][]string{
			"range":    {c.rangeStr},
			"interval": {c.interval},
			"events":   {"div,splits"},
		},
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (compatible; macrolens/1.0)",
		},
	}, &resp)
	if err != nil {
		return models.TimeSeries{}, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return models.TimeSeries{}, fmt.Errorf("yahoo chart %s: %s (%s)",
			symbol, resp.Chart.Error.Description, resp.Chart.Error.Code)
	}
	if len(resp.Chart.Result) == 0 {
		return models.TimeSeries{ID: symbol}, nil
	}

	result := resp.Chart.Result[0]
	closes := pickCloses(result.Indicators)

	points := make([]models.SeriesPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		// Yahoo stamps intraday open times; truncate so price rows join
		// cleanly with midnight-dated macro observations.
		points = append(points, models.SeriesPoint{
			Time:  util.TruncateToDay(time.Unix(ts, 0)),
			Value: *closes[i],
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return models.TimeSeries{ID: symbol, Points: points}, nil
}

func pickCloses(ind chartIndicators) []*float64 {
	if len(ind.AdjClose) > 0 && len(ind.AdjClose[0].AdjClose) > 0 {
		return ind.AdjClose[0].AdjClose
	}
	if len(ind.Quote) > 0 {
		return ind.Quote[0].Close
	}
	return nil
}
