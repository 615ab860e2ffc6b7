package fred

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"MacroLens/internal/domain/models"
	xhttp "MacroLens/pkg/http"
	"MacroLens/pkg/util"
)

// Client fetches economic series observations from the FRED API.
type Client struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// New creates a FRED API client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.stlouisfed.org/fred"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

// FetchSeries returns all observations for a series code. FRED marks missing
// observations with a "." value; those rows are dropped. An empty series with
// a nil error means the code has no data.
func (c *Client) FetchSeries(ctx context.Context, code string) (models.TimeSeries, error) {
	if c.apiKey == "" {
		return models.TimeSeries{}, fmt.Errorf("fred %s: api key not configured", code)
	}

	var resp observationsResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/series/observations", c.baseURL),
		QueryParams: map[string][]string{
			"series_id": {code},
			"api_key":   {c.apiKey},
			"file_type": {"json"},
		},
	}, &resp)
	if err != nil {
		return models.TimeSeries{}, fmt.Errorf("fred %s: %w", code, err)
	}

	points := make([]models.SeriesPoint, 0, len(resp.Observations))
	for _, obs := range resp.Observations {
		if obs.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		t, ok := util.ParseTime(obs.Date)
		if !ok {
			continue
		}
		points = append(points, models.SeriesPoint{Time: t, Value: v})
	}

	return models.TimeSeries{ID: code, Points: points}, nil
}
