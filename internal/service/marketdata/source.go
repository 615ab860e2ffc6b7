package marketdata

import (
	"context"

	"MacroLens/internal/domain/models"
	drepo "MacroLens/internal/domain/repository"
	"MacroLens/internal/service/fred"
	"MacroLens/internal/service/yahoo"
)

// Source implements SeriesSource over the Yahoo and FRED clients.
type Source struct {
	prices *yahoo.Client
	macro  *fred.Client
}

// New creates a market data source backed by Yahoo and FRED.
func New(prices *yahoo.Client, macro *fred.Client) drepo.SeriesSource {
	return &Source{prices: prices, macro: macro}
}

func (s *Source) FetchPriceSeries(ctx context.Context, id string) (models.TimeSeries, error) {
	return s.prices.FetchDaily(ctx, id)
}

func (s *Source) FetchMacroSeries(ctx context.Context, id string) (models.TimeSeries, error) {
	return s.macro.FetchSeries(ctx, id)
}
