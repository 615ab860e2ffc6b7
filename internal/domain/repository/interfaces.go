package repository

import (
	"context"

	"MacroLens/internal/domain/models"
)

// SeriesSource provides raw series data. An empty series with a nil error is
// the "no data" signal; errors are reserved for transport-level failures.
type SeriesSource interface {
	FetchPriceSeries(ctx context.Context, id string) (models.TimeSeries, error)
	FetchMacroSeries(ctx context.Context, id string) (models.TimeSeries, error)
}

// SeriesStore persists fetched series points so a flaky remote does not
// blank a whole scan. Scan results themselves are never persisted.
type SeriesStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	SaveSeries(ctx context.Context, source string, s models.TimeSeries) error
	GetSeries(ctx context.Context, source, id string) (models.TimeSeries, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordScan(target string)
	RecordFindings(target string, n int)
	RecordDriverSkip(reason string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordModelR2(target string, r2 float64)
}
