package repository

import (
	"context"

	"MacroLens/internal/domain/models"
	drepo "MacroLens/internal/domain/repository"
	applogger "MacroLens/pkg/logger"
)

const (
	sourcePrice = "price"
	sourceMacro = "macro"
)

// ResilientSource wraps a SeriesSource with a persistent store. Successful
// fetches are written through; when the remote fails, the last stored copy
// is served instead so one flaky provider does not blank a whole scan.
type ResilientSource struct {
	remote drepo.SeriesSource
	store  drepo.SeriesStore
	l      *applogger.Logger
}

// NewResilientSource decorates remote with store-backed fallback. A nil store
// disables persistence and passes fetches straight through.
func NewResilientSource(remote drepo.SeriesSource, store drepo.SeriesStore, l *applogger.Logger) drepo.SeriesSource {
	return &ResilientSource{remote: remote, store: store, l: l}
}

func (r *ResilientSource) FetchPriceSeries(ctx context.Context, id string) (models.TimeSeries, error) {
	return r.fetch(ctx, sourcePrice, id, r.remote.FetchPriceSeries)
}

func (r *ResilientSource) FetchMacroSeries(ctx context.Context, id string) (models.TimeSeries, error) {
	return r.fetch(ctx, sourceMacro, id, r.remote.FetchMacroSeries)
}

func (r *ResilientSource) fetch(
	ctx context.Context,
	source, id string,
	remote func(context.Context, string) (models.TimeSeries, error),
) (models.TimeSeries, error) {
	series, err := remote(ctx, id)
	if err == nil {
		if r.store != nil && !series.Empty() {
			if saveErr := r.store.SaveSeries(ctx, source, series); saveErr != nil && r.l != nil {
				r.l.Warn("series write-through failed",
					applogger.String("source", source),
					applogger.String("series", id),
					applogger.Error(saveErr),
				)
			}
		}
		return series, nil
	}

	if r.store == nil {
		return models.TimeSeries{}, err
	}

	stored, storeErr := r.store.GetSeries(ctx, source, id)
	if storeErr != nil || stored.Empty() {
		return models.TimeSeries{}, err
	}

	if r.l != nil {
		r.l.Warn("serving stored series after remote failure",
			applogger.String("source", source),
			applogger.String("series", id),
			applogger.Int("rows", stored.Len()),
			applogger.Error(err),
		)
	}
	return stored, nil
}
