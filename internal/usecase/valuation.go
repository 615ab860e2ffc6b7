package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MacroLens/internal/domain/models"
	drepo "MacroLens/internal/domain/repository"
	domsvc "MacroLens/internal/domain/service"
	"MacroLens/internal/services/engine"
	applogger "MacroLens/pkg/logger"
	"MacroLens/pkg/util"
)

// ValuationUseCase fits a lag-aligned linear model on selected drivers and
// projects the target's fair value, including past the last observed price
// where leading drivers still have data.
type ValuationUseCase struct {
	source        drepo.SeriesSource
	metrics       drepo.Metrics
	equityProxies []string
	l             *applogger.Logger
}

var _ domsvc.Valuer = (*ValuationUseCase)(nil)

func NewValuationUseCase(
	source drepo.SeriesSource,
	metrics drepo.Metrics,
	equityProxies []string,
	l *applogger.Logger,
) *ValuationUseCase {
	return &ValuationUseCase{source: source, metrics: metrics, equityProxies: equityProxies, l: l}
}

// Valuate fetches the target and every selected driver, then trains the
// model. A nil report with a nil error means no complete training rows
// remained; callers translate that into "not enough data", not a failure.
func (uc *ValuationUseCase) Valuate(ctx context.Context, p domsvc.ValuationParams) (*models.ValuationReport, error) {
	if p.TargetID == "" {
		return nil, fmt.Errorf("target required")
	}
	if len(p.Drivers) == 0 {
		return nil, fmt.Errorf("at least one driver required")
	}

	start := time.Now()
	defer func() {
		uc.metrics.RecordLatency("valuation", time.Since(start).Seconds())
	}()

	target, err := uc.fetch(ctx, p.TargetID)
	if err != nil {
		uc.metrics.RecordError("target_fetch")
		return nil, fmt.Errorf("fetch target %s: %w", p.TargetID, err)
	}
	if target.Empty() {
		uc.l.Warn("valuation target has no data", applogger.String("target", p.TargetID))
		return nil, nil
	}

	selections := make(map[string]models.DriverSelection, len(p.Drivers))
	for _, d := range p.Drivers {
		if d.ID == p.TargetID {
			return nil, fmt.Errorf("driver %s equals target", d.ID)
		}
		if _, dup := selections[d.ID]; dup {
			return nil, fmt.Errorf("duplicate driver %s", d.ID)
		}
		series, err := uc.fetch(ctx, d.ID)
		if err != nil {
			uc.metrics.RecordError("driver_fetch")
			return nil, fmt.Errorf("fetch driver %s: %w", d.ID, err)
		}
		if series.Empty() {
			uc.l.Warn("valuation driver has no data", applogger.String("driver", d.ID))
			return nil, nil
		}
		selections[d.ID] = models.DriverSelection{DriverID: d.ID, Lag: d.Lag, Series: series}
	}

	model, table, err := engine.Train(target, selections, p.Cutoff)
	if err != nil {
		uc.metrics.RecordError("train")
		return nil, fmt.Errorf("train %s: %w", p.TargetID, err)
	}
	if model == nil {
		uc.l.Warn("no overlapping training rows",
			applogger.String("target", p.TargetID),
			applogger.Int("drivers", len(p.Drivers)),
		)
		return nil, nil
	}

	uc.metrics.RecordModelR2(p.TargetID, model.R2)
	uc.l.Info("valuation complete",
		applogger.String("target", p.TargetID),
		applogger.Int("drivers", len(p.Drivers)),
		applogger.Float64("r2", model.R2),
		applogger.Int("rows", len(table)),
		applogger.Duration("duration_ms", time.Since(start)),
	)

	return &models.ValuationReport{
		TargetID:  p.TargetID,
		Model:     *model,
		FairValue: table,
	}, nil
}

func (uc *ValuationUseCase) fetch(ctx context.Context, id string) (models.TimeSeries, error) {
	if strings.Contains(id, "=") || util.ContainsString(uc.equityProxies, id) {
		return uc.source.FetchPriceSeries(ctx, id)
	}
	return uc.source.FetchMacroSeries(ctx, id)
}
