package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"MacroLens/internal/domain/models"
	drepo "MacroLens/internal/domain/repository"
	domsvc "MacroLens/internal/domain/service"
	"MacroLens/internal/services/engine"
	applogger "MacroLens/pkg/logger"
	"MacroLens/pkg/util"
)

// ScanConfig holds the tunables of a driver scan.
type ScanConfig struct {
	Universe      []string
	EquityProxies []string
	ForceInclude  []string
	LongLags      []int
	ShortLags     []int
	Threshold     float64
	MinObs        int
	RecentWindow  int
	RecentMinObs  int
	NoiseLevel    float64
}

// DriverScanUseCase brute-forces a candidate universe against a target and
// keeps the drivers whose lagged correlation clears the threshold.
type DriverScanUseCase struct {
	source   drepo.SeriesSource
	assessor domsvc.CausalityAssessor
	metrics  drepo.Metrics
	cfg      ScanConfig
	l        *applogger.Logger
}

var _ domsvc.DriverScanner = (*DriverScanUseCase)(nil)

func NewDriverScanUseCase(
	source drepo.SeriesSource,
	assessor domsvc.CausalityAssessor,
	metrics drepo.Metrics,
	cfg ScanConfig,
	l *applogger.Logger,
) *DriverScanUseCase {
	return &DriverScanUseCase{source: source, assessor: assessor, metrics: metrics, cfg: cfg, l: l}
}

// Scan fetches the target, then walks the driver universe: align, score over
// the full regime window and the recent window, filter, rank. One bad driver
// never fails the scan; it is logged and skipped.
func (uc *DriverScanUseCase) Scan(ctx context.Context, p domsvc.ScanParams) ([]models.Finding, error) {
	if p.TargetID == "" {
		return nil, fmt.Errorf("target required")
	}
	if err := engine.ValidateLags(uc.cfg.LongLags); err != nil {
		return nil, fmt.Errorf("long lags: %w", err)
	}
	if err := engine.ValidateLags(uc.cfg.ShortLags); err != nil {
		return nil, fmt.Errorf("short lags: %w", err)
	}

	start := time.Now()
	defer func() {
		uc.metrics.RecordLatency("scan", time.Since(start).Seconds())
	}()
	uc.metrics.RecordScan(p.TargetID)

	target, err := uc.fetch(ctx, p.TargetID)
	if err != nil {
		uc.metrics.RecordError("target_fetch")
		return nil, fmt.Errorf("fetch target %s: %w", p.TargetID, err)
	}
	if target.Empty() {
		uc.l.Warn("scan target has no data", applogger.String("target", p.TargetID))
		return []models.Finding{}, nil
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	universe := p.DriverIDs
	if len(universe) == 0 {
		universe = uc.cfg.Universe
	}

	findings := make([]models.Finding, 0, len(universe))
	for _, id := range universe {
		if id == p.TargetID {
			continue
		}
		f, ok := uc.scanDriver(ctx, p, target, id, rng)
		if ok {
			findings = append(findings, f)
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Score > findings[j].Score
	})

	findings = uc.assess(ctx, p.TargetID, findings)

	uc.metrics.RecordFindings(p.TargetID, len(findings))
	uc.l.Info("scan complete",
		applogger.String("target", p.TargetID),
		applogger.Int("universe", len(universe)),
		applogger.Int("findings", len(findings)),
		applogger.Int64("seed", seed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return findings, nil
}

func (uc *DriverScanUseCase) scanDriver(
	ctx context.Context,
	p domsvc.ScanParams,
	target models.TimeSeries,
	id string,
	rng *rand.Rand,
) (models.Finding, bool) {
	driver, err := uc.fetch(ctx, id)
	if err != nil {
		uc.metrics.RecordError("driver_fetch")
		uc.l.Warn("driver fetch failed", applogger.String("driver", id), applogger.Error(err))
		return models.Finding{}, false
	}
	if driver.Empty() {
		uc.skip(id, "no_data")
		return models.Finding{}, false
	}

	// Price drivers share the target's daily axis; only low-frequency macro
	// series need the interpolation jitter.
	noise := uc.cfg.NoiseLevel
	if uc.isPriceSeries(id) {
		noise = 0
	}

	pair, err := engine.Align(target, driver, rng, noise)
	if err != nil {
		if !errors.Is(err, engine.ErrEmptyInput) {
			uc.metrics.RecordError("align")
			uc.l.Warn("align failed", applogger.String("driver", id), applogger.Error(err))
		}
		uc.skip(id, "align")
		return models.Finding{}, false
	}

	if !p.RegimeStart.IsZero() {
		pair = pair.After(p.RegimeStart)
	}
	if pair.Len() < uc.cfg.MinObs {
		uc.skip(id, "min_observations")
		return models.Finding{}, false
	}

	longLag, longCorr, err := engine.BestLagCorrelation(pair, uc.cfg.LongLags)
	if err != nil {
		uc.metrics.RecordError("lag_scan")
		uc.l.Warn("lag scan failed", applogger.String("driver", id), applogger.Error(err))
		return models.Finding{}, false
	}

	shortLag, shortCorr := 0, 0.0
	recent := pair.Tail(uc.cfg.RecentWindow)
	if recent.Len() > uc.cfg.RecentMinObs {
		shortLag, shortCorr, err = engine.BestLagCorrelation(recent, uc.cfg.ShortLags)
		if err != nil {
			uc.metrics.RecordError("lag_scan")
			uc.l.Warn("recent lag scan failed", applogger.String("driver", id), applogger.Error(err))
			shortLag, shortCorr = 0, 0
		}
	}

	score := math.Max(math.Abs(longCorr), math.Abs(shortCorr))
	forced := util.ContainsString(uc.cfg.ForceInclude, id) || util.ContainsString(p.ForceInclude, id)
	if score <= uc.cfg.Threshold && !forced {
		uc.skip(id, "below_threshold")
		return models.Finding{}, false
	}

	return models.Finding{
		DriverID:   id,
		LongLag:    longLag,
		LongCorr:   longCorr,
		ShortLag:   shortLag,
		ShortCorr:  shortCorr,
		Score:      score,
		SampleSize: pair.Len(),
	}, true
}

// assess runs the causality check over the ranked findings. Rejected drivers
// are dropped; an assessor failure keeps the finding unannotated.
func (uc *DriverScanUseCase) assess(ctx context.Context, targetID string, findings []models.Finding) []models.Finding {
	if uc.assessor == nil {
		return findings
	}

	kept := findings[:0]
	for i := range findings {
		f := findings[i]
		accepted, reason, err := uc.assessor.Assess(ctx, targetID, f.DriverID)
		if err != nil {
			uc.metrics.RecordError("assessor")
			uc.l.Warn("causality assessment failed",
				applogger.String("driver", f.DriverID),
				applogger.Error(err),
			)
			kept = append(kept, f)
			continue
		}
		f.Accepted = &accepted
		f.Reason = reason
		if !accepted {
			uc.skip(f.DriverID, "causality_rejected")
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func (uc *DriverScanUseCase) fetch(ctx context.Context, id string) (models.TimeSeries, error) {
	if uc.isPriceSeries(id) {
		return uc.source.FetchPriceSeries(ctx, id)
	}
	return uc.source.FetchMacroSeries(ctx, id)
}

// isPriceSeries routes futures symbols (HG=F) and configured equity proxies
// to the price source; everything else is treated as a macro code.
func (uc *DriverScanUseCase) isPriceSeries(id string) bool {
	return strings.Contains(id, "=") || util.ContainsString(uc.cfg.EquityProxies, id)
}

func (uc *DriverScanUseCase) skip(id, reason string) {
	uc.metrics.RecordDriverSkip(reason)
	uc.l.Debug("driver skipped",
		applogger.String("driver", id),
		applogger.String("reason", reason),
	)
}
