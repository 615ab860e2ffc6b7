package usecase

import (
	"context"
	"math"
	"testing"

	"MacroLens/internal/domain/models"
	domsvc "MacroLens/internal/domain/service"
)

func TestValuateRecoversLinearModel(t *testing.T) {
	driver := dailySeriesAt("PNICKUSDM", 0, 60, func(i int) float64 { return 50 + float64(i) })
	// target follows the driver from 4 days earlier, observed through day 50
	target := dailySeriesAt("VALE", 4, 47, func(i int) float64 {
		return 3 + 2*(50+float64(i))
	})

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target},
		macro:  map[string]models.TimeSeries{"PNICKUSDM": driver},
	}
	uc := NewValuationUseCase(src, newFakeMetrics(), []string{"VALE"}, testLogger(t))

	report, err := uc.Valuate(context.Background(), domsvc.ValuationParams{
		TargetID: "VALE",
		Drivers:  []models.ValuationDriverInput{{ID: "PNICKUSDM", Lag: 4}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report == nil {
		t.Fatalf("expected a report")
	}
	if report.TargetID != "VALE" {
		t.Fatalf("unexpected target %s", report.TargetID)
	}
	if math.Abs(report.Model.Coefficients["PNICKUSDM"]-2) > 1e-6 {
		t.Fatalf("expected coefficient 2, got %f", report.Model.Coefficients["PNICKUSDM"])
	}
	if math.Abs(report.Model.Intercept-3) > 1e-6 {
		t.Fatalf("expected intercept 3, got %f", report.Model.Intercept)
	}
	if report.Model.R2 < 0.9999 {
		t.Fatalf("expected near-perfect fit, got %f", report.Model.R2)
	}

	// the fair-value table extends past the last target observation
	last := report.FairValue[len(report.FairValue)-1]
	if last.Actual != nil {
		t.Fatalf("projection rows must have no actual")
	}
	if !last.Point.Time.After(target.Last().Time) {
		t.Fatalf("expected projection past %v, got %v", target.Last().Time, last.Point.Time)
	}
}

func TestValuateSoftFailsWithoutOverlap(t *testing.T) {
	driver := dailySeriesAt("PNICKUSDM", 0, 30, func(i int) float64 { return float64(i) })
	target := dailySeriesAt("VALE", 200, 30, shape)

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target},
		macro:  map[string]models.TimeSeries{"PNICKUSDM": driver},
	}
	uc := NewValuationUseCase(src, newFakeMetrics(), []string{"VALE"}, testLogger(t))

	report, err := uc.Valuate(context.Background(), domsvc.ValuationParams{
		TargetID: "VALE",
		Drivers:  []models.ValuationDriverInput{{ID: "PNICKUSDM", Lag: 0}},
	})
	if err != nil {
		t.Fatalf("no overlap must not error: %v", err)
	}
	if report != nil {
		t.Fatalf("expected nil report, got %+v", report)
	}
}

func TestValuateRejectsBadInput(t *testing.T) {
	uc := NewValuationUseCase(&fakeSource{}, newFakeMetrics(), nil, testLogger(t))

	if _, err := uc.Valuate(context.Background(), domsvc.ValuationParams{TargetID: ""}); err == nil {
		t.Fatalf("expected error for empty target")
	}
	if _, err := uc.Valuate(context.Background(), domsvc.ValuationParams{TargetID: "VALE"}); err == nil {
		t.Fatalf("expected error for no drivers")
	}
	if _, err := uc.Valuate(context.Background(), domsvc.ValuationParams{
		TargetID: "VALE",
		Drivers:  []models.ValuationDriverInput{{ID: "VALE", Lag: 0}},
	}); err == nil {
		t.Fatalf("expected error for driver equal to target")
	}
	if _, err := uc.Valuate(context.Background(), domsvc.ValuationParams{
		TargetID: "VALE",
		Drivers: []models.ValuationDriverInput{
			{ID: "PNICKUSDM", Lag: 0},
			{ID: "PNICKUSDM", Lag: 5},
		},
	}); err == nil {
		t.Fatalf("expected error for duplicate driver")
	}
}

func TestValuateHonorsCutoff(t *testing.T) {
	driver := dailySeriesAt("PNICKUSDM", 0, 60, func(i int) float64 { return 50 + float64(i) })
	target := dailySeriesAt("VALE", 0, 60, func(i int) float64 { return 3 + 2*(50+float64(i)) })

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target},
		macro:  map[string]models.TimeSeries{"PNICKUSDM": driver},
	}
	uc := NewValuationUseCase(src, newFakeMetrics(), []string{"VALE"}, testLogger(t))

	cutoff := scanBase.AddDate(0, 0, 30)
	report, err := uc.Valuate(context.Background(), domsvc.ValuationParams{
		TargetID: "VALE",
		Drivers:  []models.ValuationDriverInput{{ID: "PNICKUSDM", Lag: 0}},
		Cutoff:   cutoff,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report == nil {
		t.Fatalf("expected a report")
	}
	for _, row := range report.FairValue {
		if row.Point.Time.Before(cutoff) {
			t.Fatalf("row %v precedes cutoff %v", row.Point.Time, cutoff)
		}
	}
}
