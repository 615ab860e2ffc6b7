package usecase

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"MacroLens/internal/domain/models"
)

type fakeSource struct {
	prices map[string]models.TimeSeries
	macro  map[string]models.TimeSeries
	fail   map[string]bool
}

func (f *fakeSource) FetchPriceSeries(_ context.Context, id string) (models.TimeSeries, error) {
	if f.fail[id] {
		return models.TimeSeries{}, fmt.Errorf("remote down")
	}
	return f.prices[id], nil
}

func (f *fakeSource) FetchMacroSeries(_ context.Context, id string) (models.TimeSeries, error) {
	if f.fail[id] {
		return models.TimeSeries{}, fmt.Errorf("remote down")
	}
	return f.macro[id], nil
}

type fakeMetrics struct {
	mu    sync.Mutex
	skips map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{skips: make(map[string]int)}
}

func (m *fakeMetrics) RecordScan(string)            {}
func (m *fakeMetrics) RecordFindings(string, int)   {}
func (m *fakeMetrics) RecordError(string)           {}
func (m *fakeMetrics) RecordLatency(string, float64) {}
func (m *fakeMetrics) RecordModelR2(string, float64) {}
func (m *fakeMetrics) RecordDriverSkip(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skips[reason]++
}

type fakeAssessor struct {
	reject map[string]bool
}

func (a *fakeAssessor) Assess(_ context.Context, _, driverID string) (bool, string, error) {
	if a.reject[driverID] {
		return false, "no plausible link", nil
	}
	return true, "plausible", nil
}

var scanBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dailySeriesAt(id string, startDay, n int, f func(i int) float64) models.TimeSeries {
	pts := make([]models.SeriesPoint, n)
	for i := 0; i < n; i++ {
		pts[i] = models.SeriesPoint{
			Time:  scanBase.AddDate(0, 0, startDay+i),
			Value: f(i),
		}
	}
	return models.TimeSeries{ID: id, Points: pts}
}

func shape(i int) float64 {
	return 10 + float64(i) + 3*math.Sin(float64(i)/3)
}

func testScanConfig() ScanConfig {
	return ScanConfig{
		LongLags:     []int{0, 5, 10},
		ShortLags:    []int{0, 5},
		Threshold:    0.15,
		MinObs:       30,
		RecentWindow: 60,
		RecentMinObs: 20,
		NoiseLevel:   0, // deterministic scores
	}
}

func TestScanFindsLeadingDriver(t *testing.T) {
	target := dailySeriesAt("VALE", 5, 80, shape)
	driver := dailySeriesAt("PNICKUSDM", 0, 80, func(i int) float64 { return 2.5 * shape(i) })

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target},
		macro:  map[string]models.TimeSeries{"PNICKUSDM": driver},
	}
	cfg := testScanConfig()
	cfg.Universe = []string{"PNICKUSDM"}
	cfg.EquityProxies = []string{"VALE"}

	uc := NewDriverScanUseCase(src, nil, newFakeMetrics(), cfg, testLogger(t))
	findings, err := uc.Scan(context.Background(), scanParams("VALE"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.DriverID != "PNICKUSDM" {
		t.Fatalf("unexpected driver %s", f.DriverID)
	}
	if f.LongLag != 5 {
		t.Fatalf("expected long lag 5, got %d", f.LongLag)
	}
	if f.Score < 0.9 {
		t.Fatalf("expected strong score, got %f", f.Score)
	}
}

func TestScanSkipsSparseDriver(t *testing.T) {
	target := dailySeriesAt("VALE", 0, 80, shape)
	sparse := dailySeriesAt("M2SL", 0, 5, func(i int) float64 { return float64(i) })

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target},
		macro:  map[string]models.TimeSeries{"M2SL": sparse},
	}
	cfg := testScanConfig()
	cfg.Universe = []string{"M2SL"}
	cfg.EquityProxies = []string{"VALE"}

	m := newFakeMetrics()
	uc := NewDriverScanUseCase(src, nil, m, cfg, testLogger(t))
	findings, err := uc.Scan(context.Background(), scanParams("VALE"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(findings))
	}
}

func TestScanForceIncludeKeepsFlatDriver(t *testing.T) {
	target := dailySeriesAt("VALE", 0, 80, shape)
	flat := dailySeriesAt("PNICKUSDM", 0, 80, func(int) float64 { return 42 })

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target},
		macro:  map[string]models.TimeSeries{"PNICKUSDM": flat},
	}
	cfg := testScanConfig()
	cfg.Universe = []string{"PNICKUSDM"}
	cfg.EquityProxies = []string{"VALE"}
	cfg.ForceInclude = []string{"PNICKUSDM"}

	uc := NewDriverScanUseCase(src, nil, newFakeMetrics(), cfg, testLogger(t))
	findings, err := uc.Scan(context.Background(), scanParams("VALE"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected forced finding, got %d", len(findings))
	}
	if findings[0].Score != 0 {
		t.Fatalf("flat driver should score exactly 0, got %f", findings[0].Score)
	}
}

func TestScanSurvivesDriverFetchFailure(t *testing.T) {
	target := dailySeriesAt("VALE", 5, 80, shape)
	good := dailySeriesAt("PNICKUSDM", 0, 80, func(i int) float64 { return 2.5 * shape(i) })

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target},
		macro:  map[string]models.TimeSeries{"PNICKUSDM": good},
		fail:   map[string]bool{"DGS10": true},
	}
	cfg := testScanConfig()
	cfg.Universe = []string{"DGS10", "PNICKUSDM"}
	cfg.EquityProxies = []string{"VALE"}

	uc := NewDriverScanUseCase(src, nil, newFakeMetrics(), cfg, testLogger(t))
	findings, err := uc.Scan(context.Background(), scanParams("VALE"))
	if err != nil {
		t.Fatalf("one dead driver must not fail the scan: %v", err)
	}
	if len(findings) != 1 || findings[0].DriverID != "PNICKUSDM" {
		t.Fatalf("expected the healthy driver only, got %+v", findings)
	}
}

func TestScanDropsRejectedDrivers(t *testing.T) {
	target := dailySeriesAt("VALE", 5, 80, shape)
	driver := dailySeriesAt("GC=F", 0, 80, func(i int) float64 { return 2.5 * shape(i) })

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target, "GC=F": driver},
	}
	cfg := testScanConfig()
	cfg.Universe = []string{"GC=F"}
	cfg.EquityProxies = []string{"VALE"}

	uc := NewDriverScanUseCase(src, &fakeAssessor{reject: map[string]bool{"GC=F": true}}, newFakeMetrics(), cfg, testLogger(t))
	findings, err := uc.Scan(context.Background(), scanParams("VALE"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("rejected driver must be dropped, got %+v", findings)
	}
}

func TestScanAnnotatesAcceptedDrivers(t *testing.T) {
	target := dailySeriesAt("VALE", 5, 80, shape)
	driver := dailySeriesAt("GC=F", 0, 80, func(i int) float64 { return 2.5 * shape(i) })

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target, "GC=F": driver},
	}
	cfg := testScanConfig()
	cfg.Universe = []string{"GC=F"}
	cfg.EquityProxies = []string{"VALE"}

	uc := NewDriverScanUseCase(src, &fakeAssessor{}, newFakeMetrics(), cfg, testLogger(t))
	findings, err := uc.Scan(context.Background(), scanParams("VALE"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Accepted == nil || !*findings[0].Accepted {
		t.Fatalf("expected accepted annotation, got %+v", findings[0])
	}
	if findings[0].Reason != "plausible" {
		t.Fatalf("unexpected reason %q", findings[0].Reason)
	}
}

func TestScanIsReproducibleWithSeed(t *testing.T) {
	target := dailySeriesAt("VALE", 5, 80, shape)
	nickel := dailySeriesAt("PNICKUSDM", 0, 80, func(i int) float64 { return 2.5 * shape(i) })
	rates := dailySeriesAt("DGS10", 0, 80, func(i int) float64 { return 100 - shape(i) })

	src := &fakeSource{
		prices: map[string]models.TimeSeries{"VALE": target},
		macro:  map[string]models.TimeSeries{"PNICKUSDM": nickel, "DGS10": rates},
	}
	cfg := testScanConfig()
	cfg.Universe = []string{"PNICKUSDM", "DGS10"}
	cfg.EquityProxies = []string{"VALE"}
	cfg.NoiseLevel = 0.01

	uc := NewDriverScanUseCase(src, nil, newFakeMetrics(), cfg, testLogger(t))
	first, err := uc.Scan(context.Background(), scanParams("VALE"))
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := uc.Scan(context.Background(), scanParams("VALE"))
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}

	if len(first) != 2 {
		t.Fatalf("expected both drivers found, got %d", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed must reproduce the scan:\n%+v\n%+v", first, second)
	}
}

func TestScanRejectsInvalidLagConfig(t *testing.T) {
	cfg := testScanConfig()
	cfg.LongLags = []int{0, -5}
	uc := NewDriverScanUseCase(&fakeSource{}, nil, newFakeMetrics(), cfg, testLogger(t))
	if _, err := uc.Scan(context.Background(), scanParams("VALE")); err == nil {
		t.Fatalf("expected error for negative lag")
	}
}
