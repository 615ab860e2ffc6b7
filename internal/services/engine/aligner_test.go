package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"MacroLens/internal/domain/models"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time { return base.AddDate(0, 0, i) }

// seriesAt builds a series with observations on the given day offsets.
func seriesAt(id string, days []int, vals []float64) models.TimeSeries {
	s := models.TimeSeries{ID: id}
	for i, d := range days {
		s.Points = append(s.Points, models.SeriesPoint{Time: day(d), Value: vals[i]})
	}
	return s
}

// dailySeries builds a gapless daily series starting at day 0.
func dailySeries(id string, vals []float64) models.TimeSeries {
	days := make([]int, len(vals))
	for i := range vals {
		days[i] = i
	}
	return seriesAt(id, days, vals)
}

func TestAlignEmptyInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ok := dailySeries("A", []float64{1, 2, 3})

	if _, err := Align(models.TimeSeries{}, ok, rng, 0); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput for empty target, got %v", err)
	}
	if _, err := Align(ok, models.TimeSeries{}, rng, 0); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput for empty driver, got %v", err)
	}
}

func TestAlignInterpolatesDriverGaps(t *testing.T) {
	target := dailySeries("T", []float64{1, 1, 1, 1, 1})
	driver := seriesAt("D", []int{0, 4}, []float64{10, 18})

	pair, err := Align(target, driver, rand.New(rand.NewSource(1)), 0)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if pair.Len() != 5 {
		t.Fatalf("expected 5 rows, got %d", pair.Len())
	}
	want := []float64{10, 12, 14, 16, 18}
	for i, w := range want {
		if math.Abs(pair.Driver[i]-w) > 1e-9 {
			t.Fatalf("row %d: expected driver %v, got %v", i, w, pair.Driver[i])
		}
	}
}

func TestAlignFillsEdges(t *testing.T) {
	target := dailySeries("T", []float64{1, 2, 3, 4, 5, 6})
	driver := seriesAt("D", []int{2, 3}, []float64{7, 9})

	pair, err := Align(target, driver, rand.New(rand.NewSource(1)), 0)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	want := []float64{7, 7, 7, 9, 9, 9}
	for i, w := range want {
		if pair.Driver[i] != w {
			t.Fatalf("row %d: expected edge fill %v, got %v", i, w, pair.Driver[i])
		}
	}
}

func TestAlignDropsRowsWithoutTarget(t *testing.T) {
	target := seriesAt("T", []int{0, 2, 4}, []float64{1, 2, 3})
	driver := dailySeries("D", []float64{5, 5, 5, 5, 5, 5, 5})

	pair, err := Align(target, driver, rand.New(rand.NewSource(1)), 0)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	// Target is never interpolated; only its own timestamps survive.
	if pair.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", pair.Len())
	}
	for i, d := range []int{0, 2, 4} {
		if !pair.Times[i].Equal(day(d)) {
			t.Fatalf("row %d: expected %v, got %v", i, day(d), pair.Times[i])
		}
	}
}

func TestAlignNoiseIsSeededAndBounded(t *testing.T) {
	target := dailySeries("T", []float64{1, 1, 1, 1, 1, 1, 1, 1})
	driver := dailySeries("D", []float64{100, 100, 100, 100, 100, 100, 100, 100})

	a, err := Align(target, driver, rand.New(rand.NewSource(42)), 0.001)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	b, err := Align(target, driver, rand.New(rand.NewSource(42)), 0.001)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	for i := range a.Driver {
		if a.Driver[i] != b.Driver[i] {
			t.Fatalf("same seed should reproduce identical output, row %d: %v vs %v", i, a.Driver[i], b.Driver[i])
		}
		// sigma is 0.1% of the mean; anything past 10 sigma is a bug
		if math.Abs(a.Driver[i]-100) > 1.0 {
			t.Fatalf("noise too large at row %d: %v", i, a.Driver[i])
		}
	}
}
