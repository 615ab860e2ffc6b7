package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestBestLagFindsLeadingDriver(t *testing.T) {
	// Target wiggles around a trend; driver is the same shape observed 5
	// days earlier and scaled, so only lag 5 lines the pair up perfectly.
	shape := func(i int) float64 { return 10 + float64(i) + 3*math.Sin(float64(i)/3) }

	targetVals := make([]float64, 31)
	for i := range targetVals {
		targetVals[i] = shape(i)
	}
	target := dailySeries("T", targetVals)

	driverDays := make([]int, 31)
	driverVals := make([]float64, 31)
	for i := range driverVals {
		driverDays[i] = i - 5
		driverVals[i] = 2.5 * shape(i)
	}
	driver := seriesAt("D", driverDays, driverVals)

	pair, err := Align(target, driver, rand.New(rand.NewSource(1)), 0)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	lag, corr, err := BestLagCorrelation(pair, []int{0, 5, 10, 20, 40, 60})
	if err != nil {
		t.Fatalf("best lag: %v", err)
	}
	if lag != 5 {
		t.Fatalf("expected lag 5, got %d (corr %v)", lag, corr)
	}
	if corr < 0.999 {
		t.Fatalf("expected corr ~1.0, got %v", corr)
	}
}

func TestConstantDriverScoresExactlyZero(t *testing.T) {
	target := dailySeries("T", []float64{1, 2, 3, 4, 5, 6, 7, 8})
	driver := dailySeries("D", []float64{3, 3, 3, 3, 3, 3, 3, 3})

	pair, err := Align(target, driver, rand.New(rand.NewSource(1)), 0)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	lag, corr, err := BestLagCorrelation(pair, []int{0, 2, 4})
	if err != nil {
		t.Fatalf("best lag: %v", err)
	}
	if lag != 0 || corr != 0 {
		t.Fatalf("constant driver: expected (0, 0), got (%d, %v)", lag, corr)
	}
}

func TestTieResolvesToSmallestLag(t *testing.T) {
	// Alternating +-1 stays in phase at every even lag, so each candidate
	// scores exactly 1.0 and the first (smallest) must win.
	vals := make([]float64, 20)
	for i := range vals {
		vals[i] = float64(1 - 2*(i%2))
	}
	pair := &AlignedPair{Target: vals, Driver: vals}
	for i := range vals {
		pair.Times = append(pair.Times, day(i))
	}

	lag, corr, err := BestLagCorrelation(pair, []int{0, 2, 4})
	if err != nil {
		t.Fatalf("best lag: %v", err)
	}
	if lag != 0 {
		t.Fatalf("expected tie to resolve to lag 0, got %d", lag)
	}
	if corr != 1.0 {
		t.Fatalf("expected corr 1.0, got %v", corr)
	}
}

func TestAllCandidatesSkippedReturnsZeroPair(t *testing.T) {
	pair := &AlignedPair{Times: []time.Time{day(0)}, Target: []float64{1}, Driver: []float64{2}}
	lag, corr, err := BestLagCorrelation(pair, []int{0, 5})
	if err != nil {
		t.Fatalf("best lag: %v", err)
	}
	if lag != 0 || corr != 0 {
		t.Fatalf("expected (0, 0) when every candidate is skipped, got (%d, %v)", lag, corr)
	}
}

func TestLagCandidateValidation(t *testing.T) {
	pair := &AlignedPair{Target: []float64{1, 2, 3}, Driver: []float64{1, 2, 3}}
	cases := []struct {
		name string
		lags []int
	}{
		{"empty", nil},
		{"negative", []int{0, -5}},
		{"duplicate", []int{0, 5, 5}},
	}
	for _, tc := range cases {
		if _, _, err := BestLagCorrelation(pair, tc.lags); err == nil {
			t.Fatalf("%s candidate set: expected error", tc.name)
		}
	}
}
