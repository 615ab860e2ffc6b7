package engine

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// scoreState classifies a lag candidate's correlation explicitly instead of
// leaning on NaN propagation.
type scoreState int

const (
	scoreValid scoreState = iota
	scoreZero             // degenerate variance over the overlap, pinned to 0 by policy
	scoreSkip             // overlap too small or non-finite result
)

// ValidateLags rejects negative or duplicate lag candidates. An invalid
// candidate set is a programming error, reported immediately.
func ValidateLags(lags []int) error {
	if len(lags) == 0 {
		return fmt.Errorf("lag candidates: empty set")
	}
	seen := make(map[int]struct{}, len(lags))
	for _, lag := range lags {
		if lag < 0 {
			return fmt.Errorf("lag candidates: negative lag %d", lag)
		}
		if _, ok := seen[lag]; ok {
			return fmt.Errorf("lag candidates: duplicate lag %d", lag)
		}
		seen[lag] = struct{}{}
	}
	return nil
}

// BestLagCorrelation tests each candidate lag (driver leading the target by
// that many observation steps) and returns the one whose Pearson correlation
// has the largest absolute value. Candidates are scanned ascending with a
// strict comparison, so ties resolve to the smallest lag. If every candidate
// is skipped the result is (0, 0).
func BestLagCorrelation(pair *AlignedPair, lags []int) (int, float64, error) {
	if err := ValidateLags(lags); err != nil {
		return 0, 0, err
	}
	ordered := append([]int(nil), lags...)
	sort.Ints(ordered)

	bestLag, bestCorr := 0, 0.0
	for _, lag := range ordered {
		corr, state := lagScore(pair, lag)
		if state == scoreSkip {
			continue
		}
		if math.Abs(corr) > math.Abs(bestCorr) {
			bestLag, bestCorr = lag, corr
		}
	}
	return bestLag, bestCorr, nil
}

// lagScore pairs target[i] with driver[i-lag] over the overlapping rows and
// computes their Pearson correlation.
func lagScore(pair *AlignedPair, lag int) (float64, scoreState) {
	n := pair.Len()
	if n-lag < 2 {
		return 0, scoreSkip
	}
	x := pair.Target[lag:]
	y := pair.Driver[:n-lag]

	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, scoreZero
	}
	corr := stat.Correlation(x, y, nil)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		return 0, scoreSkip
	}
	return corr, scoreValid
}
