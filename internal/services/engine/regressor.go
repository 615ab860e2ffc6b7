package engine

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"MacroLens/internal/domain/models"
)

// Train fits target ~ intercept + sum(coef_i * shifted_driver_i) and predicts
// a fair-value series over every timestamp at or after cutoff where all
// shifted drivers are known, including timestamps past the target's last
// observation. It returns (nil, nil, nil) when no complete training row
// remains; that is an expected outcome, not a fault.
//
// Each driver is shifted forward along its own observation axis: the value
// recorded at observation i becomes the predictor at the timestamp of
// observation i+lag. This is the same shift convention the lag scanner uses,
// so a discovered lag transfers into the regression without re-derivation.
// The projection reach is therefore bounded by the driver's observed data,
// never extrapolated past it.
func Train(target models.TimeSeries, drivers map[string]models.DriverSelection, cutoff time.Time) (*models.ValuationModel, []models.FairValuePoint, error) {
	if len(drivers) == 0 {
		return nil, nil, fmt.Errorf("train: no drivers selected")
	}

	ids := make([]string, 0, len(drivers))
	for id, sel := range drivers {
		if sel.DriverID != "" && sel.DriverID != id {
			return nil, nil, fmt.Errorf("train: selection id %q does not match key %q", sel.DriverID, id)
		}
		if sel.Lag < 0 {
			return nil, nil, fmt.Errorf("train: negative lag %d for driver %q", sel.Lag, id)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cutoffU := cutoff.Unix()
	maxLag := 0
	shifted := make(map[string]map[int64]float64, len(drivers))
	for _, id := range ids {
		sel := drivers[id]
		if sel.Lag > maxLag {
			maxLag = sel.Lag
		}
		shifted[id] = shiftForward(sel.Series, sel.Lag)
	}

	targetAt := make(map[int64]float64, target.Len())
	var rows []int64
	for _, pt := range target.Points {
		ts := pt.Time.Unix()
		targetAt[ts] = pt.Value
		if ts < cutoffU {
			continue
		}
		if allPresent(shifted, ids, ts) {
			rows = append(rows, ts)
		}
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	model, err := fit(rows, ids, shifted, targetAt)
	if err != nil {
		return nil, nil, err
	}
	model.MaxLag = maxLag

	// Full feature axis: every timestamp with complete driver data,
	// regardless of whether the target is known there. Driver data past the
	// target's last date lands here, which is the whole projection mechanism.
	axis := fullAxis(shifted, ids, cutoffU)
	table := make([]models.FairValuePoint, 0, len(axis))
	for _, ts := range axis {
		fv := model.Intercept
		for _, id := range ids {
			fv += model.Coefficients[id] * shifted[id][ts]
		}
		row := models.FairValuePoint{Point: models.SeriesPoint{Time: time.Unix(ts, 0).UTC(), Value: fv}}
		if actual, ok := targetAt[ts]; ok {
			a := actual
			row.Actual = &a
			if fv != 0 {
				d := (actual - fv) / fv
				row.Deviation = &d
			}
		}
		table = append(table, row)
	}
	return model, table, nil
}

// shiftForward moves each value lag steps down its series' own axis.
func shiftForward(s models.TimeSeries, lag int) map[int64]float64 {
	out := make(map[int64]float64, s.Len())
	for i := 0; i+lag < s.Len(); i++ {
		out[s.Points[i+lag].Time.Unix()] = s.Points[i].Value
	}
	return out
}

func allPresent(shifted map[string]map[int64]float64, ids []string, ts int64) bool {
	for _, id := range ids {
		if _, ok := shifted[id][ts]; !ok {
			return false
		}
	}
	return true
}

func fullAxis(shifted map[string]map[int64]float64, ids []string, cutoffU int64) []int64 {
	axis := make([]int64, 0, len(shifted[ids[0]]))
	for ts := range shifted[ids[0]] {
		if ts < cutoffU {
			continue
		}
		if allPresent(shifted, ids, ts) {
			axis = append(axis, ts)
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i] < axis[j] })
	return axis
}

// fit solves the least-squares problem and computes the in-sample R2. The
// R2 is a descriptive fit statistic over the training rows, not a
// cross-validated accuracy claim.
func fit(rows []int64, ids []string, shifted map[string]map[int64]float64, targetAt map[int64]float64) (*models.ValuationModel, error) {
	n, k := len(rows), len(ids)
	xData := make([]float64, n*(k+1))
	yData := make([]float64, n)
	for i, ts := range rows {
		xData[i*(k+1)] = 1
		for j, id := range ids {
			xData[i*(k+1)+j+1] = shifted[id][ts]
		}
		yData[i] = targetAt[ts]
	}
	X := mat.NewDense(n, k+1, xData)
	y := mat.NewVecDense(n, yData)

	var beta mat.VecDense
	if err := beta.SolveVec(X, y); err != nil {
		// A near-singular system still yields a usable solution; anything
		// else is a real failure.
		if _, nearSingular := err.(mat.Condition); !nearSingular {
			return nil, fmt.Errorf("train: solve: %w", err)
		}
	}

	model := &models.ValuationModel{
		Intercept:    beta.AtVec(0),
		Coefficients: make(map[string]float64, k),
	}
	for j, id := range ids {
		model.Coefficients[id] = beta.AtVec(j + 1)
	}

	meanY := 0.0
	for _, v := range yData {
		meanY += v
	}
	meanY /= float64(n)

	var ssRes, ssTot float64
	var pred mat.VecDense
	pred.MulVec(X, &beta)
	for i := 0; i < n; i++ {
		r := yData[i] - pred.AtVec(i)
		ssRes += r * r
		t := yData[i] - meanY
		ssTot += t * t
	}
	if ssTot > 0 {
		model.R2 = 1 - ssRes/ssTot
	}
	return model, nil
}
