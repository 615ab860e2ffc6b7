package engine

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"MacroLens/internal/domain/models"
)

// ErrEmptyInput is returned by Align when either input has no observations.
var ErrEmptyInput = errors.New("engine: empty input series")

// AlignedPair is a target/driver pair merged onto one sorted time axis.
// Both columns are fully populated for every row.
type AlignedPair struct {
	Times  []time.Time
	Target []float64
	Driver []float64
}

func (p *AlignedPair) Len() int { return len(p.Times) }

// Tail returns the most recent n rows, or the whole pair if it is shorter.
func (p *AlignedPair) Tail(n int) *AlignedPair {
	if n >= p.Len() {
		return p
	}
	i := p.Len() - n
	return &AlignedPair{Times: p.Times[i:], Target: p.Target[i:], Driver: p.Driver[i:]}
}

// After returns the rows at or after t.
func (p *AlignedPair) After(t time.Time) *AlignedPair {
	i := sort.Search(p.Len(), func(i int) bool { return !p.Times[i].Before(t) })
	return &AlignedPair{Times: p.Times[i:], Target: p.Target[i:], Driver: p.Driver[i:]}
}

// Align merges the two series onto the union of their timestamps. The driver
// column is made gapless: time-weighted linear interpolation between its
// known neighbors, then forward/backward fill for edge gaps interpolation
// cannot reach. The target is never interpolated; rows where it is missing
// after the union are dropped.
//
// A small gaussian jitter (noiseLevel x driver mean, 0.001 by default) is
// added to the driver column so that step-filled low-frequency sources do
// not produce zero-variance windows downstream. This is a tunable fidelity
// trade-off; reproducible runs must seed rng explicitly.
func Align(target, driver models.TimeSeries, rng *rand.Rand, noiseLevel float64) (*AlignedPair, error) {
	if target.Empty() || driver.Empty() {
		return nil, ErrEmptyInput
	}

	targetAt := make(map[int64]float64, target.Len())
	driverAt := make(map[int64]float64, driver.Len())
	union := make(map[int64]struct{}, target.Len()+driver.Len())
	for _, pt := range target.Points {
		ts := pt.Time.Unix()
		targetAt[ts] = pt.Value
		union[ts] = struct{}{}
	}
	for _, pt := range driver.Points {
		ts := pt.Time.Unix()
		driverAt[ts] = pt.Value
		union[ts] = struct{}{}
	}

	axis := make([]int64, 0, len(union))
	for ts := range union {
		axis = append(axis, ts)
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i] < axis[j] })

	vals := make([]float64, len(axis))
	known := make([]bool, len(axis))
	for i, ts := range axis {
		if v, ok := driverAt[ts]; ok {
			vals[i] = v
			known[i] = true
		}
	}
	interpolate(axis, vals, known)
	fillEdges(vals, known)

	if noiseLevel > 0 {
		mean := 0.0
		for _, v := range vals {
			mean += v
		}
		mean /= float64(len(vals))
		for i := range vals {
			vals[i] += rng.NormFloat64() * mean * noiseLevel
		}
	}

	out := &AlignedPair{}
	for i, ts := range axis {
		tv, ok := targetAt[ts]
		if !ok {
			continue
		}
		out.Times = append(out.Times, time.Unix(ts, 0).UTC())
		out.Target = append(out.Target, tv)
		out.Driver = append(out.Driver, vals[i])
	}
	return out, nil
}

// interpolate fills each unknown run between two known neighbors with
// time-weighted linear interpolation.
func interpolate(axis []int64, vals []float64, known []bool) {
	prev := -1
	for i := range vals {
		if !known[i] {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			t0, t1 := axis[prev], axis[i]
			v0, v1 := vals[prev], vals[i]
			for j := prev + 1; j < i; j++ {
				w := float64(axis[j]-t0) / float64(t1-t0)
				vals[j] = v0 + (v1-v0)*w
				known[j] = true
			}
		}
		prev = i
	}
}

// fillEdges forward-fills then backward-fills the leading/trailing gaps left
// after interpolation.
func fillEdges(vals []float64, known []bool) {
	last, has := 0.0, false
	for i := range vals {
		if known[i] {
			last, has = vals[i], true
		} else if has {
			vals[i] = last
			known[i] = true
		}
	}
	last, has = 0.0, false
	for i := len(vals) - 1; i >= 0; i-- {
		if known[i] {
			last, has = vals[i], true
		} else if has {
			vals[i] = last
			known[i] = true
		}
	}
}
