package models

import "time"

// SeriesPoint is a single observation of a time series.
type SeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// TimeSeries is an ordered sequence of observations with strictly increasing
// timestamps. A series carries only the observations a source actually has;
// gaps are represented by absence, not by sentinel values.
type TimeSeries struct {
	ID     string        `json:"id"`
	Points []SeriesPoint `json:"points"`
}

// Empty reports whether the series has no observations.
func (s TimeSeries) Empty() bool { return len(s.Points) == 0 }

// Len returns the number of observations.
func (s TimeSeries) Len() int { return len(s.Points) }

// Last returns the latest observation. Only valid when the series is non-empty.
func (s TimeSeries) Last() SeriesPoint { return s.Points[len(s.Points)-1] }

// After returns a copy of the series restricted to observations at or after t.
func (s TimeSeries) After(t time.Time) TimeSeries {
	out := TimeSeries{ID: s.ID}
	for _, p := range s.Points {
		if !p.Time.Before(t) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}
