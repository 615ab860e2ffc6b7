package models

// Finding is one discovered driver relationship: the best lag/correlation
// over the full regime window and over the recent window, plus the combined
// score used for ranking. Immutable once created by a scan.
type Finding struct {
	DriverID   string  `json:"driver_id"`
	LongLag    int     `json:"long_lag"`
	LongCorr   float64 `json:"long_corr"`
	ShortLag   int     `json:"short_lag"`
	ShortCorr  float64 `json:"short_corr"`
	Score      float64 `json:"score"`
	SampleSize int     `json:"sample_size"`

	// Causality annotation from the assessor, when one is wired.
	// Accepted is nil when no assessment ran.
	Accepted *bool  `json:"accepted,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// DriverSelection is a driver promoted into valuation: its series and the
// lag (in observation steps) at which it leads the target.
type DriverSelection struct {
	DriverID string
	Lag      int
	Series   TimeSeries
}

// ValuationModel holds the fitted linear model. R2 is the in-sample fit on
// the training rows only; it says nothing about out-of-sample accuracy.
type ValuationModel struct {
	R2           float64            `json:"r2"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	MaxLag       int                `json:"max_lag"`
}

// FairValuePoint is one row of the fair-value table. Actual and Deviation
// are nil in the projection zone, where the target has no observation yet.
type FairValuePoint struct {
	Point     SeriesPoint `json:"point"`
	Actual    *float64    `json:"actual,omitempty"`
	Deviation *float64    `json:"deviation,omitempty"`
}

// ValuationReport is the full result of a valuation request.
type ValuationReport struct {
	TargetID  string           `json:"target_id"`
	Model     ValuationModel   `json:"model"`
	FairValue []FairValuePoint `json:"fair_value"`
}
