package models

// Requests for the scan/valuation HTTP endpoints. Defined in domain for consistency and reuse.

type ScanRequest struct {
	Target  string `query:"target" json:"target" validate:"required"`
	Drivers string `query:"drivers" json:"drivers"`
	From    string `query:"from" json:"from" default:"2020-01-01"`
	Force   string `query:"force" json:"force"`
	Seed    int64  `query:"seed" json:"seed" validate:"gte=0"`
}

type ValuationRequest struct {
	Target  string                 `json:"target" validate:"required"`
	Drivers []ValuationDriverInput `json:"drivers" validate:"required,min=1,dive"`
	Cutoff  string                 `json:"cutoff" default:"2020-01-01"`
}

type ValuationDriverInput struct {
	ID  string `json:"id" validate:"required"`
	Lag int    `json:"lag" validate:"gte=0,lte=250"`
}
