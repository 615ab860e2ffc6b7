package service

import (
	"context"
	"time"

	"MacroLens/internal/domain/models"
)

// ScanParams drives one scan of the candidate universe against a target.
type ScanParams struct {
	TargetID     string
	DriverIDs    []string
	RegimeStart  time.Time
	ForceInclude []string
	// Seed for the aligner's noise generator. Zero means "derive from the
	// clock"; pass a fixed seed for reproducible scans.
	Seed int64
}

// DriverScanner scans a driver universe for statistical drivers of a target.
type DriverScanner interface {
	Scan(ctx context.Context, p ScanParams) ([]models.Finding, error)
}

// ValuationParams drives one fair-value fit.
type ValuationParams struct {
	TargetID string
	Drivers  []models.ValuationDriverInput
	Cutoff   time.Time
}

// Valuer fits a lag-aligned linear model and projects a fair-value series.
// A nil report with a nil error means no complete training rows remained.
type Valuer interface {
	Valuate(ctx context.Context, p ValuationParams) (*models.ValuationReport, error)
}

// CausalityAssessor answers whether a driver/target relationship is
// economically plausible. Implementations may ask an LLM or auto-approve;
// callers never depend on which one is wired in.
type CausalityAssessor interface {
	Assess(ctx context.Context, targetID, driverID string) (accepted bool, reason string, err error)
}
