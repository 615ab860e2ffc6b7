package validation

import (
	"context"

	domsvc "MacroLens/internal/domain/service"
)

// AutoAssessor accepts every relationship without judging it. It is the
// default when no LLM endpoint is configured, so the scan surface stays the
// same regardless of which assessor is wired in.
type AutoAssessor struct{}

func NewAutoAssessor() AutoAssessor { return AutoAssessor{} }

func (AutoAssessor) Assess(_ context.Context, _, _ string) (bool, string, error) {
	return true, "pending verification", nil
}

var _ domsvc.CausalityAssessor = AutoAssessor{}
