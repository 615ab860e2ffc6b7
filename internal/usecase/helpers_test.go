package usecase

import (
	"testing"

	domsvc "MacroLens/internal/domain/service"
	applogger "MacroLens/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{
		Level:  "error",
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func scanParams(target string) domsvc.ScanParams {
	return domsvc.ScanParams{TargetID: target, Seed: 1}
}
