package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesScanDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
sources:
  fred:
    api_key: test-key
scan:
  universe: [GC=F, DGS10]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Scan.LongLags) != 6 || cfg.Scan.LongLags[5] != 60 {
		t.Fatalf("unexpected long lags %v", cfg.Scan.LongLags)
	}
	if len(cfg.Scan.ShortLags) != 3 || cfg.Scan.ShortLags[2] != 10 {
		t.Fatalf("unexpected short lags %v", cfg.Scan.ShortLags)
	}
	if cfg.Scan.Threshold != 0.15 {
		t.Fatalf("unexpected threshold %f", cfg.Scan.Threshold)
	}
	if cfg.Scan.MinObs != 30 || cfg.Scan.RecentWindow != 60 || cfg.Scan.RecentMinObs != 20 {
		t.Fatalf("unexpected window defaults %+v", cfg.Scan)
	}
	if cfg.Scan.NoiseLevel != 0.001 {
		t.Fatalf("unexpected noise level %f", cfg.Scan.NoiseLevel)
	}
	if cfg.Assessor.Provider != "auto" {
		t.Fatalf("unexpected assessor provider %q", cfg.Assessor.Provider)
	}
}

func TestLoadWithEnvSuppliesFREDKey(t *testing.T) {
	path := writeConfig(t, `
environment: test
sources:
  fred:
    api_key: ""
scan:
  universe: [GC=F, DGS10]
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error when the key is missing everywhere")
	}

	t.Setenv("FRED_API_KEY", "env-key")
	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if cfg.Sources.FRED.APIKey != "env-key" {
		t.Fatalf("unexpected api key %q", cfg.Sources.FRED.APIKey)
	}
}

func TestLoadWithEnvStillValidates(t *testing.T) {
	path := writeConfig(t, `
environment: test
sources:
  fred:
    api_key: ""
scan:
  universe: [GC=F]
`)

	t.Setenv("FRED_API_KEY", "")
	if _, err := LoadWithEnv(path); err == nil {
		t.Fatalf("expected validation error without a key")
	}
}

func TestLoadRejectsMissingUniverse(t *testing.T) {
	path := writeConfig(t, `
environment: test
sources:
  fred:
    api_key: test-key
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty universe")
	}
}

func TestLoadRejectsBadAssessorProvider(t *testing.T) {
	path := writeConfig(t, `
environment: test
sources:
  fred:
    api_key: test-key
scan:
  universe: [GC=F]
assessor:
  provider: oracle
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
