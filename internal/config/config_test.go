package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
	if cfg.Output.Path != "semtrees_results.xlsx" {
		t.Errorf("Expected default output semtrees_results.xlsx, got %s", cfg.Output.Path)
	}
	if cfg.Study.Replications != 100 || cfg.Study.Seed != 2024 {
		t.Errorf("Expected 100 replications with seed 2024, got %d and %d",
			cfg.Study.Replications, cfg.Study.Seed)
	}
	if got := cfg.Study.Grid.Size(); got != 48 {
		t.Errorf("Expected 48 grid cells, got %d", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SEMTREES_REPLICATIONS", "5")
	t.Setenv("SEMTREES_SEED", "99")
	t.Setenv("SEMTREES_SAMPLE_SIZES", "120")
	t.Setenv("SEMTREES_LOCATIONS", "1/2, 1/3")
	t.Setenv("SEMTREES_MECHANISMS", "mar")
	t.Setenv("SEMTREES_RATES", "0.05,0.10")
	t.Setenv("SEMTREES_METHODS", "ignore,cart")
	t.Setenv("SEMTREES_COVARIATE", "binary")
	t.Setenv("SEMTREES_OUTPUT", "run.csv")
	t.Setenv("SEMTREES_RESULTS_DSN", "postgres://results")

	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Study.Replications != 5 || cfg.Study.Seed != 99 {
		t.Errorf("Expected replications 5 seed 99, got %d and %d", cfg.Study.Replications, cfg.Study.Seed)
	}
	if len(cfg.Study.Grid.SampleSizes) != 1 || cfg.Study.Grid.SampleSizes[0] != 120 {
		t.Errorf("Expected sample sizes [120], got %v", cfg.Study.Grid.SampleSizes)
	}
	if len(cfg.Study.Grid.Locations) != 2 || cfg.Study.Grid.Locations[1] != study.LocationThird {
		t.Errorf("Expected locations [1/2 1/3], got %v", cfg.Study.Grid.Locations)
	}
	if len(cfg.Study.Grid.Mechanisms) != 1 || cfg.Study.Grid.Mechanisms[0] != study.MechanismMAR {
		t.Errorf("Expected mechanisms [MAR], got %v", cfg.Study.Grid.Mechanisms)
	}
	if len(cfg.Study.Methods) != 2 || cfg.Study.Methods[1] != study.MethodCART {
		t.Errorf("Expected methods [ignore cart], got %v", cfg.Study.Methods)
	}
	if cfg.Study.Covariate != panel.CovariateBinary {
		t.Errorf("Expected binary covariate, got %s", cfg.Study.Covariate)
	}
	if cfg.Output.Path != "run.csv" || cfg.Sink.DSN != "postgres://results" {
		t.Errorf("Expected output run.csv with sink DSN, got %s and %s", cfg.Output.Path, cfg.Sink.DSN)
	}
}

func TestYAMLFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	body := []byte(`replications: 7
seed: 11
sample_sizes: [200]
rates: [0.05]
methods: [knn]
covariate: binary
output: table.xlsx
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Study.Replications != 7 || cfg.Study.Seed != 11 {
		t.Errorf("Expected replications 7 seed 11, got %d and %d", cfg.Study.Replications, cfg.Study.Seed)
	}
	if len(cfg.Study.Methods) != 1 || cfg.Study.Methods[0] != study.MethodKNN {
		t.Errorf("Expected methods [knn], got %v", cfg.Study.Methods)
	}
	if cfg.Study.Covariate != panel.CovariateBinary {
		t.Errorf("Expected binary covariate, got %s", cfg.Study.Covariate)
	}
	if cfg.Output.Path != "table.xlsx" {
		t.Errorf("Expected output table.xlsx, got %s", cfg.Output.Path)
	}
	// Axes the file does not name keep their defaults.
	if len(cfg.Study.Grid.Locations) != 3 {
		t.Errorf("Expected default locations untouched, got %v", cfg.Study.Grid.Locations)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	if err := os.WriteFile(path, []byte("replications: 7\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("SEMTREES_REPLICATIONS", "9")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Study.Replications != 9 {
		t.Errorf("Expected env to win with 9 replications, got %d", cfg.Study.Replications)
	}
}

func TestRejectsRateAboveCap(t *testing.T) {
	t.Setenv("SEMTREES_RATES", "0.50")
	if _, err := LoadFromFile(""); err == nil {
		t.Error("Expected error for rate above 0.40, got nil")
	}
}

func TestRejectsUnknownMethod(t *testing.T) {
	t.Setenv("SEMTREES_METHODS", "ignore,pmm")
	if _, err := LoadFromFile(""); err == nil {
		t.Error("Expected error for unknown method, got nil")
	}
}

func TestRejectsMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}

func TestRejectsEmptyOutput(t *testing.T) {
	cfg := Default()
	cfg.Output.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty output path, got nil")
	}
}
