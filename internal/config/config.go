// Package config loads the study configuration: compiled defaults, an
// optional YAML file, then SEMTREES_* environment variables, in that order.
// CLI flags are applied on top by the command layer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/errors"
	"github.com/Jincheol-Lim/SEMtrees/internal/simdata"
)

// Config is the complete application configuration.
type Config struct {
	Study  study.Config
	Output OutputConfig
	Sink   SinkConfig
}

// OutputConfig holds result artifact settings.
type OutputConfig struct {
	// Path of the result table; the extension picks xlsx or csv.
	Path string
}

// SinkConfig holds the optional Postgres results store settings.
type SinkConfig struct {
	// DSN enables the database sink when non-empty.
	DSN string
}

// Default returns the compiled-in configuration: the full published study
// design writing to semtrees_results.xlsx.
func Default() *Config {
	return &Config{
		Study:  study.DefaultConfig(),
		Output: OutputConfig{Path: "semtrees_results.xlsx"},
		Sink:   SinkConfig{DSN: ""},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// SEMTREES_CONFIG (if any), and environment overrides.
func Load() (*Config, error) {
	return LoadFromFile(os.Getenv("SEMTREES_CONFIG"))
}

// LoadFromFile builds the configuration from defaults, the given YAML file,
// and environment overrides. An empty path skips the file layer.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileConfig is the YAML shape. Pointer fields distinguish "absent" from a
// zero value so the file only overrides what it names.
type fileConfig struct {
	Replications *int      `yaml:"replications"`
	Seed         *int64    `yaml:"seed"`
	SampleSizes  []int     `yaml:"sample_sizes"`
	Locations    []string  `yaml:"cutpoint_locations"`
	Mechanisms   []string  `yaml:"mechanisms"`
	Rates        []float64 `yaml:"rates"`
	Methods      []string  `yaml:"methods"`
	Covariate    *string   `yaml:"covariate"`
	Alpha        *float64  `yaml:"alpha"`
	NullDraws    *int      `yaml:"null_draws"`
	Workers      *int      `yaml:"workers"`
	Output       *string   `yaml:"output"`
	ResultsDSN   *string   `yaml:"results_dsn"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.Replications != nil {
		cfg.Study.Replications = *fc.Replications
	}
	if fc.Seed != nil {
		cfg.Study.Seed = *fc.Seed
	}
	if len(fc.SampleSizes) > 0 {
		cfg.Study.Grid.SampleSizes = fc.SampleSizes
	}
	if len(fc.Locations) > 0 {
		locs, err := parseLocations(fc.Locations)
		if err != nil {
			return err
		}
		cfg.Study.Grid.Locations = locs
	}
	if len(fc.Mechanisms) > 0 {
		mechs, err := parseMechanisms(fc.Mechanisms)
		if err != nil {
			return err
		}
		cfg.Study.Grid.Mechanisms = mechs
	}
	if len(fc.Rates) > 0 {
		cfg.Study.Grid.Rates = fc.Rates
	}
	if len(fc.Methods) > 0 {
		methods, err := parseMethods(fc.Methods)
		if err != nil {
			return err
		}
		cfg.Study.Methods = methods
	}
	if fc.Covariate != nil {
		kind, err := panel.ParseCovariateKind(*fc.Covariate)
		if err != nil {
			return err
		}
		cfg.Study.Covariate = kind
	}
	if fc.Alpha != nil {
		cfg.Study.Alpha = *fc.Alpha
	}
	if fc.NullDraws != nil {
		cfg.Study.NullDraws = *fc.NullDraws
	}
	if fc.Workers != nil {
		cfg.Study.Workers = *fc.Workers
	}
	if fc.Output != nil {
		cfg.Output.Path = *fc.Output
	}
	if fc.ResultsDSN != nil {
		cfg.Sink.DSN = *fc.ResultsDSN
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	cfg.Study.Replications = getEnvIntOrDefault("SEMTREES_REPLICATIONS", cfg.Study.Replications)
	cfg.Study.Seed = getEnvInt64OrDefault("SEMTREES_SEED", cfg.Study.Seed)
	cfg.Study.Alpha = getEnvFloatOrDefault("SEMTREES_ALPHA", cfg.Study.Alpha)
	cfg.Study.NullDraws = getEnvIntOrDefault("SEMTREES_NULL_DRAWS", cfg.Study.NullDraws)
	cfg.Study.Workers = getEnvIntOrDefault("SEMTREES_WORKERS", cfg.Study.Workers)
	cfg.Output.Path = getEnvOrDefault("SEMTREES_OUTPUT", cfg.Output.Path)
	cfg.Sink.DSN = getEnvOrDefault("SEMTREES_RESULTS_DSN", cfg.Sink.DSN)

	if v := os.Getenv("SEMTREES_COVARIATE"); v != "" {
		kind, err := panel.ParseCovariateKind(v)
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("SEMTREES_COVARIATE: %v", err))
		}
		cfg.Study.Covariate = kind
	}
	if v := os.Getenv("SEMTREES_SAMPLE_SIZES"); v != "" {
		sizes, err := parseIntList(v)
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("SEMTREES_SAMPLE_SIZES: %v", err))
		}
		cfg.Study.Grid.SampleSizes = sizes
	}
	if v := os.Getenv("SEMTREES_LOCATIONS"); v != "" {
		locs, err := parseLocations(splitList(v))
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("SEMTREES_LOCATIONS: %v", err))
		}
		cfg.Study.Grid.Locations = locs
	}
	if v := os.Getenv("SEMTREES_MECHANISMS"); v != "" {
		mechs, err := parseMechanisms(splitList(v))
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("SEMTREES_MECHANISMS: %v", err))
		}
		cfg.Study.Grid.Mechanisms = mechs
	}
	if v := os.Getenv("SEMTREES_RATES"); v != "" {
		rates, err := parseFloatList(v)
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("SEMTREES_RATES: %v", err))
		}
		cfg.Study.Grid.Rates = rates
	}
	if v := os.Getenv("SEMTREES_METHODS"); v != "" {
		methods, err := parseMethods(splitList(v))
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("SEMTREES_METHODS: %v", err))
		}
		cfg.Study.Methods = methods
	}
	return nil
}

// Validate checks the assembled configuration. The study design validates
// itself; this layer adds the artifact path and the missingness cap.
func (c *Config) Validate() error {
	if c.Output.Path == "" {
		return errors.ConfigInvalid("output path is required")
	}
	// Reject rates the dropout pattern catalog cannot reach before the
	// study starts instead of failing every cell.
	for _, rate := range c.Study.Grid.Rates {
		if rate <= 0 || rate > simdata.MaxRate {
			return errors.ConfigInvalid(fmt.Sprintf("rate %.3f outside (0, %.2f]", rate, simdata.MaxRate))
		}
	}
	if err := c.Study.Validate(); err != nil {
		return errors.Wrap(err, "study configuration invalid")
	}
	return nil
}

func parseLocations(labels []string) ([]study.CutpointLocation, error) {
	out := make([]study.CutpointLocation, 0, len(labels))
	for _, label := range labels {
		loc, err := study.ParseLocation(label)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, nil
}

func parseMechanisms(labels []string) ([]study.Mechanism, error) {
	out := make([]study.Mechanism, 0, len(labels))
	for _, label := range labels {
		mech, err := study.ParseMechanism(label)
		if err != nil {
			return nil, err
		}
		out = append(out, mech)
	}
	return out, nil
}

func parseMethods(labels []string) ([]study.Method, error) {
	out := make([]study.Method, 0, len(labels))
	for _, label := range labels {
		m, err := study.ParseMethod(label)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseIntList(v string) ([]int, error) {
	parts := splitList(v)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseFloatList(v string) ([]float64, error) {
	parts := splitList(v)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float %q", p)
		}
		out = append(out, f)
	}
	return out, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
