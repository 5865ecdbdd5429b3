/*
PURPOSE:
  Defines the agenda structure and loading logic for uxperf.
  An agenda names the device, where dependencies and results live, and the
  workloads to run with their parameters.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the device, directories and workload parameters.
  - Keep credentials (Skype, Word, Reader logins) out of agenda files.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support Environment variable overrides (UXPERF_...) and an
    optional .env file.
  - Parameter strings may reference ${VAR}; only the braced form is expanded
    so passwords containing '$' survive.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3, github.com/joho/godotenv

ERROR HANDLING:
  - Returns explicit error if the agenda file is invalid.
  - A missing default agenda is not an error; defaults are returned.
  - Validate reports failure.Configuration errors.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (iterations 1, adb on PATH).

USAGE:
  cfg, err := config.Load("agenda.yaml")
  err = config.ApplyEnv(cfg)
  err = cfg.Validate(workloads.Names())

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config and update DefaultConfig().
  - If an env override seems ignored, check envOverrides.

RELATED FILES:
  - internal/cli/run.go
  - internal/assets/agenda.yaml - sample written by `uxperf init`

MAINTENANCE:
  - Keep internal/assets/agenda.yaml in sync when adding fields.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/daryltucker/uxperf/internal/failure"
	"github.com/daryltucker/uxperf/internal/output"
)

// DefaultFiles are searched, in order, when no agenda path is given.
var DefaultFiles = []string{"uxperf.yaml", "agenda.yaml"}

// Config represents a full uxperf agenda.
type Config struct {
	Device          DeviceConfig   `yaml:"device"`
	DependenciesDir string         `yaml:"dependencies_dir"`
	OutputDir       string         `yaml:"output_dir"`
	SettleDelay     time.Duration  `yaml:"settle_delay"`
	Workloads       []WorkloadSpec `yaml:"workloads"`
}

// DeviceConfig selects and describes the device.
type DeviceConfig struct {
	Serial                   string `yaml:"serial"`
	ADBPath                  string `yaml:"adb_path"`
	WorkingDirectory         string `yaml:"working_directory"`
	ExternalStorageDirectory string `yaml:"external_storage_directory"`
}

// WorkloadSpec is one agenda entry.
type WorkloadSpec struct {
	Name       string                 `yaml:"name"`
	Iterations int                    `yaml:"iterations"`
	Params     map[string]interface{} `yaml:"params"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ADBPath:                  "adb",
			WorkingDirectory:         "/sdcard/wa-working",
			ExternalStorageDirectory: "/sdcard",
		},
		DependenciesDir: "dependencies",
		OutputDir:       "results",
	}
}

// Load reads an agenda from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read agenda %s: %w", path, err)
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse agenda %s: %w", path, err)
	}
	for i := range cfg.Workloads {
		if cfg.Workloads[i].Iterations == 0 {
			cfg.Workloads[i].Iterations = 1
		}
	}
	output.Logger.Debug("Loaded agenda", "path", path, "workloads", len(cfg.Workloads))
	return cfg, nil
}

// envOverrides maps environment variables to the fields they replace.
func envOverrides(cfg *Config) map[string]*string {
	return map[string]*string{
		"UXPERF_SERIAL":           &cfg.Device.Serial,
		"UXPERF_ADB":              &cfg.Device.ADBPath,
		"UXPERF_OUTPUT_DIR":       &cfg.OutputDir,
		"UXPERF_DEPENDENCIES_DIR": &cfg.DependenciesDir,
	}
}

// ApplyEnv loads the optional .env file (UXPERF_ENV_FILE overrides its
// path), applies UXPERF_* overrides and expands ${VAR} in string parameters.
// Variables already set in the environment win over the .env file.
func ApplyEnv(cfg *Config) error {
	envPath := os.Getenv("UXPERF_ENV_FILE")
	explicit := envPath != ""
	if !explicit {
		envPath = ".env"
	}
	if err := godotenv.Load(envPath); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
		output.Logger.Debug("Skipping .env", "path", envPath)
	}

	for name, field := range envOverrides(cfg) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*field = v
		}
	}
	for i := range cfg.Workloads {
		for k, v := range cfg.Workloads[i].Params {
			if s, ok := v.(string); ok {
				cfg.Workloads[i].Params[k] = Expand(s)
			}
		}
	}
	return nil
}

var envRef = regexp.MustCompile(`\$\{(\w+)\}`)

// Expand replaces ${VAR} references with the variable's value. Unset
// variables expand to the empty string.
func Expand(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}

// Validate checks the agenda against the known workload names.
func (c *Config) Validate(known []string) error {
	if c.OutputDir == "" {
		return failure.New(failure.Configuration, "output_dir must not be empty")
	}
	if c.SettleDelay < 0 {
		return failure.Newf(failure.Configuration, "settle_delay must not be negative, got %s", c.SettleDelay)
	}
	for i, w := range c.Workloads {
		if !slices.Contains(known, w.Name) {
			return failure.Newf(failure.Configuration, "workloads[%d]: unknown workload %q", i, w.Name)
		}
		if w.Iterations < 1 {
			return failure.Newf(failure.Configuration, "workloads[%d] (%s): iterations must be at least 1, got %d", i, w.Name, w.Iterations)
		}
	}
	return nil
}
