// Package config loads the quality-index YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config is looked up, relative to the project root.
const DefaultPath = "code-quality/configs/quality-index.yaml"

// Config describes which tools to run and where reports live. Relative
// paths resolve against the project root.
type Config struct {
	ReportsDir string         `yaml:"reports_dir"`
	Output     string         `yaml:"output"`
	Timeout    time.Duration  `yaml:"timeout"`
	Coverage   CoverageConfig `yaml:"coverage"`
	Style      StyleConfig    `yaml:"style"`
	Security   SecurityConfig `yaml:"security"`
}

// CoverageConfig holds the test-under-coverage and report commands.
type CoverageConfig struct {
	Run    []string `yaml:"run"`
	Report []string `yaml:"report"`
}

// StyleConfig holds the count-only linter command.
type StyleConfig struct {
	Command []string `yaml:"command"`
}

// SecurityConfig locates scanner reports, relative to ReportsDir.
type SecurityConfig struct {
	BanditReport string `yaml:"bandit_report"`
	SafetyReport string `yaml:"safety_report"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ReportsDir: "code-quality/reports",
		Output:     "metrics/quality-index.json",
		Coverage: CoverageConfig{
			Run:    []string{"coverage", "run", "-m", "pytest", "tests/", "--config=code-quality/configs/pytest.ini"},
			Report: []string{"coverage", "report", "--show-missing"},
		},
		Style: StyleConfig{
			Command: []string{"flake8", "--config=code-quality/configs/flake8.ini", "src/", "tests/", "--count", "--quiet"},
		},
		Security: SecurityConfig{
			BanditReport: "security/bandit-report.json",
			SafetyReport: "security/safety-report.json",
		},
	}
}

// Load reads the config for a project. With an explicit path the file must
// exist; otherwise DefaultPath under root is used if present, and the
// built-in defaults if not.
func Load(root, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, DefaultPath)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	switch {
	case c.ReportsDir == "":
		return errors.New("reports_dir is required")
	case c.Output == "":
		return errors.New("output is required")
	case c.Timeout < 0:
		return errors.New("timeout must not be negative")
	case len(c.Coverage.Run) == 0 || len(c.Coverage.Report) == 0:
		return errors.New("coverage.run and coverage.report are required")
	case len(c.Style.Command) == 0:
		return errors.New("style.command is required")
	}
	return nil
}

// Paths resolves report locations against a project root.
type Paths struct {
	ReportsDir   string
	Output       string
	BanditReport string
	SafetyReport string
}

// Resolve returns absolute-or-root-relative paths for root.
func (c *Config) Resolve(root string) Paths {
	reports := join(root, c.ReportsDir)
	return Paths{
		ReportsDir:   reports,
		Output:       join(reports, c.Output),
		BanditReport: join(reports, c.Security.BanditReport),
		SafetyReport: join(reports, c.Security.SafetyReport),
	}
}

func join(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
