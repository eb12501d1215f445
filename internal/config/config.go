package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"`
}

type LoggingCfg struct {
	RotationDays int `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // Maximum CPU usage (e.g., 10.0)
}

type Config struct {
	// Roots are the directories whose contents get erased each cycle
	Roots []string `yaml:"roots" json:"roots"`

	// RemoveRoots erases the root directories themselves instead of
	// only emptying them
	RemoveRoots bool `yaml:"remove_roots" json:"remove_roots"`

	IntervalMinutes int            `yaml:"interval_minutes" json:"interval_minutes"`
	Prometheus      PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	Logging         LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits  ResourceLimits `yaml:"resource_limits" json:"resource_limits"`

	// DatabasePath locates the SQLite erasure history
	DatabasePath string `yaml:"database_path" json:"database_path"`

	// ProtectedPaths extend the built-in refuse list of the safety policy
	ProtectedPaths []string `yaml:"protected_paths" json:"protected_paths"`

	// MountTimeoutSeconds bounds the responsiveness probe on each root
	// before a cycle touches it (stale network mounts hang forever)
	MountTimeoutSeconds int `yaml:"mount_timeout_seconds" json:"mount_timeout_seconds"`
}

var (
	errNoRoots         = errors.New("configuration must specify roots")
	errInvalidPath     = errors.New("path must be absolute")
	errInvalidInterval = errors.New("interval_minutes cannot be negative")
)

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if len(c.Roots) == 0 {
		return errNoRoots
	}

	if c.IntervalMinutes < 0 {
		return errInvalidInterval
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 30
	}

	if c.Prometheus.Port == 0 {
		c.Prometheus.Port = 9090
	}
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30
	}
	if c.ResourceLimits.MaxCPUPercent <= 0 {
		c.ResourceLimits.MaxCPUPercent = 10.0
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "/var/lib/tree-reaper/erasures.db"
	}
	if c.MountTimeoutSeconds <= 0 {
		c.MountTimeoutSeconds = 5
	}

	cleaned := make([]string, 0, len(c.Roots))
	for _, r := range c.Roots {
		cr, err := cleanAbsolute(r)
		if err != nil {
			return err
		}
		cleaned = append(cleaned, cr)
	}
	c.Roots = cleaned

	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *Config) MountTimeout() time.Duration {
	return time.Duration(c.MountTimeoutSeconds) * time.Second
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
