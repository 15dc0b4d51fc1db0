// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/thermo/lib/rendezvous"
	"github.com/bureau-foundation/thermo/lib/statsregion"
	"github.com/bureau-foundation/thermo/lib/window"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "THERMO_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the collector's configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	Rendezvous RendezvousConfig `yaml:"rendezvous"`
	Region     RegionConfig     `yaml:"region"`
	Window     WindowConfig     `yaml:"window"`
	Publisher  PublisherConfig  `yaml:"publisher"`
	Control    ControlConfig    `yaml:"control"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the fields that can be overridden per
// environment. Empty values leave the base value in place.
type ConfigOverrides struct {
	Rendezvous *RendezvousConfig `yaml:"rendezvous,omitempty"`
	Region     *RegionConfig     `yaml:"region,omitempty"`
	Window     *WindowConfig     `yaml:"window,omitempty"`
	Publisher  *PublisherConfig  `yaml:"publisher,omitempty"`
	Control    *ControlConfig    `yaml:"control,omitempty"`
	Metrics    *MetricsConfig    `yaml:"metrics,omitempty"`
	Logging    *LoggingConfig    `yaml:"logging,omitempty"`
}

// RendezvousConfig locates the collector's well-known name.
type RendezvousConfig struct {
	// Dir holds the rendezvous socket. Default: /tmp/thermo
	Dir string `yaml:"dir"`

	// Name is the well-known name producers open. Default: TempServer
	Name string `yaml:"name"`
}

// RegionConfig locates the shared statistics region.
type RegionConfig struct {
	// Name is resolved under /dev/shm. Default: temp_stats_shm
	Name string `yaml:"name"`

	// Path, when set, is used verbatim instead of Name.
	Path string `yaml:"path"`
}

// WindowConfig sizes the rolling window.
type WindowConfig struct {
	// Capacity is the number of readings retained. Default: 1024
	Capacity int `yaml:"capacity"`
}

// PublisherConfig configures the periodic statistics publisher.
type PublisherConfig struct {
	// Period is a Go duration string. Default: 5s
	Period string `yaml:"period"`
}

// ControlConfig configures the CBOR control socket.
type ControlConfig struct {
	// SocketPath is the control socket. Empty disables it.
	// Default: /tmp/thermo/collector.sock
	SocketPath string `yaml:"socket_path"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is a host:port for /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Format is "json" or "text". Default: json
	Format string `yaml:"format"`

	// Level is "debug", "info", "warn" or "error". Default: info
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Environment: Development,
		Rendezvous: RendezvousConfig{
			Dir:  rendezvous.DefaultDir,
			Name: rendezvous.DefaultName,
		},
		Region: RegionConfig{
			Name: statsregion.DefaultName,
		},
		Window: WindowConfig{
			Capacity: window.DefaultCapacity,
		},
		Publisher: PublisherConfig{
			Period: "5s",
		},
		Control: ControlConfig{
			SocketPath: "${THERMO_DIR}/collector.sock",
		},
		Logging: LoggingConfig{
			Format: "json",
			Level:  "info",
		},
	}
}

// Load loads configuration from the file named by THERMO_CONFIG, or
// returns the defaults when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, layered over
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// RendezvousPath returns the socket path of the collector's
// well-known name.
func (c *Config) RendezvousPath() string {
	return rendezvous.Path(c.Rendezvous.Dir, c.Rendezvous.Name)
}

// RegionPath returns the backing file of the shared statistics region.
func (c *Config) RegionPath() string {
	if c.Region.Path != "" {
		return c.Region.Path
	}
	return statsregion.Path(c.Region.Name)
}

// PublisherPeriod parses Publisher.Period.
func (c *Config) PublisherPeriod() (time.Duration, error) {
	period, err := time.ParseDuration(c.Publisher.Period)
	if err != nil {
		return 0, fmt.Errorf("publisher.period: %w", err)
	}
	if period <= 0 {
		return 0, fmt.Errorf("publisher.period must be positive, got %s", c.Publisher.Period)
	}
	return period, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Format: "json", Level: "info"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Rendezvous != nil {
		override(&c.Rendezvous.Dir, overrides.Rendezvous.Dir)
		override(&c.Rendezvous.Name, overrides.Rendezvous.Name)
	}
	if overrides.Region != nil {
		override(&c.Region.Name, overrides.Region.Name)
		override(&c.Region.Path, overrides.Region.Path)
	}
	if overrides.Window != nil && overrides.Window.Capacity != 0 {
		c.Window.Capacity = overrides.Window.Capacity
	}
	if overrides.Publisher != nil {
		override(&c.Publisher.Period, overrides.Publisher.Period)
	}
	if overrides.Control != nil {
		override(&c.Control.SocketPath, overrides.Control.SocketPath)
	}
	if overrides.Metrics != nil {
		override(&c.Metrics.Listen, overrides.Metrics.Listen)
	}
	if overrides.Logging != nil {
		override(&c.Logging.Format, overrides.Logging.Format)
		override(&c.Logging.Level, overrides.Logging.Level)
	}
}

func override(field *string, value string) {
	if value != "" {
		*field = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Rendezvous.Dir = expandVars(c.Rendezvous.Dir, vars)
	vars["THERMO_DIR"] = c.Rendezvous.Dir

	c.Region.Path = expandVars(c.Region.Path, vars)
	c.Control.SocketPath = expandVars(c.Control.SocketPath, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, consulting
// vars before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Rendezvous.Dir == "" {
		errs = append(errs, errors.New("rendezvous.dir is required"))
	}
	if c.Rendezvous.Name == "" {
		errs = append(errs, errors.New("rendezvous.name is required"))
	} else if filepath.Base(c.Rendezvous.Name) != c.Rendezvous.Name {
		errs = append(errs, fmt.Errorf("rendezvous.name must be a bare name, got %q", c.Rendezvous.Name))
	}

	if c.Region.Path == "" && c.Region.Name == "" {
		errs = append(errs, errors.New("region.name or region.path is required"))
	} else if c.Region.Path == "" && filepath.Base(c.Region.Name) != c.Region.Name {
		errs = append(errs, fmt.Errorf("region.name must be a bare name, got %q", c.Region.Name))
	}

	if c.Window.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("window.capacity must be positive, got %d", c.Window.Capacity))
	} else if c.Window.Capacity > math.MaxInt32 {
		// The region stores the sample count as an int32.
		errs = append(errs, fmt.Errorf("window.capacity must be at most %d, got %d", math.MaxInt32, c.Window.Capacity))
	}

	if _, err := c.PublisherPeriod(); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, c.validatePaths()...)

	if !slices.Contains([]string{"json", "text"}, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// validatePaths rejects configurations where two of the collector's
// files would share a path. Each is created by removing whatever is
// already there, so a collision would silently replace the earlier one.
func (c *Config) validatePaths() []error {
	if c.Rendezvous.Dir == "" || c.Rendezvous.Name == "" {
		return nil
	}
	if c.Region.Path == "" && c.Region.Name == "" {
		return nil
	}

	rendezvousPath := filepath.Clean(c.RendezvousPath())
	regionPath := filepath.Clean(c.RegionPath())

	var errs []error
	if regionPath == rendezvousPath {
		errs = append(errs, fmt.Errorf("region path %s is the rendezvous socket", regionPath))
	}
	if c.Control.SocketPath != "" {
		controlPath := filepath.Clean(c.Control.SocketPath)
		if controlPath == rendezvousPath {
			errs = append(errs, fmt.Errorf("control.socket_path %s is the rendezvous socket", controlPath))
		}
		if controlPath == regionPath {
			errs = append(errs, fmt.Errorf("control.socket_path %s is the region path", controlPath))
		}
	}
	return errs
}
