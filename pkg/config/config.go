// Package config loads cpuusage settings from TOML files and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/cpuusage/pkg/use"
)

// EnvPrefix prefixes every environment override, e.g. CPUUSAGE_SAMPLER_SCOPE.
const EnvPrefix = "CPUUSAGE_"

// EnvConfig names a config file explicitly.
const EnvConfig = EnvPrefix + "CONFIG"

// DefaultPaths are tried in order when no file is named.
func DefaultPaths() []string {
	paths := []string{"cpuusage.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cpuusage", "config.toml"))
	}
	return append(paths, "/etc/cpuusage/config.toml")
}

// Sampler configures the CPU sampler.
type Sampler struct {
	Scope     string `koanf:"scope"`
	Source    string `koanf:"source"`
	Normalize bool   `koanf:"normalize"`
	Baseline  string `koanf:"baseline"`
	// Hold is the minimum spacing between consumed samples; 0 disables it.
	Hold time.Duration `koanf:"hold"`
}

// Watch configures repeated sampling.
type Watch struct {
	Interval time.Duration `koanf:"interval"`
	Count    int           `koanf:"count"`
}

// Thresholds configures utilization evaluation, in percent.
type Thresholds struct {
	Warn float64 `koanf:"warn"`
	Crit float64 `koanf:"crit"`
}

// Config is the full tool configuration.
type Config struct {
	Sampler    Sampler    `koanf:"sampler"`
	Watch      Watch      `koanf:"watch"`
	Thresholds Thresholds `koanf:"thresholds"`
	Log        struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
	Output struct {
		Format string `koanf:"format"`
	} `koanf:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Sampler = Sampler{
		Scope:    "process",
		Source:   "auto",
		Baseline: "zero",
	}
	c.Watch = Watch{
		Interval: time.Second,
	}
	th := use.DefaultThresholds()
	c.Thresholds = Thresholds{
		Warn: th.WarnUtil,
		Crit: th.CritUtil,
	}
	c.Log.Level = "warn"
	c.Output.Format = "table"
	return c
}

// Load reads the defaults, then the first config file found, then
// CPUUSAGE_* environment variables. An explicitly named file (argument or
// CPUUSAGE_CONFIG) must exist.
func Load(path string, logger *logrus.Logger) (Config, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	konf := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	var paths []string
	if path != "" {
		paths = []string{path}
	} else {
		paths = DefaultPaths()
	}

	loaded := false
	for _, f := range paths {
		err := konf.Load(file.Provider(f), toml.Parser())
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, errors.Wrapf(err, "error loading config from %s", f)
		}
		logger.WithField("path", f).Debug("Config loaded")
		loaded = true
		break
	}
	if !loaded && path != "" {
		return Config{}, errors.Errorf("config file %s not found", path)
	}

	if err := konf.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, errors.Wrap(err, "error loading config from env")
	}

	cfg := Default()
	if err := konf.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "error decoding config")
	}
	return cfg, cfg.Validate()
}

// envKey maps CPUUSAGE_SECTION_KEY to section.key. CPUUSAGE_CONFIG names
// the file and is not a setting.
func envKey(s string) string {
	if s == EnvConfig {
		return ""
	}
	return strings.Replace(strings.ToLower(
		strings.TrimPrefix(s, EnvPrefix)), "_", ".", -1)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Watch.Interval <= 0 {
		return errors.Errorf("watch.interval must be positive, got %s", c.Watch.Interval)
	}
	if c.Watch.Count < 0 {
		return errors.Errorf("watch.count must not be negative, got %d", c.Watch.Count)
	}
	if c.Sampler.Hold < 0 {
		return errors.Errorf("sampler.hold must not be negative, got %s", c.Sampler.Hold)
	}
	if c.Thresholds.Warn < 0 || c.Thresholds.Crit < 0 {
		return errors.New("thresholds must not be negative")
	}
	if c.Thresholds.Warn > c.Thresholds.Crit {
		return errors.Errorf("thresholds.warn (%.1f) exceeds thresholds.crit (%.1f)", c.Thresholds.Warn, c.Thresholds.Crit)
	}
	return nil
}
