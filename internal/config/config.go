// Package config loads daemon and client settings. Later sources override
// earlier ones: built-in defaults, <configDir>/config.yaml, <configDir>/.env,
// then PTIMER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adhocore/gronx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ptimer/ptimer/common"
	"github.com/ptimer/ptimer/internal/store"
)

const (
	// FileName is the YAML file read from the config directory.
	FileName = "config.yaml"
	// EnvFileName is the dotenv file read from the config directory.
	EnvFileName = ".env"
)

// Config holds every tunable of the daemon and CLI.
type Config struct {
	ConfigDir       string        `yaml:"-"`
	DataDir         string        `yaml:"data_dir"`
	ListenAddr      string        `yaml:"listen_addr"`
	Store           string        `yaml:"store"`
	TickInterval    time.Duration `yaml:"tick_interval"`
	ClockTolerance  time.Duration `yaml:"clock_tolerance"`
	ExactAlarms     bool          `yaml:"exact_alarms"`
	BatchCron       string        `yaml:"batch_cron"`
	MaxSleepCap     time.Duration `yaml:"max_sleep_cap"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RPCSecret       string        `yaml:"rpc_secret"`
	Debug           bool          `yaml:"debug"`
}

// Default returns the built-in configuration rooted at configDir.
func Default(configDir string) *Config {
	return &Config{
		ConfigDir:       configDir,
		DataDir:         configDir,
		ListenAddr:      common.DefaultListenAddr,
		Store:           store.KindJSON,
		TickInterval:    100 * time.Millisecond,
		ClockTolerance:  time.Second,
		ExactAlarms:     true,
		BatchCron:       "* * * * *",
		MaxSleepCap:     60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// DefaultConfigDir returns PTIMER_CONFIG_DIR, or ptimer under the user's
// config directory.
func DefaultConfigDir() (string, error) {
	if dir := os.Getenv(common.ConfigDirEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate user config dir: %w", err)
	}
	return filepath.Join(base, "ptimer"), nil
}

// Load reads the configuration from the default config directory.
func Load() (*Config, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads the configuration rooted at configDir. Missing files are
// not an error.
func LoadFrom(configDir string) (*Config, error) {
	c := Default(configDir)

	data, err := os.ReadFile(filepath.Join(configDir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", FileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config: read %s: %w", FileName, err)
	}

	dotenv, err := godotenv.Read(filepath.Join(configDir, EnvFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", EnvFileName, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := c.apply(lookup); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) apply(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str(common.DataDirEnv, &c.DataDir)
	str(common.ListenAddrEnv, &c.ListenAddr)
	str(common.StoreEnv, &c.Store)
	str(common.BatchCronEnv, &c.BatchCron)
	str(common.RPCSecretEnv, &c.RPCSecret)
	for key, dst := range map[string]*time.Duration{
		common.TickIntervalEnv:    &c.TickInterval,
		common.ClockToleranceEnv:  &c.ClockTolerance,
		common.MaxSleepCapEnv:     &c.MaxSleepCap,
		common.ShutdownTimeoutEnv: &c.ShutdownTimeout,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	if err := boolean(common.ExactAlarmsEnv, &c.ExactAlarms); err != nil {
		return err
	}
	return boolean(common.DebugEnv, &c.Debug)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return errors.New("config: data_dir must be set")
	case c.ListenAddr == "":
		return errors.New("config: listen_addr must be set")
	case c.Store != store.KindJSON && c.Store != store.KindSQLite:
		return fmt.Errorf("config: store must be %q or %q, got %q", store.KindJSON, store.KindSQLite, c.Store)
	case c.TickInterval <= 0 || c.TickInterval > time.Second:
		return fmt.Errorf("config: tick_interval must be in (0, 1s], got %s", c.TickInterval)
	case c.ClockTolerance < 0:
		return fmt.Errorf("config: clock_tolerance must not be negative, got %s", c.ClockTolerance)
	case c.MaxSleepCap <= 0:
		return fmt.Errorf("config: max_sleep_cap must be positive, got %s", c.MaxSleepCap)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("config: shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	case !c.ExactAlarms && !gronx.IsValid(c.BatchCron):
		return fmt.Errorf("config: invalid batch_cron %q", c.BatchCron)
	}
	return nil
}
