package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Asana         AsanaConfig      `toml:"asana"`
	Allocation    AllocationConfig `toml:"allocation"`
	Watch         WatchConfig      `toml:"watch"`
	Notifications NotifyConfig     `toml:"notifications"`
	Log           LogConfig        `toml:"log"`
	Store         StoreConfig      `toml:"store"`
}

type AsanaConfig struct {
	AccessToken     string `toml:"access_token"`
	WorkspaceName   string `toml:"workspace_name"`
	ProjectName     string `toml:"project_name"`
	BaseURL         string `toml:"base_url"`
	AllocationField string `toml:"allocation_field"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
}

type AllocationConfig struct {
	WorkDaysPerWeek int     `toml:"work_days_per_week"`
	PastWeeks       int     `toml:"past_weeks"`
	FutureWeeks     int     `toml:"future_weeks"`
	Threshold       float64 `toml:"overallocation_threshold"`
}

type WatchConfig struct {
	IntervalMinutes int    `toml:"interval_minutes"`
	WorkStart       string `toml:"work_start"`
	WorkEnd         string `toml:"work_end"`
	WorkDays        []int  `toml:"work_days"`
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug | info | warn | error
	Format string `toml:"format"` // auto | console | json
}

type StoreConfig struct {
	Path string `toml:"path"`
}

func DefaultConfig() Config {
	return Config{
		Asana: AsanaConfig{
			AllocationField: "Allocation",
			CacheTTLMinutes: 60,
		},
		Allocation: AllocationConfig{
			WorkDaysPerWeek: 5,
			PastWeeks:       4,
			FutureWeeks:     12,
			Threshold:       1.0,
		},
		Watch: WatchConfig{
			IntervalMinutes: 60,
			WorkStart:       "09:00",
			WorkEnd:         "17:00",
			WorkDays:        []int{1, 2, 3, 4, 5},
		},
		Notifications: NotifyConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "asananas"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist, and applies environment overrides on top.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ASANA_ACCESS_TOKEN"); v != "" {
		cfg.Asana.AccessToken = v
	}
	if v := os.Getenv("ASANA_WORKSPACE_NAME"); v != "" {
		cfg.Asana.WorkspaceName = v
	}
	if v := os.Getenv("ASANA_PROJECT_NAME"); v != "" {
		cfg.Asana.ProjectName = v
	}
	if v := os.Getenv("ASANA_BASE_URL"); v != "" {
		cfg.Asana.BaseURL = v
	}
	if v := os.Getenv("ASANANAS_WORK_DAYS_PER_WEEK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Allocation.WorkDaysPerWeek = n
		}
	}
	if v := os.Getenv("ASANANAS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ASANANAS_DB"); v != "" {
		cfg.Store.Path = v
	}
}

func (c *Config) Validate() error {
	if c.Allocation.WorkDaysPerWeek < 1 || c.Allocation.WorkDaysPerWeek > 7 {
		return fmt.Errorf("allocation.work_days_per_week must be between 1 and 7, got %d", c.Allocation.WorkDaysPerWeek)
	}
	if c.Allocation.PastWeeks < 0 || c.Allocation.FutureWeeks < 0 {
		return fmt.Errorf("allocation window weeks must not be negative")
	}
	if c.Allocation.Threshold <= 0 {
		return fmt.Errorf("allocation.overallocation_threshold must be positive, got %g", c.Allocation.Threshold)
	}
	if c.Watch.IntervalMinutes <= 0 {
		return fmt.Errorf("watch.interval_minutes must be positive, got %d", c.Watch.IntervalMinutes)
	}
	for _, d := range c.Watch.WorkDays {
		if d < 1 || d > 7 {
			return fmt.Errorf("watch.work_days entries must be between 1 and 7, got %d", d)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "console", "json", "":
	default:
		return fmt.Errorf("log.format must be one of auto, console, json, got %q", c.Log.Format)
	}
	return nil
}

// StorePath returns the configured database path or the default one next to
// the config file.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "asananas.db"), nil
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// WriteDefault writes the default config to path, leaving an existing file
// untouched.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := DefaultConfig()
	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, out, 0600)
}
