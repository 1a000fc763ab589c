package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Redis Config
const REDIS_DB_ADDRESS = "redis:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0

// HTTP server config
const SERVER_LISTEN_ADDRESS = ":8080"
const SERVER_SHUTDOWN_TIMEOUT_SECONDS = 5

// Occupancy upstream config
const OCCUPANCY_ENDPOINT_BASE_V1 = "https://occupancy.example.org/api/v1"
const OCCUPANCY_LOOKBACK_DAYS = 56

// MOCK_OCCUPANCY_ANCHOR_DATE is the last day covered by the bundled records.
const MOCK_OCCUPANCY_ANCHOR_DATE = "2021-06-18"
const anchorDateLayout = "2006-01-02"

// Refresher config
const OCCUPANCY_REFRESHER_SCHEDULE_MINUTES = 60

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const OCCUPANCY_RECORDS_RESOURCE = "occupancy_records.json"
const FLAGS_RESOURCE_DIR = "flags"

// CONFIG_PATH_ENV points at an optional YAML file overriding the defaults.
const CONFIG_PATH_ENV = "MATCH_OCCUPANCY_CONFIG"

// Fixture is a match whose stats are precomputed by the refresher.
type Fixture struct {
	Name        string `yaml:"name"`
	Date        string `yaml:"date"`
	KickoffHour int    `yaml:"kickoff_hour"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ServerConfig struct {
	ListenAddress          string `yaml:"listen_address"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

type UpstreamConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	LookbackDays int    `yaml:"lookback_days"`
	// AnchorDate (YYYY-MM-DD) ends the refresher window on a fixed day
	// instead of today.
	AnchorDate string `yaml:"anchor_date"`
}

// Config is the full service configuration.
type Config struct {
	Env      string         `yaml:"env"`
	Debug    bool           `yaml:"debug"`
	Redis    RedisConfig    `yaml:"redis"`
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	// Baselines maps each country to the group it is normalised against.
	Baselines map[string]string `yaml:"baselines"`
	// Flags maps each country to the flag image drawn on its match plot.
	Flags                 map[string]string `yaml:"flags"`
	Fixtures              []Fixture         `yaml:"fixtures"`
	RefresherScheduleMins int               `yaml:"refresher_schedule_minutes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env: "dev",
		Redis: RedisConfig{
			Address:  REDIS_DB_ADDRESS,
			Password: REDIS_DB_PASSWORD,
			DB:       REDIS_DB,
		},
		Server: ServerConfig{
			ListenAddress:          SERVER_LISTEN_ADDRESS,
			ShutdownTimeoutSeconds: SERVER_SHUTDOWN_TIMEOUT_SECONDS,
		},
		Upstream: UpstreamConfig{
			BaseURL:      OCCUPANCY_ENDPOINT_BASE_V1,
			LookbackDays: OCCUPANCY_LOOKBACK_DAYS,
		},
		Baselines: map[string]string{
			"England":  "England",
			"Scotland": "Scotland",
		},
		Flags: map[string]string{
			"England":  "/flags/England.svg",
			"Scotland": "/flags/Scotland.svg",
		},
		Fixtures: []Fixture{
			{Name: "England v Scotland", Date: "2021-06-18", KickoffHour: 20},
		},
		RefresherScheduleMins: OCCUPANCY_REFRESHER_SCHEDULE_MINUTES,
	}
}

// Load returns the defaults overlaid with the YAML file named by
// MATCH_OCCUPANCY_CONFIG and a few env overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(CONFIG_PATH_ENV); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("OCCUPANCY_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv("OCCUPANCY_REFRESHER_SCHEDULE_MINUTES"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid OCCUPANCY_REFRESHER_SCHEDULE_MINUTES %q: %w", v, err)
		}
		cfg.RefresherScheduleMins = mins
	}

	return cfg, cfg.Validate()
}

// Parse overlays YAML data onto cfg.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	if len(c.Baselines) == 0 {
		return fmt.Errorf("config: at least one baseline country is required")
	}
	for _, f := range c.Fixtures {
		if f.KickoffHour < 0 || f.KickoffHour > 23 {
			return fmt.Errorf("config: fixture %q has kickoff hour %d", f.Name, f.KickoffHour)
		}
	}
	if c.RefresherScheduleMins <= 0 {
		return fmt.Errorf("config: refresher_schedule_minutes must be positive")
	}
	if _, err := c.RefresherAnchor(); err != nil {
		return err
	}
	return nil
}

// RefresherAnchor returns the day the refresher window ends on. Outside prod
// it falls back to the last day of the bundled records. A zero time means
// the window follows the clock.
func (c Config) RefresherAnchor() (time.Time, error) {
	date := c.Upstream.AnchorDate
	if date == "" && c.Env != "prod" {
		date = MOCK_OCCUPANCY_ANCHOR_DATE
	}
	if date == "" {
		return time.Time{}, nil
	}
	anchor, err := time.Parse(anchorDateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: invalid upstream anchor_date %q: %w", date, err)
	}
	return anchor, nil
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resource_file string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resource_file)
}
