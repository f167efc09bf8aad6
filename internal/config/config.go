package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/i474232898/weatherapp/internal/common"
	"github.com/i474232898/weatherapp/internal/weather"
)

// EnvPrefix prefixes every environment variable the app reads.
const EnvPrefix = "WEATHERAPP"

type AppConfig struct {
	// City is used when no --city flag is given.
	City string `mapstructure:"city" validate:"required"`

	CacheDir string `mapstructure:"cache_dir" validate:"required"`
	// ConfigFile holds the per-provider location overrides.
	ConfigFile string `mapstructure:"config_file"`

	// Max-age of cached current-conditions pages and location listings.
	CacheTime          time.Duration `mapstructure:"cache_time" validate:"gt=0"`
	LocationsCacheTime time.Duration `mapstructure:"locations_cache_time" validate:"gt=0"`
	CacheMemoryEntries int           `mapstructure:"cache_memory_entries" validate:"gte=0"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	Workers     int           `mapstructure:"workers" validate:"gte=1,lte=64"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`

	// WarmInterval is how often serve mode refreshes the cache. Zero means
	// half of CacheTime.
	WarmInterval time.Duration `mapstructure:"warm_interval" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("city", "Kyiv")
	v.SetDefault("cache_dir", "~/.weatherappcache")
	v.SetDefault("config_file", "~/weatherapp.ini")
	v.SetDefault("cache_time", "15m")
	v.SetDefault("locations_cache_time", "24h")
	v.SetDefault("cache_memory_entries", 256)
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("workers", weather.DefaultWorkers)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("warm_interval", "0s")
}

// Load reads configuration from the environment with sensible defaults.
// Variables found in envFiles (".env" when none are given) are loaded first
// but never override the real environment. A missing env file is not an
// error.
func Load(envFiles ...string) (*AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.WarmInterval == 0 {
		cfg.WarmInterval = cfg.CacheTime / 2
	}

	var err error
	if cfg.CacheDir, err = common.ExpandHome(cfg.CacheDir); err != nil {
		return nil, fmt.Errorf("expand cache dir: %w", err)
	}
	if cfg.ConfigFile, err = common.ExpandHome(cfg.ConfigFile); err != nil {
		return nil, fmt.Errorf("expand config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadOverrides reads per-provider location overrides from the INI file at
// path. Each section is named after a provider and may set name and url:
//
//	[accu]
//	name = Lviv
//	url = https://www.accuweather.com/en/ua/lviv/324561/weather-forecast/324561
//
// A missing file yields no overrides. A malformed file is logged and ignored.
func LoadOverrides(path string, logger logrus.FieldLogger) weather.Overrides {
	overrides := weather.Overrides{}
	if path == "" {
		return overrides
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return overrides
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		logger.WithFields(logrus.Fields{
			"path":  path,
			"error": err,
		}).Warn("ignoring unreadable location overrides")
		return overrides
	}

	for section, raw := range v.AllSettings() {
		if _, ok := raw.(map[string]interface{}); !ok {
			continue
		}
		ov := weather.LocationOverride{
			Name: v.GetString(section + ".name"),
			URL:  v.GetString(section + ".url"),
		}
		if ov.Name == "" && ov.URL == "" {
			continue
		}
		overrides[weather.ProviderName(section)] = ov
	}
	return overrides
}
