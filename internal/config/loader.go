package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "CARRENTAL"
	configName     = "carrental"
	DefaultBaseURL = "http://localhost:8000/api/v1"
)

// DefaultPublicViews are the views from which an expired session does not
// trigger a sign-in redirect.
var DefaultPublicViews = []string{"/", "/login", "/register"}

// NewViper returns a viper instance wired for the carrental config file and
// CARRENTAL_* environment variables. An empty configFile searches the current
// directory and $HOME/.carrental.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := defaultDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	// CARRENTAL_API_BASE_URL overrides api.base_url
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "DEV")
	v.SetDefault("log.level", "info")

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.public_views", DefaultPublicViews)

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", filepath.Join(defaultDir(), "credentials.json"))
	v.SetDefault("store.passphrase", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "carrental:")

	v.SetDefault("auth.password_strength", false)
}

// Load reads the config file (if any), applies environment overrides and
// defaults, then validates the result.
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: continue with env vars and defaults
	}

	var s Settings
	if err := v.Unmarshal(&s, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &s, nil
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".carrental"
	}
	return filepath.Join(home, ".carrental")
}
