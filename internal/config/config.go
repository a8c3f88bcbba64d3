package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
	AuthConfig
}

type EnvConfig interface {
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetBaseURL() string
	GetTimeout() time.Duration
	GetPublicViews() []string
}

// StoreConfig selects and configures the credential store backend.
type StoreConfig interface {
	GetStoreBackend() string
	GetStorePath() string
	GetStorePassphrase() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type AuthConfig interface {
	GetPasswordStrength() bool
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Log struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
}

type API struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	PublicViews []string      `mapstructure:"public_views"`
}

type Store struct {
	Backend    string `mapstructure:"backend" validate:"required,oneof=memory file redis"`
	Path       string `mapstructure:"path"`
	Passphrase string `mapstructure:"passphrase"`
}

type Redis struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type Auth struct {
	// PasswordStrength checks new passwords locally before they are sent
	PasswordStrength bool `mapstructure:"password_strength"`
}

// Settings is the decoded configuration. It implements Config.
type Settings struct {
	Env   string `mapstructure:"env"`
	Log   Log    `mapstructure:"log"`
	API   API    `mapstructure:"api"`
	Store Store  `mapstructure:"store"`
	Redis Redis  `mapstructure:"redis"`
	Auth  Auth   `mapstructure:"auth"`
}

var _ Config = (*Settings)(nil)

func (s *Settings) GetEnv() string {
	if s.Env == "" {
		return "DEV"
	}
	return s.Env
}

func (s *Settings) GetLogLevel() string { return s.Log.Level }

func (s *Settings) GetBaseURL() string { return s.API.BaseURL }

func (s *Settings) GetTimeout() time.Duration { return s.API.Timeout }

func (s *Settings) GetPublicViews() []string { return s.API.PublicViews }

func (s *Settings) GetStoreBackend() string { return s.Store.Backend }

func (s *Settings) GetStorePath() string { return s.Store.Path }

func (s *Settings) GetStorePassphrase() string { return s.Store.Passphrase }

func (s *Settings) GetRedisAddr() string { return s.Redis.Addr }

func (s *Settings) GetRedisPassword() string { return s.Redis.Password }

func (s *Settings) GetRedisDB() int { return s.Redis.DB }

func (s *Settings) GetRedisKeyPrefix() string { return s.Redis.KeyPrefix }

func (s *Settings) GetPasswordStrength() bool { return s.Auth.PasswordStrength }
