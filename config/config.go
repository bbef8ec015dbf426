package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Postgres struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

type Auth struct {
	Secret    string `yaml:"secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
	AccessTTL string `yaml:"accessTTL"` // e.g. "15m"
	ClockSkew string `yaml:"clockSkew"` // e.g. "30s"
}

func (a Auth) TTL() time.Duration  { return parseDurationOr(15*time.Minute, a.AccessTTL) }
func (a Auth) Skew() time.Duration { return parseDurationOr(30*time.Second, a.ClockSkew) }

type Storage struct {
	Dir             string `yaml:"dir"`
	MaxUploadBytes  int64  `yaml:"maxUploadBytes"`
	MaxSignalBytes  int64  `yaml:"maxSignalBytes"`
	MaxMessageChars int    `yaml:"maxMessageChars"`
}

type WS struct {
	PingEvery string `yaml:"pingEvery"` // e.g. "15s"
}

func (w WS) PingInterval() time.Duration { return parseDurationOr(15*time.Second, w.PingEvery) }

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // meet-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Auth     Auth     `yaml:"auth"`
	Storage  Storage  `yaml:"storage"`
	WS       WS       `yaml:"ws"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "meet-service"
	}
	if c.Auth.Audience == "" {
		c.Auth.Audience = "meet-web"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "./data/uploads"
	}
	if c.Storage.MaxUploadBytes <= 0 {
		c.Storage.MaxUploadBytes = 50 << 20
	}
	if c.Storage.MaxSignalBytes <= 0 {
		c.Storage.MaxSignalBytes = 64 << 10
	}
	if c.Storage.MaxMessageChars <= 0 {
		c.Storage.MaxMessageChars = 4000
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "meet-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
