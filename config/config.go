package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the API root of the booking service.
const DefaultBaseURL = "https://www.myairdesk.com/bertrandt/api"

// Config represents the overall application configuration.
// Credentials are deliberately not part of it; see EnvCredentials.
type Config struct {
	Airdesk    AirdeskConfig    `yaml:"airdesk"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Server     ServerConfig     `yaml:"server"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// AirdeskConfig holds the settings for talking to the booking service.
type AirdeskConfig struct {
	BaseURL           string            `yaml:"base_url"`
	HTTPProxy         string            `yaml:"http_proxy"`
	TimeoutSeconds    int               `yaml:"timeout_seconds"`
	Timeout           time.Duration     `yaml:"-"`
	RequestsPerSecond float64           `yaml:"requests_per_second"`
	Burst             int               `yaml:"burst"`
	Headers           map[string]string `yaml:"headers"`
}

// ScheduleConfig holds the booking loop configuration.
type ScheduleConfig struct {
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	Timezone        string        `yaml:"timezone"`
}

// ServerConfig holds the optional status server configuration.
type ServerConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// PushConfig holds the VAPID keys and the subscriptions that receive cycle reports.
type PushConfig struct {
	PublicKey     string             `yaml:"vapid_public_key"`
	PrivateKey    string             `yaml:"vapid_private_key"`
	Subject       string             `yaml:"subject"`
	TTL           int                `yaml:"ttl"`
	NotifyOn      string             `yaml:"notify_on"` // "always" or "failure"
	Subscriptions []PushSubscription `yaml:"subscriptions"`
}

// PushSubscription is a browser push endpoint with its keys.
type PushSubscription struct {
	Endpoint string `yaml:"endpoint"`
	P256DH   string `yaml:"p256dh"`
	Auth     string `yaml:"auth"`
}

// Enabled reports whether VAPID keys are configured. Subscriptions may also be
// added at runtime through the status API.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Airdesk.BaseURL == "" {
		cfg.Airdesk.BaseURL = DefaultBaseURL
	}
	if cfg.Airdesk.TimeoutSeconds <= 0 {
		cfg.Airdesk.TimeoutSeconds = 30
	}
	cfg.Airdesk.Timeout = time.Duration(cfg.Airdesk.TimeoutSeconds) * time.Second

	if cfg.Airdesk.RequestsPerSecond <= 0 {
		cfg.Airdesk.RequestsPerSecond = 2
	}
	if cfg.Airdesk.Burst <= 0 {
		cfg.Airdesk.Burst = 1
	}

	if cfg.Schedule.IntervalSeconds <= 0 {
		cfg.Schedule.IntervalSeconds = 24 * 60 * 60
	}
	cfg.Schedule.Interval = time.Duration(cfg.Schedule.IntervalSeconds) * time.Second

	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Local"
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.Push.NotifyOn == "" {
		cfg.Push.NotifyOn = "failure"
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}

// Location resolves the configured timezone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}
