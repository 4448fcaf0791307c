package config

import (
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Safety    SafetyConfig    `yaml:"safety"`
	Policy    PolicyConfig    `yaml:"policy"`
	Auth      AuthConfig      `yaml:"auth"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Routing   RoutingConfig   `yaml:"routing"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// MetricsConfig selects the durable usage-log backend. "csv" appends to a
// flat file at Path; "postgres" appends to the query_log table.
type MetricsConfig struct {
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"`
	Database DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + strconv.Itoa(d.Port) + "/" + d.Name + "?sslmode=disable"
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type TelemetryConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// SafetyConfig selects the safety checker variant. "heuristic" runs the full
// pattern/score gate; "basic" runs length checks only.
type SafetyConfig struct {
	Checker string `yaml:"checker"`
}

type PolicyConfig struct {
	Enabled           bool          `yaml:"enabled"`
	BundlePath        string        `yaml:"bundle_path"`
	EvaluationTimeout time.Duration `yaml:"evaluation_timeout"`
}

// AuthConfig holds SHA-256 hex digests of accepted API keys. An empty list
// disables authentication.
type AuthConfig struct {
	Enabled   bool     `yaml:"enabled"`
	KeyHashes []string `yaml:"key_hashes"`
}

type PromptConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

// RoutingConfig fixes provider selection order. The first configured entry
// of Priority is the current provider; on failure exactly one fallback (the
// next configured entry) is attempted.
type RoutingConfig struct {
	Priority       []string      `yaml:"priority"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type RateLimitConfig struct {
	Enabled           bool  `yaml:"enabled"`
	RequestsPerMinute int64 `yaml:"requests_per_minute"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			Backend: "csv",
			Path:    "metrics/metrics.csv",
			Database: DatabaseConfig{
				Host:            "localhost",
				Port:            5432,
				Name:            "askgate",
				User:            "askgate",
				MaxOpenConns:    25,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Redis: RedisConfig{
			DB:       0,
			PoolSize: 50,
		},
		Telemetry: TelemetryConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		Safety: SafetyConfig{
			Checker: "heuristic",
		},
		Policy: PolicyConfig{
			Enabled:           false,
			BundlePath:        "/etc/askgate/policies",
			EvaluationTimeout: 100 * time.Millisecond,
		},
		Prompt: PromptConfig{
			Dir:  "prompts",
			File: "main_prompt.txt",
		},
		Routing: RoutingConfig{
			Priority:       []string{"openrouter", "gemini", "openai"},
			RequestTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 60,
		},
	}
}
