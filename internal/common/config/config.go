// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Server    ServerConfig            `mapstructure:"server"`
	Sources   SourcesConfig           `mapstructure:"sources"`
	Generator GeneratorConfig         `mapstructure:"generator"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Session   SessionConfig           `mapstructure:"session"`
	NATS      NATSConfig              `mapstructure:"nats"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	CorsOrigins     []string `mapstructure:"cors_origins"`
	// BaseURL is where the CLI reaches the API.
	BaseURL string `mapstructure:"base_url"`
}

// --- Signal sources ---
type SourcesConfig struct {
	UserAgent string          `mapstructure:"user_agent"`
	Reddit    RedditConfig    `mapstructure:"reddit"`
	TrendFeed TrendFeedConfig `mapstructure:"trend_feed"`
	Defaults  SourceDefaults  `mapstructure:"defaults"`
}

type RedditConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	MaxCommunities    int    `mapstructure:"max_communities"`
	PostsPerCommunity int    `mapstructure:"posts_per_community"`
	RequestInterval   int    `mapstructure:"request_interval"` // milliseconds between community requests
	Timeout           int    `mapstructure:"timeout"`          // milliseconds
}

type TrendFeedConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	MaxItems int    `mapstructure:"max_items"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// SourceDefaults seed the orchestrator's request parameters.
type SourceDefaults struct {
	TimeWindow  string   `mapstructure:"time_window"`
	Location    string   `mapstructure:"location"`
	Communities []string `mapstructure:"communities"`
}

// --- Idea generation ---
type GeneratorConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address     string `mapstructure:"address"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	PoolSize    int    `mapstructure:"pool_size"`
	DialTimeout int    `mapstructure:"dial_timeout"` // ms
	OpTimeout   int    `mapstructure:"op_timeout"`   // ms
}

// SessionConfig controls where the orchestrator caches its last result.
type SessionConfig struct {
	Key string `mapstructure:"key"`
}

type NATSConfig struct {
	URL            string `mapstructure:"url"`
	Subject        string `mapstructure:"subject"`
	MaxReconnects  int    `mapstructure:"max_reconnects"`
	ReconnectWait  int    `mapstructure:"reconnect_wait"`  // milliseconds
	ConnectTimeout int    `mapstructure:"connect_timeout"` // milliseconds
}

// Enabled reports whether generation events should be published.
func (n NATSConfig) Enabled() bool {
	return n.URL != ""
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
