// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultCommunities is the community list used when none is configured.
var DefaultCommunities = []string{
	"entrepreneurship",
	"smallbusiness",
	"startups",
	"sidehustle",
	"marketing",
	"ecommerce",
	"technology",
}

// Load reads configs/config.yaml (plus config.<env>.yaml) and the environment.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials from their conventional env names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Generator.APIKey == "" {
		if val := os.Getenv("GENERATOR_API_KEY"); val != "" {
			cfg.Generator.APIKey = val
		}
	}
	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
	if cfg.NATS.URL == "" {
		if val := os.Getenv("NATS_URL"); val != "" {
			cfg.NATS.URL = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "trendmine"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if len(cfg.Server.CorsOrigins) == 0 {
		cfg.Server.CorsOrigins = []string{"*"}
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	if cfg.Sources.UserAgent == "" {
		cfg.Sources.UserAgent = "TrendMine/1.0"
	}
	if cfg.Sources.Reddit.BaseURL == "" {
		cfg.Sources.Reddit.BaseURL = "https://www.reddit.com"
	}
	if cfg.Sources.Reddit.MaxCommunities == 0 {
		cfg.Sources.Reddit.MaxCommunities = 7
	}
	if cfg.Sources.Reddit.PostsPerCommunity == 0 {
		cfg.Sources.Reddit.PostsPerCommunity = 10
	}
	if cfg.Sources.Reddit.RequestInterval == 0 {
		cfg.Sources.Reddit.RequestInterval = 200
	}
	if cfg.Sources.Reddit.Timeout == 0 {
		cfg.Sources.Reddit.Timeout = 10000
	}
	if cfg.Sources.TrendFeed.BaseURL == "" {
		cfg.Sources.TrendFeed.BaseURL = "https://trends.google.com/trends/trendingsearches/daily/rss"
	}
	if cfg.Sources.TrendFeed.MaxItems == 0 {
		cfg.Sources.TrendFeed.MaxItems = 15
	}
	if cfg.Sources.TrendFeed.Timeout == 0 {
		cfg.Sources.TrendFeed.Timeout = 10000
	}
	if cfg.Sources.Defaults.TimeWindow == "" {
		cfg.Sources.Defaults.TimeWindow = "7d"
	}
	if cfg.Sources.Defaults.Location == "" {
		cfg.Sources.Defaults.Location = "US"
	}
	if len(cfg.Sources.Defaults.Communities) == 0 {
		cfg.Sources.Defaults.Communities = append([]string(nil), DefaultCommunities...)
	}

	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://ai.gateway.lovable.dev"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "google/gemini-3-flash-preview"
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.7
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 60000
	}

	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 4
	}
	if cfg.Database.Redis.DialTimeout == 0 {
		cfg.Database.Redis.DialTimeout = 3000
	}
	if cfg.Database.Redis.OpTimeout == 0 {
		cfg.Database.Redis.OpTimeout = 2000
	}
	if cfg.Session.Key == "" {
		cfg.Session.Key = "trendmine_results"
	}

	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "trendmine.ideas.generated"
	}
	if cfg.NATS.MaxReconnects == 0 {
		cfg.NATS.MaxReconnects = 10
	}
	if cfg.NATS.ReconnectWait == 0 {
		cfg.NATS.ReconnectWait = 1000
	}
	if cfg.NATS.ConnectTimeout == 0 {
		cfg.NATS.ConnectTimeout = 2000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Camunda.Timeout
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields. Credentials are
// checked by the components that need them.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if cfg.Sources.Reddit.MaxCommunities < 0 {
		return fmt.Errorf("sources.reddit.max_communities must not be negative")
	}
	if cfg.Sources.Reddit.RequestInterval < 0 {
		return fmt.Errorf("sources.reddit.request_interval must not be negative")
	}
	if cfg.Generator.Temperature < 0 || cfg.Generator.Temperature > 2 {
		return fmt.Errorf("generator.temperature must be between 0 and 2")
	}
	return nil
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Camunda.Timeout,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled.
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
