// Package config loads retrievo configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Keyword search backend configuration
	Keyword KeywordConfig `mapstructure:"keyword"`

	// Knowledge graph backend configuration
	Graph GraphConfig `mapstructure:"graph"`

	// Reranker configuration
	Reranker RerankerConfig `mapstructure:"reranker"`

	// Cache configuration
	Cache CacheConfig `mapstructure:"cache"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// RetrievalConfig holds orchestrator configuration
type RetrievalConfig struct {
	DefaultTopK    int `mapstructure:"default_top_k"`
	SourceTimeout  int `mapstructure:"source_timeout"`  // in seconds
	OverallTimeout int `mapstructure:"overall_timeout"` // in seconds
}

// KeywordConfig holds keyword index configuration
type KeywordConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Index   string `mapstructure:"index"`
	Timeout int    `mapstructure:"timeout"` // in seconds
}

// GraphConfig holds knowledge graph configuration
type GraphConfig struct {
	URI            string `mapstructure:"uri"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	MaxNodes       int    `mapstructure:"max_nodes"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
}

// RerankerConfig holds reranker configuration
type RerankerConfig struct {
	Provider    string  `mapstructure:"provider"` // openai, jina, local
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // in seconds
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // empty means in-memory
	TTL     int    `mapstructure:"ttl"`  // in seconds
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Retrieval defaults
	viper.SetDefault("retrieval.default_top_k", 10)
	viper.SetDefault("retrieval.source_timeout", 10)
	viper.SetDefault("retrieval.overall_timeout", 30)

	// Keyword index defaults
	viper.SetDefault("keyword.base_url", "http://localhost:9200")
	viper.SetDefault("keyword.index", "")
	viper.SetDefault("keyword.timeout", 10)

	// Graph defaults
	viper.SetDefault("graph.uri", "bolt://localhost:7687")
	viper.SetDefault("graph.username", "neo4j")
	viper.SetDefault("graph.password", "")
	viper.SetDefault("graph.database", "neo4j")
	viper.SetDefault("graph.max_nodes", 16)
	viper.SetDefault("graph.max_concurrency", 4)

	// Reranker defaults
	viper.SetDefault("reranker.provider", "local")
	viper.SetDefault("reranker.model", "gpt-4o-mini")
	viper.SetDefault("reranker.temperature", 0.0)
	viper.SetDefault("reranker.timeout", 30)

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.path", "")
	viper.SetDefault("cache.ttl", 300)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.retrievo/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Reranker credentials
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && config.Reranker.APIKey == "" {
		config.Reranker.APIKey = apiKey
	}
	if apiKey := os.Getenv("RERANKER_API_KEY"); apiKey != "" {
		config.Reranker.APIKey = apiKey
	}
	if baseURL := os.Getenv("RERANKER_BASE_URL"); baseURL != "" {
		config.Reranker.BaseURL = baseURL
	}

	// Graph credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Graph.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Graph.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Graph.Password = pass
	}

	// Keyword index
	if baseURL := os.Getenv("KEYWORD_BASE_URL"); baseURL != "" {
		config.Keyword.BaseURL = baseURL
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
