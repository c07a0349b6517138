package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// defaultFile mirrors Config with yaml tags so WriteDefault can emit a
// starter config without dragging mapstructure tags into the output.
type defaultFile struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`
	Retrieval struct {
		DefaultTopK    int `yaml:"default_top_k"`
		SourceTimeout  int `yaml:"source_timeout"`
		OverallTimeout int `yaml:"overall_timeout"`
	} `yaml:"retrieval"`
	Keyword struct {
		BaseURL string `yaml:"base_url"`
		Index   string `yaml:"index"`
		Timeout int    `yaml:"timeout"`
	} `yaml:"keyword"`
	Graph struct {
		URI            string `yaml:"uri"`
		Username       string `yaml:"username"`
		Password       string `yaml:"password"`
		Database       string `yaml:"database"`
		MaxNodes       int    `yaml:"max_nodes"`
		MaxConcurrency int    `yaml:"max_concurrency"`
	} `yaml:"graph"`
	Reranker struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
		Timeout  int    `yaml:"timeout"`
	} `yaml:"reranker"`
	Cache struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
		TTL     int    `yaml:"ttl"`
	} `yaml:"cache"`
	CircuitBreaker struct {
		Enabled          bool    `yaml:"enabled"`
		MaxRequests      uint32  `yaml:"max_requests"`
		Interval         int     `yaml:"interval"`
		Timeout          int     `yaml:"timeout"`
		ReadyToTripRatio float64 `yaml:"ready_to_trip_ratio"`
	} `yaml:"circuit_breaker"`
}

// WriteDefault writes a starter YAML config with the default values to path,
// creating parent directories as needed. It refuses to overwrite an existing
// file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	var f defaultFile
	f.Log.Level = "info"
	f.Log.Format = "text"
	f.Server.Host = "localhost"
	f.Server.Port = 8080
	f.Server.Mode = "release"
	f.Retrieval.DefaultTopK = 10
	f.Retrieval.SourceTimeout = 10
	f.Retrieval.OverallTimeout = 30
	f.Keyword.BaseURL = "http://localhost:9200"
	f.Keyword.Timeout = 10
	f.Graph.URI = "bolt://localhost:7687"
	f.Graph.Username = "neo4j"
	f.Graph.Database = "neo4j"
	f.Graph.MaxNodes = 16
	f.Graph.MaxConcurrency = 4
	f.Reranker.Provider = "local"
	f.Reranker.Model = "gpt-4o-mini"
	f.Reranker.Timeout = 30
	f.Cache.TTL = 300
	f.CircuitBreaker.MaxRequests = 1
	f.CircuitBreaker.Interval = 60
	f.CircuitBreaker.Timeout = 30
	f.CircuitBreaker.ReadyToTripRatio = 0.6

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
