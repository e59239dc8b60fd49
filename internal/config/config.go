package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/franckalain/nutritrack/internal/goals"
)

// Config holds all application configuration
type Config struct {
	Server struct {
		Port      string `json:"port"`
		StaticDir string `json:"static_dir"`
		Debug     bool   `json:"debug"`
	} `json:"server"`

	Database struct {
		Path string `json:"path"`
	} `json:"database"`

	ML struct {
		Type       string `json:"type"` // "google" or "openai"
		ConfigPath string `json:"config_path"`
	} `json:"ml"`

	Goals struct {
		Version string `json:"version"` // default calculator, "v1" or "v2"
	} `json:"goals"`
}

// GoalVersion returns the configured default calculator.
func (c *Config) GoalVersion() goals.Version {
	v, err := goals.ParseVersion(c.Goals.Version)
	if err != nil {
		return goals.V1
	}
	return v
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("server port is not set in config file")
	}
	if config.Server.StaticDir == "" {
		config.Server.StaticDir = "./static"
	}
	if config.Database.Path == "" {
		config.Database.Path = "nutritrack.db"
	}
	if config.ML.Type == "" {
		config.ML.Type = "google"
	}
	if _, err := goals.ParseVersion(config.Goals.Version); err != nil {
		return nil, fmt.Errorf("invalid goals version: %w", err)
	}
	if config.Goals.Version == "" {
		config.Goals.Version = string(goals.V1)
	}

	return &config, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	if path := os.Getenv("NUTRITIONAL_CONFIG"); path != "" {
		return path
	}

	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	return "config.json"
}

// LoadEnv loads .env files into the environment. A missing file is not an
// error since deployments usually set the environment directly.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("Warning: failed to load .env file: %v", err)
	}
}
