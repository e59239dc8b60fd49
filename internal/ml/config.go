package ml

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// BaseConfig provides common configuration functionality
type BaseConfig struct {
	ConfigPath string `json:"-"`
}

// LoadConfig fills config from configPath, then config/<name>.json. Fields
// still empty afterwards are left for the caller's environment fallback.
func (c *BaseConfig) LoadConfig(configPath string, name string, config interface{}) error {
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read %s config: %w", name, err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("parse %s config %s: %w", name, configPath, err)
		}
		log.Printf("Loaded configuration from file: %s", configPath)
		return nil
	}

	defaultPath := filepath.Join("config", fmt.Sprintf("%s.json", name))
	if data, err := os.ReadFile(defaultPath); err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("parse %s config %s: %w", name, defaultPath, err)
		}
		log.Printf("Loaded configuration from default file: %s", defaultPath)
		return nil
	}

	log.Printf("Using environment variables for %s configuration", name)
	return nil
}

func envDefault(v *string, key, def string) {
	if *v != "" {
		return
	}
	if env := os.Getenv(key); env != "" {
		*v = env
		return
	}
	*v = def
}
