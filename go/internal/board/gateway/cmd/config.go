package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/bidboard/go/internal/board/gateway"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Marketplace struct {
		APIURL  string        `yaml:"api_url"`
		Token   string        `yaml:"token"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"marketplace"`
	Gateway gateway.Config `yaml:"gateway"`
}

func defaultConfig() *Config {
	cfg := &Config{Gateway: gateway.DefaultConfig()}
	cfg.Server.Port = "8081"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Marketplace.APIURL = "http://localhost:8080"
	cfg.Marketplace.Timeout = 15 * time.Second
	return cfg
}

// loadConfig layers the YAML file at path (if present) and then the
// environment over the defaults.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Server.Port = getEnv("GATEWAY_PORT", config.Server.Port)
	config.Marketplace.APIURL = getEnv("MARKETPLACE_API_URL", config.Marketplace.APIURL)
	config.Marketplace.Token = getEnv("MARKETPLACE_API_TOKEN", config.Marketplace.Token)
	config.Gateway.JetStreamConfig.URL = getEnv("NATS_URL", config.Gateway.JetStreamConfig.URL)
	config.Gateway.JetStreamConfig.MaxDeliver = getEnvAsInt("NATS_MAX_DELIVER", config.Gateway.JetStreamConfig.MaxDeliver)

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
