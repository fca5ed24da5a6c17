package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	ID           string   `toml:"id"`
	Transport    string   `toml:"transport"`
	BridgeAddr   string   `toml:"bridge_addr"`
	StorePath    string   `toml:"store_path"`
	GPIODriver   string   `toml:"gpio_driver"`
	StatusAddr   string   `toml:"status_addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	IdleInterval string   `toml:"idle_interval"`
}

type appConfig struct {
	ID           string
	Transport    string // "tcp" or "sim"
	BridgeAddr   string
	StorePath    string
	GPIODriver   string // "rpio" or "sim"
	StatusAddr   string
	CorsOrigins  []string
	IdleInterval time.Duration
}

func defaultConfig() appConfig {
	return appConfig{
		ID:           "lnio.local",
		Transport:    "tcp",
		BridgeAddr:   "127.0.0.1:1234",
		StorePath:    "lnio-sv.bin",
		GPIODriver:   "rpio",
		StatusAddr:   ":9200",
		IdleInterval: time.Millisecond,
	}
}

func loadConfig(path string) (appConfig, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("id") {
		if id := strings.TrimSpace(raw.ID); id != "" {
			cfg.ID = id
		}
	}
	if meta.IsDefined("transport") {
		cfg.Transport = strings.ToLower(strings.TrimSpace(raw.Transport))
	}
	if meta.IsDefined("bridge_addr") {
		cfg.BridgeAddr = strings.TrimSpace(raw.BridgeAddr)
	}
	if meta.IsDefined("store_path") {
		cfg.StorePath = strings.TrimSpace(raw.StorePath)
	}
	if meta.IsDefined("gpio_driver") {
		cfg.GPIODriver = strings.ToLower(strings.TrimSpace(raw.GPIODriver))
	}
	if meta.IsDefined("status_addr") {
		cfg.StatusAddr = strings.TrimSpace(raw.StatusAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("idle_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.IdleInterval))
		if err != nil {
			return appConfig{}, fmt.Errorf("parse idle_interval: %w", err)
		}
		cfg.IdleInterval = d
	}

	if err := validateConfig(cfg); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func validateConfig(cfg appConfig) error {
	switch cfg.Transport {
	case "tcp":
		if cfg.BridgeAddr == "" {
			return fmt.Errorf("transport tcp needs bridge_addr")
		}
	case "sim":
	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}
	switch cfg.GPIODriver {
	case "rpio", "sim":
	default:
		return fmt.Errorf("unknown gpio_driver %q", cfg.GPIODriver)
	}
	if cfg.StorePath == "" {
		return fmt.Errorf("store_path must not be empty")
	}
	if cfg.IdleInterval <= 0 {
		return fmt.Errorf("idle_interval must be positive")
	}
	return nil
}
