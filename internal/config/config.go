package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultAdminSecret is the fallback host secret when none is configured.
const defaultAdminSecret = "stacks123"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Game struct {
		AdminSecret    string `yaml:"admin_secret"`
		QuestionWindow string `yaml:"question_window"`
		StartDelay     string `yaml:"start_delay"`
	} `yaml:"game"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Bank struct {
		TTL string `yaml:"ttl"`
	} `yaml:"bank"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// AdminSecret resolves the host secret: config value, then ADMIN_SECRET env,
// then the fixed fallback.
func (c Config) AdminSecret() string {
	if c.Game.AdminSecret != "" {
		return c.Game.AdminSecret
	}
	if s := os.Getenv("ADMIN_SECRET"); s != "" {
		return s
	}
	return defaultAdminSecret
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
