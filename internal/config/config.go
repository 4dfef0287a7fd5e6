// Package config loads the engine settings from an optional yaml file, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"

	DefaultKafkaTopic = "transaction_processed"
)

type Config struct {
	LogLevel    string      `yaml:"log_level"`
	Store       StoreConfig `yaml:"store"`
	Kafka       KafkaConfig `yaml:"kafka"`
	MetricsFile string      `yaml:"metrics_file"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store:    StoreConfig{Driver: DriverMemory},
		Kafka:    KafkaConfig{Topic: DefaultKafkaTopic},
	}
}

// Load builds the configuration. path may be empty; a missing .env is ignored.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	cfg.LogLevel = getenvDefault("TREN_LOG_LEVEL", cfg.LogLevel)
	cfg.Store.Driver = getenvDefault("TREN_STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.DatabaseURL = getenvDefault("TREN_DATABASE_URL", cfg.Store.DatabaseURL)
	cfg.Kafka.Topic = getenvDefault("TREN_KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.MetricsFile = getenvDefault("TREN_METRICS_FILE", cfg.MetricsFile)
	if brokers := os.Getenv("TREN_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres, DriverPgx:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store driver %q requires a database url", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
