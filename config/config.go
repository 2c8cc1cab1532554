package config

import (
	"os"

	postgres_wrapper "github.com/tdhoang/quotebook/pkg/infra/postgres"
	redis_wrapper "github.com/tdhoang/quotebook/pkg/infra/redis"
	"github.com/tdhoang/quotebook/pkg/logging"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type BookConfig struct {
	// Capacity is the per-side live order limit of each book.
	Capacity int `yaml:"capacity"`
	// TickSize is the decimal price increment; gateway prices are
	// divided by it to get integer ticks.
	TickSize string `yaml:"tick_size"`
}

type DisplayConfig struct {
	Verbose bool `yaml:"verbose"`
}

type NatsConfig struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
	Durable string `yaml:"durable"`
}

type FixConfig struct {
	ConfigFilepath string `yaml:"config_filepath"`
}

type QuoteStreamConfig struct {
	Channel string `yaml:"channel"`
}

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	Log         *logging.Config                  `yaml:"log"`
	Book        *BookConfig                      `yaml:"book"`
	Display     *DisplayConfig                   `yaml:"display"`
	QuoteStream *QuoteStreamConfig               `yaml:"quote_stream"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	JournalDB   *postgres_wrapper.PostgresConfig `yaml:"journal_db"`
	Nats        *NatsConfig                      `yaml:"nats"`
	Fix         *FixConfig                       `yaml:"fix"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
