package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "payflow/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	OutboxDB  sharedConfig.DatabaseConfig  `mapstructure:"outbox_db"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Broker    sharedConfig.BrokerConfig    `mapstructure:"broker"`
	Provider  sharedConfig.ProviderConfig  `mapstructure:"provider"`
	Notifier  sharedConfig.NotifierConfig  `mapstructure:"notifier"`
	Publisher sharedConfig.PublisherConfig `mapstructure:"publisher"`
	Consumer  sharedConfig.ConsumerConfig  `mapstructure:"consumer"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("PAYFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional when everything comes from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The outbox store defaults to the payment store database.
	if config.OutboxDB.Database == "" {
		config.OutboxDB = config.Database
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "payflow_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Broker defaults
	viper.SetDefault("broker.brokers", []string{"localhost:9092"})
	viper.SetDefault("broker.topic", "payment.updated")
	viper.SetDefault("broker.dead_letter_topic", "payment.deadletter")
	viper.SetDefault("broker.consumer_group", "payflow-delivery")

	// Provider defaults
	viper.SetDefault("provider.base_url", "http://localhost:8100")
	viper.SetDefault("provider.timeout_seconds", 3)

	// Notifier defaults
	viper.SetDefault("notifier.callback_url", "http://localhost:8200/api/v1/payments/update")
	viper.SetDefault("notifier.timeout_seconds", 5)

	// Publisher defaults
	viper.SetDefault("publisher.poll_interval_seconds", 1)
	viper.SetDefault("publisher.batch_size", 50)
	viper.SetDefault("publisher.max_retries", 5)

	// Consumer defaults
	viper.SetDefault("consumer.max_in_flight", 20)
	viper.SetDefault("consumer.max_attempts", 5)
	viper.SetDefault("consumer.fail_limit", 5)
	viper.SetDefault("consumer.block_seconds", 1800)
	viper.SetDefault("consumer.rate_limit_per_min", 5)
	viper.SetDefault("consumer.dedup_ttl_seconds", 3600)
}
