package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type BrokerConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	DeadLetterTopic string   `mapstructure:"dead_letter_topic"`
	ConsumerGroup   string   `mapstructure:"consumer_group"`
}

// ProviderConfig holds the outbound provider service settings.
type ProviderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// NotifierConfig holds the merchant callback settings.
type NotifierConfig struct {
	CallbackURL    string `mapstructure:"callback_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PublisherConfig controls the outbox publisher loop.
type PublisherConfig struct {
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
	BatchSize           int `mapstructure:"batch_size"`
	MaxRetries          int `mapstructure:"max_retries"`
}

// ConsumerConfig controls the delivery consumer policies.
type ConsumerConfig struct {
	MaxInFlight     int `mapstructure:"max_in_flight"`
	MaxAttempts     int `mapstructure:"max_attempts"`
	FailLimit       int `mapstructure:"fail_limit"`
	BlockSeconds    int `mapstructure:"block_seconds"`
	RateLimitPerMin int `mapstructure:"rate_limit_per_min"`
	DedupTTLSeconds int `mapstructure:"dedup_ttl_seconds"`
}
