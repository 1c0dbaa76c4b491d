package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Console  ConsoleConfig  `yaml:"console"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                     string `yaml:"host"`
	Port                     int    `yaml:"port"`
	ShipmentUpdatedTopicName string `yaml:"shipment_updated_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ConsoleConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`
	BackendBaseURL     string `yaml:"backend_base_url"`
	// "http" (default) or "fake" for the in-memory demo backend.
	BackendMode           string `yaml:"backend_mode"`
	BackendTimeoutSeconds int    `yaml:"backend_timeout_seconds"`

	PageSize             int `yaml:"page_size"`
	DebounceMillis       int `yaml:"debounce_millis"`
	DashboardPollSeconds int `yaml:"dashboard_poll_seconds"`
	// 0 means the shipment list is only refetched on a shipment:updated signal.
	ShipmentsPollSeconds int `yaml:"shipments_poll_seconds"`
	ReferenceTTLSeconds  int `yaml:"reference_ttl_seconds"`
	PickupLeadMinutes    int `yaml:"pickup_lead_minutes"`

	FeeDivisor     int64  `yaml:"fee_divisor"`
	CurrencySymbol string `yaml:"currency_symbol"`

	LoginRateLimitPerMinute int `yaml:"login_rate_limit_per_minute"`
}

// Settings is ConsoleConfig with defaults applied.
type Settings struct {
	HTTPAddr           string
	KafkaConsumerGroup string
	Topic              string
	BackendBaseURL     string
	BackendMode        string
	BackendTimeout     time.Duration
	PageSize           int
	Debounce           time.Duration
	DashboardPoll      time.Duration
	ShipmentsPoll      time.Duration
	ReferenceTTL       time.Duration
	PickupLead         time.Duration
	FeeDivisor         int64
	CurrencySymbol     string
	LoginRateLimit     int64
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}

func (c *Config) PostgresConnString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.Username, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.DBName, sslMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c *Config) KafkaBrokers() []string {
	return []string{fmt.Sprintf("%s:%d", c.Kafka.Host, c.Kafka.Port)}
}

func (c *Config) ConsoleSettings() Settings {
	cc := c.Console
	s := Settings{
		HTTPAddr:           cc.HTTPAddr,
		KafkaConsumerGroup: cc.KafkaConsumerGroup,
		Topic:              c.Kafka.ShipmentUpdatedTopicName,
		BackendBaseURL:     cc.BackendBaseURL,
		BackendMode:        cc.BackendMode,
		BackendTimeout:     time.Duration(cc.BackendTimeoutSeconds) * time.Second,
		PageSize:           cc.PageSize,
		Debounce:           time.Duration(cc.DebounceMillis) * time.Millisecond,
		DashboardPoll:      time.Duration(cc.DashboardPollSeconds) * time.Second,
		ShipmentsPoll:      time.Duration(cc.ShipmentsPollSeconds) * time.Second,
		ReferenceTTL:       time.Duration(cc.ReferenceTTLSeconds) * time.Second,
		PickupLead:         time.Duration(cc.PickupLeadMinutes) * time.Minute,
		FeeDivisor:         cc.FeeDivisor,
		CurrencySymbol:     cc.CurrencySymbol,
		LoginRateLimit:     int64(cc.LoginRateLimitPerMinute),
	}
	if s.HTTPAddr == "" {
		s.HTTPAddr = ":8080"
	}
	if s.KafkaConsumerGroup == "" {
		s.KafkaConsumerGroup = "console-api"
	}
	if s.Topic == "" {
		s.Topic = "shipment.updated"
	}
	if s.BackendBaseURL == "" {
		s.BackendBaseURL = "http://localhost:3000"
	}
	if s.BackendMode == "" {
		s.BackendMode = "http"
	}
	if s.BackendTimeout <= 0 {
		s.BackendTimeout = 10 * time.Second
	}
	if s.PageSize <= 0 {
		s.PageSize = 10
	}
	if s.Debounce <= 0 {
		s.Debounce = 500 * time.Millisecond
	}
	if s.DashboardPoll <= 0 {
		s.DashboardPoll = 30 * time.Second
	}
	if s.ShipmentsPoll < 0 {
		s.ShipmentsPoll = 0
	}
	if s.ReferenceTTL <= 0 {
		s.ReferenceTTL = 10 * time.Minute
	}
	if s.PickupLead <= 0 {
		s.PickupLead = 30 * time.Minute
	}
	if s.FeeDivisor <= 0 {
		s.FeeDivisor = 25000
	}
	if s.CurrencySymbol == "" {
		s.CurrencySymbol = "$"
	}
	if s.LoginRateLimit <= 0 {
		s.LoginRateLimit = 10
	}
	return s
}
