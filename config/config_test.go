package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  shipment_updated_topic_name: "shipment.updated"
redis:
  host: "localhost"
  port: 6379
console:
  http_addr: ":8081"
  backend_base_url: "http://backend:3000"
  page_size: 25
  fee_divisor: 100
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "shipment.updated", cfg.Kafka.ShipmentUpdatedTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, ":8081", cfg.Console.HTTPAddr)
	require.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.PostgresConnString())
	require.Equal(t, "localhost:6379", cfg.RedisAddr())
	require.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConsoleSettings_Defaults(t *testing.T) {
	s := (&Config{}).ConsoleSettings()
	require.Equal(t, ":8080", s.HTTPAddr)
	require.Equal(t, "shipment.updated", s.Topic)
	require.Equal(t, 10, s.PageSize)
	require.Equal(t, 500*time.Millisecond, s.Debounce)
	require.Equal(t, 30*time.Second, s.DashboardPoll)
	require.Equal(t, time.Duration(0), s.ShipmentsPoll)
	require.Equal(t, 30*time.Minute, s.PickupLead)
	require.Equal(t, int64(25000), s.FeeDivisor)
	require.Equal(t, "$", s.CurrencySymbol)
	require.Equal(t, "http", s.BackendMode)
}

func TestConsoleSettings_Overrides(t *testing.T) {
	cfg := &Config{Console: ConsoleConfig{PageSize: 50, DebounceMillis: 200, FeeDivisor: 100, ShipmentsPollSeconds: 60}}
	s := cfg.ConsoleSettings()
	require.Equal(t, 50, s.PageSize)
	require.Equal(t, 200*time.Millisecond, s.Debounce)
	require.Equal(t, int64(100), s.FeeDivisor)
	require.Equal(t, time.Minute, s.ShipmentsPoll)
}
