package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "github.com/rekk2/event-registration/common/config"
)

// Config event-registration settings, read from the environment.
type Config struct {
	HTTP struct {
		Addr      string
		StaticDir string
	}
	DBEnabled bool
	DBMigrate bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	Log struct {
		Level  string
		Format string
	}

	Session struct {
		CookieName   string
		TTL          time.Duration
		CookieSecure bool
	}
	Seed struct {
		MainAdminUsername string
		MainAdminPassword string
	}

	Register struct {
		RequireKnownDoor bool
	}
	Search struct {
		AllEventsIncludeActive bool
	}
	Export struct {
		Timezone string
	}

	Broadcast BroadcastConfig
	MQTT      MQTTConfig
}

// BroadcastConfig live channel and external sinks. Empty stream/URL disables that sink.
type BroadcastConfig struct {
	Buffer         int
	QueueSize      int
	SinkTimeout    time.Duration
	RedisStream    string
	RedisStreamMax int64
	WebhookURL     string
	WebhookTimeout time.Duration
	WebhookRetries int
}

// MQTTConfig MQTT sink, disabled by default.
type MQTTConfig struct {
	Enabled     bool
	Broker      commoncfg.MQTTConfig
	TopicPrefix string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3000")
	cfg.HTTP.StaticDir = getEnv("STATIC_DIR", "")

	// Without a database the in-memory store is used; data lives only as long as the process.
	cfg.DBEnabled = parseBool(getEnv("DB_ENABLED", "true"), true)
	cfg.DBMigrate = parseBool(getEnv("DB_MIGRATE", "true"), true)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "event_registration")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.RedisEnabled = parseBool(getEnv("REDIS_ENABLED", "false"), false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", "event_session")
	cfg.Session.TTL = parseDuration(getEnv("SESSION_TTL", "12h"), 12*time.Hour)
	cfg.Session.CookieSecure = parseBool(getEnv("COOKIE_SECURE", "false"), false)
	cfg.Seed.MainAdminUsername = getEnv("SEED_MAIN_ADMIN_USERNAME", "")
	cfg.Seed.MainAdminPassword = getEnv("SEED_MAIN_ADMIN_PASSWORD", "")

	cfg.Register.RequireKnownDoor = parseBool(getEnv("REGISTER_REQUIRE_KNOWN_DOOR", "true"), true)
	cfg.Search.AllEventsIncludeActive = parseBool(getEnv("SEARCH_ALL_EVENTS_INCLUDE_ACTIVE", "false"), false)
	cfg.Export.Timezone = getEnv("EXPORT_TIMEZONE", "Local")

	cfg.Broadcast.Buffer = parseInt(getEnv("BROADCAST_BUFFER", "32"), 32)
	cfg.Broadcast.QueueSize = parseInt(getEnv("BROADCAST_QUEUE_SIZE", "256"), 256)
	cfg.Broadcast.SinkTimeout = parseDuration(getEnv("BROADCAST_SINK_TIMEOUT", "10s"), 10*time.Second)
	cfg.Broadcast.RedisStream = getEnv("BROADCAST_REDIS_STREAM", "")
	cfg.Broadcast.RedisStreamMax = int64(parseInt(getEnv("BROADCAST_REDIS_STREAM_MAXLEN", "10000"), 10000))
	cfg.Broadcast.WebhookURL = getEnv("BROADCAST_WEBHOOK_URL", "")
	cfg.Broadcast.WebhookTimeout = parseDuration(getEnv("BROADCAST_WEBHOOK_TIMEOUT", "5s"), 5*time.Second)
	cfg.Broadcast.WebhookRetries = parseInt(getEnv("BROADCAST_WEBHOOK_RETRIES", "2"), 2)

	cfg.MQTT.Enabled = parseBool(getEnv("MQTT_ENABLED", "false"), false)
	cfg.MQTT.Broker.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.Broker.ClientID = getEnv("MQTT_CLIENT_ID", "event-registration")
	cfg.MQTT.Broker.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Broker.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Broker.QoS = byte(parseInt(getEnv("MQTT_QOS", "0"), 0))
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "event-registration")

	return cfg
}

// ExportLocation resolves Export.Timezone, falling back to time.Local.
func (c *Config) ExportLocation() *time.Location {
	if c.Export.Timezone == "" || strings.EqualFold(c.Export.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
