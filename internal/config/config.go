package config

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort           string
	DBDriver           string // postgres, pgx or sqlite
	DatabaseURL        string
	DBPoolSize         int
	RedisURL           string
	RedisPoolSize      int
	CacheTTL           int // seconds
	KafkaBrokers       []string
	KafkaTopic         string
	KafkaPartitions    int
	KafkaGroupID       string
	JWTSecret          string
	AutoProvisionUsers bool
	MetricsEnabled     bool
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from .env and the environment).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = Load(".env")
	})
	return cfg
}

// GetJWTSecret returns JWT secret from config (for middleware that only has context).
func GetJWTSecret(ctx context.Context) string {
	return Get().JWTSecret
}

// Load reads envFile if it exists, then lets environment variables override it.
func Load(envFile string) *Config {
	v := viper.New()
	setDefaults(v)
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		// A missing or unreadable .env file leaves only the environment.
		_ = v.ReadInConfig()
	}
	v.AutomaticEnv()

	return &Config{
		HTTPPort:           v.GetString("http_port"),
		DBDriver:           v.GetString("db_driver"),
		DatabaseURL:        v.GetString("database_url"),
		DBPoolSize:         v.GetInt("db_pool_size"),
		RedisURL:           v.GetString("redis_url"),
		RedisPoolSize:      v.GetInt("redis_pool_size"),
		CacheTTL:           v.GetInt("cache_ttl_sec"),
		KafkaBrokers:       splitList(v.GetString("kafka_brokers")),
		KafkaTopic:         v.GetString("kafka_item_topic"),
		KafkaPartitions:    v.GetInt("kafka_partitions"),
		KafkaGroupID:       v.GetString("kafka_group_id"),
		JWTSecret:          v.GetString("jwt_secret"),
		AutoProvisionUsers: v.GetBool("auto_provision_users"),
		MetricsEnabled:     v.GetBool("metrics_enabled"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", "8080")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("database_url", "")
	v.SetDefault("db_pool_size", 20)
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_pool_size", 50)
	v.SetDefault("cache_ttl_sec", 300)
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_item_topic", "item-events")
	v.SetDefault("kafka_partitions", 8)
	v.SetDefault("kafka_group_id", "planner-cache-invalidator")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("auto_provision_users", false)
	v.SetDefault("metrics_enabled", true)
}

// splitList turns "a, b,,c" into [a b c]; an empty value yields nil.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
