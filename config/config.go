package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	AppEnv             string
	HTTPPort           string
	GRPCPort           string
	GRPCWorkerPoolSize int
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host             string
	Port             string
	User             string
	Password         string
	DBName           string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  int
	ConnMaxIdleTime  int
	StatementTimeout int
}

// RedisConfig backs both the post-commit pub/sub sink and the optional
// advisory lock. Addr == "" disables both, falling back to the log sink
// and row-lock-only concurrency.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig backs the optional inbound order-event listener. Empty
// Brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type MetricsConfig struct {
	Port string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:             getEnv("APP_ENV", "dev"),
			HTTPPort:           getEnv("HTTP_PORT", ":8080"),
			GRPCPort:           getEnv("GRPC_PORT", ":8082"),
			GRPCWorkerPoolSize: getEnvInt("GRPC_WORKER_POOL_SIZE", 200),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOG_LEVEL", "debug"),
			Encoding:          getEnv("LOG_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:             getEnv("POSTGRES_HOST", "localhost"),
			Port:             getEnv("POSTGRES_PORT", "5432"),
			User:             getEnv("POSTGRES_USER", "inventory"),
			Password:         getEnv("POSTGRES_PASSWORD", "inventory"),
			DBName:           getEnv("POSTGRES_DB", "inventory"),
			SSLMode:          getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:     getEnvInt("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     getEnvInt("POSTGRES_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:  getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime:  getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			StatementTimeout: getEnvInt("POSTGRES_STATEMENT_TIMEOUT_MS", 5000),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_ORDER_TOPIC", "orders.events"),
			GroupID: getEnv("KAFKA_GROUP_INVENTORY", "inventory"),
		},
		Metrics: MetricsConfig{
			Port: getEnv("METRICS_PORT", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
