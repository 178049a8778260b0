package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/internal/repository"
)

type Config struct {
	HTTPPort        string
	LogLevel        string
	DBDriver        string
	DBCredentials   repository.Credentials
	DBPath          string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	driver := getEnv("DB_DRIVER", repository.DriverPostgres)
	if driver != repository.DriverPostgres && driver != repository.DriverSQLite {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want %s or %s", driver, repository.DriverPostgres, repository.DriverSQLite)
	}

	// migrations live in one directory per driver
	migrationsPath := getEnv("MIGRATIONS_PATH", "./internal/repository/migrations")

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBDriver: driver,
		DBCredentials: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "bookstore"),
			MigrationsDirPath: migrationsPath + "/" + driver,
		},
		DBPath:          getEnv("DB_PATH", "bookstore.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: 10 * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
