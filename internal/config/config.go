package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	ServerPort string

	// JWTSecret enables bearer-token auth on the API when non-empty.
	JWTSecret   string
	JWTExpiry   time.Duration
	RedisURL    string
	BoardTTL    time.Duration
	LogLevel    string
	LogFormat   string
	ShutdownTTL time.Duration
}

var defaults = map[string]interface{}{
	"DB_HOST":          "localhost",
	"DB_PORT":          "5431",
	"DB_USER":          "kanban_user",
	"DB_PASSWORD":      "kanban_pass",
	"DB_NAME":          "kanban_db",
	"DB_SSLMODE":       "disable",
	"SERVER_PORT":      "8080",
	"JWT_SECRET":       "",
	"JWT_EXPIRY_HOURS": 24,
	"REDIS_URL":        "",
	"BOARD_CACHE_TTL":  "5m",
	"LOG_LEVEL":        "info",
	"LOG_FORMAT":       "json",
	"SHUTDOWN_TIMEOUT": "5s",
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds the config from environment variables only.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBUser:      v.GetString("DB_USER"),
		DBPassword:  v.GetString("DB_PASSWORD"),
		DBName:      v.GetString("DB_NAME"),
		DBSSLMode:   v.GetString("DB_SSLMODE"),
		ServerPort:  v.GetString("SERVER_PORT"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTExpiry:   time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		RedisURL:    v.GetString("REDIS_URL"),
		BoardTTL:    v.GetDuration("BOARD_CACHE_TTL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		ShutdownTTL: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT must be set")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be a positive number of hours")
	}
	if c.BoardTTL < 0 {
		return fmt.Errorf("BOARD_CACHE_TTL must not be negative")
	}
	if c.ShutdownTTL <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns the Postgres connection string in URL form, accepted by both
// the gorm postgres driver and golang-migrate's pgx5 driver.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}
