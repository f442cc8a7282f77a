package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppName      string
	Env          string
	Host         string
	Port         int
	DatabasePath string

	JWTSecret          string
	AccessTokenMinutes int

	CORSOrigins []string
	Debug       bool

	HistoryLimit        int
	WSWriteTimeout      time.Duration
	AchievementWorkers  int
	AchievementQueueLen int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppName:      getEnv("APP_NAME", "FitSocial Realtime API"),
		Env:          getEnv("APP_ENV", "development"),
		Host:         getEnv("HTTP_HOST", "0.0.0.0"),
		Port:         getEnvAsInt("HTTP_PORT", 8000),
		DatabasePath: getEnv("SQLITE_PATH", "fitsocial.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),

		Debug: getEnvAsBool("DEBUG", true),

		HistoryLimit:        getEnvAsInt("MESSAGE_HISTORY_LIMIT", 200),
		WSWriteTimeout:      time.Duration(getEnvAsInt("WS_WRITE_TIMEOUT_SECONDS", 10)) * time.Second,
		AchievementWorkers:  getEnvAsInt("ACHIEVEMENT_WORKERS", 2),
		AchievementQueueLen: getEnvAsInt("ACHIEVEMENT_QUEUE", 128),
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:8100", "http://localhost:4200"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
