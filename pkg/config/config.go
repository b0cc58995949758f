// Файл: config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// RemoteConfig: удалённое хранилище OKR, с которым работает консоль.
type RemoteConfig struct {
	Provider string // okrstore | memory
	BaseURL  string
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type SessionConfig struct {
	TTL time.Duration
}

type Config struct {
	Server  ServerConfig
	Remote  RemoteConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Session SessionConfig
	LogFile string
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: .env файл не найден или не удалось его загрузить.")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Remote: RemoteConfig{
			Provider: getEnv("REMOTE_PROVIDER", "okrstore"),
			BaseURL:  strings.TrimRight(getEnv("REMOTE_BASE_URL", "http://localhost:8000"), "/"),
			Timeout:  getDuration("REMOTE_TIMEOUT", 20*time.Second),
		},
		Redis: RedisConfig{
			// Пустой адрес, сессии хранятся в памяти процесса
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET_KEY", "4F1C0E6B2D9A7E35C8B1F0A2D6E94B7C"),
			AccessTokenTTL: getDuration("JWT_ACCESS_TTL", time.Hour*12),
		},
		Session: SessionConfig{
			TTL: getDuration("SESSION_TTL", time.Hour*12),
		},
		LogFile: getEnv("LOG_FILE", "./logs/app.log"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Предупреждение: %s=%q не число, используется %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Предупреждение: %s=%q не длительность, используется %s", key, raw, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
