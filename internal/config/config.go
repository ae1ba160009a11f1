package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           string
	Env            string
	RequestTimeout time.Duration

	Mongo MongoConfig
	Cache CacheConfig
	Redis RedisConfig

	AllowedOrigins []string
}

// MongoConfig parámetros de conexión a MongoDB
type MongoConfig struct {
	URI      string
	Database string
}

// CacheConfig define el backend de caché y el TTL por defecto
type CacheConfig struct {
	Driver string // memory | redis
	TTL    time.Duration
}

// RedisConfig parámetros de conexión a Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Load lee la configuración desde variables de entorno.
// Solo carga .env en desarrollo local; en producción se usan las variables del sistema.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg("⚠️ error loading .env file")
		} else {
			log.Info().Msg("✅ .env file loaded successfully")
		}
	} else {
		log.Info().Msg("🌐 using system environment variables")
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DB", "storefront"),
		},
		Cache: CacheConfig{
			Driver: strings.ToLower(getEnv("CACHE_DRIVER", CacheDriverMemory)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.Cache.TTL, err = parseDurationEnv("CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", "5s"); err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI must be set")
	}
	switch cfg.Cache.Driver {
	case CacheDriverMemory, CacheDriverRedis:
	default:
		return nil, fmt.Errorf("invalid CACHE_DRIVER %q: expected memory or redis", cfg.Cache.Driver)
	}

	return cfg, nil
}

// IsProduction indica si el servicio corre en producción
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

// parseDurationEnv lee una variable de entorno como time.Duration
func parseDurationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
