package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Migration modes for MIGRATIONS.
const (
	MigrateSQL  = "sql"
	MigrateAuto = "auto"
	MigrateOff  = "off"
)

type Config struct {
	DatabaseURL     string
	ServerAddr      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrations      string
	Seed            bool
	DBDebug         bool
	GinMode         string
	ReorderQuantity int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] config: could not read .env: %v", err)
	}

	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		Migrations:      strings.ToLower(getEnv("MIGRATIONS", MigrateSQL)),
		Seed:            getBool("DB_SEED", false),
		DBDebug:         getBool("DB_DEBUG", false),
		GinMode:         os.Getenv("GIN_MODE"),
		ReorderQuantity: getInt("REORDER_QUANTITY", 50),
	}
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL environment variable is required")
	}
	switch cfg.Migrations {
	case MigrateSQL, MigrateAuto, MigrateOff:
	default:
		return cfg, errors.New("MIGRATIONS must be one of sql, auto, off")
	}
	if cfg.ReorderQuantity <= 0 {
		return cfg, errors.New("REORDER_QUANTITY must be positive")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("[WARN] config: invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("[WARN] config: invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("[WARN] config: invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}
