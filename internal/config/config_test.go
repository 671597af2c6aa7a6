package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "SERVER_ADDR", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
		"DB_CONN_MAX_LIFETIME", "MIGRATIONS", "DB_SEED", "DB_DEBUG", "GIN_MODE", "REORDER_QUANTITY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://bookstore@localhost:5432/bookstore?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ServerAddr)
	require.Equal(t, 20, cfg.MaxOpenConns)
	require.Equal(t, 10, cfg.MaxIdleConns)
	require.Equal(t, time.Hour, cfg.ConnMaxLifetime)
	require.Equal(t, MigrateSQL, cfg.Migrations)
	require.False(t, cfg.Seed)
	require.False(t, cfg.DBDebug)
	require.Equal(t, 50, cfg.ReorderQuantity)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/bookstore")
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "5")
	t.Setenv("DB_MAX_IDLE_CONNS", "not-a-number")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("MIGRATIONS", "AUTO")
	t.Setenv("DB_SEED", "true")
	t.Setenv("REORDER_QUANTITY", "20")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ServerAddr)
	require.Equal(t, 5, cfg.MaxOpenConns)
	require.Equal(t, 10, cfg.MaxIdleConns)
	require.Equal(t, 90*time.Second, cfg.ConnMaxLifetime)
	require.Equal(t, MigrateAuto, cfg.Migrations)
	require.True(t, cfg.Seed)
	require.Equal(t, 20, cfg.ReorderQuantity)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing database url", map[string]string{}, "DATABASE_URL environment variable is required"},
		{"unknown migration mode", map[string]string{"DATABASE_URL": "postgres://x", "MIGRATIONS": "sometimes"}, "MIGRATIONS must be one of sql, auto, off"},
		{"zero reorder quantity", map[string]string{"DATABASE_URL": "postgres://x", "REORDER_QUANTITY": "0"}, "REORDER_QUANTITY must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.EqualError(t, err, tt.want)
		})
	}
}
