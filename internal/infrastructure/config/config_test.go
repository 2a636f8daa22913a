package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"WAREHOUSE_APP_NAME":                os.Getenv("WAREHOUSE_APP_NAME"),
		"WAREHOUSE_APP_ENV":                 os.Getenv("WAREHOUSE_APP_ENV"),
		"WAREHOUSE_DATABASE_DRIVER":         os.Getenv("WAREHOUSE_DATABASE_DRIVER"),
		"WAREHOUSE_DATABASE_PATH":           os.Getenv("WAREHOUSE_DATABASE_PATH"),
		"WAREHOUSE_DATABASE_HOST":           os.Getenv("WAREHOUSE_DATABASE_HOST"),
		"WAREHOUSE_DATABASE_PASSWORD":       os.Getenv("WAREHOUSE_DATABASE_PASSWORD"),
		"WAREHOUSE_DATABASE_SSLMODE":        os.Getenv("WAREHOUSE_DATABASE_SSLMODE"),
		"WAREHOUSE_DATABASE_MAX_OPEN_CONNS": os.Getenv("WAREHOUSE_DATABASE_MAX_OPEN_CONNS"),
		"WAREHOUSE_DATABASE_MAX_IDLE_CONNS": os.Getenv("WAREHOUSE_DATABASE_MAX_IDLE_CONNS"),
		"WAREHOUSE_PIPELINE_STAGING_DIR":    os.Getenv("WAREHOUSE_PIPELINE_STAGING_DIR"),
		"WAREHOUSE_PIPELINE_RUN_DATE":       os.Getenv("WAREHOUSE_PIPELINE_RUN_DATE"),
		"WAREHOUSE_PIPELINE_ANON_SEED":      os.Getenv("WAREHOUSE_PIPELINE_ANON_SEED"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "marketplace-warehouse", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "warehouse.db", cfg.Database.Path)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, 2, cfg.Database.MaxIdleConns)
		assert.Equal(t, "staging", cfg.Pipeline.StagingDir)
		assert.Equal(t, "output", cfg.Pipeline.OutputDir)
		assert.Equal(t, "mappings.toml", cfg.Pipeline.MappingFile)
		assert.NotEmpty(t, cfg.Pipeline.RunDate)
		assert.NotZero(t, cfg.Pipeline.AnonSeed)
	})

	t.Run("loads values from environment variables with WAREHOUSE prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_APP_NAME", "test-warehouse")
		os.Setenv("WAREHOUSE_DATABASE_DRIVER", "postgres")
		os.Setenv("WAREHOUSE_DATABASE_HOST", "testdb.local")
		os.Setenv("WAREHOUSE_DATABASE_PASSWORD", "testpass")
		os.Setenv("WAREHOUSE_PIPELINE_STAGING_DIR", "/data/staging")
		os.Setenv("WAREHOUSE_PIPELINE_RUN_DATE", "2025-06-01")
		os.Setenv("WAREHOUSE_PIPELINE_ANON_SEED", "42")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-warehouse", cfg.App.Name)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "/data/staging", cfg.Pipeline.StagingDir)
		assert.Equal(t, "2025-06-01", cfg.Pipeline.RunDate)
		assert.Equal(t, int64(42), cfg.Pipeline.AnonSeed)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects malformed run date", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_PIPELINE_RUN_DATE", "01/06/2025")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run_date")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("WAREHOUSE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"WAREHOUSE_APP_ENV":           os.Getenv("WAREHOUSE_APP_ENV"),
		"WAREHOUSE_DATABASE_DRIVER":   os.Getenv("WAREHOUSE_DATABASE_DRIVER"),
		"WAREHOUSE_DATABASE_PASSWORD": os.Getenv("WAREHOUSE_DATABASE_PASSWORD"),
		"WAREHOUSE_DATABASE_SSLMODE":  os.Getenv("WAREHOUSE_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password for production postgres", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_APP_ENV", "production")
		os.Setenv("WAREHOUSE_DATABASE_DRIVER", "postgres")
		os.Setenv("WAREHOUSE_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL for production postgres", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_APP_ENV", "production")
		os.Setenv("WAREHOUSE_DATABASE_DRIVER", "postgres")
		os.Setenv("WAREHOUSE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("WAREHOUSE_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("sqlite in production needs no credentials", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_APP_ENV", "production")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
	})

	t.Run("passes validation with valid production postgres config", func(t *testing.T) {
		clearEnv()
		os.Setenv("WAREHOUSE_APP_ENV", "production")
		os.Setenv("WAREHOUSE_DATABASE_DRIVER", "postgres")
		os.Setenv("WAREHOUSE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("WAREHOUSE_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestPipelineConfig_RunDay(t *testing.T) {
	p := PipelineConfig{RunDate: "2025-06-01"}
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), p.RunDay())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
