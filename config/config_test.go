package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnvVars = []string{
	"MEALTRACK_SERVER_PORT",
	"MEALTRACK_SERVER_ENVIRONMENT",
	"MEALTRACK_SERVER_ALLOWED_ORIGINS",
	"MEALTRACK_USDA_API_KEY",
	"MEALTRACK_USDA_BASE_URL",
	"MEALTRACK_USDA_REQUESTS_PER_HOUR",
	"MEALTRACK_DATABASE_DRIVER",
	"MEALTRACK_DATABASE_DSN",
	"MEALTRACK_CACHE_TTL",
	"MEALTRACK_AUTH_JWT_SECRET",
	"MEALTRACK_AUTH_ALLOW_GUEST",
	"MEALTRACK_IMPORT_MAX_CANDIDATES",
	"MEALTRACK_IMPORT_DELAY",
	"MEALTRACK_LOG_LEVEL",
	"MEALTRACK_LOG_FORMAT",
}

const testSecret = "0123456789abcdef0123"

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, k := range configEnvVars {
			os.Unsetenv(k)
		}
	}

	// run from an empty directory so a developer's config.yaml is not picked up
	originalDir, _ := os.Getwd()
	defer os.Chdir(originalDir)
	os.Chdir(t.TempDir())

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALTRACK_USDA_API_KEY", "test-key")
		os.Setenv("MEALTRACK_AUTH_JWT_SECRET", testSecret)
		defer cleanupEnv()

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.USDA.BaseURL != "https://api.nal.usda.gov/fdc" {
			t.Errorf("USDA.BaseURL = %s, want https://api.nal.usda.gov/fdc", cfg.USDA.BaseURL)
		}
		if cfg.USDA.RequestsPerHour != 1000 {
			t.Errorf("USDA.RequestsPerHour = %d, want 1000", cfg.USDA.RequestsPerHour)
		}
		if cfg.Database.Driver != DriverSQLite {
			t.Errorf("Database.Driver = %s, want sqlite", cfg.Database.Driver)
		}
		if cfg.Cache.TTL != 5*time.Minute {
			t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
		}
		if !cfg.Auth.AllowGuest {
			t.Error("Auth.AllowGuest = false, want true")
		}
		if cfg.Import.MaxCandidates != 10 {
			t.Errorf("Import.MaxCandidates = %d, want 10", cfg.Import.MaxCandidates)
		}
		if cfg.Import.SearchPageSize != 15 {
			t.Errorf("Import.SearchPageSize = %d, want 15", cfg.Import.SearchPageSize)
		}
		if cfg.Import.Delay != 50*time.Millisecond {
			t.Errorf("Import.Delay = %v, want 50ms", cfg.Import.Delay)
		}
		if cfg.Import.BulkPerQuery != 8 {
			t.Errorf("Import.BulkPerQuery = %d, want 8", cfg.Import.BulkPerQuery)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
			t.Errorf("Log = %+v, want info/text", cfg.Log)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALTRACK_SERVER_PORT", "9090")
		os.Setenv("MEALTRACK_SERVER_ENVIRONMENT", "production")
		os.Setenv("MEALTRACK_USDA_API_KEY", "custom-api-key")
		os.Setenv("MEALTRACK_USDA_BASE_URL", "https://custom.api.com")
		os.Setenv("MEALTRACK_DATABASE_DRIVER", "postgres")
		os.Setenv("MEALTRACK_DATABASE_DSN", "host=localhost user=meal dbname=meal")
		os.Setenv("MEALTRACK_CACHE_TTL", "24h")
		os.Setenv("MEALTRACK_AUTH_JWT_SECRET", testSecret)
		os.Setenv("MEALTRACK_AUTH_ALLOW_GUEST", "false")
		os.Setenv("MEALTRACK_IMPORT_MAX_CANDIDATES", "5")
		os.Setenv("MEALTRACK_IMPORT_DELAY", "200ms")
		os.Setenv("MEALTRACK_LOG_FORMAT", "json")
		defer cleanupEnv()

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.USDA.APIKey != "custom-api-key" {
			t.Errorf("USDA.APIKey = %s, want custom-api-key", cfg.USDA.APIKey)
		}
		if cfg.USDA.BaseURL != "https://custom.api.com" {
			t.Errorf("USDA.BaseURL = %s, want https://custom.api.com", cfg.USDA.BaseURL)
		}
		if cfg.Database.Driver != DriverPostgres {
			t.Errorf("Database.Driver = %s, want postgres", cfg.Database.Driver)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Auth.AllowGuest {
			t.Error("Auth.AllowGuest = true, want false")
		}
		if cfg.Import.MaxCandidates != 5 {
			t.Errorf("Import.MaxCandidates = %d, want 5", cfg.Import.MaxCandidates)
		}
		if cfg.Import.Delay != 200*time.Millisecond {
			t.Errorf("Import.Delay = %v, want 200ms", cfg.Import.Delay)
		}
		if cfg.Log.Format != "json" {
			t.Errorf("Log.Format = %s, want json", cfg.Log.Format)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALTRACK_AUTH_JWT_SECRET", testSecret)
		defer cleanupEnv()

		_, err := Load("")
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing API key")
		}
		if err.Error() != "invalid configuration: USDA API key is required (set MEALTRACK_USDA_API_KEY)" {
			t.Errorf("Load() error = %v, want 'USDA API key is required'", err)
		}
	})

	t.Run("fails validation when JWT secret is missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALTRACK_USDA_API_KEY", "test-key")
		defer cleanupEnv()

		_, err := Load("")
		if err == nil || !strings.Contains(err.Error(), "JWT secret is required") {
			t.Errorf("Load() error = %v, want JWT secret error", err)
		}
	})

	t.Run("fails validation for unknown database driver", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALTRACK_USDA_API_KEY", "test-key")
		os.Setenv("MEALTRACK_AUTH_JWT_SECRET", testSecret)
		os.Setenv("MEALTRACK_DATABASE_DRIVER", "mysql")
		defer cleanupEnv()

		_, err := Load("")
		if err == nil {
			t.Error("Load() error = nil, want error for invalid driver")
		}
	})

	t.Run("reads an explicit config file", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEALTRACK_SERVER_PORT", "7070")
		defer cleanupEnv()

		path := filepath.Join(t.TempDir(), "mealtrack.yaml")
		content := `
server:
  port: "6060"
  allowed_origins: ["https://app.example.com", "chrome-extension://*"]
usda:
  api_key: file-key
auth:
  jwt_secret: ` + testSecret + `
import:
  max_candidates: 3
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070 (env overrides file)", cfg.Server.Port)
		}
		if cfg.USDA.APIKey != "file-key" {
			t.Errorf("USDA.APIKey = %s, want file-key", cfg.USDA.APIKey)
		}
		if len(cfg.Server.AllowedOrigins) != 2 {
			t.Errorf("Server.AllowedOrigins = %v, want 2 entries", cfg.Server.AllowedOrigins)
		}
		if cfg.Import.MaxCandidates != 3 {
			t.Errorf("Import.MaxCandidates = %d, want 3", cfg.Import.MaxCandidates)
		}
	})

	t.Run("fails when explicit config file is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Error("Load() error = nil, want error for missing explicit file")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		if err := LoadEnvFile(); err != nil {
			t.Errorf("LoadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2
# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_COMMENTED")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
		}()

		if err := LoadEnvFile(); err != nil {
			t.Fatalf("LoadEnvFile() error = %v, want nil", err)
		}
		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		if err := LoadEnvFile(); err != nil {
			t.Fatalf("LoadEnvFile() error = %v, want nil", err)
		}
		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080", Environment: "test"},
		USDA:     USDAConfig{APIKey: "test-key", BaseURL: "https://api.nal.usda.gov/fdc", RequestsPerHour: 1000, Timeout: 10 * time.Second},
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "test.db"},
		Cache:    CacheConfig{TTL: time.Minute, CleanupInterval: time.Minute},
		Auth:     AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour},
		Import: ImportConfig{
			MaxCandidates: 10, SearchPageSize: 15, SearchLimit: 50,
			Delay: 50 * time.Millisecond, CandidateTimeout: 15 * time.Second, BulkPerQuery: 8,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero delay is allowed", func(c *Config) { c.Import.Delay = 0 }, false},
		{"empty API key", func(c *Config) { c.USDA.APIKey = "" }, true},
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }, true},
		{"unknown environment", func(c *Config) { c.Server.Environment = "qa" }, true},
		{"short JWT secret", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"too many candidates", func(c *Config) { c.Import.MaxCandidates = 500 }, true},
		{"missing DSN", func(c *Config) { c.Database.DSN = "" }, true},
		{"zero cache TTL", func(c *Config) { c.Cache.TTL = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddress(t *testing.T) {
	c := ServerConfig{Port: "8081"}
	if got := c.Address(); got != ":8081" {
		t.Errorf("Address() = %s, want :8081", got)
	}
}
