package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MEALTRACK_SERVER_PORT.
const EnvPrefix = "MEALTRACK"

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	USDA     USDAConfig     `mapstructure:"usda"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Address returns the listen address of the HTTP server.
func (c *ServerConfig) Address() string {
	return ":" + c.Port
}

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.Environment, validation.Required, validation.In("development", "test", "staging", "production")),
	)
}

// USDAConfig holds USDA API configuration
type USDAConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	RequestsPerHour int           `mapstructure:"requests_per_hour"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

func (c *USDAConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("USDA API key is required (set %s_USDA_API_KEY)", EnvPrefix)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.RequestsPerHour, validation.Required, validation.Min(1)),
		validation.Field(&c.Timeout, validation.Required),
	)
}

// DatabaseConfig selects the catalog and ledger store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

func (c *DatabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverPostgres, DriverSQLite)),
		validation.Field(&c.DSN, validation.Required),
	)
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTL, validation.Required),
		validation.Field(&c.CleanupInterval, validation.Required),
	)
}

// AuthConfig configures bearer token verification. With AllowGuest,
// requests without a token run as a read-only guest.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	AllowGuest bool          `mapstructure:"allow_guest"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

func (c *AuthConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set %s_AUTH_JWT_SECRET)", EnvPrefix)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.JWTSecret, validation.Length(16, 0)),
		validation.Field(&c.TokenTTL, validation.Required),
	)
}

// ImportConfig tunes catalog imports from USDA.
type ImportConfig struct {
	MaxCandidates    int           `mapstructure:"max_candidates"`
	SearchPageSize   int           `mapstructure:"search_page_size"`
	SearchLimit      int           `mapstructure:"search_limit"`
	Delay            time.Duration `mapstructure:"delay"`
	CandidateTimeout time.Duration `mapstructure:"candidate_timeout"`
	BulkPerQuery     int           `mapstructure:"bulk_per_query"`
}

func (c *ImportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxCandidates, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&c.SearchPageSize, validation.Required, validation.Min(1), validation.Max(200)),
		validation.Field(&c.SearchLimit, validation.Required, validation.Min(1), validation.Max(500)),
		validation.Field(&c.Delay, validation.Min(time.Duration(0))),
		validation.Field(&c.CandidateTimeout, validation.Required),
		validation.Field(&c.BulkPerQuery, validation.Required, validation.Min(1), validation.Max(50)),
	)
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.Required, validation.In("text", "json")),
	)
}

// Validate checks every section and reports the first failure.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.USDA.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// Load loads configuration from an optional config file, environment
// variables and defaults. An empty configFile searches the default paths
// and tolerates a missing file; an explicit path must exist.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mealtrack/")
	}

	// Environment variable settings
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key has a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// USDA defaults
	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("usda.requests_per_hour", 1000)
	v.SetDefault("usda.timeout", "10s")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "mealtrack.db")

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.cleanup_interval", "1m")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.allow_guest", true)
	v.SetDefault("auth.token_ttl", "720h")

	v.SetDefault("import.max_candidates", 10)
	v.SetDefault("import.search_page_size", 15)
	v.SetDefault("import.search_limit", 50)
	v.SetDefault("import.delay", "50ms")
	v.SetDefault("import.candidate_timeout", "15s")
	v.SetDefault("import.bulk_per_query", 8)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
