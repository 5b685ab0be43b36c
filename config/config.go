package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Providers     ProvidersConfig
	Supabase      SupabaseConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	AutoMigrate      bool
}

// ProvidersConfig holds LLM provider configuration and selection defaults
type ProvidersConfig struct {
	OpenAI          ProviderSettings
	Gemini          ProviderSettings
	Timeout         time.Duration // per-candidate bound
	DefaultProvider string
	// AutoOrder is the fallback order for "auto". Empty means every configured provider
	AutoOrder []string
}

// ProviderSettings holds one vendor's credentials and model
type ProviderSettings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// SupabaseConfig holds identity-service configuration
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
	JWTSecret      string

	// TreatMissingAsDeleted accepts a 404 from the admin API as a completed deletion
	TreatMissingAsDeleted bool
}

// CORSConfig holds the browser origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

const defaultAllowedOrigins = "http://localhost:5173,https://product-advisor-red.vercel.app"

const (
	// requestMargin covers validation and persistence on top of the provider calls
	requestMargin = 10 * time.Second
	// writeGrace leaves room to write the response once the request budget is spent
	writeGrace = 5 * time.Second
)

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Providers: ProvidersConfig{
			OpenAI: ProviderSettings{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				Model:   getEnv("OPENAI_MODEL", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", ""),
			},
			Gemini: ProviderSettings{
				APIKey:  getEnv("GEMINI_API_KEY", ""),
				Model:   getEnv("GEMINI_MODEL", ""),
				BaseURL: getEnv("GEMINI_ENDPOINT", ""),
			},
			Timeout:         getEnvAsDuration("PROVIDER_TIMEOUT", 60*time.Second),
			DefaultProvider: strings.ToLower(getEnv("DEFAULT_PROVIDER", string(providers.OpenAI))),
			AutoOrder:       getEnvAsList("AUTO_PROVIDER_ORDER", nil),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			JWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),

			TreatMissingAsDeleted: getEnvAsBool("SUPABASE_TREAT_MISSING_AS_DELETED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", strings.Split(defaultAllowedOrigins, ",")),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	// The write deadline must outlast a full fallback walk
	cfg.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", cfg.Providers.RequestBudget()+writeGrace)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database pool sizes must not be negative")
	}
	if c.Database.MaxOpenConns > 0 && c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) exceeds DB_MAX_OPEN_CONNS (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if _, err := providers.ParseName(c.Providers.DefaultProvider); err != nil {
		return fmt.Errorf("invalid DEFAULT_PROVIDER: %w", err)
	}
	if c.Providers.Timeout < 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must not be negative")
	}

	seen := make(map[providers.Name]bool, len(c.Providers.AutoOrder))
	for _, entry := range c.Providers.AutoOrder {
		name, err := providers.ParseName(entry)
		if err != nil {
			return fmt.Errorf("invalid AUTO_PROVIDER_ORDER: %w", err)
		}
		if seen[name] {
			return fmt.Errorf("invalid AUTO_PROVIDER_ORDER: %s listed twice", name)
		}
		seen[name] = true
		if c.Providers.settings(name).APIKey == "" {
			return fmt.Errorf("invalid AUTO_PROVIDER_ORDER: %s has no API key configured", name)
		}
	}

	if budget := c.Providers.RequestBudget(); budget > 0 && c.Server.WriteTimeout > 0 &&
		c.Server.WriteTimeout < budget+writeGrace {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT (%s) must be at least %s to cover %d provider attempts of %s",
			c.Server.WriteTimeout, budget+writeGrace, c.Providers.planLength(), c.Providers.Timeout)
	}

	if c.Supabase.JWTSecret != "" && c.Supabase.URL != "" {
		if _, err := url.ParseRequestURI(c.Supabase.URL); err != nil {
			return fmt.Errorf("invalid SUPABASE_URL: %w", err)
		}
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// AuthEnabled reports whether API requests must carry an access token
func (c *Config) AuthEnabled() bool {
	return c.Supabase.JWTSecret != ""
}

// IdentityAdminEnabled reports whether identity users can be deleted
func (c *Config) IdentityAdminEnabled() bool {
	return c.Supabase.URL != "" && c.Supabase.ServiceRoleKey != ""
}

func (p *ProvidersConfig) settings(name providers.Name) ProviderSettings {
	switch name {
	case providers.OpenAI:
		return p.OpenAI
	case providers.Gemini:
		return p.Gemini
	}
	return ProviderSettings{}
}

// ProviderConfigs returns adapter settings for every provider that has an API key
func (p *ProvidersConfig) ProviderConfigs() map[providers.Name]providers.ProviderConfig {
	configs := make(map[providers.Name]providers.ProviderConfig)
	for _, name := range providers.Names() {
		s := p.settings(name)
		if s.APIKey == "" {
			continue
		}
		configs[name] = providers.ProviderConfig{
			APIKey:  s.APIKey,
			Model:   s.Model,
			BaseURL: s.BaseURL,
			Timeout: p.Timeout,
		}
	}
	return configs
}

// AutoPlan returns the "auto" fallback order. Without an explicit order every
// configured provider is used in declaration order
func (p *ProvidersConfig) AutoPlan() []providers.Name {
	if len(p.AutoOrder) == 0 {
		var plan []providers.Name
		for _, name := range providers.Names() {
			if p.settings(name).APIKey != "" {
				plan = append(plan, name)
			}
		}
		return plan
	}

	plan := make([]providers.Name, 0, len(p.AutoOrder))
	for _, entry := range p.AutoOrder {
		if name, err := providers.ParseName(entry); err == nil {
			plan = append(plan, name)
		}
	}
	return plan
}

// RequestBudget bounds one advice request: every auto candidate at its full
// timeout plus a margin. Zero when candidates are unbounded
func (p *ProvidersConfig) RequestBudget() time.Duration {
	if p.Timeout <= 0 {
		return 0
	}
	return time.Duration(p.planLength())*p.Timeout + requestMargin
}

func (p *ProvidersConfig) planLength() int {
	if n := len(p.AutoPlan()); n > 0 {
		return n
	}
	return 1
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil && u.Host != "" {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
	}

	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		cfg.ConnectionString = dbURL
		return cfg
	}

	cfg.Host = getEnv("DB_HOST", "localhost")
	cfg.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.User = getEnv("DB_USER", "postgres")
	cfg.Password = getEnv("DB_PASSWORD", "")
	cfg.Database = getEnv("DB_NAME", "product_advisor")
	cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 5000).
// A value that is not a number yields 0 so that Validate reports it
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			p, err := strconv.Atoi(value)
			if err != nil {
				return 0
			}
			return p
		}
	}
	return 5000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated variable, dropping blank entries
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
