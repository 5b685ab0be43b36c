package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YogindraChaudhari/Product-Advisor/services/providers"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "SERVER_PORT", "SERVER_HOST",
	"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
	"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_AUTO_MIGRATE",
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_ENDPOINT",
	"PROVIDER_TIMEOUT", "DEFAULT_PROVIDER", "AUTO_PROVIDER_ORDER",
	"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_JWT_SECRET", "SUPABASE_TREAT_MISSING_AS_DELETED",
	"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
}

// setEnv blanks every known variable, then applies vars for the duration of the test
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr string
		check   func(*testing.T, *Config)
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 5000, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "postgres", cfg.Database.User)
				assert.False(t, cfg.Database.AutoMigrate)
				assert.Equal(t, "openai", cfg.Providers.DefaultProvider)
				assert.Equal(t, 60*time.Second, cfg.Providers.Timeout)
				assert.Equal(t, 70*time.Second, cfg.Providers.RequestBudget())
				assert.Equal(t, 75*time.Second, cfg.Server.WriteTimeout)
				assert.Empty(t, cfg.Providers.AutoOrder)
				assert.Equal(t, []string{"http://localhost:5173", "https://product-advisor-red.vercel.app"}, cfg.CORS.AllowedOrigins)
				assert.False(t, cfg.AuthEnabled())
				assert.False(t, cfg.IdentityAdminEnabled())
				assert.True(t, cfg.Supabase.TreatMissingAsDeleted)
				assert.Equal(t, "info", cfg.Observability.LogLevel)
				assert.Equal(t, "json", cfg.Observability.LogFormat)
			},
		},
		{
			name: "providers and supabase",
			envVars: map[string]string{
				"OPENAI_API_KEY":            "sk-test",
				"OPENAI_MODEL":              "gpt-4o-mini",
				"GEMINI_API_KEY":            "gm-test",
				"GEMINI_ENDPOINT":           "http://localhost:9999",
				"PROVIDER_TIMEOUT":          "15s",
				"DEFAULT_PROVIDER":          "Gemini",
				"AUTO_PROVIDER_ORDER":       "gemini, openai",
				"SUPABASE_URL":              "https://abcd.supabase.co",
				"SUPABASE_SERVICE_ROLE_KEY": "service",
				"SUPABASE_JWT_SECRET":       "secret",

				"SUPABASE_TREAT_MISSING_AS_DELETED": "false",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "gemini", cfg.Providers.DefaultProvider)
				assert.Equal(t, []string{"gemini", "openai"}, cfg.Providers.AutoOrder)
				assert.Equal(t, []providers.Name{providers.Gemini, providers.OpenAI}, cfg.Providers.AutoPlan())

				configs := cfg.Providers.ProviderConfigs()
				require.Len(t, configs, 2)
				assert.Equal(t, "gpt-4o-mini", configs[providers.OpenAI].Model)
				assert.Equal(t, "http://localhost:9999", configs[providers.Gemini].BaseURL)
				assert.Equal(t, 15*time.Second, configs[providers.Gemini].Timeout)

				assert.True(t, cfg.AuthEnabled())
				assert.True(t, cfg.IdentityAdminEnabled())
				assert.False(t, cfg.Supabase.TreatMissingAsDeleted)
			},
		},
		{
			name: "custom timeouts and pool settings",
			envVars: map[string]string{
				"SERVER_READ_TIMEOUT":  "60s",
				"SERVER_WRITE_TIMEOUT": "90s",
				"DB_MAX_OPEN_CONNS":    "50",
				"DB_MAX_IDLE_CONNS":    "10",
				"DB_AUTO_MIGRATE":      "true",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 50, cfg.Database.MaxOpenConns)
				assert.Equal(t, 10, cfg.Database.MaxIdleConns)
				assert.True(t, cfg.Database.AutoMigrate)
			},
		},
		{
			name:    "PORT env var takes precedence over SERVER_PORT",
			envVars: map[string]string{"PORT": "9443", "SERVER_PORT": "9000"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9443, cfg.Server.Port)
			},
		},
		{
			name:    "SERVER_PORT env var when PORT not set",
			envVars: map[string]string{"SERVER_PORT": "9000"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
			},
		},
		{
			name:    "DATABASE_URL",
			envVars: map[string]string{"DATABASE_URL": "postgres://u:p@db.internal:6543/advisor"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://u:p@db.internal:6543/advisor", cfg.Database.DSN())
				assert.Equal(t, "host=db.internal port=6543 database=advisor", cfg.Database.LogString())
			},
		},
		{
			name:    "write timeout follows the fallback budget",
			envVars: map[string]string{"OPENAI_API_KEY": "sk", "GEMINI_API_KEY": "gm"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 130*time.Second, cfg.Providers.RequestBudget())
				assert.Equal(t, 135*time.Second, cfg.Server.WriteTimeout)
			},
		},
		{
			name: "write timeout shorter than two timed out candidates",
			envVars: map[string]string{
				"OPENAI_API_KEY":       "sk",
				"GEMINI_API_KEY":       "gm",
				"SERVER_WRITE_TIMEOUT": "90s",
			},
			wantErr: "SERVER_WRITE_TIMEOUT (1m30s) must be at least 2m15s",
		},
		{
			name:    "malformed port",
			envVars: map[string]string{"PORT": "http"},
			wantErr: "invalid server port",
		},
		{
			name:    "unknown default provider",
			envVars: map[string]string{"DEFAULT_PROVIDER": "auto"},
			wantErr: "invalid DEFAULT_PROVIDER",
		},
		{
			name:    "auto order with unknown provider",
			envVars: map[string]string{"OPENAI_API_KEY": "sk", "AUTO_PROVIDER_ORDER": "openai,claude"},
			wantErr: "unknown provider",
		},
		{
			name:    "auto order with unconfigured provider",
			envVars: map[string]string{"OPENAI_API_KEY": "sk", "AUTO_PROVIDER_ORDER": "openai,gemini"},
			wantErr: "gemini has no API key configured",
		},
		{
			name:    "auto order with duplicates",
			envVars: map[string]string{"OPENAI_API_KEY": "sk", "AUTO_PROVIDER_ORDER": "openai,OpenAI"},
			wantErr: "listed twice",
		},
		{
			name:    "idle pool larger than open pool",
			envVars: map[string]string{"DB_MAX_OPEN_CONNS": "2", "DB_MAX_IDLE_CONNS": "5"},
			wantErr: "exceeds DB_MAX_OPEN_CONNS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.envVars)

			cfg, err := New(context.Background())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestProvidersConfig_AutoPlanDefaultsToConfigured(t *testing.T) {
	p := ProvidersConfig{Gemini: ProviderSettings{APIKey: "g"}}
	assert.Equal(t, []providers.Name{providers.Gemini}, p.AutoPlan())

	both := ProvidersConfig{OpenAI: ProviderSettings{APIKey: "o"}, Gemini: ProviderSettings{APIKey: "g"}}
	assert.Equal(t, []providers.Name{providers.OpenAI, providers.Gemini}, both.AutoPlan())

	assert.Empty(t, (&ProvidersConfig{}).AutoPlan())
	assert.Empty(t, (&ProvidersConfig{}).ProviderConfigs())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment: "development",
			Server:      ServerConfig{Port: 5000},
			Database: DatabaseConfig{
				Host:     "localhost",
				User:     "user",
				Database: "db",
			},
			Providers:     ProvidersConfig{DefaultProvider: "openai"},
			Observability: ObservabilityConfig{LogLevel: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid development config", mutate: func(*Config) {}},
		{
			name:   "missing database host",
			mutate: func(c *Config) { c.Database.Host = "" },
			errMsg: "database configuration required",
		},
		{
			name:   "missing database user",
			mutate: func(c *Config) { c.Database.User = "" },
			errMsg: "database user is required",
		},
		{
			name:   "connection string needs no fields",
			mutate: func(c *Config) { c.Database = DatabaseConfig{ConnectionString: "postgres://x"} },
		},
		{
			name:   "port out of range",
			mutate: func(c *Config) { c.Server.Port = 70000 },
			errMsg: "invalid server port",
		},
		{
			name:   "negative provider timeout",
			mutate: func(c *Config) { c.Providers.Timeout = -time.Second },
			errMsg: "PROVIDER_TIMEOUT",
		},
		{
			name: "write timeout below request budget",
			mutate: func(c *Config) {
				c.Providers.Timeout = 30 * time.Second
				c.Providers.OpenAI.APIKey = "sk"
				c.Providers.Gemini.APIKey = "gm"
				c.Server.WriteTimeout = 60 * time.Second
			},
			errMsg: "to cover 2 provider attempts of 30s",
		},
		{
			name: "write timeout covering the request budget",
			mutate: func(c *Config) {
				c.Providers.Timeout = 30 * time.Second
				c.Providers.OpenAI.APIKey = "sk"
				c.Providers.Gemini.APIKey = "gm"
				c.Server.WriteTimeout = 75 * time.Second
			},
		},
		{
			name: "unbounded candidates skip the write timeout check",
			mutate: func(c *Config) {
				c.Providers.Timeout = 0
				c.Server.WriteTimeout = time.Second
			},
		},
		{
			name:   "missing log level",
			mutate: func(c *Config) { c.Observability.LogLevel = "" },
			errMsg: "log level is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		environment string
		want        bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			assert.Equal(t, tt.want, cfg.IsProduction())
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	assert.True(t, (&Config{Environment: "development"}).IsDevelopment())
	assert.True(t, (&Config{Environment: "dev"}).IsDevelopment())
	assert.False(t, (&Config{Environment: "production"}).IsDevelopment())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, cfg.DSN())
	assert.NotContains(t, cfg.LogString(), "testpass")
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "0.0.0.0", Port: 5000}
	assert.Equal(t, "0.0.0.0:5000", cfg.Address())
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", " a, ,b ,")
	assert.Equal(t, []string{"a", "b"}, getEnvAsList("TEST_LIST", nil))

	t.Setenv("TEST_LIST", "  ")
	assert.Equal(t, []string{"x"}, getEnvAsList("TEST_LIST", []string{"x"}))
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue int
		want         int
	}{
		{"valid int", "42", 10, 42},
		{"empty value", "", 10, 10},
		{"invalid int", "not-a-number", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			assert.Equal(t, tt.want, getEnvAsInt("TEST_INT", tt.defaultValue))
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", "true", false, true},
		{"false", "false", true, false},
		{"empty value", "", true, true},
		{"invalid bool", "not-a-bool", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, getEnvAsBool("TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue time.Duration
		want         time.Duration
	}{
		{"valid duration", "30s", 10 * time.Second, 30 * time.Second},
		{"empty value", "", 10 * time.Second, 10 * time.Second},
		{"invalid duration", "not-a-duration", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, getEnvAsDuration("TEST_DURATION", tt.defaultValue))
		})
	}
}

func TestMain(m *testing.M) {
	// Keep a developer's .env out of the test run
	if err := os.Chdir(os.TempDir()); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
