package main

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/YogindraChaudhari/Product-Advisor/app"
	"github.com/YogindraChaudhari/Product-Advisor/config"
	"github.com/YogindraChaudhari/Product-Advisor/repositories/postgres"
	"github.com/YogindraChaudhari/Product-Advisor/routes"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    7 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Providers: config.ProvidersConfig{
			Timeout:         time.Second,
			DefaultProvider: "openai",
		},
		Observability: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"},
	}
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr string
	}{
		{name: "json", level: "info", format: "json"},
		{name: "console", level: "debug", format: "console"},
		{name: "invalid level", level: "loud", format: "json", wantErr: "invalid log level"},
		{name: "invalid format", level: "info", format: "xml", wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Observability = config.ObservabilityConfig{LogLevel: tt.level, LogFormat: tt.format}

			logger, err := initLogger(cfg)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	srv := newServer(cfg, nil)

	assert.Equal(t, "127.0.0.1:0", srv.Addr)
	assert.Equal(t, 3*time.Second, srv.ReadTimeout)
	assert.Equal(t, 7*time.Second, srv.WriteTimeout)
}

func TestServe_StopsOnCancel(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	factory := postgres.NewRepositoryFactoryFromDB(postgres.WrapDB(sqlDB, logger), logger)
	deps, err := app.NewDependenciesWithFactory(context.Background(), cfg, factory, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, newServer(cfg, routes.SetupRoutes(deps)), deps, logger)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
