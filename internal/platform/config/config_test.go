package config

import (
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CLOSED_PERIOD_POLICY", "WARN")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://vendors.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, domain.ClosedPeriodWarn, cfg.ClosedPeriodPolicy)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, []string{"https://admin.example.com", "https://vendors.example.com"}, cfg.CORSAllowedOrigins)
}

func TestFromViper(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "unknown closed period policy",
			values:  map[string]any{"CLOSED_PERIOD_POLICY": "ignore"},
			wantErr: "CLOSED_PERIOD_POLICY",
		},
		{
			name:    "default secret refused in production",
			values:  map[string]any{"IS_PRODUCTION": true, "CLOSED_PERIOD_POLICY": "reject"},
			wantErr: "JWT_SECRET",
		},
		{
			name: "production logs json",
			values: map[string]any{
				"IS_PRODUCTION":        true,
				"JWT_SECRET":           "prod-secret",
				"CLOSED_PERIOD_POLICY": "reject",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "json", cfg.LogFormat)
			},
		},
		{
			name: "async events need redis",
			values: map[string]any{
				"ASYNC_EVENTS":         true,
				"CLOSED_PERIOD_POLICY": "reject",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.AsyncEvents)
			},
		},
		{
			name: "report cache needs redis",
			values: map[string]any{
				"REPORT_CACHE_TTL":     "5m",
				"CLOSED_PERIOD_POLICY": "reject",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Zero(t, cfg.ReportCacheTTL)
			},
		},
		{
			name: "report cache ttl",
			values: map[string]any{
				"REDIS_URL":            "redis://localhost:6379/0",
				"REPORT_CACHE_TTL":     "5m",
				"CLOSED_PERIOD_POLICY": "reject",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5*time.Minute, cfg.ReportCacheTTL)
			},
		},
		{
			name:    "bad report cache ttl",
			values:  map[string]any{"REPORT_CACHE_TTL": "soon", "CLOSED_PERIOD_POLICY": "reject"},
			wantErr: "REPORT_CACHE_TTL",
		},
		{
			name:    "bad log format",
			values:  map[string]any{"LOG_FORMAT": "xml", "CLOSED_PERIOD_POLICY": "reject"},
			wantErr: "LOG_FORMAT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			cfg, err := fromViper(v)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
