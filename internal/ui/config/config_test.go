package config

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvSet_Defaults(t *testing.T) {
	cfg, err := FromEnvSet(env.EnvSet{})
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Minute, cfg.WizardTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.IsProd())
}

func TestFromEnvSet_Validation(t *testing.T) {
	tests := []struct {
		name    string
		envs    env.EnvSet
		wantErr bool
	}{
		{
			name:    "valid overrides",
			envs:    env.EnvSet{"ENVIRONMENT": "prod", "PORT": "8081", "API_BASE_URL": "https://api.constella.dev"},
			wantErr: false,
		},
		{
			name:    "unknown environment",
			envs:    env.EnvSet{"ENVIRONMENT": "qa"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			envs:    env.EnvSet{"PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "relative api url",
			envs:    env.EnvSet{"API_BASE_URL": "/api"},
			wantErr: true,
		},
		{
			name:    "short wizard secret",
			envs:    env.EnvSet{"WIZARD_SECRET": "too-short"},
			wantErr: true,
		},
		{
			name:    "wizard secret",
			envs:    env.EnvSet{"WIZARD_SECRET": "0123456789abcdef0123456789abcdef"},
			wantErr: false,
		},
		{
			name:    "zero wizard ttl",
			envs:    env.EnvSet{"WIZARD_TTL": "0s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnvSet(tt.envs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
