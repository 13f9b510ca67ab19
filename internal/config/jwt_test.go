package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_Disabled(t *testing.T) {
	cfg := &Config{JWTExpirationHours: 24}
	jwtCfg, err := cfg.JWT()
	require.NoError(t, err)
	assert.Nil(t, jwtCfg)
}

func TestJWT_Configured(t *testing.T) {
	cfg := &Config{JWTSecret: "0123456789abcdef", JWTExpirationHours: 2}
	jwtCfg, err := cfg.JWT()
	require.NoError(t, err)
	require.NotNil(t, jwtCfg)
	assert.Equal(t, "0123456789abcdef", jwtCfg.Secret)
	assert.Equal(t, 2*time.Hour, jwtCfg.Expiration())
}

func TestJWT_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "short secret", cfg: Config{JWTSecret: "short", JWTExpirationHours: 24}, wantErr: "at least 16 characters"},
		{name: "zero expiration", cfg: Config{JWTSecret: "0123456789abcdef"}, wantErr: "at least 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.JWT()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
