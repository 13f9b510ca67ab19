package config

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyVerifier checks client API keys against either a plain key or a bcrypt hash of
// it, so deployments need not keep the key itself in their environment.
type APIKeyVerifier struct {
	plain string
	hash  []byte
}

// APIKeys returns the verifier for the configured key.
func (c *Config) APIKeys() *APIKeyVerifier {
	v := &APIKeyVerifier{plain: c.AppAPIKey}
	if c.AppAPIKeyHash != "" {
		v.hash = []byte(c.AppAPIKeyHash)
	}
	return v
}

// Enabled reports whether any key is configured.
func (v *APIKeyVerifier) Enabled() bool {
	return v != nil && (v.plain != "" || len(v.hash) > 0)
}

// Verify reports whether key matches. The plain comparison is constant-time.
func (v *APIKeyVerifier) Verify(key string) bool {
	if !v.Enabled() || key == "" {
		return false
	}
	if len(v.hash) > 0 {
		return bcrypt.CompareHashAndPassword(v.hash, []byte(key)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(v.plain), []byte(key)) == 1
}

// HashAPIKey produces a value suitable for APP_API_KEY_HASH.
func HashAPIKey(key string, cost int) (string, error) {
	if key == "" {
		return "", fmt.Errorf("API key is empty")
	}
	if cost < 10 || cost > 14 {
		return "", fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hash), nil
}
