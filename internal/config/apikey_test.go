package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyVerifier_Plain(t *testing.T) {
	v := (&Config{AppAPIKey: "secret-key"}).APIKeys()

	assert.True(t, v.Enabled())
	assert.True(t, v.Verify("secret-key"))
	assert.False(t, v.Verify("secret-key2"))
	assert.False(t, v.Verify(""))
}

func TestAPIKeyVerifier_Hash(t *testing.T) {
	hash, err := HashAPIKey("secret-key", 10)
	require.NoError(t, err)
	assert.NotEqual(t, "secret-key", hash)

	v := (&Config{AppAPIKeyHash: hash}).APIKeys()
	assert.True(t, v.Enabled())
	assert.True(t, v.Verify("secret-key"))
	assert.False(t, v.Verify("wrong"))
}

func TestAPIKeyVerifier_Disabled(t *testing.T) {
	v := (&Config{}).APIKeys()
	assert.False(t, v.Enabled())
	assert.False(t, v.Verify("anything"))

	var nilVerifier *APIKeyVerifier
	assert.False(t, nilVerifier.Enabled())
}

func TestHashAPIKey_Errors(t *testing.T) {
	_, err := HashAPIKey("", 12)
	assert.Error(t, err)

	_, err = HashAPIKey("key", 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
