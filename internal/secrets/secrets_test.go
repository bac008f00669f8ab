package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source SecretSource
		env    string
		want   SecretSource
	}{
		{SourceAuto, "development", SourceEnvironment},
		{SourceAuto, "", SourceEnvironment},
		{SourceAuto, "production", SourceVault},
		{SourceAuto, "staging", SourceVault},
		{SourceEnvironment, "production", SourceEnvironment},
		{SourceVault, "development", SourceVault},
	}
	for _, tt := range tests {
		t.Run(string(tt.source)+"/"+tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSource(tt.source, tt.env))
		})
	}
}

func TestEnvironmentProvider(t *testing.T) {
	env := map[string]string{"JWT_SECRET": "from-env", "admin-jwt-secret": "by-name"}
	p := NewEnvironmentProvider(func(k string) string { return env[k] }, zap.NewNop())

	v, err := p.GetSecretOrEnv(context.Background(), NameJWTSecret, "JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	v, err = p.GetSecretOrEnv(context.Background(), NameJWTSecret, "UNSET")
	require.NoError(t, err)
	assert.Equal(t, "by-name", v)

	_, err = p.GetSecret(context.Background(), "missing")
	assert.Error(t, err)
	assert.False(t, p.IsVaultEnabled())
}

func TestSecretCache_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newSecretCache(time.Minute, func() time.Time { return now })

	c.put("a", "1")
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.get("a")
	assert.False(t, ok)

	c.put("b", "2")
	c.clear()
	_, ok = c.get("b")
	assert.False(t, ok)
}
