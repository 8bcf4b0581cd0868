package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.PartyStore)
	assert.Equal(t, "parties", cfg.RedisPartiesKey)
	assert.Equal(t, "party-events", cfg.KafkaTopic)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	content := "PORT=9000\nPARTY_STORE=redis\nREDIS_ADDRESS=localhost:6379\nJWT_SECRET=s3cret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis", cfg.PartyStore)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}
