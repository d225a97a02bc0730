package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	store := NewFileTokenStore(path)

	tokens, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, tokens)

	require.NoError(t, store.UpdateConfig(func(c *FileConfig) {
		c.Server = "http://localhost:8080"
		c.WrappedSession = "abc"
	}))

	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.Save(&Tokens{UserID: 7, Email: "a@b.io", AccessToken: "a", RefreshToken: "r", ExpiresAt: expires}))

	tokens, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, int64(7), tokens.UserID)
	require.True(t, expires.Equal(tokens.ExpiresAt))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	cfg, err := store.ReadConfig()
	require.NoError(t, err)
	require.Nil(t, cfg.Session)
	require.Equal(t, "http://localhost:8080", cfg.Server)
	require.Equal(t, "abc", cfg.WrappedSession)
}

func TestFileTokenStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := NewFileTokenStore(path).Load()
	require.Error(t, err)
}
