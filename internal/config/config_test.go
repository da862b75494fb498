package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingSessionSecret)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cr3t")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "member-portal", cfg.App.Name)
	require.Equal(t, "development", cfg.App.Env)
	require.False(t, cfg.App.Production())
	require.Equal(t, "users.json", cfg.Store.UsersFile)
	require.Empty(t, cfg.Store.DSN)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	require.Equal(t, "mp_session", cfg.Session.CookieName)
	require.Equal(t, "s3cr3t", cfg.Session.Secret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cr3t")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("USERS_FILE", "/data/users.json")
	t.Setenv("AUTH_BCRYPT_COST", "10")
	t.Setenv("SESSION_MAX_LIFETIME_HOURS", "24")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.App.Production())
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, "/data/users.json", cfg.Store.UsersFile)
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.Equal(t, 24, cfg.Session.MaxLifetimeHours)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cr3t")
	t.Setenv("AUTH_MAX_LOGIN_ATTEMPTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
}
