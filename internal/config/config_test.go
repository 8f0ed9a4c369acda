package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 5*time.Minute, cfg.ProgressCacheTTL)
	require.Equal(t, "gema:lms", cfg.NotificationChannel)
	require.Equal(t, 10, cfg.SubmitRateLimit)
	require.Equal(t, time.Minute, cfg.SubmitRateWindow)
	require.Equal(t, "GEMA Academy", cfg.CertificateIssuer)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")
	t.Setenv("GEMA_APP_PORT", ":9090")
	t.Setenv("GEMA_PROGRESS_CACHE_TTL", "30s")
	t.Setenv("GEMA_SUBMIT_RATE_LIMIT", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 30*time.Second, cfg.ProgressCacheTTL)
	require.Equal(t, 3, cfg.SubmitRateLimit)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")
	t.Setenv("GEMA_PROGRESS_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}
