package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    port: 9090
database:
  host: db.internal
  name: auction
stripe:
  secret_key: sk_test_file
  webhook_secret: whsec_file
  timeout: 3s
auth:
  jwt_secret: file-secret
`)
	t.Setenv("BILLING_STRIPE_SECRET_KEY", "sk_test_env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTP.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "sk_test_env", cfg.Stripe.SecretKey)
	assert.Equal(t, "whsec_file", cfg.Stripe.WebhookSecret)
	assert.Equal(t, 3*time.Second, cfg.Stripe.Timeout)
	assert.Equal(t, "subscription.changed", cfg.Redis.Channel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Stripe.Timeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe.secret_key is required")
	assert.Contains(t, err.Error(), "auth.jwt_secret or auth.jwks_url")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
