package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_NAME", "PORT", "STORAGE_DRIVER", "DATABASE_URL", "MONGO_URI", "MONGO_DATABASE",
	"MONGO_USE_TRANSACTIONS", "AUTH_PROVIDER", "FIREBASE_CREDENTIALS_JSON", "FIREBASE_CREDENTIALS_BASE64",
	"JWT_SIGNING_KEY", "PAYMENT_GATEWAY_KEY", "PAYMENT_CURRENCY", "CORS_ALLOWED_ORIGINS",
	"ENFORCE_ADMIN_ROLE", "RABBITMQ_ENABLED", "RABBITMQ_URL", "FLUENTBIT_ENABLED", "FLUENTBIT_HOST",
	"FLUENTBIT_PORT", "FLUENTBIT_LOG_LEVEL", "STDOUT_LOG_LEVEL", "STDOUT_LOG_JSON",
}

// clearEnv сбрасывает ключи конфигурации; t.Setenv восстановит значения после теста.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("AUTH_PROVIDER", "jwt")
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg, err := LoadConfig(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "dreamsquare-service", cfg.AppName)
	assert.Equal(t, "5000", cfg.Rest.PORT)
	assert.Equal(t, StorageDriverMongo, cfg.Storage.Driver)
	assert.Equal(t, "realEstateDb", cfg.Mongo.Database)
	assert.Equal(t, "usd", cfg.Payment.Currency)
	assert.False(t, cfg.Rest.EnforceAdminRole)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.False(t, cfg.FluentBit.Enabled)
	assert.Equal(t, "debug", cfg.StdoutLogger.Level)
}

func TestLoadConfigMongoFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORAGE_DRIVER=mongo\n" +
		"MONGO_URI=mongodb://localhost:27017\n" +
		"MONGO_USE_TRANSACTIONS=true\n" +
		"AUTH_PROVIDER=jwt\n" +
		"JWT_SIGNING_KEY=secret\n" +
		"CORS_ALLOWED_ORIGINS=http://a.example, http://b.example,\n" +
		"FLUENTBIT_PORT=not-a-number\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMongo, cfg.Storage.Driver)
	assert.Equal(t, "realEstateDb", cfg.Mongo.Database)
	assert.True(t, cfg.Mongo.UseTransactions)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Rest.CORSAllowedOrigins)
}

func TestLoadConfigPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/dreamsquare")
	t.Setenv("AUTH_PROVIDER", "jwt")
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg, err := LoadConfig(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/dreamsquare", cfg.Database.URL)
	assert.Empty(t, cfg.Mongo.URI)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"mongo without uri", map[string]string{"AUTH_PROVIDER": "jwt", "JWT_SIGNING_KEY": "k"}},
		{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres", "AUTH_PROVIDER": "jwt", "JWT_SIGNING_KEY": "k"}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{"firebase without credentials", map[string]string{"MONGO_URI": "mongodb://x"}},
		{"jwt without key", map[string]string{"MONGO_URI": "mongodb://x", "AUTH_PROVIDER": "jwt"}},
		{"rabbitmq without url", map[string]string{
			"MONGO_URI": "mongodb://x", "AUTH_PROVIDER": "jwt", "JWT_SIGNING_KEY": "k", "RABBITMQ_ENABLED": "true",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestFluentBitWithoutHostIsDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://x")
	t.Setenv("AUTH_PROVIDER", "jwt")
	t.Setenv("JWT_SIGNING_KEY", "k")
	t.Setenv("FLUENTBIT_ENABLED", "true")

	cfg, err := LoadConfig(missingEnvFile(t))
	require.NoError(t, err)
	assert.False(t, cfg.FluentBit.Enabled)
}
