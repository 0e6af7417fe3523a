package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"

	AuthProviderFirebase = "firebase"
	AuthProviderJWT      = "jwt"
)

type StorageConfig struct {
	Driver string
}

type DBconfig struct {
	URL string
}

type MongoConfig struct {
	URI             string
	Database        string
	UseTransactions bool
}

type RESTconfig struct {
	PORT               string
	CORSAllowedOrigins []string
	EnforceAdminRole   bool
}

type AuthConfig struct {
	Provider string
	// Одно из двух: JSON сервисного аккаунта как есть или в base64.
	FirebaseCredentialsJSON   string
	FirebaseCredentialsBase64 string
	JWTSigningKey             string
}

type PaymentConfig struct {
	GatewayKey string
	Currency   string
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type StdoutLogConfig struct {
	Level string
	JSON  bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Storage      StorageConfig
	Database     DBconfig
	Mongo        MongoConfig
	Rest         RESTconfig
	Auth         AuthConfig
	Payment      PaymentConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env необязателен: в контейнере переменные приходят из окружения.
// Основное хранилище по умолчанию документная MongoDB, Postgres включается через STORAGE_DRIVER=postgres.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "dreamsquare-service")

	cfg.Storage.Driver = strings.ToLower(getEnvAsString("STORAGE_DRIVER", StorageDriverMongo))
	switch cfg.Storage.Driver {
	case StorageDriverPostgres:
		cfg.Database.URL = os.Getenv("DATABASE_URL")
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for storage driver %q", cfg.Storage.Driver)
		}
	case StorageDriverMongo:
		cfg.Mongo.URI = os.Getenv("MONGO_URI")
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable is required for storage driver %q", cfg.Storage.Driver)
		}
		cfg.Mongo.Database = getEnvAsString("MONGO_DATABASE", "realEstateDb")
		cfg.Mongo.UseTransactions = getEnvAsBool("MONGO_USE_TRANSACTIONS", false)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	// Читаем конфигурацию для REST
	cfg.Rest.PORT = getEnvAsString("PORT", "5000")
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	cfg.Rest.EnforceAdminRole = getEnvAsBool("ENFORCE_ADMIN_ROLE", false)

	cfg.Auth.Provider = strings.ToLower(getEnvAsString("AUTH_PROVIDER", AuthProviderFirebase))
	switch cfg.Auth.Provider {
	case AuthProviderFirebase:
		cfg.Auth.FirebaseCredentialsJSON = os.Getenv("FIREBASE_CREDENTIALS_JSON")
		cfg.Auth.FirebaseCredentialsBase64 = os.Getenv("FIREBASE_CREDENTIALS_BASE64")
		if cfg.Auth.FirebaseCredentialsJSON == "" && cfg.Auth.FirebaseCredentialsBase64 == "" {
			return nil, fmt.Errorf("FIREBASE_CREDENTIALS_JSON or FIREBASE_CREDENTIALS_BASE64 is required for auth provider %q", cfg.Auth.Provider)
		}
	case AuthProviderJWT:
		cfg.Auth.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
		if cfg.Auth.JWTSigningKey == "" {
			return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable is required for auth provider %q", cfg.Auth.Provider)
		}
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.Auth.Provider)
	}

	cfg.Payment.GatewayKey = os.Getenv("PAYMENT_GATEWAY_KEY")
	if cfg.Payment.GatewayKey == "" {
		log.Println("WARNING: PAYMENT_GATEWAY_KEY is not set. Payment intents will fail.")
	}
	cfg.Payment.Currency = strings.ToLower(getEnvAsString("PAYMENT_CURRENCY", "usd"))

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.JSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsList читает список через запятую, пустые элементы отбрасываются.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
