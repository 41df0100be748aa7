package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	StoreDriver     string
	FirebaseProject string
	// Either inline JSON or a path; JSON wins when both are set.
	FirebaseCredentialsJSON string
	FirebaseCredentialsPath string
	MongoURI                string
	MongoDatabase           string

	AuthProvider string
	JWTSecret    string
	JWTExpiry    int64

	StorageBucket  string
	AvatarMaxBytes int64

	CORSAllowedOrigins   []string
	MessageRatePerMinute int
	AuthRatePerMinute    int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),

		StoreDriver:             getEnv("STORE_DRIVER", StoreFirestore),
		FirebaseProject:         getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:           getEnv("MONGO_DATABASE", "servicemarket"),

		AuthProvider: getEnv("AUTH_PROVIDER", AuthJWT),
		JWTSecret:    getEnv("JWT_SECRET", "jwt_secret"),
		JWTExpiry:    getEnvAsInt64("JWT_EXPIRY", 7*24*60*60), // 7 days

		StorageBucket:  getEnv("STORAGE_BUCKET", ""),
		AvatarMaxBytes: getEnvAsInt64("AVATAR_MAX_BYTES", 5*1024*1024),

		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MessageRatePerMinute: int(getEnvAsInt64("MESSAGE_RATE_PER_MINUTE", 30)),
		AuthRatePerMinute:    int(getEnvAsInt64("AUTH_RATE_PER_MINUTE", 20)),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return errMissing("FIREBASE_PROJECT_ID")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return errMissing("MONGO_URI")
		}
	case StoreMemory:
	default:
		return errInvalid("STORE_DRIVER", c.StoreDriver)
	}

	switch c.AuthProvider {
	case AuthJWT:
		if c.JWTSecret == "" {
			return errMissing("JWT_SECRET")
		}
	case AuthFirebase:
		if c.FirebaseProject == "" {
			return errMissing("FIREBASE_PROJECT_ID")
		}
	default:
		return errInvalid("AUTH_PROVIDER", c.AuthProvider)
	}

	return nil
}

// UsesFirebase reports whether any component needs the Firebase app.
func (c *Config) UsesFirebase() bool {
	return c.StoreDriver == StoreFirestore || c.AuthProvider == AuthFirebase
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
