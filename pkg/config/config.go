package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Destinations DestinationsConfig
	Tracking     TrackingConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type JWTConfig struct {
	SecretKey string
}

// DestinationsConfig is the static selection of enabled sinks. There is no
// runtime feature detection; a destination is either configured in or out.
type DestinationsConfig struct {
	GTMEnabled  bool
	GTMRelayURL string

	EmailEnabled           bool
	EmailBaseURL           string
	EmailBasicAuthUsername string
	EmailBasicAuthPassword string

	PixelEnabled  bool
	PixelRelayURL string
	PixelID       string

	ConversionsEnabled     bool
	ConversionsAPIURL      string
	ConversionsAccessToken string

	CollectorEnabled bool
	CollectorURL     string
	CollectorAPIKey  string
}

type TrackingConfig struct {
	Currency              string
	CountryPhonePrefix    string
	FreeShippingThreshold float64
	OfferTTLHours         int
	EngagementMinSeconds  int
	EngagementMinScroll   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Customer Intelligence API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "customer_intelligence"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Destinations: DestinationsConfig{
			GTMEnabled:  getEnvBool("DEST_GTM_ENABLED", false),
			GTMRelayURL: getEnv("DEST_GTM_RELAY_URL", ""),

			EmailEnabled:           getEnvBool("DEST_EMAIL_ENABLED", false),
			EmailBaseURL:           getEnv("DEST_EMAIL_BASE_URL", ""),
			EmailBasicAuthUsername: getEnv("DEST_EMAIL_BASIC_AUTH_USERNAME", ""),
			EmailBasicAuthPassword: getEnv("DEST_EMAIL_BASIC_AUTH_PASSWORD", ""),

			PixelEnabled:  getEnvBool("DEST_PIXEL_ENABLED", false),
			PixelRelayURL: getEnv("DEST_PIXEL_RELAY_URL", ""),
			PixelID:       getEnv("DEST_PIXEL_ID", ""),

			ConversionsEnabled:     getEnvBool("DEST_CONVERSIONS_ENABLED", false),
			ConversionsAPIURL:      getEnv("DEST_CONVERSIONS_API_URL", ""),
			ConversionsAccessToken: getEnv("DEST_CONVERSIONS_ACCESS_TOKEN", ""),

			CollectorEnabled: getEnvBool("DEST_COLLECTOR_ENABLED", false),
			CollectorURL:     getEnv("DEST_COLLECTOR_URL", ""),
			CollectorAPIKey:  getEnv("DEST_COLLECTOR_API_KEY", ""),
		},
		Tracking: TrackingConfig{
			Currency:              getEnv("TRACKING_CURRENCY", "EUR"),
			CountryPhonePrefix:    getEnv("TRACKING_PHONE_PREFIX", "31"),
			FreeShippingThreshold: getEnvFloat("TRACKING_FREE_SHIPPING_THRESHOLD", 40.0),
			OfferTTLHours:         getEnvInt("TRACKING_OFFER_TTL_HOURS", 48),
			EngagementMinSeconds:  getEnvInt("TRACKING_ENGAGEMENT_MIN_SECONDS", 30),
			EngagementMinScroll:   getEnvInt("TRACKING_ENGAGEMENT_MIN_SCROLL", 50),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Destinations.GTMEnabled && cfg.Destinations.GTMRelayURL == "" {
		return nil, errors.New("gtm relay enabled without a relay url")
	}

	if cfg.Destinations.ConversionsEnabled && cfg.Destinations.ConversionsAccessToken == "" {
		return nil, errors.New("conversions api enabled without an access token")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return parsed
}
