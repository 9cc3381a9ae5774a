package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const defaultIdentityJWKSURI = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

type Config struct {
	Issuer           string   `validate:"required,url"` // Required: external issuer URL, origin plus path prefix
	InternalPrefixes []string // Optional: internal mount paths stripped before routing
	CompletionMode   string   `validate:"oneof=code token"` // Optional: login completion policy (default: code)

	ClientID            string   `validate:"required"` // Optional: registered client id (default: oidc_ui_tester)
	ClientSecret        string   `validate:"required_unless=ClientAuthMethod none"`
	ClientRedirectURIs  []string `validate:"min=1,dive,url"`
	ClientResponseTypes []string `validate:"min=1,dive,oneof=code"`
	ClientGrantTypes    []string `validate:"min=1,dive,oneof=authorization_code refresh_token"`
	ClientAuthMethod    string   `validate:"oneof=none client_secret_basic client_secret_post"`

	IdentityAPIKey          string        `validate:"required"` // Required: identity backend web API key
	IdentityBaseURL         string        `validate:"omitempty,url"`
	IdentityEmulatorHost    string        `validate:"omitempty,hostname_port"` // Optional: overrides base URL and admin auth
	IdentityProjectID       string        // Optional: falls back to the credentials' project
	IdentityCredentialsFile string        // Optional: service account JSON for account lookups
	IdentityJWKSURI         string        `validate:"omitempty,url"` // Optional: written into the discovery jwks_uri
	IdentityTimeout         time.Duration `validate:"gt=0"`

	Algorithm      string        `validate:"oneof=RS256 ES256 EdDSA"` // Optional: JWT signing algorithm (default: RS256)
	KeyStorageMode string        `validate:"oneof=ephemeral persistent file"`
	SigningKeyFile string        `validate:"required_if=KeyStorageMode file"` // PEM private key for file mode
	MasterKeyPath  string        // Optional: key-encryption key for persistent mode
	KeyGracePeriod time.Duration // Optional: grace period for retired keys (default: 30 days)
	RSABits        int           // Optional: RSA key size for RS256 (default: 2048)
	NumKeys        int           // Optional: active signing keys (default: 1)
	DatabaseFile   string        `validate:"required"`

	InteractionTTL time.Duration `validate:"gt=0"`
	CodeTTL        time.Duration `validate:"gt=0"`
	AccessTTL      time.Duration `validate:"gt=0"`
	IDTokenTTL     time.Duration `validate:"gt=0"`
	RefreshTTL     time.Duration `validate:"gt=0"`

	CORSAllowedOrigins []string

	Env                  string // Environment (dev, staging, prod) (default: dev)
	LogLevel             string // Log level (debug, info, warn, error) (default: info)
	LogFormat            string // Log format (json, text) (default: json)
	Port                 int    `validate:"gt=0,lte=65535"`
	ShutdownGracePeriod  time.Duration
	HousekeepingInterval time.Duration
}

// LoadConfig reads the environment, after loading ENV_FILE (default .env)
// when it exists. Variables already set win over the file.
func LoadConfig() (Config, error) {
	envFile := getEnvOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Config{
		Issuer:           os.Getenv("OIDC_ISSUER"),
		InternalPrefixes: getEnvListOrDefault("OIDC_INTERNAL_PREFIXES", nil),
		CompletionMode:   strings.ToLower(getEnvOrDefault("OIDC_COMPLETION_MODE", "code")),

		ClientID:            getEnvOrDefault("OIDC_CLIENT_ID", "oidc_ui_tester"),
		ClientSecret:        os.Getenv("OIDC_CLIENT_SECRET"),
		ClientRedirectURIs:  getEnvListOrDefault("OIDC_CLIENT_REDIRECT_URIS", []string{"http://localhost:3000/callback"}),
		ClientResponseTypes: getEnvListOrDefault("OIDC_CLIENT_RESPONSE_TYPES", []string{"code"}),
		ClientGrantTypes:    getEnvListOrDefault("OIDC_CLIENT_GRANT_TYPES", []string{"authorization_code"}),
		ClientAuthMethod:    getEnvOrDefault("OIDC_CLIENT_AUTH_METHOD", "none"),

		IdentityAPIKey:          os.Getenv("IDENTITY_API_KEY"),
		IdentityBaseURL:         os.Getenv("IDENTITY_BASE_URL"), // Empty means the public endpoint
		IdentityEmulatorHost:    os.Getenv("IDENTITY_EMULATOR_HOST"),
		IdentityProjectID:       os.Getenv("IDENTITY_PROJECT_ID"),
		IdentityCredentialsFile: os.Getenv("IDENTITY_CREDENTIALS_FILE"),
		IdentityJWKSURI:         getEnvOrDefault("IDENTITY_JWKS_URI", defaultIdentityJWKSURI),
		IdentityTimeout:         getEnvDurationOrDefault("IDENTITY_TIMEOUT", 5*time.Second),

		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", "RS256"),
		KeyStorageMode: getEnvOrDefault("AUTH_KEY_STORAGE_MODE", "ephemeral"),
		SigningKeyFile: os.Getenv("AUTH_SIGNING_KEY_FILE"),
		MasterKeyPath:  os.Getenv("AUTH_MASTER_KEY_PATH"),
		KeyGracePeriod: getEnvDurationOrDefault("AUTH_KEY_GRACE_PERIOD", 30*24*time.Hour),
		RSABits:        getEnvIntOrDefault("AUTH_RSA_BITS", 2048),
		NumKeys:        getEnvIntOrDefault("AUTH_NUM_KEYS", 1),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "oidcbridge.db"),

		InteractionTTL: getEnvDurationOrDefault("INTERACTION_TTL", time.Hour),
		CodeTTL:        getEnvDurationOrDefault("AUTH_CODE_TTL", 60*time.Second),
		AccessTTL:      getEnvDurationOrDefault("ACCESS_TOKEN_TTL", time.Hour),
		IDTokenTTL:     getEnvDurationOrDefault("ID_TOKEN_TTL", time.Hour),
		RefreshTTL:     getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 14*24*time.Hour),

		CORSAllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg, cfg.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated variable, dropping empty items.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
