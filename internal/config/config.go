package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the storyboard API server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Generation GenerationConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// GenerationConfig selects and configures the image-generation backend.
// The backend and, for Ark, the credential mode are resolved exactly once
// here at startup; nothing reads ambient environment state per call.
type GenerationConfig struct {
	Provider       string
	RequestTimeout time.Duration
	OpenAI         OpenAIConfig
	Ark            ArkConfig
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Ark credential modes. Exactly one is ever attached to a request.
const (
	ArkCredentialSigned = "signed"
	ArkCredentialBearer = "bearer"
)

type ArkConfig struct {
	Host      string
	Region    string
	ReqKey    string
	AccessKey string
	SecretKey string
	APIKey    string

	// CredentialMode is derived during validation from which key material is
	// present: bearer when APIKey is set, signed when AccessKey/SecretKey
	// are set. Setting both is a config error.
	CredentialMode string
}

var validProviders = map[string]bool{
	"openai": true,
	"ark":    true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("STORYBOARD_PORT", 8080),
			Env:  envString("STORYBOARD_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Generation: GenerationConfig{
			Provider:       os.Getenv("IMAGE_PROVIDER"),
			RequestTimeout: envDurationSecs("IMAGE_REQUEST_TIMEOUT_SECS", 120*time.Second),
			OpenAI: OpenAIConfig{
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com"),
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_IMAGE_MODEL", "gpt-image-1"),
			},
			Ark: ArkConfig{
				Host:      envString("ARK_HOST", "visual.volcengineapi.com"),
				Region:    envString("ARK_REGION", "cn-north-1"),
				ReqKey:    envString("ARK_REQ_KEY", "high_aes_general_v21_L"),
				AccessKey: os.Getenv("ARK_ACCESS_KEY"),
				SecretKey: os.Getenv("ARK_SECRET_KEY"),
				APIKey:    os.Getenv("ARK_API_KEY"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Generation.Provider == "" {
		return fmt.Errorf("IMAGE_PROVIDER is required")
	}
	if !validProviders[c.Generation.Provider] {
		return fmt.Errorf("IMAGE_PROVIDER must be one of openai, ark; got %q", c.Generation.Provider)
	}

	if c.Generation.Provider == "openai" && c.Generation.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when IMAGE_PROVIDER is openai")
	}

	if c.Generation.Provider == "ark" {
		if err := c.Generation.Ark.resolveCredentialMode(); err != nil {
			return err
		}
		if !strings.Contains(c.Generation.Ark.Host, ".") {
			return fmt.Errorf("ARK_HOST must be a hostname, got %q", c.Generation.Ark.Host)
		}
	}

	return nil
}

// resolveCredentialMode picks exactly one credential path for the Ark
// backend. A pre-issued API key and a signing key pair are mutually
// exclusive; configuring both is rejected rather than layered.
func (a *ArkConfig) resolveCredentialMode() error {
	hasBearer := a.APIKey != ""
	hasSigned := a.AccessKey != "" || a.SecretKey != ""

	switch {
	case hasBearer && hasSigned:
		return fmt.Errorf("ARK_API_KEY and ARK_ACCESS_KEY/ARK_SECRET_KEY are mutually exclusive; configure exactly one")
	case hasBearer:
		a.CredentialMode = ArkCredentialBearer
		return nil
	case a.AccessKey != "" && a.SecretKey != "":
		a.CredentialMode = ArkCredentialSigned
		return nil
	case hasSigned:
		return fmt.Errorf("ARK_ACCESS_KEY and ARK_SECRET_KEY must both be set for signed requests")
	default:
		return fmt.Errorf("ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY is required when IMAGE_PROVIDER is ark")
	}
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
