package config

import (
	"os"
	"strings"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
)

// Environment variables honored by every command. Secrets are only ever read
// from the environment, never written anywhere by this tool.
const (
	EnvBaseURL         = "N8N_BASE_URL"
	EnvWebhookURL      = "WEBHOOK_URL" // legacy alias for the base URL
	EnvUser            = "N8N_BASIC_AUTH_USER"
	EnvPassword        = "N8N_BASIC_AUTH_PASSWORD"
	EnvEncryptionKey   = "N8N_ENCRYPTION_KEY"
	EnvAPIKey          = "N8N_API_KEY"
	EnvSkipWorkflows   = "N8N_SKIP_WORKFLOWS"
	EnvSkipCredentials = "N8N_SKIP_CREDENTIALS"
)

// Config carries the environment-derived settings for one invocation. It is
// passed explicitly into each component so the sync logic can be tested
// against fakes without ambient global state.
type Config struct {
	// BaseURL is the target instance, e.g. https://n8n.example.com.
	BaseURL string

	// User and Password authenticate against the instance's basic auth.
	User     string
	Password string

	// EncryptionKey decrypts credential data blobs. Only the decrypt
	// command needs it.
	EncryptionKey string

	// APIKey authenticates against the public /api/v1 surface, which the
	// import-credentials command uses instead of basic auth.
	APIKey string

	// SkipWorkflows and SkipCredentials exclude a record kind from import.
	SkipWorkflows   bool
	SkipCredentials bool
}

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	baseURL := os.Getenv(EnvBaseURL)
	if baseURL == "" {
		baseURL = os.Getenv(EnvWebhookURL)
	}
	return Config{
		BaseURL:         baseURL,
		User:            os.Getenv(EnvUser),
		Password:        os.Getenv(EnvPassword),
		EncryptionKey:   os.Getenv(EnvEncryptionKey),
		APIKey:          os.Getenv(EnvAPIKey),
		SkipWorkflows:   os.Getenv(EnvSkipWorkflows) != "",
		SkipCredentials: os.Getenv(EnvSkipCredentials) != "",
	}
}

// ValidateTarget checks that the settings needed to reach the remote
// instance are present.
func (c Config) ValidateTarget() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return syncerrors.ErrMissingBaseURL
	}
	if c.User == "" || c.Password == "" {
		return syncerrors.ErrMissingCredentials
	}
	return nil
}
