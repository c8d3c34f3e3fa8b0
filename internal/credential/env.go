package credential

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/nao1215/wisdl/internal/model"
)

// Environment variable names read by EnvProvider.
const (
	EnvUsername = "WIS_USERNAME"
	EnvPassword = "WIS_PASSWORD"
)

// EnvProvider reads credentials from the process environment and,
// optionally, a dotenv file. Process variables win over the file.
type EnvProvider struct {
	envFile string
	lookup  func(string) (string, bool)
	logger  *slog.Logger
}

// EnvOption configures an EnvProvider.
type EnvOption func(*EnvProvider)

// WithEnvFile sets a dotenv file to read. The file must exist.
func WithEnvFile(path string) EnvOption {
	return func(p *EnvProvider) {
		p.envFile = path
	}
}

// WithLookup replaces os.LookupEnv. Used by tests.
func WithLookup(lookup func(string) (string, bool)) EnvOption {
	return func(p *EnvProvider) {
		p.lookup = lookup
	}
}

// WithEnvLogger sets the logger.
func WithEnvLogger(logger *slog.Logger) EnvOption {
	return func(p *EnvProvider) {
		p.logger = logger
	}
}

// NewEnvProvider creates an EnvProvider.
func NewEnvProvider(opts ...EnvOption) *EnvProvider {
	p := &EnvProvider{
		lookup: os.LookupEnv,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Credentials returns WIS_USERNAME and WIS_PASSWORD on the first attempt.
// Later attempts, and an environment without both variables, yield
// ErrNoCredentials. Variables that are set but malformed are an error.
func (p *EnvProvider) Credentials(_ context.Context, attempt int) (model.Credentials, error) {
	if attempt > 1 {
		return model.Credentials{}, ErrNoCredentials
	}

	fileValues := map[string]string{}
	if p.envFile != "" {
		values, err := godotenv.Read(p.envFile)
		if err != nil {
			return model.Credentials{}, fmt.Errorf("failed to read env file %s: %w", p.envFile, err)
		}
		fileValues = values
	}

	username, okUser := p.value(EnvUsername, fileValues)
	password, okPass := p.value(EnvPassword, fileValues)
	if !okUser || !okPass {
		return model.Credentials{}, ErrNoCredentials
	}

	creds := model.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return model.Credentials{}, fmt.Errorf("credentials from environment: %w", err)
	}

	p.logger.Debug("credentials loaded from environment", "username", creds.Username)
	return creds, nil
}

func (p *EnvProvider) value(key string, fileValues map[string]string) (string, bool) {
	if v, ok := p.lookup(key); ok && v != "" {
		return v, true
	}
	v, ok := fileValues[key]
	return v, ok && v != ""
}
