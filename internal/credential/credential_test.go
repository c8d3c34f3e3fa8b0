package credential

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/nao1215/wisdl/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mapLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// TestEnvProvider tests environment and dotenv credential loading.
func TestEnvProvider(t *testing.T) {
	t.Parallel()

	t.Run("reads process environment", func(t *testing.T) {
		t.Parallel()

		p := NewEnvProvider(
			WithLookup(mapLookup(map[string]string{EnvUsername: "xlogin00", EnvPassword: "correct horse"})),
			WithEnvLogger(quietLogger()),
		)

		creds, err := p.Credentials(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.Username != "xlogin00" || creds.Password != "correct horse" {
			t.Errorf("unexpected credentials: %v", creds)
		}
	})

	t.Run("answers the first attempt only", func(t *testing.T) {
		t.Parallel()

		p := NewEnvProvider(
			WithLookup(mapLookup(map[string]string{EnvUsername: "xlogin00", EnvPassword: "correct horse"})),
			WithEnvLogger(quietLogger()),
		)

		if _, err := p.Credentials(context.Background(), 2); !errors.Is(err, ErrNoCredentials) {
			t.Errorf("expected ErrNoCredentials, got %v", err)
		}
	})

	t.Run("missing variables yield no credentials", func(t *testing.T) {
		t.Parallel()

		p := NewEnvProvider(
			WithLookup(mapLookup(map[string]string{EnvUsername: "xlogin00"})),
			WithEnvLogger(quietLogger()),
		)

		if _, err := p.Credentials(context.Background(), 1); !errors.Is(err, ErrNoCredentials) {
			t.Errorf("expected ErrNoCredentials, got %v", err)
		}
	})

	t.Run("malformed variables are an error", func(t *testing.T) {
		t.Parallel()

		p := NewEnvProvider(
			WithLookup(mapLookup(map[string]string{EnvUsername: "xlogin00", EnvPassword: "short"})),
			WithEnvLogger(quietLogger()),
		)

		if _, err := p.Credentials(context.Background(), 1); !errors.Is(err, model.ErrPasswordTooShort) {
			t.Errorf("expected ErrPasswordTooShort, got %v", err)
		}
	})

	t.Run("reads dotenv file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		content := "WIS_USERNAME=xfilee00\nWIS_PASSWORD=\"from the file\"\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		p := NewEnvProvider(
			WithEnvFile(path),
			WithLookup(mapLookup(nil)),
			WithEnvLogger(quietLogger()),
		)

		creds, err := p.Credentials(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.Username != "xfilee00" || creds.Password != "from the file" {
			t.Errorf("unexpected credentials: %v", creds)
		}
	})

	t.Run("process environment wins over dotenv", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		content := "WIS_USERNAME=xfilee00\nWIS_PASSWORD=from the file\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		p := NewEnvProvider(
			WithEnvFile(path),
			WithLookup(mapLookup(map[string]string{EnvUsername: "xproce00"})),
			WithEnvLogger(quietLogger()),
		)

		creds, err := p.Credentials(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.Username != "xproce00" || creds.Password != "from the file" {
			t.Errorf("unexpected credentials: %v", creds)
		}
	})

	t.Run("missing dotenv file is an error", func(t *testing.T) {
		t.Parallel()

		p := NewEnvProvider(
			WithEnvFile(filepath.Join(t.TempDir(), "absent.env")),
			WithLookup(mapLookup(nil)),
			WithEnvLogger(quietLogger()),
		)

		_, err := p.Credentials(context.Background(), 1)
		if err == nil || errors.Is(err, ErrNoCredentials) {
			t.Errorf("expected a read error, got %v", err)
		}
	})
}

// TestPromptProvider tests the prompt result handling.
func TestPromptProvider(t *testing.T) {
	t.Parallel()

	t.Run("returns entered credentials", func(t *testing.T) {
		t.Parallel()

		p := NewPromptProvider(WithPromptLogger(quietLogger()))
		p.ask = func(_ context.Context, creds *model.Credentials) error {
			creds.Username = "xlogin00"
			creds.Password = "correct horse"
			return nil
		}

		creds, err := p.Credentials(context.Background(), 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.Username != "xlogin00" {
			t.Errorf("expected xlogin00, got %q", creds.Username)
		}
	})

	t.Run("user abort maps to ErrAborted", func(t *testing.T) {
		t.Parallel()

		p := NewPromptProvider(WithPromptLogger(quietLogger()))
		p.ask = func(context.Context, *model.Credentials) error {
			return huh.ErrUserAborted
		}

		if _, err := p.Credentials(context.Background(), 1); !errors.Is(err, ErrAborted) {
			t.Errorf("expected ErrAborted, got %v", err)
		}
	})

	t.Run("cancelled context maps to ErrAborted", func(t *testing.T) {
		t.Parallel()

		p := NewPromptProvider(WithPromptLogger(quietLogger()))
		p.ask = func(ctx context.Context, _ *model.Credentials) error {
			return ctx.Err()
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := p.Credentials(ctx, 1); !errors.Is(err, ErrAborted) {
			t.Errorf("expected ErrAborted, got %v", err)
		}
	})

	t.Run("invalid entry is rejected", func(t *testing.T) {
		t.Parallel()

		p := NewPromptProvider(WithPromptLogger(quietLogger()))
		p.ask = func(_ context.Context, creds *model.Credentials) error {
			creds.Username = "Admin"
			creds.Password = "correct horse"
			return nil
		}

		if _, err := p.Credentials(context.Background(), 1); !errors.Is(err, model.ErrInvalidUsername) {
			t.Errorf("expected ErrInvalidUsername, got %v", err)
		}
	})

	t.Run("builds a form", func(t *testing.T) {
		t.Parallel()

		p := NewPromptProvider(WithIO(nil, io.Discard), WithAccessible(true))
		var creds model.Credentials
		if p.newForm(&creds) == nil {
			t.Error("expected a form")
		}
	})
}

// TestChain tests provider fallthrough.
func TestChain(t *testing.T) {
	t.Parallel()

	fixed := func(name string) Provider {
		return ProviderFunc(func(context.Context, int) (model.Credentials, error) {
			return model.Credentials{Username: name, Password: "correct horse"}, nil
		})
	}
	none := ProviderFunc(func(context.Context, int) (model.Credentials, error) {
		return model.Credentials{}, ErrNoCredentials
	})
	failing := ProviderFunc(func(context.Context, int) (model.Credentials, error) {
		return model.Credentials{}, ErrAborted
	})

	tests := []struct {
		name        string
		providers   []Provider
		expected    string
		expectedErr error
	}{
		{name: "first usable wins", providers: []Provider{fixed("xfirst00"), fixed("xsecon00")}, expected: "xfirst00"},
		{name: "skips empty providers", providers: []Provider{none, fixed("xsecon00")}, expected: "xsecon00"},
		{name: "errors stop the chain", providers: []Provider{failing, fixed("xsecon00")}, expectedErr: ErrAborted},
		{name: "nothing usable", providers: []Provider{none}, expectedErr: ErrNoCredentials},
		{name: "empty chain", providers: nil, expectedErr: ErrNoCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			creds, err := Chain(tt.providers...).Credentials(context.Background(), 1)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if creds.Username != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, creds.Username)
			}
		})
	}
}

// TestChainEnvThenPrompt tests the wiring used by the CLI: the environment
// answers first, the prompt answers after a rejection.
func TestChainEnvThenPrompt(t *testing.T) {
	t.Parallel()

	env := NewEnvProvider(
		WithLookup(mapLookup(map[string]string{EnvUsername: "xenvir00", EnvPassword: "correct horse"})),
		WithEnvLogger(quietLogger()),
	)
	prompt := NewPromptProvider(WithPromptLogger(quietLogger()))
	prompt.ask = func(_ context.Context, creds *model.Credentials) error {
		creds.Username = "xpromp00"
		creds.Password = "correct horse"
		return nil
	}

	p := Chain(env, prompt)

	first, err := p.Credentials(context.Background(), 1)
	if err != nil || first.Username != "xenvir00" {
		t.Fatalf("expected environment login on attempt 1, got %v, %v", first, err)
	}

	second, err := p.Credentials(context.Background(), 2)
	if err != nil || second.Username != "xpromp00" {
		t.Fatalf("expected prompted login on attempt 2, got %v, %v", second, err)
	}
}
