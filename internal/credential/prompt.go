package credential

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/huh"
	"github.com/nao1215/wisdl/internal/model"
)

// PromptProvider asks for a login on the terminal. The password is masked.
// It answers every attempt, so it belongs at the end of a Chain.
type PromptProvider struct {
	input      io.Reader
	output     io.Writer
	accessible bool
	logger     *slog.Logger

	// ask fills creds. It defaults to a huh form and is replaced in tests.
	ask func(ctx context.Context, creds *model.Credentials) error
}

// PromptOption configures a PromptProvider.
type PromptOption func(*PromptProvider)

// WithIO sets the terminal streams of the form.
func WithIO(input io.Reader, output io.Writer) PromptOption {
	return func(p *PromptProvider) {
		p.input = input
		p.output = output
	}
}

// WithAccessible switches the form to plain line prompts, for terminals
// that cannot render the interactive form.
func WithAccessible(accessible bool) PromptOption {
	return func(p *PromptProvider) {
		p.accessible = accessible
	}
}

// WithPromptLogger sets the logger.
func WithPromptLogger(logger *slog.Logger) PromptOption {
	return func(p *PromptProvider) {
		p.logger = logger
	}
}

// NewPromptProvider creates a PromptProvider.
func NewPromptProvider(opts ...PromptOption) *PromptProvider {
	p := &PromptProvider{
		logger: slog.Default(),
	}
	p.ask = p.runForm
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Credentials prompts until the user enters a well-formed login or aborts.
func (p *PromptProvider) Credentials(ctx context.Context, attempt int) (model.Credentials, error) {
	p.logger.Debug("loading user credentials", "attempt", attempt)

	var creds model.Credentials
	if err := p.ask(ctx, &creds); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return model.Credentials{}, ErrAborted
		}
		return model.Credentials{}, err
	}

	if err := creds.Validate(); err != nil {
		return model.Credentials{}, err
	}
	return creds, nil
}

// newForm builds the login form bound to creds.
func (p *PromptProvider) newForm(creds *model.Credentials) *huh.Form {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("WIS username").
				Placeholder("xlogin00").
				Value(&creds.Username).
				Validate(model.ValidateUsername),
			huh.NewInput().
				Title("WIS password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(model.ValidatePassword),
		),
	).WithAccessible(p.accessible)

	if p.input != nil {
		form = form.WithInput(p.input)
	}
	if p.output != nil {
		form = form.WithOutput(p.output)
	}
	return form
}

func (p *PromptProvider) runForm(ctx context.Context, creds *model.Credentials) error {
	return p.newForm(creds).RunWithContext(ctx)
}
