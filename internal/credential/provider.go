package credential

import (
	"context"
	"errors"

	"github.com/nao1215/wisdl/internal/model"
)

// Provider returns credentials for a connection attempt, starting at 1.
type Provider interface {
	Credentials(ctx context.Context, attempt int) (model.Credentials, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, attempt int) (model.Credentials, error)

// Credentials calls f.
func (f ProviderFunc) Credentials(ctx context.Context, attempt int) (model.Credentials, error) {
	return f(ctx, attempt)
}

// chain asks providers in order.
type chain []Provider

// Chain returns a Provider that asks each provider in order and returns the
// first answer that is not ErrNoCredentials.
func Chain(providers ...Provider) Provider {
	return chain(providers)
}

func (c chain) Credentials(ctx context.Context, attempt int) (model.Credentials, error) {
	for _, p := range c {
		creds, err := p.Credentials(ctx, attempt)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		return creds, err
	}
	return model.Credentials{}, ErrNoCredentials
}
