// Package credential selects where the upstream board API token comes from.
package credential

import (
	"fmt"

	"github.com/gosuda/boardexport/internal/config"
	"github.com/gosuda/boardexport/internal/domain"
)

// Strategy resolves the upstream API token for an export request.
type Strategy interface {
	// Token returns the credential to send upstream.
	Token(req *domain.ExportRequest) (string, error)
	// RequiresRequestToken reports whether the caller must send a token in the body.
	RequiresRequestToken() bool
	// Mode returns the configured mode name.
	Mode() string
}

// RequestToken forwards the caller-supplied session token.
type RequestToken struct{}

func (RequestToken) Token(req *domain.ExportRequest) (string, error) {
	if req.Token == "" {
		return "", fmt.Errorf("credential.RequestToken.Token: %w: token is required", domain.ErrInvalidRequest)
	}
	return req.Token, nil
}

func (RequestToken) RequiresRequestToken() bool { return true }
func (RequestToken) Mode() string               { return config.CredentialModeRequest }

// ServerSecret uses a token held by the server and ignores any token in the request.
type ServerSecret struct {
	secret string
}

// NewServerSecret creates a ServerSecret strategy. An empty secret is allowed
// here; it fails per request with domain.ErrMissingCredential.
func NewServerSecret(secret string) *ServerSecret {
	return &ServerSecret{secret: secret}
}

func (s *ServerSecret) Token(_ *domain.ExportRequest) (string, error) {
	if s.secret == "" {
		return "", fmt.Errorf("credential.ServerSecret.Token: %w", domain.ErrMissingCredential)
	}
	return s.secret, nil
}

func (s *ServerSecret) RequiresRequestToken() bool { return false }
func (s *ServerSecret) Mode() string               { return config.CredentialModeEnv }

// FromConfig builds the strategy named by cfg.Mode.
func FromConfig(cfg config.CredentialConfig) (Strategy, error) {
	switch cfg.Mode {
	case config.CredentialModeRequest:
		return RequestToken{}, nil
	case config.CredentialModeEnv:
		return NewServerSecret(cfg.APIToken), nil
	default:
		return nil, fmt.Errorf("credential.FromConfig: unknown mode %q", cfg.Mode)
	}
}
