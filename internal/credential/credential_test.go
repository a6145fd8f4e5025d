package credential_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/boardexport/internal/config"
	"github.com/gosuda/boardexport/internal/credential"
	"github.com/gosuda/boardexport/internal/domain"
)

func TestFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		cfg          config.CredentialConfig
		wantMode     string
		wantReqToken bool
		wantErr      bool
	}{
		{name: "request mode", cfg: config.CredentialConfig{Mode: "request"}, wantMode: "request", wantReqToken: true},
		{name: "env mode", cfg: config.CredentialConfig{Mode: "env", APIToken: "srv"}, wantMode: "env", wantReqToken: false},
		{name: "unknown mode", cfg: config.CredentialConfig{Mode: "kms"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := credential.FromConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, s.Mode())
			assert.Equal(t, tt.wantReqToken, s.RequiresRequestToken())
		})
	}
}

func TestRequestToken_Token(t *testing.T) {
	t.Parallel()

	t.Run("returns request token", func(t *testing.T) {
		t.Parallel()

		tok, err := credential.RequestToken{}.Token(&domain.ExportRequest{Token: "session-abc"})
		require.NoError(t, err)
		assert.Equal(t, "session-abc", tok)
	})

	t.Run("empty token is a client error", func(t *testing.T) {
		t.Parallel()

		_, err := credential.RequestToken{}.Token(&domain.ExportRequest{})
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestServerSecret_Token(t *testing.T) {
	t.Parallel()

	t.Run("ignores request token", func(t *testing.T) {
		t.Parallel()

		s := credential.NewServerSecret("server-token")
		tok, err := s.Token(&domain.ExportRequest{Token: "caller-token"})
		require.NoError(t, err)
		assert.Equal(t, "server-token", tok)
	})

	t.Run("missing secret is a server error", func(t *testing.T) {
		t.Parallel()

		s := credential.NewServerSecret("")
		_, err := s.Token(&domain.ExportRequest{Token: "caller-token"})
		require.ErrorIs(t, err, domain.ErrMissingCredential)
		assert.NotErrorIs(t, err, domain.ErrInvalidRequest)
	})
}
