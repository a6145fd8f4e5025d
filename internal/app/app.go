// Package app assembles the service from configuration. Both the HTTP server
// and the Lambda entrypoint build on it.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/boardexport/internal/config"
	"github.com/gosuda/boardexport/internal/credential"
	"github.com/gosuda/boardexport/internal/export"
	"github.com/gosuda/boardexport/internal/monday"
	"github.com/gosuda/boardexport/internal/server"
)

// SetupLogging configures the global zerolog logger. level is a zerolog level
// name and falls back to info; format "text" selects the console writer.
func SetupLogging(out io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
}

// NewServer wires the board client, credential strategy, and export service
// into an HTTP server.
func NewServer(ctx context.Context, cfg *config.Config, version string) (*server.Server, error) {
	creds, err := credential.FromConfig(cfg.Credential)
	if err != nil {
		return nil, fmt.Errorf("app.NewServer: %w", err)
	}

	client := monday.New(cfg.Monday.APIURL, cfg.Monday.APIVersion,
		monday.WithHTTPClient(&http.Client{Timeout: cfg.Monday.Timeout}),
		monday.WithPageSize(cfg.Monday.PageSize),
		monday.WithRateLimit(cfg.Monday.RequestsPerSecond),
	)

	svc := export.NewService(client, export.Options{
		SheetName:      cfg.Export.SheetName,
		FilenamePrefix: cfg.Export.FilenamePrefix,
	})

	log.Info().
		Str("credential_mode", creds.Mode()).
		Str("api_url", cfg.Monday.APIURL).
		Str("api_version", cfg.Monday.APIVersion).
		Msg("export service ready")

	return server.New(ctx, cfg, svc, creds, version), nil
}
