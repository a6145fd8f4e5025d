package app

import (
	"context"
	"fmt"

	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/gosuda/boardexport/internal/config"
)

// NewFunctionURLHandler wires the server behind a Lambda function URL. Function
// URL events use the HTTP API 2.0 payload, so the v2 adapter serves them.
// Responses whose body is not valid UTF-8, such as workbooks, come back
// base64-encoded.
func NewFunctionURLHandler(ctx context.Context, cfg *config.Config, version string) (*httpadapter.HandlerAdapterV2, error) {
	srv, err := NewServer(ctx, cfg, version)
	if err != nil {
		return nil, fmt.Errorf("app.NewFunctionURLHandler: %w", err)
	}
	return httpadapter.NewV2(srv.Handler()), nil
}
