package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/boardexport/internal/app"
	"github.com/gosuda/boardexport/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app.SetupLogging(os.Stdout, os.Getenv("BOARDEXPORT_LOG_LEVEL"), os.Getenv("BOARDEXPORT_LOG_FORMAT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// The execution environment is frozen between invocations, so background
	// work tied to this context simply pauses with it.
	h, err := app.NewFunctionURLHandler(context.Background(), cfg, version)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	lambda.Start(h.ProxyWithContext)
}
