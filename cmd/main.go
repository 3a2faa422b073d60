package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"helpline-responder/internal/app"
	"helpline-responder/internal/config"
	"helpline-responder/internal/integrations/paramstore"
	"helpline-responder/internal/repository"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	// The Lambda runtime freezes once the response is returned, so every
	// reply must be sent before Handle returns.
	cfg.SyncDispatch = true

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	cfg, err = cfg.ResolveSecrets(ctx, ssmClient)
	if err != nil {
		slog.Error("failed to resolve secrets", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	helplines, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.HelplineTable)
	if err != nil {
		slog.Error("failed to create helpline repository", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	a, err := app.New(ctx, cfg, app.Deps{Params: ssmClient, Helplines: helplines}, logger)
	if err != nil {
		slog.Error("failed to build application", "err", err)
		os.Exit(1)
	}

	lambda.Start(a.Handler.Handle)
}
