package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/delete-record-function/envloader"
	"github.com/raywall/delete-record-function/pkg/credentials"
	"github.com/raywall/delete-record-function/pkg/engine"
	"github.com/raywall/delete-record-function/pkg/transport"
	"github.com/rs/zerolog/log"
)

// bootstrapEnv são as variáveis lidas antes do YAML.
type bootstrapEnv struct {
	ConfigPath string `env:"CONFIG_FILE_PATH,required"`
	Region     string `env:"AWS_REGION"`
	LogLevel   string `env:"LOG_LEVEL"`
}

var (
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(handler any) { lambda.Start(handler) }
	sqsClientFor  = func(ctx context.Context, region string) (transport.SQSClient, error) {
		cfg, err := credentials.GetAWSConfig(ctx, region)
		if err != nil {
			return nil, err
		}
		return sqs.NewFromConfig(cfg), nil
	}
)

func main() {
	var env bootstrapEnv
	if err := envloader.Load(&env); err != nil {
		log.Fatal().Err(err).Msg("invalid bootstrap environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, env); err != nil {
		log.Fatal().Err(err).Msg("delete-record function stopped")
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, env bootstrapEnv) error {
	// 1. Carrega Configuração (Loader)
	loader := engine.NewUniversalLoader()
	if env.Region != "" {
		loader.Region = env.Region
	}
	cfg, err := loader.Load(ctx, env.ConfigPath)
	if err != nil {
		return err
	}
	if env.LogLevel != "" {
		cfg.Service.Logging.Level = env.LogLevel
	}

	// 2. Inicializa Engine (cold start)
	svc, err := engine.NewServiceEngine(ctx, cfg, env.ConfigPath, engine.WithLoader(loader))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Shutdown(context.Background()); err != nil {
			svc.Logger.Warn().Err(err).Msg("shutdown finished with errors")
		}
	}()

	// 3. Seleciona Runtime Strategy
	switch cfg.Service.Runtime {
	case "local":
		if cfg.Reload.SQSQueueURL != "" {
			client, err := sqsClientFor(ctx, loader.Region)
			if err != nil {
				return fmt.Errorf("sqs reloader: %w", err)
			}
			go transport.NewSQSReloader(client, cfg.Reload.SQSQueueURL, svc).Start(ctx)
		}
		return serverStarter(ctx, svc)
	case "lambda":
		lambdaStarter(transport.NewLambdaHandler(svc).Handle)
		return nil
	default:
		return fmt.Errorf("unknown runtime %q", cfg.Service.Runtime)
	}
}
