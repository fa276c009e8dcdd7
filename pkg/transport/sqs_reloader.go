package transport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SQSClient define a interface necessária para o reloader (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Reloader define a interface para recarregar o engine
type Reloader interface {
	Reload(ctx context.Context) error
}

// SQSReloader escuta uma fila SQS e recarrega a configuração a cada mensagem.
type SQSReloader struct {
	client   SQSClient
	queueURL string
	reloader Reloader
	logger   zerolog.Logger

	// RetryDelay é a espera após erro no ReceiveMessage.
	RetryDelay time.Duration
}

func NewSQSReloader(client SQSClient, queueURL string, reloader Reloader) *SQSReloader {
	return &SQSReloader{
		client:     client,
		queueURL:   queueURL,
		reloader:   reloader,
		logger:     log.With().Str("component", "sqs_reloader").Logger(),
		RetryDelay: 5 * time.Second,
	}
}

// Start inicia o monitoramento (bloqueante até ctx ser cancelado).
//
// Uma mensagem vira um único Reload, e é removida da fila mesmo se o reload
// falhar: a configuração ativa continua valendo e o erro fica no log.
func (s *SQSReloader) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("sqs queue url not configured, hot reload disabled")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("watching sqs queue for config reload")

	for {
		if ctx.Err() != nil {
			s.logger.Info().Msg("stopping sqs watcher")
			return
		}

		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     20, // Long polling
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Dur("retry_in", s.RetryDelay).Msg("sqs receive failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.RetryDelay):
			}
			continue
		}

		for _, msg := range out.Messages {
			if err := s.reloader.Reload(ctx); err != nil {
				s.logger.Error().Err(err).Msg("config reload failed")
			} else {
				s.logger.Info().Msg("config reload applied")
			}

			if _, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(s.queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				s.logger.Warn().Err(err).Msg("failed to delete sqs message")
			}
		}
	}
}
