// Package handler contém a função de delete de um registro: decodifica a
// configuração da invocação e a chave do chamador, confirma que há um
// cliente de store disponível e executa exatamente um delete.
package handler

import (
	"context"
	"encoding/json"

	"github.com/raywall/delete-record-function/pkg/invocation"
	"github.com/rs/zerolog"
)

// SuccessMessage é a mensagem fixa devolvida em caso de sucesso.
const SuccessMessage = "Successfully deleted record"

// Stage é a etapa corrente da invocação (apenas para log).
type Stage string

const (
	StageDecoding              Stage = "decoding"
	StageAuthorizingCapability Stage = "authorizing_capability"
	StageExecutingDelete       Stage = "executing_delete"
	StageSucceeded             Stage = "succeeded"
	StageFailed                Stage = "failed"
)

// Response é a confirmação de sucesso.
type Response struct {
	Message string `json:"message"`
}

// Handle apaga um registro.
//
// Fluxo linear: decode da config -> decode do input -> capability -> delete.
// Nenhuma chamada ao store acontece se alguma pré-condição falhar, e no
// máximo uma acontece por invocação. Não há retry nem timeout aqui: os dois
// ficam com o cliente do store e com o deadline do runtime (via ctx).
//
// Se ctx for cancelado com o delete em andamento, o resultado no store é
// indeterminado (pode ou não ter sido aplicado); o erro devolvido é o do
// cliente do store.
func Handle(ctx context.Context, ec *invocation.Context, input json.RawMessage) (Response, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "delete_handler").Logger()
	if ec != nil {
		logger = logger.With().Str("request_id", ec.RequestID).Logger()
	}

	logger.Debug().Str("stage", string(StageDecoding)).Msg("decoding invocation")
	var data json.RawMessage
	if ec != nil {
		data = ec.Data
	}
	cfg, err := invocation.DecodeConfig(data)
	if err != nil {
		return fail(logger, err)
	}
	key, err := invocation.DecodeKey(input)
	if err != nil {
		return fail(logger, err)
	}

	logger = logger.With().Str("table", cfg.TableName).Logger()
	logger.Debug().Str("stage", string(StageAuthorizingCapability)).Msg("requesting store client")

	var client invocation.Available
	switch capability := ec.StoreCapability(ctx).(type) {
	case invocation.Available:
		client = capability
	case invocation.Unavailable:
		return fail(logger, invocation.NewCapabilityMissingError(capability.Reason))
	default:
		return fail(logger, invocation.NewCapabilityMissingError("unknown capability"))
	}

	logger.Debug().
		Str("stage", string(StageExecutingDelete)).
		Strs("key_fields", key.Fields()).
		Msg("deleting record")
	if err := client.Client.DeleteRecord(ctx, cfg.TableName, key); err != nil {
		return fail(logger, invocation.NewStoreOperationError(err))
	}

	logger.Info().Str("stage", string(StageSucceeded)).Msg("record deleted")
	return Response{Message: SuccessMessage}, nil
}

func fail(logger zerolog.Logger, err error) (Response, error) {
	logger.Warn().
		Err(err).
		Str("stage", string(StageFailed)).
		Str("kind", string(invocation.KindOf(err))).
		Msg("delete invocation failed")
	return Response{}, err
}
