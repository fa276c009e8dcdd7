package engine

import (
	"context"
	"encoding/json"

	"github.com/raywall/delete-record-function/pkg/config"
	"github.com/raywall/delete-record-function/pkg/handler"
)

// Loader é responsável por carregar e decodificar a configuração do serviço.
// Ele abstrai a origem do arquivo (Sistema de arquivos, S3, DynamoDB, SSM).
type Loader interface {
	// Load lê a configuração a partir de uma origem e retorna a struct validada.
	Load(ctx context.Context, source string) (*config.ServiceConfig, error)
}

// InvocationEvent é o envelope de uma invocação direta.
//
// Data é a configuração da invocação (sobreposta aos defaults de function:
// do YAML). Input é a chave do registro a apagar.
type InvocationEvent struct {
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Input     json.RawMessage `json:"input"`
}

// Executor é a interface de tempo de execução (Runtime).
// Deve ser thread-safe: é chamada concorrentemente pelo servidor HTTP.
type Executor interface {
	// Invoke processa uma única invocação de delete.
	Invoke(ctx context.Context, ev InvocationEvent) (handler.Response, error)

	// Reload recarrega a configuração a partir da origem original.
	Reload(ctx context.Context) error

	// Shutdown realiza o encerramento gracioso de recursos (pools, flush de métricas).
	Shutdown(ctx context.Context) error
}
