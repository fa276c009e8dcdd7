package invocation

import (
	"context"
	"encoding/json"

	"github.com/raywall/delete-record-function/pkg/store"
)

// ClientFactory constrói, sob demanda, um cliente autenticado do store.
// É chamada uma vez por invocação; o handler não reaproveita o cliente.
type ClientFactory func(ctx context.Context) (store.Client, error)

// StoreCapability é o resultado de pedir acesso ao store ao contexto:
// Available ou Unavailable. O switch do chamador deve tratar os dois ramos.
type StoreCapability interface {
	isStoreCapability()
}

// Available carrega o cliente autenticado.
type Available struct {
	Client store.Client
}

// Unavailable indica que não há como construir um cliente. Reason é diagnóstico.
type Unavailable struct {
	Reason string
}

func (Available) isStoreCapability()   {}
func (Unavailable) isStoreCapability() {}

// Context é o contexto de execução de uma invocação. É montado pelo runtime
// (Lambda, servidor local, CLI), nunca pelo handler.
type Context struct {
	// RequestID identifica a invocação (correlation id).
	RequestID string
	// FunctionName é o nome lógico da função invocada.
	FunctionName string
	// Data é o payload opaco de configuração (ver InvocationConfig).
	Data json.RawMessage
	// Factory é opcional. Sem ela a capability é sempre Unavailable.
	Factory ClientFactory
}

// New cria um contexto de execução.
func New(requestID, functionName string, data json.RawMessage, factory ClientFactory) *Context {
	return &Context{
		RequestID:    requestID,
		FunctionName: functionName,
		Data:         data,
		Factory:      factory,
	}
}

// StoreCapability executa a factory (se houver) e devolve a capability.
func (c *Context) StoreCapability(ctx context.Context) StoreCapability {
	if c == nil || c.Factory == nil {
		return Unavailable{Reason: "no store client factory in context"}
	}
	client, err := c.Factory(ctx)
	if err != nil {
		return Unavailable{Reason: err.Error()}
	}
	if client == nil {
		return Unavailable{Reason: "store client factory returned nil"}
	}
	return Available{Client: client}
}
