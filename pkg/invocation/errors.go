package invocation

import (
	"errors"
	"fmt"
)

// ErrorKind classifica a falha de uma invocação.
type ErrorKind string

const (
	// KindDecode indica configuração ou input malformado (bug do chamador ou do deploy).
	KindDecode ErrorKind = "DecodeError"
	// KindCapabilityMissing indica ausência de acesso autenticado ao store.
	KindCapabilityMissing ErrorKind = "CapabilityMissing"
	// KindStoreOperation indica falha retornada pela própria operação de delete.
	KindStoreOperation ErrorKind = "StoreOperationError"
)

// Códigos expostos ao chamador.
const (
	CodeDecode         = "DECODE_ERROR"
	CodeNoSDKConfig    = "NO_SDK_CONFIG"
	CodeStoreOperation = "STORE_OPERATION_FAILED"
)

// MsgNoSDKConfig é a mensagem fixa do erro NO_SDK_CONFIG.
const MsgNoSDKConfig = "No aws sdk config found in handler context"

// HandlerError é o erro estruturado (kind + code + message) devolvido pelo handler.
type HandlerError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	// Err é a causa original, quando existir.
	Err error `json:"-"`
}

// Error implementa a interface error.
//
// Para KindStoreOperation a mensagem é exatamente a do erro do store.
func (e *HandlerError) Error() string {
	if e.Kind == KindStoreOperation && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap expõe a causa original para errors.Is / errors.As.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Retryable informa se o próprio componente consideraria repetir a chamada.
// Erros de decode e de capability nunca são; para erros do store a decisão
// fica com o runtime, então também retorna false aqui.
func (e *HandlerError) Retryable() bool {
	return false
}

// NewDecodeError cria um erro de decode para o alvo informado ("config" ou "input").
func NewDecodeError(target string, err error) *HandlerError {
	return &HandlerError{
		Kind:    KindDecode,
		Code:    CodeDecode,
		Message: fmt.Sprintf("invalid %s payload", target),
		Err:     err,
	}
}

// NewCapabilityMissingError cria o erro NO_SDK_CONFIG.
func NewCapabilityMissingError(reason string) *HandlerError {
	var cause error
	if reason != "" {
		cause = errors.New(reason)
	}
	return &HandlerError{
		Kind:    KindCapabilityMissing,
		Code:    CodeNoSDKConfig,
		Message: MsgNoSDKConfig,
		Err:     cause,
	}
}

// NewStoreOperationError embrulha sem alterar o erro vindo do store.
func NewStoreOperationError(err error) *HandlerError {
	return &HandlerError{
		Kind:    KindStoreOperation,
		Code:    CodeStoreOperation,
		Message: err.Error(),
		Err:     err,
	}
}

// KindOf extrai o ErrorKind de qualquer erro da cadeia. Retorna "" se não houver.
func KindOf(err error) ErrorKind {
	var he *HandlerError
	if errors.As(err, &he) {
		return he.Kind
	}
	return ""
}
