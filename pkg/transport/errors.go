package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/raywall/delete-record-function/pkg/invocation"
)

// StatusFor mapeia o tipo de falha da invocação para um status HTTP.
func StatusFor(err error) int {
	switch invocation.KindOf(err) {
	case invocation.KindDecode:
		return http.StatusBadRequest
	case invocation.KindCapabilityMissing:
		return http.StatusServiceUnavailable
	case invocation.KindStoreOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorEnvelope struct {
	Error *invocation.HandlerError `json:"error"`
}

// ErrorBody serializa err como {"error": {"kind", "code", "message"}}.
func ErrorBody(err error) []byte {
	var he *invocation.HandlerError
	if !errors.As(err, &he) {
		he = &invocation.HandlerError{Kind: "InternalError", Code: "INTERNAL", Message: err.Error()}
	}
	env := errorEnvelope{Error: he}
	body, _ := json.Marshal(env)
	return body
}
