package invocation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/delete-record-function/pkg/store"
)

var validate = validator.New()

// InvocationConfig é a configuração tipada de uma invocação, decodificada
// do payload opaco do contexto de execução.
type InvocationConfig struct {
	TableName   string            `json:"table_name" validate:"required"`
	PrimaryKey  string            `json:"primary_key" validate:"required"`
	IndexData   map[string]string `json:"index_data" validate:"required"`
	TokenClaims any               `json:"token_claims"`
}

// DeleteKeyPayload é o input do chamador: campo -> valor opaco.
// Números ficam como json.Number para chegar ao store sem conversão.
type DeleteKeyPayload map[string]any

// Fields retorna os nomes dos campos em ordem determinística.
func (p DeleteKeyPayload) Fields() []string {
	return store.SortedFields(p)
}

// DecodeConfig decodifica e valida o payload de configuração.
// Qualquer campo obrigatório ausente ou tipo errado aborta a invocação.
func DecodeConfig(data json.RawMessage) (InvocationConfig, error) {
	var cfg InvocationConfig
	if err := decodeObject(data, &cfg); err != nil {
		return InvocationConfig{}, NewDecodeError("config", err)
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, e := range verrs {
				missing = append(missing, fmt.Sprintf("'%s' failed on '%s'", e.Field(), e.Tag()))
			}
			return InvocationConfig{}, NewDecodeError("config", errors.New(strings.Join(missing, ", ")))
		}
		return InvocationConfig{}, NewDecodeError("config", err)
	}
	return cfg, nil
}

// DecodeKey decodifica o input do chamador. Só mapeamentos são aceitos.
func DecodeKey(input json.RawMessage) (DeleteKeyPayload, error) {
	var payload DeleteKeyPayload
	if err := decodeObject(input, &payload); err != nil {
		return nil, NewDecodeError("input", err)
	}
	return payload, nil
}

// decodeObject exige um objeto JSON (null, escalares e arrays são rejeitados).
func decodeObject(raw json.RawMessage, target any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return errors.New("empty payload")
	}
	if trimmed[0] != '{' {
		return fmt.Errorf("expected a JSON object, got %s", describe(trimmed[0]))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return err
	}
	// Qualquer coisa depois do objeto, inclusive "]" ou "}" soltos, é erro.
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON object")
	}
	return nil
}

func describe(first byte) string {
	switch {
	case first == '[':
		return "array"
	case first == '"':
		return "string"
	case first == 'n':
		return "null"
	case first == 't' || first == 'f':
		return "boolean"
	default:
		return "scalar"
	}
}

// MergeData sobrepõe (shallow) o objeto overlay ao objeto base.
// Campos do overlay vencem. Qualquer camada vazia é ignorada.
func MergeData(base, overlay json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(base)) == 0 {
		return overlay, nil
	}
	if len(bytes.TrimSpace(overlay)) == 0 {
		return base, nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, NewDecodeError("config", fmt.Errorf("base layer: %w", err))
	}
	if merged == nil {
		merged = map[string]json.RawMessage{}
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(overlay, &top); err != nil {
		return nil, NewDecodeError("config", fmt.Errorf("event layer: %w", err))
	}
	for k, v := range top {
		merged[k] = v
	}
	return json.Marshal(merged)
}
