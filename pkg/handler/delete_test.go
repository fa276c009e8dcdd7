package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/raywall/delete-record-function/pkg/handler"
	"github.com/raywall/delete-record-function/pkg/invocation"
	"github.com/raywall/delete-record-function/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore registra as chamadas de DeleteRecord.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) DeleteRecord(ctx context.Context, table string, key map[string]any) error {
	args := m.Called(ctx, table, key)
	return args.Error(0)
}

const functionsData = `{
	"table_name": "functions",
	"primary_key": "id",
	"index_data": {"team_id": "team_id-index"},
	"token_claims": {}
}`

func factoryFor(client store.Client) invocation.ClientFactory {
	return func(ctx context.Context) (store.Client, error) {
		return client, nil
	}
}

func TestHandle_EndToEnd(t *testing.T) {
	spy := new(MockStore)
	spy.On("DeleteRecord", mock.Anything, "functions", map[string]any{
		"id": "a6c18e06-aa03-45ea-9e9e-6d9328746951",
	}).Return(nil).Once()

	ec := invocation.New("test", "test", json.RawMessage(functionsData), factoryFor(spy))

	resp, err := handler.Handle(context.Background(), ec,
		json.RawMessage(`{"id": "a6c18e06-aa03-45ea-9e9e-6d9328746951"}`))

	require.NoError(t, err)
	assert.Equal(t, "Successfully deleted record", resp.Message)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message": "Successfully deleted record"}`, string(body))

	spy.AssertExpectations(t)
	spy.AssertNumberOfCalls(t, "DeleteRecord", 1)
}

func TestHandle_ForwardsWholePayloadAsKey(t *testing.T) {
	spy := new(MockStore)
	spy.On("DeleteRecord", mock.Anything, "orders", map[string]any{
		"pk":      "customer#1",
		"sk":      json.Number("42"),
		"details": map[string]any{"region": "sa-east-1"},
	}).Return(nil).Once()

	data := `{"table_name": "orders", "primary_key": "pk", "index_data": {}, "token_claims": null}`
	ec := invocation.New("req-1", "delete-order", json.RawMessage(data), factoryFor(spy))

	_, err := handler.Handle(context.Background(), ec,
		json.RawMessage(`{"pk": "customer#1", "sk": 42, "details": {"region": "sa-east-1"}}`))

	require.NoError(t, err)
	spy.AssertExpectations(t)
}

func TestHandle_NoCapability(t *testing.T) {
	inputs := []string{
		`{"id": "a6c18e06-aa03-45ea-9e9e-6d9328746951"}`,
		`{}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			ec := invocation.New("test", "test", json.RawMessage(functionsData), nil)

			_, err := handler.Handle(context.Background(), ec, json.RawMessage(input))

			var he *invocation.HandlerError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, invocation.KindCapabilityMissing, he.Kind)
			assert.Equal(t, "NO_SDK_CONFIG", he.Code)
			assert.Equal(t, "No aws sdk config found in handler context", he.Message)
		})
	}

	t.Run("factory error", func(t *testing.T) {
		factory := func(ctx context.Context) (store.Client, error) {
			return nil, errors.New("missing region")
		}
		ec := invocation.New("test", "test", json.RawMessage(functionsData), factory)

		_, err := handler.Handle(context.Background(), ec, json.RawMessage(`{"id": "1"}`))

		assert.Equal(t, invocation.KindCapabilityMissing, invocation.KindOf(err))
		assert.Contains(t, err.Error(), "missing region")
	})
}

func TestHandle_DecodeErrorWinsOverMissingCapability(t *testing.T) {
	// Ordem fixa: config, input, capability. Input inválido sem factory é DECODE_ERROR.
	for _, input := range []string{`"a6c18e06"`, `42`, `null`} {
		t.Run(input, func(t *testing.T) {
			ec := invocation.New("test", "test", json.RawMessage(functionsData), nil)

			_, err := handler.Handle(context.Background(), ec, json.RawMessage(input))

			assert.Equal(t, invocation.KindDecode, invocation.KindOf(err))
		})
	}
}

func TestHandle_ConfigDecodeFailsBeforeStoreAccess(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing table_name", `{"primary_key": "id", "index_data": {}, "token_claims": {}}`},
		{"empty table_name", `{"table_name": "", "primary_key": "id", "index_data": {}}`},
		{"missing primary_key", `{"table_name": "functions", "index_data": {}, "token_claims": {}}`},
		{"missing index_data", `{"table_name": "functions", "primary_key": "id", "token_claims": {}}`},
		{"null index_data", `{"table_name": "functions", "primary_key": "id", "index_data": null}`},
		{"table_name wrong type", `{"table_name": 10, "primary_key": "id", "index_data": {}}`},
		{"index_data wrong value type", `{"table_name": "t", "primary_key": "id", "index_data": {"a": 1}}`},
		{"not an object", `["functions"]`},
		{"empty", ``},
		{"stray closing brace", `{"table_name": "functions", "primary_key": "id", "index_data": {}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := new(MockStore)
			ec := invocation.New("test", "test", json.RawMessage(tt.data), factoryFor(spy))

			_, err := handler.Handle(context.Background(), ec, json.RawMessage(`{"id": "1"}`))

			assert.Equal(t, invocation.KindDecode, invocation.KindOf(err))
			spy.AssertNotCalled(t, "DeleteRecord", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_InputDecodeFailsBeforeStoreAccess(t *testing.T) {
	inputs := map[string]string{
		"string":  `"a6c18e06"`,
		"number":  `42`,
		"array":   `[{"id": "1"}]`,
		"null":    `null`,
		"bool":    `true`,
		"broken":  `{"id": `,
		"two obj": `{"id": "1"} {"id": "2"}`,
		"stray ]": `{"id": "1"}]`,
		"stray }": `{"id": "1"}}`,
		"trailer": `{"id": "1"} x`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			spy := new(MockStore)
			ec := invocation.New("test", "test", json.RawMessage(functionsData), factoryFor(spy))

			_, err := handler.Handle(context.Background(), ec, json.RawMessage(input))

			var he *invocation.HandlerError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, invocation.KindDecode, he.Kind)
			assert.Equal(t, "DECODE_ERROR", he.Code)
			spy.AssertNotCalled(t, "DeleteRecord", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_StoreErrorIsPropagatedVerbatim(t *testing.T) {
	storeErr := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}

	spy := new(MockStore)
	spy.On("DeleteRecord", mock.Anything, "functions", mock.Anything).Return(storeErr).Once()

	ec := invocation.New("test", "test", json.RawMessage(functionsData), factoryFor(spy))
	_, err := handler.Handle(context.Background(), ec, json.RawMessage(`{"id": "1"}`))

	require.Error(t, err)
	assert.Equal(t, storeErr.Error(), err.Error())
	assert.ErrorIs(t, err, storeErr)

	var apiErr smithy.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ProvisionedThroughputExceededException", apiErr.ErrorCode())
	assert.Equal(t, invocation.KindStoreOperation, invocation.KindOf(err))
	spy.AssertNumberOfCalls(t, "DeleteRecord", 1)
}

func TestHandle_DeletingAbsentKeyTwiceSucceeds(t *testing.T) {
	// store que trata delete de chave inexistente como sucesso
	deleted := map[string]bool{}
	client := store.ClientFunc(func(ctx context.Context, table string, key map[string]any) error {
		deleted[key["id"].(string)] = true
		return nil
	})
	ec := invocation.New("test", "test", json.RawMessage(functionsData), factoryFor(client))
	input := json.RawMessage(`{"id": "gone"}`)

	for i := 0; i < 2; i++ {
		resp, err := handler.Handle(context.Background(), ec, input)
		require.NoError(t, err)
		assert.Equal(t, handler.SuccessMessage, resp.Message)
	}
	assert.True(t, deleted["gone"])
}

func TestHandle_FactoryCalledPerInvocation(t *testing.T) {
	calls := 0
	factory := func(ctx context.Context) (store.Client, error) {
		calls++
		return store.ClientFunc(func(context.Context, string, map[string]any) error { return nil }), nil
	}
	ec := invocation.New("test", "test", json.RawMessage(functionsData), factory)

	for i := 0; i < 3; i++ {
		_, err := handler.Handle(context.Background(), ec, json.RawMessage(`{"id": "1"}`))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
