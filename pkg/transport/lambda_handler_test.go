package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/raywall/delete-record-function/pkg/engine"
	"github.com/raywall/delete-record-function/pkg/handler"
	"github.com/raywall/delete-record-function/pkg/invocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor registra os eventos e devolve o erro configurado.
type fakeExecutor struct {
	mu     sync.Mutex
	events []engine.InvocationEvent
	err    error
}

func (f *fakeExecutor) Invoke(ctx context.Context, ev engine.InvocationEvent) (handler.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	if f.err != nil {
		return handler.Response{}, f.err
	}
	return handler.Response{Message: handler.SuccessMessage}, nil
}

func (f *fakeExecutor) Reload(ctx context.Context) error   { return nil }
func (f *fakeExecutor) Shutdown(ctx context.Context) error { return nil }

func TestLambdaHandler_DirectInvocation(t *testing.T) {
	exec := &fakeExecutor{}
	h := NewLambdaHandler(exec)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "aws-req-1"})
	raw := json.RawMessage(`{"data":{"table_name":"functions","primary_key":"id","index_data":{}},"input":{"id":"a6c18e06-aa03-45ea-9e9e-6d9328746951"}}`)

	out, err := h.Handle(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, handler.Response{Message: handler.SuccessMessage}, out)

	require.Len(t, exec.events, 1)
	assert.Equal(t, "aws-req-1", exec.events[0].RequestID)
	assert.JSONEq(t, `{"id":"a6c18e06-aa03-45ea-9e9e-6d9328746951"}`, string(exec.events[0].Input))
}

func TestLambdaHandler_DirectInvocationError(t *testing.T) {
	exec := &fakeExecutor{err: invocation.NewCapabilityMissingError("no region")}
	h := NewLambdaHandler(exec)

	_, err := h.Handle(context.Background(), json.RawMessage(`{"input":{"id":"x"}}`))
	require.Error(t, err)
	assert.Equal(t, invocation.KindCapabilityMissing, invocation.KindOf(err))
}

func TestLambdaHandler_MalformedEvent(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := NewLambdaHandler(exec).Handle(context.Background(), json.RawMessage(`[1,2,3]`))
	assert.Equal(t, invocation.KindDecode, invocation.KindOf(err))
	assert.Empty(t, exec.events)
}

func TestLambdaHandler_APIGateway(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"success", http.MethodDelete, nil, http.StatusOK, ""},
		{"decode error", http.MethodDelete, invocation.NewDecodeError("input", errors.New("expected object")), http.StatusBadRequest, invocation.CodeDecode},
		{"no sdk config", http.MethodDelete, invocation.NewCapabilityMissingError(""), http.StatusServiceUnavailable, invocation.CodeNoSDKConfig},
		{"store failure", http.MethodDelete, invocation.NewStoreOperationError(errors.New("ProvisionedThroughputExceededException")), http.StatusBadGateway, invocation.CodeStoreOperation},
		{"method not allowed", http.MethodGet, nil, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{err: tt.err}
			h := NewLambdaHandler(exec)

			req := events.APIGatewayProxyRequest{
				HTTPMethod: tt.method,
				Path:       "/records",
				Body:       `{"id":"abc"}`,
				Headers:    map[string]string{HeaderCorrelationID: "corr-1"},
			}
			raw, _ := json.Marshal(req)

			out, err := h.Handle(context.Background(), raw)
			require.NoError(t, err)

			resp := out.(events.APIGatewayProxyResponse)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "corr-1", resp.Headers[HeaderCorrelationID])

			if tt.wantCode == "" {
				assert.JSONEq(t, `{"message":"Successfully deleted record"}`, resp.Body)
				require.Len(t, exec.events, 1)
				assert.Equal(t, "corr-1", exec.events[0].RequestID)
				assert.JSONEq(t, `{"id":"abc"}`, string(exec.events[0].Input))
				return
			}

			var body struct {
				Error struct {
					Kind    string `json:"kind"`
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestLambdaHandler_HTTPAPI(t *testing.T) {
	exec := &fakeExecutor{}
	h := NewLambdaHandler(exec)

	req := events.APIGatewayV2HTTPRequest{
		RawPath: "/records",
		Headers: map[string]string{"content-type": "application/json"},
		Body:    `{"id":"abc"}`,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: "apigw-req-9",
			HTTP:      events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodDelete, Path: "/records"},
		},
	}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	out, err := h.Handle(context.Background(), raw)
	require.NoError(t, err)

	resp, ok := out.(events.APIGatewayV2HTTPResponse)
	require.True(t, ok, "HTTP API event must get a payload 2.0 response")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "apigw-req-9", resp.Headers[HeaderCorrelationID])
	assert.JSONEq(t, `{"message":"Successfully deleted record"}`, resp.Body)

	require.Len(t, exec.events, 1)
	assert.Equal(t, "apigw-req-9", exec.events[0].RequestID)
	assert.JSONEq(t, `{"id":"abc"}`, string(exec.events[0].Input))
}

func TestLambdaHandler_HTTPAPIErrorsAndEncoding(t *testing.T) {
	t.Run("store failure maps to 502", func(t *testing.T) {
		exec := &fakeExecutor{err: invocation.NewStoreOperationError(errors.New("AccessDeniedException"))}
		resp, err := NewLambdaHandler(exec).HandleHTTPAPI(context.Background(), events.APIGatewayV2HTTPRequest{
			Body: `{"id":"abc"}`,
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodDelete},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Contains(t, resp.Body, invocation.CodeStoreOperation)
		assert.NotEmpty(t, resp.Headers[HeaderCorrelationID])
	})

	t.Run("base64 body is decoded", func(t *testing.T) {
		exec := &fakeExecutor{}
		resp, err := NewLambdaHandler(exec).HandleHTTPAPI(context.Background(), events.APIGatewayV2HTTPRequest{
			Body:            base64.StdEncoding.EncodeToString([]byte(`{"id":"abc"}`)),
			IsBase64Encoded: true,
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodPost},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, exec.events, 1)
		assert.JSONEq(t, `{"id":"abc"}`, string(exec.events[0].Input))
	})

	t.Run("invalid base64 is a decode error", func(t *testing.T) {
		exec := &fakeExecutor{}
		resp, err := NewLambdaHandler(exec).HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod:      http.MethodDelete,
			Body:            "%%%",
			IsBase64Encoded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, exec.events)
	})

	t.Run("method not allowed", func(t *testing.T) {
		exec := &fakeExecutor{}
		resp, err := NewLambdaHandler(exec).HandleHTTPAPI(context.Background(), events.APIGatewayV2HTTPRequest{
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodGet},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Empty(t, exec.events)
	})
}

func TestErrorBody(t *testing.T) {
	body := ErrorBody(invocation.NewCapabilityMissingError("no region"))
	assert.JSONEq(t, `{"error":{"kind":"CapabilityMissing","code":"NO_SDK_CONFIG","message":"No aws sdk config found in handler context"}}`, string(body))

	body = ErrorBody(invocation.NewStoreOperationError(errors.New("ResourceNotFoundException: table not found")))
	assert.JSONEq(t, `{"error":{"kind":"StoreOperationError","code":"STORE_OPERATION_FAILED","message":"ResourceNotFoundException: table not found"}}`, string(body))

	body = ErrorBody(errors.New("boom"))
	assert.JSONEq(t, `{"error":{"kind":"InternalError","code":"INTERNAL","message":"boom"}}`, string(body))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}
