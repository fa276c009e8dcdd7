package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/raywall/delete-record-function/pkg/engine"
	"github.com/raywall/delete-record-function/pkg/invocation"
	"github.com/rs/zerolog/log"
)

// LambdaHandler adapta eventos Lambda para a ServiceEngine.
//
// Aceita três formatos:
//   - invocação direta: {"data": {...}, "input": {...}}; erros voltam como
//     erro da função (errorType/errorMessage do runtime);
//   - proxy REST do API Gateway (payload 1.0, "httpMethod");
//   - HTTP API do API Gateway (payload 2.0, "requestContext.http.method").
//
// Nos dois formatos do API Gateway o body é a chave a apagar e erros viram
// status HTTP.
type LambdaHandler struct {
	svc engine.Executor
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(svc engine.Executor) *LambdaHandler {
	return &LambdaHandler{svc: svc}
}

type eventShape struct {
	HTTPMethod     string `json:"httpMethod"`
	RequestContext struct {
		HTTP struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
}

// Handle processa o evento bruto recebido pelo runtime.
func (h *LambdaHandler) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	var shape eventShape
	if json.Unmarshal(raw, &shape) == nil {
		switch {
		case shape.HTTPMethod != "":
			var req events.APIGatewayProxyRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return nil, invocation.NewDecodeError("event", err)
			}
			return h.HandleAPIGateway(ctx, req)
		case shape.RequestContext.HTTP.Method != "":
			var req events.APIGatewayV2HTTPRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return nil, invocation.NewDecodeError("event", err)
			}
			return h.HandleHTTPAPI(ctx, req)
		}
	}

	var ev engine.InvocationEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, invocation.NewDecodeError("event", err)
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && ev.RequestID == "" {
		ev.RequestID = lc.AwsRequestID
	}

	return h.svc.Invoke(ctx, ev)
}

// HandleAPIGateway processa uma requisição do API Gateway (REST, proxy).
func (h *LambdaHandler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	res := h.serveHTTP(ctx, httpRequest{
		method:    req.HTTPMethod,
		path:      req.Path,
		headers:   req.Headers,
		body:      req.Body,
		base64:    req.IsBase64Encoded,
		requestID: req.RequestContext.RequestID,
	})
	return events.APIGatewayProxyResponse{StatusCode: res.status, Headers: res.headers, Body: res.body}, nil
}

// HandleHTTPAPI processa uma requisição de HTTP API (payload 2.0).
func (h *LambdaHandler) HandleHTTPAPI(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	res := h.serveHTTP(ctx, httpRequest{
		method:    req.RequestContext.HTTP.Method,
		path:      req.RawPath,
		headers:   req.Headers,
		body:      req.Body,
		base64:    req.IsBase64Encoded,
		requestID: req.RequestContext.RequestID,
	})
	return events.APIGatewayV2HTTPResponse{StatusCode: res.status, Headers: res.headers, Body: res.body}, nil
}

type httpRequest struct {
	method    string
	path      string
	headers   map[string]string
	body      string
	base64    bool
	requestID string
}

type httpResult struct {
	status  int
	headers map[string]string
	body    string
}

func (h *LambdaHandler) serveHTTP(ctx context.Context, req httpRequest) httpResult {
	start := time.Now()

	// API Gateway pode normalizar o header para lowercase
	corrID := req.headers[HeaderCorrelationID]
	if corrID == "" {
		corrID = req.headers["X-Correlation-Id"]
	}
	if corrID == "" {
		corrID = req.requestID
	}
	if corrID == "" {
		corrID = uuid.NewString()
	}

	logger := log.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)

	var res httpResult
	switch {
	case req.method != http.MethodDelete && req.method != http.MethodPost:
		res = jsonResult(http.StatusMethodNotAllowed, []byte(`{"error":{"kind":"MethodNotAllowed","code":"METHOD_NOT_ALLOWED","message":"use DELETE or POST"}}`))
	default:
		body := []byte(req.body)
		if req.base64 {
			decoded, err := base64.StdEncoding.DecodeString(req.body)
			if err != nil {
				decodeErr := invocation.NewDecodeError("input", err)
				res = jsonResult(StatusFor(decodeErr), ErrorBody(decodeErr))
				break
			}
			body = decoded
		}

		resp, err := h.svc.Invoke(ctx, engine.InvocationEvent{
			RequestID: corrID,
			Input:     json.RawMessage(body),
		})
		if err != nil {
			res = jsonResult(StatusFor(err), ErrorBody(err))
		} else {
			out, _ := json.Marshal(resp)
			res = jsonResult(http.StatusOK, out)
		}
	}
	res.headers[HeaderCorrelationID] = corrID

	logger.Info().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", res.status).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("lambda request completed")

	return res
}

func jsonResult(status int, body []byte) httpResult {
	return httpResult{
		status:  status,
		headers: map[string]string{"Content-Type": "application/json"},
		body:    string(body),
	}
}
