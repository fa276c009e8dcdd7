package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/delete-record-function/pkg/engine"
	"github.com/raywall/delete-record-function/pkg/invocation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"

	defaultRoute = "/records"
	maxBodyBytes = 1 << 20
)

// NewHTTPHandler monta o roteador do runtime local:
//
//	DELETE {route}         body = chave; variáveis de rota ({id}) entram na chave
//	POST   {route}/invoke  body = {"data": {...}, "input": {...}}
//	GET    /healthz
func NewHTTPHandler(svc engine.Executor, route string) http.Handler {
	if route == "" {
		route = defaultRoute
	}
	route = strings.TrimSuffix(route, "/")

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	r.HandleFunc(route+"/invoke", invokeHandler(svc)).Methods(http.MethodPost)
	r.HandleFunc(route, deleteHandler(svc)).Methods(http.MethodDelete)

	return ObservabilityMiddleware(r)
}

// StartHTTPServer sobe o servidor e bloqueia até ctx ser cancelado.
func StartHTTPServer(ctx context.Context, svc *engine.ServiceEngine) error {
	cfg := svc.CurrentConfig()
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Service.Port),
		Handler:           NewHTTPHandler(svc, cfg.Service.Route),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		svc.Logger.Info().Str("addr", srv.Addr).Str("route", cfg.Service.Route).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func deleteHandler(svc engine.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeError(w, invocation.NewDecodeError("input", err))
			return
		}

		input := json.RawMessage(body)
		if vars := mux.Vars(r); len(vars) > 0 {
			pathKey, _ := json.Marshal(vars)
			if input, err = invocation.MergeData(input, pathKey); err != nil {
				writeError(w, invocation.NewDecodeError("input", err))
				return
			}
		}

		resp, err := svc.Invoke(r.Context(), engine.InvocationEvent{
			RequestID: correlationID(r.Context()),
			Input:     input,
		})
		writeResult(w, resp, err)
	}
}

func invokeHandler(svc engine.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeError(w, invocation.NewDecodeError("event", err))
			return
		}

		var ev engine.InvocationEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			writeError(w, invocation.NewDecodeError("event", err))
			return
		}
		ev.RequestID = correlationID(r.Context())

		resp, err := svc.Invoke(r.Context(), ev)
		writeResult(w, resp, err)
	}
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func writeResult(w http.ResponseWriter, resp any, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(err))
	_, _ = w.Write(ErrorBody(err))
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---

type ctxKey struct{}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", time.Since(rw.startTime).Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func ObservabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		corrID := r.Header.Get(HeaderCorrelationID)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, corrID)

		logger := log.With().Str("correlation_id", corrID).Logger()
		ctx := logger.WithContext(r.Context())
		ctx = context.WithValue(ctx, ctxKey{}, corrID)

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			startTime:      start,
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		level := zerolog.InfoLevel
		if wrapper.statusCode >= http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}
		logger.WithLevel(level).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request completed")
	})
}
