package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raywall/delete-record-function/pkg/config"
	"github.com/raywall/delete-record-function/pkg/credentials"
	"github.com/raywall/delete-record-function/pkg/handler"
	"github.com/raywall/delete-record-function/pkg/invocation"
	"github.com/raywall/delete-record-function/pkg/logger"
	"github.com/raywall/delete-record-function/pkg/metrics"
	"github.com/raywall/delete-record-function/pkg/observability"
	"github.com/rs/zerolog"
)

// FactoryBuilder monta a ClientFactory do store configurado.
type FactoryBuilder func(ctx context.Context, conf config.StoreConf) (invocation.ClientFactory, io.Closer, error)

// Option ajusta o ServiceEngine na criação (usado em testes e no toolkit).
type Option func(*ServiceEngine)

func WithLoader(l Loader) Option { return func(se *ServiceEngine) { se.loader = l } }

func WithFactoryBuilder(b FactoryBuilder) Option {
	return func(se *ServiceEngine) { se.buildFactory = b }
}

func WithMetricsProvider(p observability.Provider) Option {
	return func(se *ServiceEngine) { se.Metrics = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(se *ServiceEngine) { se.Logger = l; se.customLogger = true }
}

type ServiceEngine struct {
	mu           sync.RWMutex
	ConfigSource string
	Config       *config.ServiceConfig
	Logger       zerolog.Logger
	Metrics      observability.Provider
	Recorder     *metrics.Recorder

	loader       Loader
	buildFactory FactoryBuilder
	customLogger bool

	store    *storeGeneration
	defaults json.RawMessage
}

// storeGeneration é um store montado a partir de uma seção store: e as
// invocações que ainda o usam. O closer só roda depois que inflight zera.
type storeGeneration struct {
	factory  invocation.ClientFactory
	closer   io.Closer
	inflight sync.WaitGroup
}

// retire espera as invocações da geração terminarem e fecha o pool.
// Com ctx encerrado antes disso, devolve ctx.Err() sem fechar.
func (g *storeGeneration) retire(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		g.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		return ctx.Err()
	}
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

func NewServiceEngine(ctx context.Context, cfg *config.ServiceConfig, configSource string, opts ...Option) (*ServiceEngine, error) {
	se := &ServiceEngine{
		ConfigSource: configSource,
		Config:       cfg,
		buildFactory: credentials.NewClientFactory,
	}
	for _, opt := range opts {
		opt(se)
	}
	if se.loader == nil {
		se.loader = NewUniversalLoader()
	}
	if !se.customLogger {
		se.Logger = logger.Configure(cfg.Service.Logging, cfg.Service.Name)
	}

	if se.Metrics == nil {
		provider, err := observability.SetupMetrics(cfg.Service.Metrics, cfg.Service.Name)
		if err != nil {
			return nil, fmt.Errorf("engine: metrics: %w", err)
		}
		se.Metrics = provider
	}
	se.Recorder = metrics.NewRecorder(se.Metrics, se.Logger)

	defaults, err := cfg.Function.DefaultData()
	if err != nil {
		return nil, fmt.Errorf("engine: function defaults: %w", err)
	}
	se.defaults = defaults

	factory, closer, err := se.buildFactory(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("engine: store: %w", err)
	}
	se.store = &storeGeneration{factory: factory, closer: closer}

	se.Logger.Info().
		Str("driver", cfg.Store.Driver).
		Str("runtime", cfg.Service.Runtime).
		Msg("engine ready")
	return se, nil
}

// Invoke executa uma invocação de delete.
//
// Os dados de function: do YAML formam a base e Data do evento é sobreposto
// a eles. Cada invocação recebe um request id (o do evento ou um uuid novo),
// um logger próprio no ctx e o timeout de service.timeout.
func (se *ServiceEngine) Invoke(ctx context.Context, ev InvocationEvent) (handler.Response, error) {
	se.mu.RLock()
	cfg, gen, defaults, log := se.Config, se.store, se.defaults, se.Logger
	gen.inflight.Add(1)
	se.mu.RUnlock()
	defer gen.inflight.Done()

	start := time.Now()
	requestID := ev.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	reqLogger := log.With().Str("request_id", requestID).Logger()
	ctx = reqLogger.WithContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, cfg.Service.GetTimeout())
	defer cancel()

	data, err := invocation.MergeData(defaults, ev.Data)
	if err != nil {
		se.record(data, start, err)
		return handler.Response{}, err
	}

	ec := invocation.New(requestID, cfg.Service.Name, data, gen.factory)
	resp, err := handler.Handle(ctx, ec, ev.Input)
	se.record(data, start, err)
	return resp, err
}

func (se *ServiceEngine) record(data json.RawMessage, start time.Time, err error) {
	obs := metrics.Observation{
		Table:    tableOf(data),
		Outcome:  metrics.OutcomeSuccess,
		Duration: time.Since(start),
	}
	if err != nil {
		obs.Outcome = metrics.OutcomeFailure
		obs.Kind = string(invocation.KindOf(err))
	}
	se.Recorder.Record(obs)
}

// tableOf extrai table_name para tag de métrica, sem validar o resto.
func tableOf(data json.RawMessage) string {
	var fields struct {
		TableName string `json:"table_name"`
	}
	if len(data) == 0 || json.Unmarshal(data, &fields) != nil {
		return ""
	}
	return fields.TableName
}

// Reload recarrega a configuração da origem.
//
// O store só é recriado se a seção store: mudou. O pool antigo é fechado
// depois que as invocações em andamento nele terminam, e Reload espera por
// isso (limitado pelo timeout das invocações ou por ctx).
func (se *ServiceEngine) Reload(ctx context.Context) error {
	se.Logger.Info().Str("source", se.ConfigSource).Msg("hot reload started")
	newCfg, err := se.loader.Load(ctx, se.ConfigSource)
	if err != nil {
		return fmt.Errorf("engine: reload: %w", err)
	}

	defaults, err := newCfg.Function.DefaultData()
	if err != nil {
		return fmt.Errorf("engine: reload: function defaults: %w", err)
	}

	se.mu.RLock()
	storeChanged := se.Config.Store != newCfg.Store
	se.mu.RUnlock()

	var factory invocation.ClientFactory
	var closer io.Closer
	if storeChanged {
		factory, closer, err = se.buildFactory(ctx, newCfg.Store)
		if err != nil {
			return fmt.Errorf("engine: reload: store: %w", err)
		}
	}

	se.mu.Lock()
	se.Config = newCfg
	se.defaults = defaults
	var old *storeGeneration
	if storeChanged {
		old = se.store
		se.store = &storeGeneration{factory: factory, closer: closer}
	}
	se.mu.Unlock()

	if old != nil {
		if err := old.retire(ctx); err != nil {
			se.Logger.Warn().Err(err).Msg("failed to close previous store")
		}
	}

	se.Logger.Info().Bool("store_changed", storeChanged).Msg("hot reload finished")
	return nil
}

// CurrentConfig devolve a configuração ativa.
func (se *ServiceEngine) CurrentConfig() *config.ServiceConfig {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.Config
}

// Shutdown espera as invocações em andamento (até ctx) e libera store e métricas.
func (se *ServiceEngine) Shutdown(ctx context.Context) error {
	se.mu.Lock()
	gen := se.store
	se.store = &storeGeneration{factory: gen.factory}
	se.mu.Unlock()

	var errs []error
	errs = append(errs, gen.retire(ctx))
	if se.Metrics != nil {
		errs = append(errs, se.Metrics.Close())
	}
	return errors.Join(errs...)
}
