package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *ServiceConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed on rule '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("structural validation errors:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("structural validation error: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("semantic validation error: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ServiceConfig) error {
	// 1. Timeout precisa ser uma duração válida quando informado
	if cfg.Service.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Service.Timeout); err != nil {
			return fmt.Errorf("invalid service timeout '%s'", cfg.Service.Timeout)
		}
	}

	// 2. Cada driver exige seus próprios campos
	switch cfg.Store.Driver {
	case "redis":
		if cfg.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for driver 'redis'")
		}
	case "postgres":
		if cfg.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required for driver 'postgres'")
		}
	}

	// 3. Índices precisam ter nome
	for attr, index := range cfg.Function.IndexData {
		if attr == "" || index == "" {
			return fmt.Errorf("function.index_data entries must have non-empty attribute and index names")
		}
	}

	// A região do DynamoDB não é validada aqui: a falta dela é reportada
	// por invocação como NO_SDK_CONFIG.
	return nil
}
