package config

import (
	"encoding/json"
	"time"
)

// ServiceConfig representa a estrutura raiz do arquivo YAML da função.
type ServiceConfig struct {
	Version  string         `yaml:"version" validate:"required"`
	Service  ServiceDetails `yaml:"service" validate:"required"`
	Store    StoreConf      `yaml:"store" validate:"required"`
	Function FunctionConf   `yaml:"function"`
	Reload   ReloadConf     `yaml:"reload"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name    string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" validate:"required,oneof=local lambda"`
	Port    int         `yaml:"port" validate:"required_if=Runtime local"` // Obrigatório apenas se local
	Route   string      `yaml:"route" validate:"omitempty,startswith=/"`
	Timeout string      `yaml:"timeout"` // Ex: "500ms", "2s"
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

// StoreConf seleciona e configura o backend do store.
type StoreConf struct {
	Driver   string       `yaml:"driver" validate:"required,oneof=dynamodb redis postgres"`
	DynamoDB DynamoDBConf `yaml:"dynamodb"`
	Redis    RedisConf    `yaml:"redis"`
	Postgres PostgresConf `yaml:"postgres"`
}

type DynamoDBConf struct {
	Region   string `yaml:"region" env:"AWS_REGION"`
	Endpoint string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT" validate:"omitempty,url"`
	// CredentialsSecret é o id de um segredo do Secrets Manager com
	// {"access_key_id", "secret_access_key", "session_token"}. Opcional.
	CredentialsSecret string `yaml:"credentials_secret"`
}

type RedisConf struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

type PostgresConf struct {
	DSN string `yaml:"dsn"`
}

// FunctionConf são os dados padrão da invocação. Os dados do evento são
// sobrepostos a eles (ver invocation.MergeData).
type FunctionConf struct {
	TableName  string            `yaml:"table_name" json:"table_name,omitempty"`
	PrimaryKey string            `yaml:"primary_key" json:"primary_key,omitempty"`
	IndexData  map[string]string `yaml:"index_data" json:"index_data"`
}

// ReloadConf configura o hot reload da configuração via SQS.
type ReloadConf struct {
	SQSQueueURL string `yaml:"sqs_queue_url" json:"sqs_queue_url"`
}

// DefaultData serializa FunctionConf como a camada base dos dados da invocação.
// Retorna nil se nada foi configurado.
func (f FunctionConf) DefaultData() (json.RawMessage, error) {
	if f.TableName == "" && f.PrimaryKey == "" && f.IndexData == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

func (s ServiceDetails) GetTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
