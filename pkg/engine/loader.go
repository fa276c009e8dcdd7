package engine

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/delete-record-function/dyndb"
	localConfig "github.com/raywall/delete-record-function/pkg/config"
	"github.com/raywall/delete-record-function/pkg/config/injector"
	"github.com/raywall/delete-record-function/pkg/credentials"
	"gopkg.in/yaml.v3"
)

// Load é a função simplificada usada no boot e no hot reload.
func Load(ctx context.Context, source string) (*localConfig.ServiceConfig, error) {
	return NewUniversalLoader().Load(ctx, source)
}

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// UniversalLoader suporta múltiplas fontes de configuração:
//
//	config.yaml | file://config.yaml
//	s3://bucket/key.yaml
//	dynamodb://tabela/valor-pk?pk=id&col=config
//	ssm:///caminho/do/parametro
//
// Clientes nil são criados sob demanda a partir da config padrão da AWS.
type UniversalLoader struct {
	Region   string
	S3       S3Downloader
	Dynamo   dyndb.DynamoDBClient
	Resolver injector.Resolver

	validator *localConfig.ConfigValidator
}

// NewUniversalLoader cria uma nova instância.
func NewUniversalLoader() *UniversalLoader {
	return &UniversalLoader{
		Region:    os.Getenv("AWS_REGION"),
		validator: localConfig.NewValidator(),
	}
}

// Load detecta o esquema da fonte e carrega a configuração.
func (ul *UniversalLoader) Load(ctx context.Context, source string) (*localConfig.ServiceConfig, error) {
	var rawData []byte
	var err error

	switch {
	case strings.HasPrefix(source, "s3://"):
		if ul.S3 == nil {
			cfg, cfgErr := credentials.GetAWSConfig(ctx, ul.Region)
			if cfgErr != nil {
				return nil, fmt.Errorf("config source %s: %w", source, cfgErr)
			}
			ul.S3 = s3.NewFromConfig(cfg)
		}
		rawData, err = ul.loadFromS3Internal(ctx, ul.S3, source)

	case strings.HasPrefix(source, "dynamodb://"):
		if ul.Dynamo == nil {
			cfg, cfgErr := credentials.GetAWSConfig(ctx, ul.Region)
			if cfgErr != nil {
				return nil, fmt.Errorf("config source %s: %w", source, cfgErr)
			}
			ul.Dynamo = dynamodb.NewFromConfig(cfg)
		}
		rawData, err = ul.loadFromDynamoDBInternal(ctx, ul.Dynamo, source)

	case strings.HasPrefix(source, "ssm://"):
		rawData, err = ul.loadFromSSMInternal(ctx, ul.resolver(), source)

	default:
		rawData, err = ul.loadFromFile(source)
	}

	if err != nil {
		return nil, fmt.Errorf("config source %s: %w", source, err)
	}

	return ul.Parse(ctx, rawData)
}

// SkipValidation desliga a validação em Parse (usado pelo analisador do toolkit).
func (ul *UniversalLoader) SkipValidation() {
	ul.validator = nil
}

func (ul *UniversalLoader) resolver() injector.Resolver {
	if ul.Resolver == nil {
		ul.Resolver = credentials.NewAWSResolver(ul.Region, nil, nil)
	}
	return ul.Resolver
}

// --- Estratégias de carregamento (métodos internos testáveis) ---

func (ul *UniversalLoader) loadFromFile(path string) ([]byte, error) {
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (ul *UniversalLoader) loadFromS3Internal(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid s3 uri: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 uri %q: expected s3://bucket/key", uri)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (ul *UniversalLoader) loadFromDynamoDBInternal(ctx context.Context, client dyndb.DynamoDBClient, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid dynamodb uri: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	// Query Params opcionais: dynamodb://tabela/chave?col=dado&pk=ServiceName
	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config"
	}
	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	item, err := dyndb.New(client).GetRecord(ctx, tableName, map[string]any{pkName: pkValue})
	if err != nil {
		return nil, err
	}

	content, ok := item[colName].(string)
	if !ok || content == "" {
		return nil, fmt.Errorf("column %q missing or not a string", colName)
	}
	return []byte(content), nil
}

func (ul *UniversalLoader) loadFromSSMInternal(ctx context.Context, resolver injector.Resolver, uri string) ([]byte, error) {
	name := strings.TrimPrefix(uri, "ssm://")
	if name == "" {
		return nil, fmt.Errorf("invalid ssm uri %q: missing parameter name", uri)
	}
	val, err := resolver.Parameter(ctx, name)
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// Parse decodifica o YAML, injeta env/ssm/secret e valida.
func (ul *UniversalLoader) Parse(ctx context.Context, data []byte) (*localConfig.ServiceConfig, error) {
	var cfg localConfig.ServiceConfig

	// 1. Unmarshal (YAML -> Struct)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed yaml: %w", err)
	}

	// 2. Injection (Env/Secrets/SSM)
	if err := injector.New(ul.resolver()).Inject(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config injection failed: %w", err)
	}

	// 3. Validation
	if ul.validator != nil {
		if err := ul.validator.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return &cfg, nil
}
