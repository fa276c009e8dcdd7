// Package credentials monta a capability de acesso ao store: carrega a
// configuração autenticada do backend (AWS, Redis, Postgres) no cold start
// e devolve a ClientFactory que o contexto de execução usa por invocação.
package credentials

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/delete-record-function/dyndb"
	localConfig "github.com/raywall/delete-record-function/pkg/config"
	"github.com/raywall/delete-record-function/pkg/invocation"
	"github.com/raywall/delete-record-function/pkg/store"
	"github.com/raywall/delete-record-function/pkg/store/redisstore"
	"github.com/raywall/delete-record-function/pkg/store/sqlstore"
)

// AWSConfigLoader é injetável para testes.
var AWSConfigLoader = LoadAWSConfig

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewClientFactory prepara a factory do driver configurado.
//
// Falhas de credencial não abortam o boot: a factory devolve o erro em cada
// invocação, o que vira Unavailable e, no handler, NO_SDK_CONFIG.
// O io.Closer libera pools compartilhados (Redis, Postgres).
func NewClientFactory(ctx context.Context, conf localConfig.StoreConf) (invocation.ClientFactory, io.Closer, error) {
	switch conf.Driver {
	case "dynamodb":
		awsCfg, err := AWSConfigLoader(ctx, conf.DynamoDB)
		if err != nil {
			return unavailable(err), nopCloser{}, nil
		}
		return DynamoFactory(awsCfg, conf.DynamoDB.Endpoint), nopCloser{}, nil

	case "redis":
		rs, client := redisstore.Open(redisstore.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		return func(ctx context.Context) (store.Client, error) {
			return rs, nil
		}, client, nil

	case "postgres":
		_, db, err := sqlstore.Open(conf.Postgres.DSN)
		if err != nil {
			return unavailable(err), nopCloser{}, nil
		}
		return func(ctx context.Context) (store.Client, error) {
			return sqlstore.New(db), nil
		}, db, nil

	default:
		return nil, nil, fmt.Errorf("credentials: unsupported store driver %q", conf.Driver)
	}
}

// DynamoFactory cria um cliente DynamoDB novo por invocação a partir do aws.Config.
func DynamoFactory(awsCfg aws.Config, endpoint string) invocation.ClientFactory {
	return func(ctx context.Context) (store.Client, error) {
		if awsCfg.Region == "" {
			return nil, ErrNoRegion
		}
		return dyndb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}), nil
	}
}

func unavailable(err error) invocation.ClientFactory {
	return func(ctx context.Context) (store.Client, error) {
		return nil, err
	}
}
