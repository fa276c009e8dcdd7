package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	localConfig "github.com/raywall/delete-record-function/pkg/config"
)

// ErrNoRegion é retornado quando nenhuma região AWS pôde ser resolvida.
var ErrNoRegion = errors.New("credentials: no aws region configured")

var (
	awsCfg  aws.Config
	awsOnce sync.Once
	awsErr  error
)

// GetAWSConfig carrega a configuração da AWS (env vars, profile, IAM role) de forma lazy-singleton.
// Usado pelas buscas de SSM/Secrets Manager da configuração.
func GetAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	awsOnce.Do(func() {
		opts := []func(*config.LoadOptions) error{}
		if region != "" {
			opts = append(opts, config.WithRegion(region))
		}
		awsCfg, awsErr = config.LoadDefaultConfig(ctx, opts...)
	})
	return awsCfg, awsErr
}

// StaticKeys é o formato do segredo com credenciais estáticas.
type StaticKeys struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
}

// LoadAWSConfig monta o aws.Config usado pelo cliente DynamoDB.
//
// Ordem: cadeia padrão do SDK (env, profile, role) + região da config.
// Se CredentialsSecret estiver definido, as chaves estáticas do segredo
// substituem o provider de credenciais.
func LoadAWSConfig(ctx context.Context, conf localConfig.DynamoDBConf) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if conf.Region != "" {
		opts = append(opts, config.WithRegion(conf.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("credentials: load aws config: %w", err)
	}
	if cfg.Region == "" {
		return aws.Config{}, ErrNoRegion
	}

	if conf.CredentialsSecret != "" {
		keys, err := loadStaticKeys(ctx, secretsmanager.NewFromConfig(cfg), conf.CredentialsSecret)
		if err != nil {
			return aws.Config{}, err
		}
		cfg.Credentials = aws.NewCredentialsCache(
			awscreds.NewStaticCredentialsProvider(keys.AccessKeyID, keys.SecretAccessKey, keys.SessionToken))
	}

	return cfg, nil
}

// loadStaticKeys lê e valida o segredo de credenciais.
func loadStaticKeys(ctx context.Context, client SecretsClient, secretID string) (StaticKeys, error) {
	raw, err := getSecretInternal(ctx, client, secretID)
	if err != nil {
		return StaticKeys{}, err
	}

	var keys StaticKeys
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return StaticKeys{}, fmt.Errorf("credentials: secret %s is not a credentials document: %w", secretID, err)
	}
	if keys.AccessKeyID == "" || keys.SecretAccessKey == "" {
		return StaticKeys{}, fmt.Errorf("credentials: secret %s is missing access_key_id or secret_access_key", secretID)
	}
	return keys, nil
}
