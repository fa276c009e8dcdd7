package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSResolver resolve referências ${ssm.x} e ${secret.x} da configuração.
// Os clientes são criados na primeira chamada.
type AWSResolver struct {
	Region  string
	ssm     SSMClient
	secrets SecretsClient
}

// NewAWSResolver cria um resolver com clientes opcionais (nil = cliente real).
func NewAWSResolver(region string, ssmClient SSMClient, secretsClient SecretsClient) *AWSResolver {
	return &AWSResolver{Region: region, ssm: ssmClient, secrets: secretsClient}
}

// Parameter lê um parâmetro do SSM (sempre com decrypt).
func (r *AWSResolver) Parameter(ctx context.Context, name string) (string, error) {
	if r.ssm == nil {
		cfg, err := GetAWSConfig(ctx, r.Region)
		if err != nil {
			return "", err
		}
		r.ssm = ssm.NewFromConfig(cfg)
	}
	return getParameterInternal(ctx, r.ssm, name, true)
}

// Secret lê um segredo. "id#campo" extrai um campo de um segredo JSON.
func (r *AWSResolver) Secret(ctx context.Context, ref string) (string, error) {
	if r.secrets == nil {
		cfg, err := GetAWSConfig(ctx, r.Region)
		if err != nil {
			return "", err
		}
		r.secrets = secretsmanager.NewFromConfig(cfg)
	}

	secretID, field, hasField := strings.Cut(ref, "#")
	val, err := getSecretInternal(ctx, r.secrets, secretID)
	if err != nil {
		return "", err
	}
	if !hasField {
		return val, nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("secret %s is not JSON, cannot read field %q", secretID, field)
	}
	fv, ok := data[field]
	if !ok {
		return "", fmt.Errorf("secret %s has no field %q", secretID, field)
	}
	return fmt.Sprintf("%v", fv), nil
}

// getParameterInternal: Lógica pura testável via Mock.
func getParameterInternal(ctx context.Context, client SSMClient, path string, decrypt bool) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &path,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", fmt.Errorf("ssm GetParameter %s: %w", path, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm parameter %s has no value", path)
	}
	return *out.Parameter.Value, nil
}

// getSecretInternal: Lógica pura testável via Mock.
func getSecretInternal(ctx context.Context, client SecretsClient, secretID string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return "", fmt.Errorf("secretsmanager GetSecretValue %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretID)
	}
	return *out.SecretString, nil
}
