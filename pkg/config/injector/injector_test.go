package injector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/raywall/delete-record-function/pkg/config/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestConfig struct {
	Region      string            `yaml:"region" env:"TEST_REGION"` // Caso 1: Tag
	Table       string            `yaml:"table"`                    // Caso 2: Interpolação "${env.KEY}"
	Description string            `yaml:"description"`              // Caso 3: Texto misto
	Enabled     bool              `yaml:"enabled" env:"TEST_ENABLED"`
	DB          int               `yaml:"db" env:"TEST_DB"`
	Index       map[string]string // Caso 4: map tipado
	Meta        map[string]any    // Caso 5: map dinâmico
	Nested      *NestedConfig
}

type NestedConfig struct {
	Password string
}

type fakeResolver struct {
	params  map[string]string
	secrets map[string]string
}

func (f fakeResolver) Parameter(ctx context.Context, name string) (string, error) {
	if v, ok := f.params[name]; ok {
		return v, nil
	}
	return "", errors.New("ParameterNotFound: " + name)
}

func (f fakeResolver) Secret(ctx context.Context, ref string) (string, error) {
	if v, ok := f.secrets[ref]; ok {
		return v, nil
	}
	return "", errors.New("ResourceNotFoundException: " + ref)
}

func TestInjector_Inject_Environment(t *testing.T) {
	t.Setenv("TEST_REGION", "sa-east-1")
	t.Setenv("TEST_ENABLED", "true")
	t.Setenv("TEST_DB", "3")
	t.Setenv("TABLE", "functions")
	t.Setenv("INDEX_NAME", "team_id-index")

	inj := injector.New(nil)

	target := &TestConfig{
		Region:      "us-east-1", // Deve ser sobrescrito pela tag
		Table:       "${env.TABLE}",
		Description: "records in ${env.TEST_REGION}",
		Index:       map[string]string{"team_id": "${env.INDEX_NAME}"},
		Meta: map[string]any{
			"table":   "${env.TABLE}",
			"timeout": 5000, // Inteiro não deve ser tocado
			"inner":   map[string]any{"region": "${env.TEST_REGION}"},
		},
		Nested: &NestedConfig{Password: "plain"},
	}

	err := inj.Inject(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, "sa-east-1", target.Region)
	assert.True(t, target.Enabled)
	assert.Equal(t, 3, target.DB)
	assert.Equal(t, "functions", target.Table)
	assert.Equal(t, "records in sa-east-1", target.Description)
	assert.Equal(t, "team_id-index", target.Index["team_id"])
	assert.Equal(t, "functions", target.Meta["table"])
	assert.Equal(t, 5000, target.Meta["timeout"])
	assert.Equal(t, "sa-east-1", target.Meta["inner"].(map[string]any)["region"])
	assert.Equal(t, "plain", target.Nested.Password)
}

func TestInjector_Inject_Remote(t *testing.T) {
	inj := injector.New(fakeResolver{
		params:  map[string]string{"/delete-record/table": "functions"},
		secrets: map[string]string{"redis#password": "s3cr3t"},
	})

	target := &TestConfig{
		Table:  "${ssm./delete-record/table}",
		Nested: &NestedConfig{Password: "${secret.redis#password}"},
	}

	require.NoError(t, inj.Inject(context.Background(), target))
	assert.Equal(t, "functions", target.Table)
	assert.Equal(t, "s3cr3t", target.Nested.Password)
}

func TestInjector_Inject_Errors(t *testing.T) {
	t.Run("resolver failure propagates", func(t *testing.T) {
		inj := injector.New(fakeResolver{})
		err := inj.Inject(context.Background(), &TestConfig{Table: "${ssm./missing}"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ParameterNotFound")
	})

	t.Run("remote reference without resolver", func(t *testing.T) {
		inj := injector.New(nil)
		err := inj.Inject(context.Background(), &TestConfig{Index: map[string]string{"k": "${secret.x}"}})
		assert.Error(t, err)
	})

	t.Run("invalid env bool", func(t *testing.T) {
		t.Setenv("TEST_ENABLED", "maybe")
		err := injector.New(nil).Inject(context.Background(), &TestConfig{})
		assert.Error(t, err)
	})

	t.Run("non pointer target", func(t *testing.T) {
		err := injector.New(nil).Inject(context.Background(), TestConfig{})
		assert.Error(t, err)
	})
}
