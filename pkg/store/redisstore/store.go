// Package redisstore implementa store.Client sobre Redis.
//
// Cada registro é uma chave Redis no formato "<tabela>:<v1>[:<v2>...]",
// com os valores na ordem lexicográfica dos nomes de campo.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/raywall/delete-record-function/pkg/store"
	"github.com/redis/go-redis/v9"
)

// Deleter é o subconjunto do cliente go-redis usado aqui (permite Mock).
type Deleter interface {
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Options configura a conexão.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store apaga registros com DEL.
type Store struct {
	client Deleter
}

// New cria o store sobre um Deleter existente.
func New(client Deleter) *Store {
	return &Store{client: client}
}

// Open cria o cliente go-redis real. O chamador fecha o *redis.Client.
func Open(opts Options) (*Store, *redis.Client) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return New(client), client
}

// DeleteRecord executa DEL. Zero chaves removidas não é erro.
func (s *Store) DeleteRecord(ctx context.Context, table string, key map[string]any) error {
	redisKey, err := RecordKey(table, key)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, redisKey).Err()
}

// RecordKey monta a chave Redis do registro.
func RecordKey(table string, key map[string]any) (string, error) {
	if len(key) == 0 {
		return "", store.ErrEmptyKey
	}

	parts := []string{table}
	for _, field := range store.SortedFields(key) {
		part, err := format(key[field])
		if err != nil {
			return "", fmt.Errorf("redisstore: key attribute %q: %w", field, err)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ":"), nil
}

func format(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case nil:
		return "", errors.New("null value")
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}
