// Package sqlstore implementa store.Client sobre Postgres (lib/pq).
//
// A tabela e as colunas vêm da configuração e do input, então os
// identificadores são sempre citados com pq.QuoteIdentifier e os valores
// vão como parâmetros ($1, $2...).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/raywall/delete-record-function/pkg/store"
)

// Execer é o subconjunto de *sql.DB usado aqui (permite Mock).
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store apaga registros com DELETE.
type Store struct {
	db Execer
}

// New cria o store sobre um Execer existente.
func New(db Execer) *Store {
	return &Store{db: db}
}

// Open abre o pool Postgres. O pool não conecta até o primeiro uso.
func Open(dsn string) (*Store, *sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlstore: open failed: %w", err)
	}
	return New(db), db, nil
}

// DeleteRecord executa o DELETE. Zero linhas afetadas não é erro.
// Chave vazia é rejeitada: nunca emite DELETE sem WHERE.
func (s *Store) DeleteRecord(ctx context.Context, table string, key map[string]any) error {
	query, args, err := BuildDelete(table, key)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// BuildDelete monta o comando e os argumentos, em ordem de campo determinística.
func BuildDelete(table string, key map[string]any) (string, []any, error) {
	if len(key) == 0 {
		return "", nil, store.ErrEmptyKey
	}

	fields := store.SortedFields(key)
	conds := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for i, field := range fields {
		arg, err := param(key[field])
		if err != nil {
			return "", nil, fmt.Errorf("sqlstore: key attribute %q: %w", field, err)
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(field), i+1))
		args = append(args, arg)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s",
		quoteTable(table), strings.Join(conds, " AND "))
	return query, args, nil
}

// quoteTable aceita "schema.tabela".
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func param(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		// enviado como texto; o Postgres infere o tipo pela coluna
		return val.String(), nil
	case nil:
		// "= NULL" não casa com nenhuma linha
		return nil, errors.New("null value")
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return val, nil
	}
}
