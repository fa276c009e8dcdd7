// Package store define o contrato mínimo de um store de registros chave/valor
// usado pela função de delete: apagar um registro identificado por seus
// atributos de chave em uma tabela nomeada.
//
// Implementações:
//   - dyndb.RecordStore (DynamoDB DeleteItem)
//   - redisstore.Store (Redis DEL)
//   - sqlstore.Store (Postgres DELETE)
//
// Em todas elas apagar uma chave inexistente é sucesso.
package store

import (
	"context"
	"errors"
	"sort"
)

// ErrEmptyKey é retornado quando o conjunto de atributos de chave está vazio.
var ErrEmptyKey = errors.New("store: empty key attributes")

// Client é o cliente autenticado do store.
type Client interface {
	DeleteRecord(ctx context.Context, table string, key map[string]any) error
}

// ClientFunc adapta uma função ao Client.
type ClientFunc func(ctx context.Context, table string, key map[string]any) error

func (f ClientFunc) DeleteRecord(ctx context.Context, table string, key map[string]any) error {
	return f(ctx, table, key)
}

// SortedFields devolve os nomes de campo da chave em ordem lexicográfica.
func SortedFields(key map[string]any) []string {
	fields := make([]string, 0, len(key))
	for k := range key {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
