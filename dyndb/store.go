// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// RecordStore implementa store.Client sobre o DynamoDB.
type RecordStore struct {
	client DynamoDBClient
}

// New cria um store a partir de qualquer DynamoDBClient (real ou mock).
func New(client DynamoDBClient) *RecordStore {
	return &RecordStore{client: client}
}

// NewFromConfig cria o cliente real do SDK e o store.
func NewFromConfig(cfg aws.Config, optFns ...func(*dynamodb.Options)) *RecordStore {
	return New(dynamodb.NewFromConfig(cfg, optFns...))
}

// DeleteRecord apaga o item identificado por key em table.
//
// Não usa ConditionExpression: apagar um item inexistente é sucesso no
// DynamoDB. Erros do SDK voltam sem wrap para que o chamador veja o erro
// original (throttling, AccessDenied, ResourceNotFound...).
func (s *RecordStore) DeleteRecord(ctx context.Context, table string, key map[string]any) error {
	av, err := MarshalKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       av,
	})
	return err
}

// GetRecord lê um item como mapa genérico. Retorna ErrNotFound se não existir.
func (s *RecordStore) GetRecord(ctx context.Context, table string, key map[string]any) (map[string]any, error) {
	av, err := MarshalKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            av,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dyndb: get failed: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item map[string]any
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("dyndb: unmarshal failed: %w", err)
	}
	return item, nil
}
