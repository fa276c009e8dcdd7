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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrNotFound – erro padrão quando o item não existe (GetRecord).
var ErrNotFound = errors.New("dyndb: item not found")

// DynamoDBClient interface para abstrair o cliente DynamoDB do SDK da AWS.
//
// Apenas as operações usadas pela função: DeleteItem (delete de registro)
// e GetItem (leitura da configuração quando ela vive numa tabela).
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// MarshalKey converte os atributos de chave genéricos para o formato do DynamoDB.
//
// json.Number vira N com o texto original (sem passar por float64); mapas e
// listas são convertidos recursivamente; o resto segue o attributevalue.Marshal.
func MarshalKey(key map[string]any) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(key))
	for name, v := range key {
		av, err := attr(v)
		if err != nil {
			return nil, fmt.Errorf("dyndb: marshal key attribute %q: %w", name, err)
		}
		out[name] = av
	}
	return out, nil
}

// attr converte um valor para types.AttributeValue
func attr(v any) (types.AttributeValue, error) {
	switch val := v.(type) {
	case json.Number:
		return &types.AttributeValueMemberN{Value: val.String()}, nil
	case map[string]any:
		m, err := MarshalKey(val)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case []any:
		list := make([]types.AttributeValue, 0, len(val))
		for _, item := range val {
			av, err := attr(item)
			if err != nil {
				return nil, err
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	default:
		return attributevalue.Marshal(v)
	}
}
