// Package dyndb implementa o store de registros sobre o AWS DynamoDB Go SDK (v2).
//
// Visão Geral:
// O `RecordStore` recebe a chave como um mapa genérico (campo -> valor) e
// faz a conversão para AttributeValue, eliminando a necessidade de lidar
// com os tipos de baixo nível do SDK.
//
// Funcionalidades Principais:
// - DeleteRecord: `DeleteItem` sem condição. Apagar item inexistente é sucesso.
// - GetRecord: `GetItem` consistente, retornando `ErrNotFound` quando vazio.
// - MarshalKey: números JSON (`json.Number`) viram `N` com o texto original.
// - Mocks Integrados: `MockDynamoClient` para testes unitários.
//
// Exemplo:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	records := dyndb.NewFromConfig(cfg)
//
//	err := records.DeleteRecord(ctx, "functions", map[string]any{
//		"id": "a6c18e06-aa03-45ea-9e9e-6d9328746951",
//	})
package dyndb
