// Package delete_record_function reúne a função de exclusão de registros:
// um handler de invocação que recebe a chave de um registro, resolve a
// capability de acesso ao store e executa a exclusão com erros tipados.
//
// Visão Geral:
// O mesmo handler roda como AWS Lambda (invocação direta ou API Gateway)
// ou como servidor HTTP local, configurado por um arquivo YAML.
//
// Sub-Pacotes Principais:
//
// 1. pkg/invocation:
//   - Contexto de execução, StoreCapability (Available / Unavailable).
//   - HandlerError com kind, code e message.
//
// 2. pkg/handler:
//   - Decodifica config (table_name, primary_key, index_data) e a chave.
//   - Chama DeleteRecord no store e mapeia falhas para HandlerError.
//
// 3. pkg/store, dyndb, pkg/store/redisstore, pkg/store/sqlstore:
//   - Contrato store.Client e implementações DynamoDB, Redis e Postgres.
//
// 4. pkg/engine, pkg/transport:
//   - Carregamento de configuração (arquivo, S3, DynamoDB, SSM), reload
//     via SQS e adaptadores Lambda / HTTP.
//
// 5. envloader, pkg/config, pkg/credentials:
//   - Bootstrap por variáveis de ambiente, validação e injeção de segredos.
//
// Exemplo de configuração:
//
//	version: "1"
//	service:
//	  name: delete-record
//	  runtime: lambda
//	  timeout: 3s
//	  logging:
//	    enabled: true
//	    level: info
//	store:
//	  driver: dynamodb
//	  dynamodb:
//	    region: ${env.AWS_REGION}
//	function:
//	  table_name: functions
//	  primary_key: id
//	  index_data: {}
//
// Payload de uma invocação direta:
//
//	{"request_id": "abc", "input": {"id": "a6c18e06-aa03-45ea-9e9e-6d9328746951"}}
package delete_record_function
