package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/raywall/delete-record-function/pkg/config"
)

// ValidationReport contém o resultado detalhado da análise.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Analyze roda a validação da configuração e aponta combinações que passam
// na validação mas costumam falhar em runtime.
func Analyze(cfg *config.ServiceConfig) *ValidationReport {
	report := &ValidationReport{Valid: true, Errors: []string{}, Warnings: []string{}}

	if err := config.NewValidator().Validate(cfg); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				report.Errors = append(report.Errors, line)
			}
		}
	}

	fn := cfg.Function
	if fn.TableName == "" {
		report.Warnings = append(report.Warnings, "function.table_name is empty: every event must send data.table_name")
	}
	if fn.PrimaryKey == "" {
		report.Warnings = append(report.Warnings, "function.primary_key is empty: every event must send data.primary_key")
	}
	if fn.IndexData == nil {
		report.Warnings = append(report.Warnings, "function.index_data is not set: every event must send data.index_data")
	}

	switch cfg.Store.Driver {
	case "dynamodb":
		if cfg.Store.DynamoDB.Region == "" && os.Getenv("AWS_REGION") == "" {
			report.Warnings = append(report.Warnings, "store.dynamodb.region is empty and AWS_REGION is not set: invocations will fail with NO_SDK_CONFIG")
		}
		if cfg.Store.DynamoDB.Endpoint != "" && cfg.Service.Runtime == "lambda" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("store.dynamodb.endpoint %q overrides the regional endpoint in lambda runtime", cfg.Store.DynamoDB.Endpoint))
		}
	case "postgres":
		if !strings.Contains(cfg.Store.Postgres.DSN, "sslmode=") {
			report.Warnings = append(report.Warnings, "store.postgres.dsn has no sslmode: lib/pq defaults to sslmode=require")
		}
	}

	if cfg.Reload.SQSQueueURL != "" && cfg.Service.Runtime == "lambda" {
		report.Warnings = append(report.Warnings, "reload.sqs_queue_url is ignored in lambda runtime")
	}

	report.Valid = len(report.Errors) == 0
	return report
}
