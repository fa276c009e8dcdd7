package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/raywall/delete-record-function/pkg/config"
	"github.com/raywall/delete-record-function/pkg/engine"
	"github.com/raywall/delete-record-function/pkg/transport"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootOptions são as flags globais.
type rootOptions struct {
	Format string // "text" | "json"
}

// newEngine é injetável para testes do comando invoke.
var newEngine = func(ctx context.Context, cfg *config.ServiceConfig, source string) (engine.Executor, error) {
	return engine.NewServiceEngine(ctx, cfg, source, engine.WithLogger(zerolog.Nop()))
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{Format: os.Getenv("OUTPUT_FORMAT")}
	if opts.Format == "" {
		opts.Format = "text"
	}

	cmd := &cobra.Command{
		Use:   "toolkit",
		Short: "Ferramentas da função delete-record",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.Format)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", opts.Format, "output format (json|text)")

	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newInvokeCommand(opts))
	return cmd
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Valida um arquivo de configuração (arquivo, s3://, dynamodb://, ssm://)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), opts, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "caminho ou URI da configuração")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runValidate(ctx context.Context, out io.Writer, opts *rootOptions, path string) error {
	if opts.Format == "text" {
		fmt.Fprintf(out, "🔍 Analisando configuração: %s ...\n", path)
	}

	cfg, err := loadRaw(ctx, path)
	if err != nil {
		return err
	}
	report := engine.Analyze(cfg)

	if opts.Format == "json" {
		_ = json.NewEncoder(out).Encode(report)
	} else {
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "⚠️  %s\n", w)
		}
		for _, e := range report.Errors {
			fmt.Fprintf(out, " - %s\n", e)
		}
		if report.Valid {
			fmt.Fprintln(out, "✅ Configuração válida e pronta para deploy!")
		}
	}

	if !report.Valid {
		return errors.New("configuration has errors")
	}
	return nil
}

// loadRaw carrega sem validar, para que o Analyze reporte todos os problemas.
func loadRaw(ctx context.Context, path string) (*config.ServiceConfig, error) {
	loader := engine.NewUniversalLoader()
	cfg, err := loader.Load(ctx, path)
	if err == nil {
		return cfg, nil
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, err
	}
	raw := engine.NewUniversalLoader()
	raw.SkipValidation()
	if cfg, parseErr := raw.Parse(ctx, data); parseErr == nil {
		return cfg, nil
	}
	return nil, err
}

func newInvokeCommand(opts *rootOptions) *cobra.Command {
	var file, data, input string
	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Executa uma invocação local contra o store configurado",
		Long: `Carrega a configuração, monta a engine e executa uma invocação de delete.

Exemplo:
  toolkit invoke --file config.yaml --input '{"id":"a6c18e06-aa03-45ea-9e9e-6d9328746951"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd.Context(), cmd.OutOrStdout(), opts, file, data, input)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "caminho ou URI da configuração")
	cmd.Flags().StringVar(&data, "data", "", "dados da invocação (JSON), sobrepostos a function:")
	cmd.Flags().StringVar(&input, "input", "", "chave do registro (JSON)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runInvoke(ctx context.Context, out io.Writer, opts *rootOptions, path, data, input string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := engine.Load(ctx, path)
	if err != nil {
		return err
	}

	svc, err := newEngine(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer svc.Shutdown(context.Background())

	ev := engine.InvocationEvent{Input: json.RawMessage(input)}
	if data != "" {
		ev.Data = json.RawMessage(data)
	}

	resp, invokeErr := svc.Invoke(ctx, ev)
	if invokeErr != nil {
		if opts.Format == "json" {
			fmt.Fprintln(out, string(transport.ErrorBody(invokeErr)))
		} else {
			fmt.Fprintf(out, "❌ %s\n", invokeErr)
		}
		return invokeErr
	}

	if opts.Format == "json" {
		return json.NewEncoder(out).Encode(resp)
	}
	fmt.Fprintf(out, "✅ %s\n", resp.Message)
	return nil
}
