package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/pipeline"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/transcribe"
	"github.com/spf13/cobra"
)

func newPipelineCmd() *cobra.Command {
	var model string
	var device string
	var endpoint string
	var authMethod string
	var apiKey string
	var secretName string
	var region string
	var awsProfile string

	cmd := &cobra.Command{
		Use:     "pipeline [URL]",
		Short:   "Download, transcribe and summarize a recording in one go",
		Aliases: []string{"process"},
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts := pipeline.Options{
				URL:          args[0],
				OutputDir:    cfg.OutputDir,
				NoAuth:       noAuth,
				SkipFix:      noFix,
				HeadersFile:  headersFile,
				CookiesFile:  cookiesFile,
				UserAgent:    userAgent,
				ProxyURL:     proxyURL,
				ChunkSize:    cfg.ChunkSize,
				Timeout:      cfg.Timeout,
				Model:        cfg.Whisper.Model,
				Device:       cfg.Whisper.Device,
				Endpoint:     cfg.Analyze.Endpoint,
				AnalyzeModel: cfg.Analyze.Model,
				MaxChars:     cfg.Analyze.MaxChars,
				Overlap:      cfg.Analyze.Overlap,
				Auth:         mergedAuth(cfg.Auth, authMethod, apiKey, secretName, region, awsProfile),
			}
			if model != "" {
				opts.Model = model
			}
			if device != "" {
				opts.Device = device
			}
			if endpoint != "" {
				opts.Endpoint = endpoint
			}
			success, _, message := pipeline.New().Run(cmd.Context(), opts, progress.NewConsole())
			if !success {
				fmt.Println()
				output.PrintError(message)
				os.Exit(1)
			}
			output.PrintSuccess(message)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", fmt.Sprintf("Whisper model size (%s)", strings.Join(transcribe.AvailableModels, ", ")))
	cmd.Flags().StringVar(&device, "device", "", "Computation device (cpu, cuda)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Anthropic API endpoint override")
	cmd.Flags().StringVar(&authMethod, "auth-method", "", "API key source: 'aws' or 'direct'")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Anthropic API key for direct authentication")
	cmd.Flags().StringVar(&secretName, "secret-name", "", "AWS Secrets Manager secret holding the API key")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for Secrets Manager")
	cmd.Flags().StringVar(&awsProfile, "profile", "", "AWS shared config profile")
	return cmd
}
