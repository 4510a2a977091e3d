package cmd

import (
	"fmt"
	"os"

	"github.com/instytutkryptografii/lektor/internal/analyze"
	"github.com/instytutkryptografii/lektor/internal/auth"
	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var endpoint string
	var authMethod string
	var apiKey string
	var secretName string
	var region string
	var awsProfile string

	cmd := &cobra.Command{
		Use:   "analyze [TRANSCRIPT_FILE]",
		Short: "Summarize a transcript with Claude",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			authCfg := mergedAuth(cfg.Auth, authMethod, apiKey, secretName, region, awsProfile)
			key, err := auth.GetAPIKey(cmd.Context(), authCfg)
			if err != nil {
				output.PrintError(fmt.Sprintf("Authentication failed: %v", err))
				os.Exit(1)
			}
			opts := analyze.Options{
				TranscriptPath: args[0],
				OutputDir:      cfg.OutputDir,
				APIKey:         key,
				Endpoint:       cfg.Analyze.Endpoint,
				Model:          cfg.Analyze.Model,
				MaxChars:       cfg.Analyze.MaxChars,
				Overlap:        cfg.Analyze.Overlap,
			}
			if endpoint != "" {
				opts.Endpoint = endpoint
			}
			if _, err := analyze.Run(cmd.Context(), opts, progress.NewConsole()); err != nil {
				output.PrintError(fmt.Sprintf("Analysis failed: %v", err))
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Anthropic API endpoint override")
	cmd.Flags().StringVar(&authMethod, "auth-method", "", "API key source: 'aws' or 'direct'")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Anthropic API key for direct authentication")
	cmd.Flags().StringVar(&secretName, "secret-name", "", "AWS Secrets Manager secret holding the API key")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for Secrets Manager")
	cmd.Flags().StringVar(&awsProfile, "profile", "", "AWS shared config profile")
	return cmd
}

func mergedAuth(base auth.Config, method, apiKey, secretName, region, profile string) auth.Config {
	if method != "" {
		base.Method = method
	}
	if apiKey != "" {
		base.APIKey = apiKey
	}
	if secretName != "" {
		base.SecretName = secretName
	}
	if region != "" {
		base.Region = region
	}
	if profile != "" {
		base.Profile = profile
	}
	return base
}
