// Package auth resolves the Anthropic API key the analyzer calls with. Keys
// come in directly (flag or environment) or out of AWS Secrets Manager for
// machines with shared credentials set up.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/rs/zerolog/log"
)

const (
	MethodAWS    = "aws"
	MethodDirect = "direct"

	DefaultSecretName = "anthropic/default"
	DefaultRegion     = "eu-west-2"
)

// Config selects the key source. Method "aws" is the default; its fields fall
// back to AWS_SECRET_NAME and AWS_REGION, then to the package defaults.
type Config struct {
	Method     string `mapstructure:"method"`
	APIKey     string `mapstructure:"api_key"`     // direct method
	SecretName string `mapstructure:"secret_name"` // aws method
	Region     string `mapstructure:"region"`
	Profile    string `mapstructure:"profile"` // optional shared config profile
}

// GetAPIKey resolves a usable API key per the config, or explains why not.
func GetAPIKey(ctx context.Context, cfg Config) (string, error) {
	switch cfg.Method {
	case MethodDirect:
		return directKey(cfg.APIKey)
	case MethodAWS, "":
		return secretsManagerKey(ctx, cfg)
	default:
		return "", fmt.Errorf("unknown authentication method: %s, use 'aws' or 'direct'", cfg.Method)
	}
}

func directKey(apiKey string) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", fmt.Errorf("API key is required for direct authentication")
	}
	if !strings.HasPrefix(apiKey, "sk-ant-") {
		return "", fmt.Errorf("invalid API key format, Anthropic API keys start with 'sk-ant-'")
	}
	return apiKey, nil
}

func secretsManagerKey(ctx context.Context, cfg Config) (string, error) {
	secretName := cfg.SecretName
	if secretName == "" {
		secretName = os.Getenv("AWS_SECRET_NAME")
	}
	if secretName == "" {
		secretName = DefaultSecretName
	}
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = DefaultRegion
	}
	loadOptions := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithRetryMode("adaptive"),
	}
	if cfg.Profile != "" {
		loadOptions = append(loadOptions, config.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return "", fmt.Errorf("error loading AWS config: %v", err)
	}
	client := secretsmanager.NewFromConfig(awsCfg)
	log.Debug().Str("op", "auth").Msgf("Fetching secret %s from region %s", secretName, region)
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to retrieve API key from AWS: %v", err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretName)
	}
	apiKey := parseSecretString(*result.SecretString)
	if strings.TrimSpace(apiKey) == "" {
		return "", fmt.Errorf("AWS Secrets Manager returned empty API key")
	}
	return apiKey, nil
}

var secretKeyNames = []string{"api_key", "apikey", "key", "anthropic_api_key"}

// parseSecretString unwraps JSON-shaped secrets by trying the usual key
// names in order, and otherwise returns the raw string.
func parseSecretString(secret string) string {
	trimmed := strings.TrimSpace(secret)
	if strings.HasPrefix(trimmed, "{") {
		var secretMap map[string]string
		if err := json.Unmarshal([]byte(trimmed), &secretMap); err == nil {
			for _, key := range secretKeyNames {
				if value, ok := secretMap[key]; ok {
					return value
				}
			}
		}
	}
	return secret
}

// ValidateAPIKey checks the shape of a key before any request is made with it.
func ValidateAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if !strings.HasPrefix(apiKey, "sk-ant-") {
		return fmt.Errorf("Anthropic API keys must start with 'sk-ant-'")
	}
	if len(apiKey) < 20 {
		return fmt.Errorf("API key appears too short")
	}
	return nil
}
