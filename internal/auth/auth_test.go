package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAPIKeyDirect(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		want    string
		wantErr string
	}{
		{name: "valid key", apiKey: "sk-ant-api03-abcdef123456", want: "sk-ant-api03-abcdef123456"},
		{name: "surrounding whitespace trimmed", apiKey: "  sk-ant-api03-abcdef123456\n", want: "sk-ant-api03-abcdef123456"},
		{name: "empty", apiKey: "", wantErr: "API key is required"},
		{name: "whitespace only", apiKey: "   ", wantErr: "API key is required"},
		{name: "wrong prefix", apiKey: "sk-live-abcdef123456", wantErr: "invalid API key format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetAPIKey(context.Background(), Config{Method: MethodDirect, APIKey: tt.apiKey})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetAPIKeyUnknownMethod(t *testing.T) {
	_, err := GetAPIKey(context.Background(), Config{Method: "vault"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown authentication method")
}

func TestParseSecretString(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{name: "raw key", secret: "sk-ant-api03-raw", want: "sk-ant-api03-raw"},
		{name: "json api_key", secret: `{"api_key": "sk-ant-api03-json"}`, want: "sk-ant-api03-json"},
		{name: "json alternate key name", secret: `{"anthropic_api_key": "sk-ant-api03-alt"}`, want: "sk-ant-api03-alt"},
		{name: "json first known key wins", secret: `{"key": "second", "api_key": "first"}`, want: "first"},
		{name: "json without known keys returns raw", secret: `{"token": "whatever"}`, want: `{"token": "whatever"}`},
		{name: "whitespace before json", secret: `  {"apikey": "sk-ant-api03-pad"}`, want: "sk-ant-api03-pad"},
		{name: "malformed json returns raw", secret: `{not json`, want: `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSecretString(tt.secret))
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr string
	}{
		{name: "valid", apiKey: "sk-ant-api03-abcdef123456"},
		{name: "empty", apiKey: "", wantErr: "cannot be empty"},
		{name: "wrong prefix", apiKey: "api03-abcdef1234567890", wantErr: "must start with"},
		{name: "too short", apiKey: "sk-ant-x", wantErr: "too short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.apiKey)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
