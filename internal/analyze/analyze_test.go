package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiCall struct {
	model     string
	maxTokens int
	prompt    string
	apiKey    string
	version   string
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		prompt := req.Messages[0].Content

		f.mu.Lock()
		f.calls = append(f.calls, apiCall{
			model:     req.Model,
			maxTokens: req.MaxTokens,
			prompt:    prompt,
			apiKey:    r.Header.Get("x-api-key"),
			version:   r.Header.Get("anthropic-version"),
		})
		callNum := len(f.calls)
		f.mu.Unlock()

		var text string
		switch {
		case strings.HasPrefix(prompt, "Clean up this transcript"):
			text = fmt.Sprintf("tidied-%d", callNum)
		case strings.HasPrefix(prompt, "Summarize the key points"):
			text = fmt.Sprintf("summary-%d", callNum)
		case strings.HasPrefix(prompt, "Combine these summaries"):
			text = "final summary text"
		default:
			t.Errorf("unexpected prompt: %.60s", prompt)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}
}

func writeTranscript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunAnalyzesInChunks(t *testing.T) {
	api := &fakeAPI{}
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)
	dir := t.TempDir()
	transcriptPath := writeTranscript(t, dir, "wyklad_transcript.txt", "line1\nline2\nline3\nline4\nline5")

	analysisPath, err := Run(context.Background(), Options{
		TranscriptPath: transcriptPath,
		OutputDir:      dir,
		APIKey:         "sk-ant-api03-test",
		Endpoint:       server.URL,
		MaxChars:       12,
		Overlap:        6,
	}, progress.Nop{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wyklad_transcript_analysis.txt"), analysisPath)

	// Four chunks mean a tidy and a summarize call each, plus the final merge.
	require.Len(t, api.calls, 9)
	for _, call := range api.calls {
		assert.Equal(t, DefaultModel, call.model)
		assert.Equal(t, "sk-ant-api03-test", call.apiKey)
		assert.Equal(t, "2023-06-01", call.version)
	}
	assert.Equal(t, tidyMaxTokens, api.calls[0].maxTokens)
	assert.Equal(t, chunkMaxTokens, api.calls[1].maxTokens)
	assert.Contains(t, api.calls[1].prompt, "[Chunk 1/4]")
	final := api.calls[len(api.calls)-1]
	assert.Equal(t, combineMaxTokens, final.maxTokens)
	assert.Contains(t, final.prompt, "Chunk Summaries:")

	written, err := os.ReadFile(analysisPath)
	require.NoError(t, err)
	text := string(written)
	assert.Contains(t, text, "FINAL SUMMARY")
	assert.Contains(t, text, "final summary text")
	assert.Contains(t, text, "CHUNK-BY-CHUNK SUMMARIES")
	assert.Contains(t, text, "Chunk 1/4: summary-2")
}

func TestRunReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	}))
	t.Cleanup(server.Close)
	dir := t.TempDir()
	transcriptPath := writeTranscript(t, dir, "wyklad_transcript.txt", "some spoken words")

	_, err := Run(context.Background(), Options{
		TranscriptPath: transcriptPath,
		OutputDir:      dir,
		APIKey:         "sk-ant-api03-bad",
		Endpoint:       server.URL,
	}, progress.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error: invalid x-api-key")
}

func TestRunValidatesInputs(t *testing.T) {
	dir := t.TempDir()

	_, err := Run(context.Background(), Options{
		TranscriptPath: filepath.Join(dir, "missing.txt"),
		OutputDir:      dir,
		APIKey:         "sk-ant-api03-test",
	}, progress.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcript file not found")

	transcriptPath := writeTranscript(t, dir, "wyklad_transcript.txt", "text")
	_, err = Run(context.Background(), Options{
		TranscriptPath: transcriptPath,
		OutputDir:      dir,
		APIKey:         "   ",
	}, progress.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}
