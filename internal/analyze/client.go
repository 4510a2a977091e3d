package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the Anthropic messages API.
	DefaultEndpoint = "https://api.anthropic.com/v1/messages"
	// DefaultModel is the model every analysis request asks for.
	DefaultModel = "claude-opus-4-5-20251101"

	apiVersion = "2023-06-01"

	tidyMaxTokens    = 1024
	chunkMaxTokens   = 2048
	combineMaxTokens = 4096
)

const tidyPrompt = "Clean up this transcript: fix typos, add punctuation, and create proper sentences. " +
	"Keep it concise - don't expand or elaborate, just clean the existing text."

const summarizePrompt = "Summarize the key points from this transcript chunk. " +
	"Be concise - extract only the main ideas and important details. " +
	"Use bullet points or brief paragraphs."

const combinePrompt = "Combine these summaries into one concise final summary. " +
	"Remove redundancy, keep only key points, and organize by topic. " +
	"Aim for a summary that's shorter than the original transcript."

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

func newClient(apiKey, endpoint, model string) *client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		// Summarization calls can run long on big chunks.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := apiRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []apiMessage{{Role: "user", Content: prompt}},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error encoding API request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("error creating API request: %v", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("content-type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling API: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading API response: %v", err)
	}
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("error decoding API response: %v", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("unexpected API response: %s", string(body))
	}
	return parsed.Content[0].Text, nil
}

// tidy cleans one raw transcript chunk before summarization.
func (c *client) tidy(ctx context.Context, chunk string) (string, error) {
	return c.complete(ctx, fmt.Sprintf("%s\n%s", tidyPrompt, chunk), tidyMaxTokens)
}

// summarize condenses one tidied chunk, labeled so the model can reference
// its position in the transcript.
func (c *client) summarize(ctx context.Context, chunk, label string) (string, error) {
	prompt := summarizePrompt
	if label != "" {
		prompt += fmt.Sprintf("\n\n[%s]", label)
	}
	prompt += fmt.Sprintf("\n\nTranscript:\n%s", chunk)
	return c.complete(ctx, prompt, chunkMaxTokens)
}

// combine merges the per-chunk summaries into the final one.
func (c *client) combine(ctx context.Context, summaries []string) (string, error) {
	prompt := combinePrompt + "\n\nChunk Summaries:\n\n" + strings.Join(summaries, "\n\n")
	return c.complete(ctx, prompt, combineMaxTokens)
}
