package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/instytutkryptografii/lektor/internal/analyze"
	"github.com/instytutkryptografii/lektor/internal/auth"
	"github.com/instytutkryptografii/lektor/internal/fetch"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/transcribe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageTrace struct {
	calls []string
}

func succeedingPipeline(trace *stageTrace) *Pipeline {
	return &Pipeline{
		Download: func(ctx context.Context, opts fetch.MediaOptions, sink progress.Sink) fetch.Result {
			trace.calls = append(trace.calls, "download")
			return fetch.Result{Success: true, OutputPath: "dump/wyklad.mp4", Message: "Download complete"}
		},
		Transcribe: func(ctx context.Context, opts transcribe.Options, sink progress.Sink) (string, error) {
			trace.calls = append(trace.calls, "transcribe")
			return "dump/wyklad_transcript.txt", nil
		},
		GetAPIKey: func(ctx context.Context, cfg auth.Config) (string, error) {
			trace.calls = append(trace.calls, "auth")
			return "sk-ant-api03-test", nil
		},
		Analyze: func(ctx context.Context, opts analyze.Options, sink progress.Sink) (string, error) {
			trace.calls = append(trace.calls, "analyze")
			return "dump/wyklad_transcript_analysis.txt", nil
		},
	}
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	trace := &stageTrace{}
	p := succeedingPipeline(trace)

	ok, results, message := p.Run(context.Background(), Options{
		URL:       "https://example.com/wyklad.mp4",
		OutputDir: "dump",
	}, progress.Nop{})

	require.True(t, ok, message)
	assert.Equal(t, "Pipeline completed successfully", message)
	assert.Equal(t, []string{"download", "transcribe", "auth", "analyze"}, trace.calls)
	assert.Equal(t, Results{
		MediaPath:      "dump/wyklad.mp4",
		TranscriptPath: "dump/wyklad_transcript.txt",
		AnalysisPath:   "dump/wyklad_transcript_analysis.txt",
	}, results)
}

func TestPipelineStopsWhenDownloadFails(t *testing.T) {
	trace := &stageTrace{}
	p := succeedingPipeline(trace)
	p.Download = func(ctx context.Context, opts fetch.MediaOptions, sink progress.Sink) fetch.Result {
		trace.calls = append(trace.calls, "download")
		return fetch.Result{Success: false, Message: "Download failed"}
	}

	ok, results, message := p.Run(context.Background(), Options{URL: "https://example.com/x.mp4", OutputDir: "dump"}, progress.Nop{})

	require.False(t, ok)
	assert.Equal(t, "Download failed: Download failed", message)
	assert.Equal(t, []string{"download"}, trace.calls)
	assert.Empty(t, results.MediaPath)
}

func TestPipelineStopsWhenTranscriptionFails(t *testing.T) {
	trace := &stageTrace{}
	p := succeedingPipeline(trace)
	p.Transcribe = func(ctx context.Context, opts transcribe.Options, sink progress.Sink) (string, error) {
		trace.calls = append(trace.calls, "transcribe")
		return "", fmt.Errorf("whisper failed: exit status 1")
	}

	ok, results, message := p.Run(context.Background(), Options{URL: "https://example.com/x.mp4", OutputDir: "dump"}, progress.Nop{})

	require.False(t, ok)
	assert.Contains(t, message, "Transcription failed")
	assert.Equal(t, []string{"download", "transcribe"}, trace.calls)
	// The downloaded file survives a failed later stage.
	assert.Equal(t, "dump/wyklad.mp4", results.MediaPath)
	assert.Empty(t, results.TranscriptPath)
}

func TestPipelineStopsWhenAuthFails(t *testing.T) {
	trace := &stageTrace{}
	p := succeedingPipeline(trace)
	p.GetAPIKey = func(ctx context.Context, cfg auth.Config) (string, error) {
		trace.calls = append(trace.calls, "auth")
		return "", fmt.Errorf("failed to retrieve API key from AWS: access denied")
	}

	ok, results, message := p.Run(context.Background(), Options{URL: "https://example.com/x.mp4", OutputDir: "dump"}, progress.Nop{})

	require.False(t, ok)
	assert.Contains(t, message, "Authentication failed")
	assert.Equal(t, []string{"download", "transcribe", "auth"}, trace.calls)
	assert.Equal(t, "dump/wyklad_transcript.txt", results.TranscriptPath)
	assert.Empty(t, results.AnalysisPath)
}

func TestPipelinePassesTranscriptToAnalyzer(t *testing.T) {
	trace := &stageTrace{}
	p := succeedingPipeline(trace)
	var gotOpts analyze.Options
	p.Analyze = func(ctx context.Context, opts analyze.Options, sink progress.Sink) (string, error) {
		trace.calls = append(trace.calls, "analyze")
		gotOpts = opts
		return "dump/wyklad_transcript_analysis.txt", nil
	}

	ok, _, _ := p.Run(context.Background(), Options{
		URL:          "https://example.com/x.mp4",
		OutputDir:    "dump",
		Endpoint:     "https://proxy.internal/v1/messages",
		AnalyzeModel: "claude-haiku-4-5",
	}, progress.Nop{})

	require.True(t, ok)
	assert.Equal(t, "dump/wyklad_transcript.txt", gotOpts.TranscriptPath)
	assert.Equal(t, "sk-ant-api03-test", gotOpts.APIKey)
	assert.Equal(t, "https://proxy.internal/v1/messages", gotOpts.Endpoint)
	assert.Equal(t, "claude-haiku-4-5", gotOpts.Model)
}
