// Package pipeline chains the three stages, download then transcribe then
// analyze, short-circuiting on the first failure while keeping the artifacts
// of the stages that did finish.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/instytutkryptografii/lektor/internal/analyze"
	"github.com/instytutkryptografii/lektor/internal/auth"
	"github.com/instytutkryptografii/lektor/internal/fetch"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/transcribe"
	"github.com/rs/zerolog/log"
)

// Options configure one full pipeline run.
type Options struct {
	URL          string
	OutputDir    string
	NoAuth       bool
	SkipFix      bool
	HeadersFile  string
	CookiesFile  string
	UserAgent    string
	ProxyURL     string
	ChunkSize    int64
	Timeout      time.Duration
	Device       string
	Model        string
	Endpoint     string
	AnalyzeModel string
	MaxChars     int
	Overlap      int
	Auth         auth.Config
}

// Results collects the artifact paths as stages finish. A failed run still
// carries the paths of every stage that completed.
type Results struct {
	MediaPath      string
	TranscriptPath string
	AnalysisPath   string
}

// Pipeline runs the stages through swappable functions so tests can stand in
// for the real operations.
type Pipeline struct {
	Download   func(context.Context, fetch.MediaOptions, progress.Sink) fetch.Result
	Transcribe func(context.Context, transcribe.Options, progress.Sink) (string, error)
	GetAPIKey  func(context.Context, auth.Config) (string, error)
	Analyze    func(context.Context, analyze.Options, progress.Sink) (string, error)
}

func New() *Pipeline {
	return &Pipeline{
		Download:   fetch.DownloadMedia,
		Transcribe: transcribe.Run,
		GetAPIKey:  auth.GetAPIKey,
		Analyze:    analyze.Run,
	}
}

// Run executes download, transcribe, analyze in order. The returned message
// names the stage that failed, or reports full success.
func (p *Pipeline) Run(ctx context.Context, opts Options, sink progress.Sink) (bool, Results, string) {
	sink = progress.OrDefault(sink)
	results := Results{}

	stageBanner(sink, "STAGE 1/3: DOWNLOADING")
	downloadResult := p.Download(ctx, fetch.MediaOptions{
		URL:         opts.URL,
		OutputDir:   opts.OutputDir,
		NoAuth:      opts.NoAuth,
		SkipFix:     opts.SkipFix,
		HeadersFile: opts.HeadersFile,
		CookiesFile: opts.CookiesFile,
		UserAgent:   opts.UserAgent,
		ProxyURL:    opts.ProxyURL,
		ChunkSize:   opts.ChunkSize,
		Timeout:     opts.Timeout,
	}, sink)
	if !downloadResult.Success {
		message := fmt.Sprintf("Download failed: %s", downloadResult.Message)
		sink.Log(progress.LevelError, message)
		return false, results, message
	}
	results.MediaPath = downloadResult.OutputPath
	sink.Log(progress.LevelInfo, fmt.Sprintf("✓ Download complete: %s", results.MediaPath))

	stageBanner(sink, "STAGE 2/3: TRANSCRIBING")
	transcriptPath, err := p.Transcribe(ctx, transcribe.Options{
		InputPath: results.MediaPath,
		OutputDir: opts.OutputDir,
		Device:    opts.Device,
		Model:     opts.Model,
	}, sink)
	if err != nil {
		message := fmt.Sprintf("Transcription failed: %v", err)
		sink.Log(progress.LevelError, message)
		return false, results, message
	}
	results.TranscriptPath = transcriptPath
	sink.Log(progress.LevelInfo, fmt.Sprintf("✓ Transcription complete: %s", transcriptPath))

	stageBanner(sink, "STAGE 3/3: ANALYZING")
	apiKey, err := p.GetAPIKey(ctx, opts.Auth)
	if err != nil {
		message := fmt.Sprintf("Authentication failed: %v", err)
		sink.Log(progress.LevelError, message)
		return false, results, message
	}
	analysisPath, err := p.Analyze(ctx, analyze.Options{
		TranscriptPath: transcriptPath,
		OutputDir:      opts.OutputDir,
		APIKey:         apiKey,
		Endpoint:       opts.Endpoint,
		Model:          opts.AnalyzeModel,
		MaxChars:       opts.MaxChars,
		Overlap:        opts.Overlap,
	}, sink)
	if err != nil {
		message := fmt.Sprintf("Analysis failed: %v", err)
		sink.Log(progress.LevelError, message)
		return false, results, message
	}
	results.AnalysisPath = analysisPath
	sink.Log(progress.LevelInfo, fmt.Sprintf("✓ Analysis complete: %s", analysisPath))

	stageBanner(sink, "PIPELINE COMPLETE")
	sink.Log(progress.LevelInfo, fmt.Sprintf("Media: %s", results.MediaPath))
	sink.Log(progress.LevelInfo, fmt.Sprintf("Transcript: %s", results.TranscriptPath))
	sink.Log(progress.LevelInfo, fmt.Sprintf("Analysis: %s", results.AnalysisPath))
	log.Info().Str("op", "pipeline").Msgf("Pipeline finished for %s", opts.URL)
	return true, results, "Pipeline completed successfully"
}

func stageBanner(sink progress.Sink, title string) {
	bar := strings.Repeat("=", 60)
	sink.Log(progress.LevelInfo, bar)
	sink.Log(progress.LevelInfo, title)
	sink.Log(progress.LevelInfo, bar)
}
