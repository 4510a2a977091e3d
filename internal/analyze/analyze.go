// Package analyze turns a transcript into a written summary through the
// Anthropic messages API. The transcript is split into overlapping chunks,
// each chunk is tidied and summarized in its own requests, and a final pass
// merges the chunk summaries into one document.
package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/rs/zerolog/log"
)

// Options configure one analysis run. APIKey is required; everything else
// has a working default.
type Options struct {
	TranscriptPath string
	OutputDir      string
	APIKey         string
	Endpoint       string
	Model          string
	MaxChars       int
	Overlap        int
}

// Run analyzes a transcript file and writes the summary next to it as
// {base}_analysis.txt, returning the written path.
func Run(ctx context.Context, opts Options, sink progress.Sink) (string, error) {
	sink = progress.OrDefault(sink)
	info, err := os.Stat(opts.TranscriptPath)
	if err != nil {
		return "", fmt.Errorf("transcript file not found: %s", opts.TranscriptPath)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is not a file: %s", opts.TranscriptPath)
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return "", fmt.Errorf("API key is required")
	}
	if err := utils.EnsureDir(opts.OutputDir); err != nil {
		return "", err
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.Overlap <= 0 {
		opts.Overlap = DefaultOverlap
	}

	sink.Log(progress.LevelInfo, fmt.Sprintf("Loading transcript: %s", opts.TranscriptPath))
	data, err := os.ReadFile(opts.TranscriptPath)
	if err != nil {
		return "", fmt.Errorf("error reading transcript: %v", err)
	}
	sink.Log(progress.LevelInfo, "Splitting transcript into overlapping chunks...")
	chunks := SplitChunks(string(data), opts.MaxChars, opts.Overlap)
	sink.Log(progress.LevelInfo, fmt.Sprintf("Created %d chunks for analysis", len(chunks)))
	log.Debug().Str("op", "analyze").Msgf("Split %d bytes into %d chunks", len(data), len(chunks))

	apiClient := newClient(opts.APIKey, opts.Endpoint, opts.Model)
	summaries := make([]string, 0, len(chunks))
	for idx, chunk := range chunks {
		label := fmt.Sprintf("Chunk %d/%d", idx+1, len(chunks))
		sink.Log(progress.LevelInfo, fmt.Sprintf("Processing %s...", label))
		sink.Update("analyze", int64(idx+1), int64(len(chunks)), fmt.Sprintf("Processing %s", label))
		tidied, err := apiClient.tidy(ctx, chunk)
		if err != nil {
			return "", err
		}
		summary, err := apiClient.summarize(ctx, tidied, label)
		if err != nil {
			return "", err
		}
		summaries = append(summaries, fmt.Sprintf("%s: %s", label, summary))
	}

	sink.Log(progress.LevelInfo, "Generating final comprehensive summary...")
	finalSummary, err := apiClient.combine(ctx, summaries)
	if err != nil {
		return "", err
	}

	baseName := strings.TrimSuffix(filepath.Base(opts.TranscriptPath), filepath.Ext(opts.TranscriptPath))
	analysisPath := filepath.Join(opts.OutputDir, baseName+"_analysis.txt")
	if err := writeAnalysis(analysisPath, finalSummary, summaries); err != nil {
		return "", err
	}
	sink.Log(progress.LevelInfo, fmt.Sprintf("Analysis saved to: %s", analysisPath))
	return analysisPath, nil
}

func writeAnalysis(path, finalSummary string, chunkSummaries []string) error {
	bar := strings.Repeat("=", 80)
	var b strings.Builder
	b.WriteString(bar + "\n")
	b.WriteString("FINAL SUMMARY\n")
	b.WriteString(bar + "\n\n")
	b.WriteString(finalSummary)
	b.WriteString("\n\n" + bar + "\n")
	b.WriteString("CHUNK-BY-CHUNK SUMMARIES\n")
	b.WriteString(bar + "\n\n")
	for _, summary := range chunkSummaries {
		b.WriteString(summary + "\n\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("error writing analysis file: %v", err)
	}
	return nil
}
