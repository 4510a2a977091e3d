// Package transcribe runs Whisper over a downloaded audio or video file and
// writes the plain-text transcript next to it as {base}_transcript.txt.
package transcribe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/rs/zerolog/log"
)

// AvailableModels are the Whisper model sizes the CLI accepts, smallest to
// largest.
var AvailableModels = []string{"tiny", "base", "small", "medium", "large", "large-v2", "large-v3"}

// AvailableDevices are the supported inference devices.
var AvailableDevices = []string{"cpu", "cuda"}

const (
	DefaultModel  = "base"
	DefaultDevice = "cpu"
)

// Options configure one transcription run.
type Options struct {
	InputPath string
	OutputDir string
	Device    string
	Model     string
}

// EnsureWhisper locates the whisper binary in PATH or next to the executable.
func EnsureWhisper() (string, error) {
	path, err := exec.LookPath("whisper")
	if err == nil {
		return path, nil
	}
	execDir, err := os.Executable()
	if err == nil {
		whisperPath := filepath.Join(filepath.Dir(execDir), "whisper")
		if runtime.GOOS == "windows" {
			whisperPath += ".exe"
		}
		if _, err := os.Stat(whisperPath); err == nil {
			return whisperPath, nil
		}
	}
	return "", fmt.Errorf("whisper not found in PATH, please install manually")
}

// ValidateOptions rejects bad inputs before whisper is invoked.
func ValidateOptions(opts Options) error {
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		return fmt.Errorf("audio file not found: %s", opts.InputPath)
	}
	if info.IsDir() {
		return fmt.Errorf("path is not a file: %s", opts.InputPath)
	}
	if !slices.Contains(AvailableDevices, opts.Device) {
		return fmt.Errorf("invalid device: %s, must be 'cpu' or 'cuda'", opts.Device)
	}
	if !slices.Contains(AvailableModels, opts.Model) {
		return fmt.Errorf("invalid model size: %s, choose from: %s", opts.Model, strings.Join(AvailableModels, ", "))
	}
	return nil
}

// TranscriptPath derives where the transcript for an input file ends up.
func TranscriptPath(inputPath, outputDir string) string {
	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(outputDir, baseName+"_transcript.txt")
}

// Run transcribes one file and returns the transcript path. Whisper's own
// output naming is rewritten to the {base}_transcript.txt convention.
func Run(ctx context.Context, opts Options, sink progress.Sink) (string, error) {
	sink = progress.OrDefault(sink)
	if opts.Device == "" {
		opts.Device = DefaultDevice
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if err := ValidateOptions(opts); err != nil {
		return "", err
	}
	if err := utils.EnsureDir(opts.OutputDir); err != nil {
		return "", err
	}
	whisperPath, err := EnsureWhisper()
	if err != nil {
		return "", err
	}

	sink.Log(progress.LevelInfo, fmt.Sprintf("Loading Whisper model: %s (%s)", opts.Model, opts.Device))
	sink.Log(progress.LevelInfo, fmt.Sprintf("Transcribing: %s", opts.InputPath))
	sink.Log(progress.LevelInfo, "This may take a while for large files...")
	sink.Update("transcribe", 0, 100, "Transcribing audio...")

	cmd := exec.CommandContext(
		ctx,
		whisperPath,
		opts.InputPath,
		"--model", opts.Model,
		"--device", opts.Device,
		"--output_dir", opts.OutputDir,
		"--output_format", "txt",
	)
	log.Debug().Str("op", "transcribe").Msgf("Executing whisper command: %s", cmd.String())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("error creating stdout pipe: %v", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("error creating stderr pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("error starting whisper: %v", err)
	}

	segments := 0
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		segments = watchSegments(stdout, sink)
	}()
	go func() {
		defer wg.Done()
		drainStream(stderr, sink)
	}()
	wg.Wait()
	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("whisper failed: %v", err)
	}

	transcriptPath, err := renameTranscript(opts.InputPath, opts.OutputDir)
	if err != nil {
		return "", err
	}
	sink.Update("transcribe", 100, 100, fmt.Sprintf("Transcription complete: %d segments", segments))
	sink.Log(progress.LevelInfo, fmt.Sprintf("Transcription complete: %d segments", segments))
	sink.Log(progress.LevelInfo, fmt.Sprintf("Saved to: %s", transcriptPath))
	return transcriptPath, nil
}

// watchSegments follows whisper's stdout, counting decoded segment lines and
// feeding coarse progress upward. Whisper does not announce a total, so the
// bar creeps toward 95 and jumps to done at the end.
func watchSegments(stream io.Reader, sink progress.Sink) int {
	segments := 0
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.Contains(line, "-->") {
			segments++
			if segments%5 == 0 {
				display := int64(segments * 2)
				if display > 95 {
					display = 95
				}
				sink.Update("transcribe", display, 100, fmt.Sprintf("Processed %d segments...", segments))
			}
		}
	}
	return segments
}

func drainStream(stream io.Reader, sink progress.Sink) {
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			sink.Log(progress.LevelDebug, line)
		}
	}
}

// renameTranscript moves whisper's {base}.txt output onto the
// {base}_transcript.txt convention the analyzer expects.
func renameTranscript(inputPath, outputDir string) (string, error) {
	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	producedPath := filepath.Join(outputDir, baseName+".txt")
	transcriptPath := TranscriptPath(inputPath, outputDir)
	if _, err := os.Stat(producedPath); err != nil {
		return "", fmt.Errorf("whisper did not produce a transcript at %s", producedPath)
	}
	if err := os.Rename(producedPath, transcriptPath); err != nil {
		return "", fmt.Errorf("error renaming (finalizing) transcript file: %v", err)
	}
	return transcriptPath, nil
}
