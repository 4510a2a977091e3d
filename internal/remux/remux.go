// Package remux wraps the ffmpeg invocations that run after a download:
// the faststart pass that moves the moov atom up front so videos seek over
// HTTP, and audio extraction for transcription input.
package remux

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// EnsureFFmpeg locates ffmpeg in PATH or next to the executable.
func EnsureFFmpeg() (string, error) {
	path, err := exec.LookPath("ffmpeg")
	if err == nil {
		return path, nil
	}
	execDir, err := os.Executable()
	if err == nil {
		ffmpegPath := filepath.Join(filepath.Dir(execDir), "ffmpeg")
		if runtime.GOOS == "windows" {
			ffmpegPath += ".exe"
		}
		if _, err := os.Stat(ffmpegPath); err == nil {
			return ffmpegPath, nil
		}
	}
	return "", fmt.Errorf("ffmpeg not found in PATH, please install manually")
}

// FixedPath derives the sibling path a faststart pass writes to.
func FixedPath(inputPath string) string {
	baseName := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return baseName + "_fixed.mp4"
}

// Faststart re-containerizes a finished video with the moov atom at the
// front, without re-encoding. The original file is left in place; the
// optimized copy is returned.
func Faststart(ctx context.Context, inputPath string) (string, error) {
	ffmpegPath, err := EnsureFFmpeg()
	if err != nil {
		return "", err
	}
	fixedPath := FixedPath(inputPath)
	cmd := exec.CommandContext(
		ctx,
		ffmpegPath,
		"-y", // Overwrite output files without asking
		"-i", inputPath,
		"-c", "copy",
		"-movflags", "faststart",
		fixedPath,
	)
	log.Debug().Str("op", "remux").Msgf("Executing ffmpeg command: %s", cmd.String())
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg error: %v\nOutput: %s", err, string(output))
	}
	return fixedPath, nil
}

// AudioPath derives the mp3 sibling path audio extraction writes to.
func AudioPath(inputPath string) string {
	baseName := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return baseName + ".mp3"
}

// ExtractAudio pulls the audio track out of a video into an mp3, the input
// format the transcriber wants when handed a video download.
func ExtractAudio(ctx context.Context, inputPath string) (string, error) {
	ffmpegPath, err := EnsureFFmpeg()
	if err != nil {
		return "", err
	}
	audioPath := AudioPath(inputPath)
	cmd := exec.CommandContext(
		ctx,
		ffmpegPath,
		"-y", // Overwrite output files without asking
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		audioPath,
	)
	log.Debug().Str("op", "remux").Msgf("Executing ffmpeg command: %s", cmd.String())
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg error: %v\nOutput: %s", err, string(output))
	}
	return audioPath, nil
}
