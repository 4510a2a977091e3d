package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/remux"
	"github.com/instytutkryptografii/lektor/internal/transcribe"
	"github.com/spf13/cobra"
)

func newTranscribeCmd() *cobra.Command {
	var model string
	var device string
	var extractAudio bool

	cmd := &cobra.Command{
		Use:   "transcribe [MEDIA_FILE]",
		Short: "Transcribe an audio file with Whisper",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			inputPath := args[0]
			if extractAudio {
				audioPath, err := remux.ExtractAudio(cmd.Context(), inputPath)
				if err != nil {
					output.PrintError(fmt.Sprintf("Audio extraction failed: %v", err))
					os.Exit(1)
				}
				output.PrintInfo(fmt.Sprintf("Audio extracted to %s", audioPath))
				inputPath = audioPath
			}
			opts := transcribe.Options{
				InputPath: inputPath,
				OutputDir: cfg.OutputDir,
				Model:     cfg.Whisper.Model,
				Device:    cfg.Whisper.Device,
			}
			if model != "" {
				opts.Model = model
			}
			if device != "" {
				opts.Device = device
			}
			if _, err := transcribe.Run(cmd.Context(), opts, progress.NewConsole()); err != nil {
				output.PrintError(fmt.Sprintf("Transcription failed: %v", err))
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&model, "model", "", fmt.Sprintf("Whisper model size (%s)", strings.Join(transcribe.AvailableModels, ", ")))
	cmd.Flags().StringVar(&device, "device", "", "Computation device (cpu, cuda)")
	cmd.Flags().BoolVar(&extractAudio, "extract-audio", false, "Extract the audio track with ffmpeg before transcribing")
	return cmd
}
