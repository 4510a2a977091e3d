// Package fetch implements the resumable chunked downloader. The destination
// file's byte count on disk is the only durable state: interrupt the process
// at any point and a rerun with the same output path picks up where the bytes
// end. When the server's answers rule out the ranged path, a single unranged
// fallback pass runs instead.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/rs/zerolog/log"
)

// Download runs one resumable fetch: size probe, resume check, chunk loop.
// Probe and transport failures funnel into a single fallback attempt; a
// decisive server status or a canceled context does not. The returned Result
// is always well-formed, errors never escape this boundary.
func Download(ctx context.Context, req Request, sink progress.Sink) Result {
	sink = progress.OrDefault(sink)
	req = req.withDefaults()
	client := utils.NewLektorHTTPClient(req.ClientConfig)

	err := downloadResumable(ctx, client, req, sink)
	if err == nil {
		return Result{Success: true, OutputPath: req.OutputPath, Message: "Download complete"}
	}
	if errors.Is(err, ErrCanceled) {
		sink.Log(progress.LevelWarning, "Download canceled, partial file kept for resume")
		return Result{Success: false, Message: "Download canceled"}
	}
	if IsFatalStatus(err) {
		sink.Error(fmt.Sprintf("Download failed: %v", err), err)
		return Result{Success: false, Message: "Download failed"}
	}
	log.Warn().Str("op", "fetch").Err(err).Msg("Resumable download failed, trying fallback method")
	sink.Log(progress.LevelWarning, fmt.Sprintf("Resumable download failed: %v. Trying fallback method...", err))
	if fallbackErr := fallbackDownload(ctx, client, req, sink); fallbackErr != nil {
		if errors.Is(fallbackErr, ErrCanceled) {
			return Result{Success: false, Message: "Download canceled"}
		}
		message := fmt.Sprintf("Fallback download failed: %v", fallbackErr)
		sink.Error(message, fallbackErr)
		return Result{Success: false, Message: message}
	}
	return Result{Success: true, OutputPath: req.OutputPath, Message: "Download complete (fallback mode)"}
}

func downloadResumable(ctx context.Context, client *utils.LektorHTTPClient, req Request, sink progress.Sink) error {
	total, err := probeSize(client, req.URL)
	if err != nil {
		return err
	}
	sink.Log(progress.LevelInfo, fmt.Sprintf("File size: %s", output.FormatBytes(uint64(total))))
	outFile, downloaded, err := openDestination(req.OutputPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	if downloaded > 0 {
		log.Info().Str("op", "fetch").Msgf("Resuming %s from offset %d", req.OutputPath, downloaded)
		sink.Log(progress.LevelInfo, fmt.Sprintf("Resuming from %s", output.FormatBytes(uint64(downloaded))))
	}
	return fetchChunks(ctx, client, req, outFile, downloaded, total, sink)
}
