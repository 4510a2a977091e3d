package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/instytutkryptografii/lektor/internal/media"
	"github.com/instytutkryptografii/lektor/internal/profile"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/remux"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/rs/zerolog/log"
)

// DownloadMedia is the full media download operation: resolve the request
// profile, classify the URL, pick an output name, fetch, and for video run
// the non-fatal faststart pass. It upholds the tri-tuple contract for every
// failure mode, including panics from deeper layers.
func DownloadMedia(ctx context.Context, opts MediaOptions, sink progress.Sink) (result Result) {
	sink = progress.OrDefault(sink)
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("Download error: %v", r)
			log.Error().Str("op", "fetch").Msg(message)
			sink.Error(message, fmt.Errorf("%v", r))
			result = Result{Success: false, Message: message}
		}
	}()

	if err := utils.ValidateURL(opts.URL); err != nil {
		message := fmt.Sprintf("Download error: %v", err)
		sink.Error(message, err)
		return Result{Success: false, Message: message}
	}
	if err := utils.EnsureDir(opts.OutputDir); err != nil {
		message := fmt.Sprintf("Download error: %v", err)
		sink.Error(message, err)
		return Result{Success: false, Message: message}
	}
	prof, err := profile.Load(opts.HeadersFile, opts.CookiesFile, opts.NoAuth)
	if err != nil {
		message := fmt.Sprintf("Download error: %v", err)
		sink.Error(message, err)
		return Result{Success: false, Message: message}
	}
	if opts.NoAuth {
		sink.Log(progress.LevelInfo, "Using minimal headers (no authentication)")
	}
	if opts.HeadersFile != "" {
		sink.Log(progress.LevelInfo, fmt.Sprintf("Loaded custom headers from %s", opts.HeadersFile))
	}
	if opts.CookiesFile != "" {
		sink.Log(progress.LevelInfo, fmt.Sprintf("Loaded custom cookies from %s", opts.CookiesFile))
	}
	for k, v := range opts.Headers {
		prof.Headers[k] = v
	}

	kind := media.KindFor(opts.Kind, opts.URL)
	sink.Log(progress.LevelInfo, fmt.Sprintf("Detected file type: %s", kind))
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = media.OutputName(opts.URL, kind, opts.OutputDir, time.Now())
	}
	sink.Log(progress.LevelInfo, fmt.Sprintf("Output file: %s", outputPath))

	req := Request{
		URL:        opts.URL,
		OutputPath: outputPath,
		ChunkSize:  opts.ChunkSize,
		ClientConfig: utils.HTTPClientConfig{
			Timeout:   opts.Timeout,
			UserAgent: opts.UserAgent,
			ProxyURL:  opts.ProxyURL,
			Headers:   prof.Headers,
			Cookies:   prof.Cookies,
		},
	}
	downloadResult := Download(ctx, req, sink)
	if !downloadResult.Success {
		return downloadResult
	}

	if kind == media.Video && !opts.SkipFix {
		sink.Log(progress.LevelInfo, "Optimizing video for seeking...")
		fixedPath, err := remux.Faststart(ctx, downloadResult.OutputPath)
		if err != nil {
			log.Warn().Str("op", "fetch").Err(err).Msg("Video optimization failed, keeping original file")
			sink.Log(progress.LevelWarning, "Video optimization failed, using original file")
			return Result{Success: true, OutputPath: downloadResult.OutputPath, Message: "Download complete (optimization failed)"}
		}
		sink.Log(progress.LevelInfo, fmt.Sprintf("Video optimized: %s", fixedPath))
		return Result{Success: true, OutputPath: fixedPath, Message: "Download and optimization complete"}
	}
	if kind == media.Audio {
		sink.Log(progress.LevelInfo, fmt.Sprintf("Audio file ready: %s", downloadResult.OutputPath))
	}
	return downloadResult
}
