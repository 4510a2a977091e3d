package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/rs/zerolog/log"
)

// maxForbiddenRetries caps consecutive 403 responses on a single range before
// the loop gives up. A successful chunk resets the count.
const maxForbiddenRetries = 10

// forbiddenBackoff is the base delay between 403 retries, scaled linearly by
// the consecutive failure count.
var forbiddenBackoff = 500 * time.Millisecond

// fetchChunks drives downloaded up to total in ChunkSize spans, appending
// each span to outFile in order. Cancellation is observed only here, between
// chunks, so a written chunk is never torn. One progress update per chunk.
func fetchChunks(ctx context.Context, client *utils.LektorHTTPClient, req Request, outFile *os.File, downloaded, total int64, sink progress.Sink) error {
	buffer := make([]byte, utils.DefaultReadBufferSize)
	forbidden := 0
	for downloaded < total {
		if ctx.Err() != nil {
			return ErrCanceled
		}
		end := downloaded + req.ChunkSize - 1
		if end > total-1 {
			end = total - 1
		}
		httpReq, err := http.NewRequest("GET", req.URL, nil)
		if err != nil {
			return fmt.Errorf("error creating GET request: %v", err)
		}
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", downloaded, end))
		resp, err := client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("error executing ranged request: %v", err)
		}
		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent:
			_, copyErr := copyBody(resp.Body, outFile, buffer)
			resp.Body.Close()
			if copyErr != nil {
				return copyErr
			}
			if err := outFile.Sync(); err != nil {
				return fmt.Errorf("error syncing output file: %v", err)
			}
			downloaded = end + 1
			forbidden = 0
			percent := float64(downloaded) / float64(total) * 100
			message := fmt.Sprintf("Downloaded %s of %s (%.1f%%)", output.FormatBytes(uint64(downloaded)), output.FormatBytes(uint64(total)), percent)
			sink.Update("download", downloaded, total, message)
		case resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			forbidden++
			if forbidden >= maxForbiddenRetries {
				log.Error().Str("op", "fetch").Msgf("Access forbidden %d times in a row for range %d-%d, giving up", forbidden, downloaded, end)
				return &StatusError{StatusCode: http.StatusForbidden}
			}
			log.Warn().Str("op", "fetch").Msgf("Access forbidden (403) for range %d-%d, retrying (attempt %d/%d)", downloaded, end, forbidden, maxForbiddenRetries)
			sink.Log(progress.LevelWarning, "Access forbidden (403), retrying same range...")
			time.Sleep(time.Duration(forbidden) * forbiddenBackoff)
		default:
			statusErr := &StatusError{StatusCode: resp.StatusCode}
			resp.Body.Close()
			log.Error().Str("op", "fetch").Msgf("Ranged request for %d-%d failed with status %d", downloaded, end, statusErr.StatusCode)
			return statusErr
		}
	}
	return nil
}

// copyBody streams body into outFile through buffer. It is the shared write
// loop of the chunked and fallback paths.
func copyBody(body io.Reader, outFile *os.File, buffer []byte) (int64, error) {
	var written int64
	for {
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				return written, fmt.Errorf("error writing to output file: %v", writeErr)
			}
			written += int64(bytesRead)
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, fmt.Errorf("error reading response body: %v", readErr)
		}
	}
}
