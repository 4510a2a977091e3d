package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/utils"
)

// fallbackDownload is the last resort when the ranged path cannot run: one
// unranged streaming GET writing the whole body from offset zero. There is no
// resume and no per-chunk progress; failure here is terminal.
func fallbackDownload(ctx context.Context, client *utils.LektorHTTPClient, req Request, sink progress.Sink) error {
	if ctx.Err() != nil {
		return ErrCanceled
	}
	sink.Log(progress.LevelInfo, "Using fallback download method (no resume support)")
	httpReq, err := http.NewRequest("GET", req.URL, nil)
	if err != nil {
		return fmt.Errorf("error creating fallback request: %v", err)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("error executing fallback request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	outFile, err := os.OpenFile(req.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error creating output file: %v", err)
	}
	defer outFile.Close()
	buffer := make([]byte, utils.FallbackBufferSize)
	written, err := copyBody(resp.Body, outFile, buffer)
	if err != nil {
		return err
	}
	outFile.Sync()
	sink.Update("download", written, written, fmt.Sprintf("Downloaded %s", output.FormatBytes(uint64(written))))
	return nil
}
