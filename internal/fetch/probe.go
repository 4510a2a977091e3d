package fetch

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/instytutkryptografii/lektor/internal/utils"
)

// probeSize issues an open-ended ranged GET and reads the total length from
// the response headers without consuming the body. Content-Range wins when
// present (the integer after the final '/'); Content-Length is the backup.
func probeSize(client *utils.LektorHTTPClient, url string) (int64, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating probe request: %v", err)
	}
	req.Header.Set("Range", "bytes=0-")
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error executing probe request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("%w: probe returned status %d", ErrSizeUnknown, resp.StatusCode)
	}
	if contentRange := resp.Header.Get("Content-Range"); contentRange != "" {
		if idx := strings.LastIndex(contentRange, "/"); idx >= 0 {
			total, err := strconv.ParseInt(strings.TrimSpace(contentRange[idx+1:]), 10, 64)
			if err == nil && total >= 0 {
				return total, nil
			}
		}
		// Malformed or "*" total, fall through to Content-Length
	}
	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		total, err := strconv.ParseInt(contentLength, 10, 64)
		if err == nil && total >= 0 {
			return total, nil
		}
	}
	return 0, fmt.Errorf("%w: no usable length header", ErrSizeUnknown)
}
