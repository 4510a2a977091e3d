package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rangedHandler serves content with byte-range support so the chunked
// download path works against it.
func rangedHandler(content []byte) http.HandlerFunc {
	total := int64(len(content))
	return func(w http.ResponseWriter, r *http.Request) {
		start, end := int64(0), total-1
		if n, _ := fmt.Sscanf(r.Header.Get("Range"), "bytes=%d-%d", &start, &end); n >= 1 {
			if end >= total {
				end = total - 1
			}
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, total))
			w.Header().Set("Content-Length", fmt.Sprintf("%d", end-start+1))
			w.WriteHeader(http.StatusPartialContent)
			w.Write(content[start : end+1])
			return
		}
		w.Header().Set("Content-Length", fmt.Sprintf("%d", total))
		w.Write(content)
	}
}

func TestRunDownloadsAllEntries(t *testing.T) {
	payloadA := bytes.Repeat([]byte{0x11}, 3000)
	payloadB := bytes.Repeat([]byte{0x22}, 5000)
	mux := http.NewServeMux()
	mux.HandleFunc("/a.mp3", rangedHandler(payloadA))
	mux.HandleFunc("/b.mp3", rangedHandler(payloadB))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	entries := []utils.DownloadEntry{
		{URL: server.URL + "/a.mp3", OutputPath: "first.mp3"},
		{URL: server.URL + "/b.mp3"},
	}
	err := Run(context.Background(), entries, BatchOptions{
		OutputDir: dir,
		Workers:   2,
		ChunkSize: 2048,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "first.mp3"))
	require.NoError(t, err)
	assert.Equal(t, payloadA, got)

	// The second entry had no explicit output path, so it lands under a
	// timestamped name derived from the URL.
	matches, err := filepath.Glob(filepath.Join(dir, "b_*.mp3"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	got, err = os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, payloadB, got)
}

func TestRunCountsFailedEntries(t *testing.T) {
	payload := bytes.Repeat([]byte{0x33}, 1024)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.mp3", rangedHandler(payload))
	mux.HandleFunc("/missing.mp3", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	entries := []utils.DownloadEntry{
		{URL: server.URL + "/ok.mp3", OutputPath: "ok.mp3"},
		{URL: server.URL + "/missing.mp3", OutputPath: "missing.mp3"},
	}
	err := Run(context.Background(), entries, BatchOptions{OutputDir: dir, Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 downloads failed")

	got, err := os.ReadFile(filepath.Join(dir, "ok.mp3"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRunCanceledContextFailsAllEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	entries := []utils.DownloadEntry{
		{URL: "https://example.com/a.mp3"},
		{URL: "https://example.com/b.mp3"},
	}
	err := Run(ctx, entries, BatchOptions{OutputDir: t.TempDir(), Workers: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 downloads failed")
}

func TestMediaOptionsPathResolution(t *testing.T) {
	opts := BatchOptions{OutputDir: "dump", NoAuth: true, SkipFix: true, ChunkSize: 1024}
	tests := []struct {
		name     string
		entry    utils.DownloadEntry
		wantPath string
	}{
		{
			name:     "relative path joined with output dir",
			entry:    utils.DownloadEntry{URL: "https://example.com/x.mp4", OutputPath: "sub/x.mp4"},
			wantPath: filepath.Join("dump", "sub", "x.mp4"),
		},
		{
			name:     "absolute path kept as-is",
			entry:    utils.DownloadEntry{URL: "https://example.com/x.mp4", OutputPath: "/tmp/x.mp4"},
			wantPath: "/tmp/x.mp4",
		},
		{
			name:     "empty path left for auto-naming",
			entry:    utils.DownloadEntry{URL: "https://example.com/x.mp4"},
			wantPath: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mediaOpts := mediaOptions(tt.entry, opts)
			assert.Equal(t, tt.wantPath, mediaOpts.OutputPath)
			assert.Equal(t, tt.entry.URL, mediaOpts.URL)
			assert.Equal(t, tt.entry.Type, mediaOpts.Kind)
			assert.True(t, mediaOpts.NoAuth)
			assert.True(t, mediaOpts.SkipFix)
			assert.Equal(t, int64(1024), mediaOpts.ChunkSize)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "clip.mp4", displayName(utils.DownloadEntry{URL: "https://example.com/v", OutputPath: "clip.mp4"}))
	assert.Equal(t, "https://example.com/v", displayName(utils.DownloadEntry{URL: "https://example.com/v"}))
}
