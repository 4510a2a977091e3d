// Package scheduler fans a batch of download entries over a worker pool and
// feeds their progress into the live terminal display.
package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/instytutkryptografii/lektor/internal/fetch"
	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/progress"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/rs/zerolog/log"
)

// BatchOptions apply to every entry in a batch run. Per-entry fields from the
// list file (output path, type override) win over the generated defaults.
type BatchOptions struct {
	OutputDir   string
	Workers     int
	NoAuth      bool
	SkipFix     bool
	HeadersFile string
	CookiesFile string
	Headers     map[string]string
	UserAgent   string
	ProxyURL    string
	ChunkSize   int64
	Timeout     time.Duration
}

type job struct {
	id    string
	entry utils.DownloadEntry
}

// Run downloads all entries with opts.Workers concurrent workers. Parallelism
// is across files only; each file still downloads chunk by chunk. The error
// summarizes how many entries failed, nil when all completed.
func Run(ctx context.Context, entries []utils.DownloadEntry, opts BatchOptions) error {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	outputMgr := output.NewManager()
	outputMgr.StartDisplay()
	defer outputMgr.StopDisplay()

	jobCh := make(chan job, len(entries))
	for _, entry := range entries {
		jobCh <- job{id: uuid.New().String(), entry: entry}
	}
	close(jobCh)

	resultCh := make(chan bool, len(entries))
	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			processJobs(ctx, jobCh, outputMgr, opts, resultCh)
		}()
	}
	wg.Wait()
	close(resultCh)

	failed := 0
	for success := range resultCh {
		if !success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(entries))
	}
	return nil
}

func processJobs(ctx context.Context, jobCh <-chan job, outputMgr *output.Manager, opts BatchOptions, resultCh chan<- bool) {
	for j := range jobCh {
		displayID := outputMgr.RegisterJob(displayName(j.entry))
		if ctx.Err() != nil {
			outputMgr.ReportError(displayID, fmt.Errorf("canceled before start"))
			resultCh <- false
			continue
		}
		log.Debug().Str("op", "scheduler").Str("jobId", j.id).Msgf("Starting download for %s", j.entry.URL)
		outputMgr.SetMessage(displayID, "Starting download")

		result := fetch.DownloadMedia(ctx, mediaOptions(j.entry, opts), &managerSink{manager: outputMgr, id: displayID})
		if result.Success {
			outputMgr.Complete(displayID, result.Message)
		} else {
			outputMgr.ReportError(displayID, fmt.Errorf("%s", result.Message))
		}
		resultCh <- result.Success
	}
}

func mediaOptions(entry utils.DownloadEntry, opts BatchOptions) fetch.MediaOptions {
	mediaOpts := fetch.MediaOptions{
		URL:         entry.URL,
		OutputDir:   opts.OutputDir,
		HeadersFile: opts.HeadersFile,
		CookiesFile: opts.CookiesFile,
		Headers:     opts.Headers,
		NoAuth:      opts.NoAuth,
		Kind:        entry.Type,
		ChunkSize:   opts.ChunkSize,
		Timeout:     opts.Timeout,
		UserAgent:   opts.UserAgent,
		ProxyURL:    opts.ProxyURL,
		SkipFix:     opts.SkipFix,
	}
	if entry.OutputPath != "" {
		if filepath.IsAbs(entry.OutputPath) {
			mediaOpts.OutputPath = entry.OutputPath
		} else {
			mediaOpts.OutputPath = filepath.Join(opts.OutputDir, entry.OutputPath)
		}
	}
	return mediaOpts
}

func displayName(entry utils.DownloadEntry) string {
	if entry.OutputPath != "" {
		return entry.OutputPath
	}
	return entry.URL
}

// managerSink adapts the per-download progress stream onto one job row of
// the batch display.
type managerSink struct {
	manager *output.Manager
	id      int
}

func (s *managerSink) Update(op string, current, total int64, message string) {
	if total > 0 {
		s.manager.SetProgress(s.id, current, total, message)
	} else {
		s.manager.SetMessage(s.id, message)
	}
}

func (s *managerSink) Log(level, message string) {
	if level == progress.LevelDebug {
		return
	}
	if level == progress.LevelWarning {
		s.manager.SetStatus(s.id, "warning")
	}
	s.manager.AddStreamLine(s.id, message)
}

func (s *managerSink) Complete(success bool, message string) {
	if success {
		s.manager.Complete(s.id, message)
	} else {
		s.manager.ReportError(s.id, fmt.Errorf("%s", message))
	}
}

func (s *managerSink) Error(message string, err error) {
	s.manager.ReportError(s.id, err)
	s.manager.SetMessage(s.id, message)
}
