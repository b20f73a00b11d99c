package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/glob"

	"github.com/twinlift/twinlift/internal/model"
)

// DefaultPattern matches the package files a batch run picks up when no
// pattern is given.
const DefaultPattern = "*.zip"

// BatchReport summarizes one batch run.
type BatchReport struct {
	FilesDiscovered int                       `json:"files_discovered"`
	FilesProcessed  int                       `json:"files_processed"`
	FilesFailed     int                       `json:"files_failed"`
	Aborted         bool                      `json:"aborted"`
	Elapsed         time.Duration             `json:"elapsed"`
	Results         []*model.ProcessingResult `json:"results"`
}

// DiscoverFiles walks dir and returns the files whose names match the
// glob pattern, sorted for deterministic batch order.
func DiscoverFiles(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if matcher.Match(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// RunBatch discovers matching files under dir and processes each one.
// Every file runs in isolation; a failing file never stops the batch
// when continue_on_error is set. Without it, the batch aborts after
// max_consecutive_errors back-to-back failures. Cancellation via ctx
// stops scheduling new files; in-flight files finish their current
// phase sequence.
func (o *Orchestrator) RunBatch(ctx context.Context, dir, pattern string) (*BatchReport, error) {
	files, err := DiscoverFiles(dir, pattern)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{FilesDiscovered: len(files)}
	if len(files) == 0 {
		return report, nil
	}

	start := time.Now()
	if o.cfg.Pipeline.ParallelProcessing && o.cfg.Pipeline.MaxWorkers > 1 {
		o.runParallel(ctx, files, report)
	} else {
		o.runSequential(ctx, files, report)
	}
	report.Elapsed = time.Since(start)

	o.logf("[TIMING] batch: %d files in %v (%d ok, %d failed)",
		report.FilesDiscovered, report.Elapsed, report.FilesProcessed, report.FilesFailed)
	return report, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, files []string, report *BatchReport) {
	var local Stats
	consecutive := 0
	for _, path := range files {
		if ctx.Err() != nil {
			report.Aborted = true
			break
		}
		outcome := o.ProcessFile(ctx, path)
		report.Results = append(report.Results, outcome.Result)

		failed := outcome.Result.Status == model.StatusFailed
		local.Record(failed, outcome.Result.Timings)
		if failed {
			report.FilesFailed++
			consecutive++
			if !o.cfg.Pipeline.ContinueOnError && consecutive >= o.cfg.Pipeline.MaxConsecutiveErrs {
				log.Printf("Aborting batch after %d consecutive failures\n", consecutive)
				report.Aborted = true
				break
			}
		} else {
			report.FilesProcessed++
			consecutive = 0
		}
	}
	o.stats.Merge(&local)
}

func (o *Orchestrator) runParallel(ctx context.Context, files []string, report *BatchReport) {
	workers := o.cfg.Pipeline.MaxWorkers
	if workers > len(files) {
		workers = len(files)
	}

	// consecutive counts back-to-back failures in completion order.
	// Crossing the limit trips abort, which stops the feeder.
	var consecutive atomic.Int64
	var aborted atomic.Bool
	abortLimit := int64(o.cfg.Pipeline.MaxConsecutiveErrs)

	queue := make(chan string)
	var mu sync.Mutex // guards report
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local Stats
			for path := range queue {
				outcome := o.ProcessFile(ctx, path)
				failed := outcome.Result.Status == model.StatusFailed
				local.Record(failed, outcome.Result.Timings)

				mu.Lock()
				report.Results = append(report.Results, outcome.Result)
				if failed {
					report.FilesFailed++
				} else {
					report.FilesProcessed++
				}
				mu.Unlock()

				if failed {
					if consecutive.Add(1) >= abortLimit && !o.cfg.Pipeline.ContinueOnError {
						aborted.Store(true)
					}
				} else {
					consecutive.Store(0)
				}
			}
			o.stats.Merge(&local)
		}()
	}

feed:
	for _, path := range files {
		if aborted.Load() {
			break
		}
		select {
		case queue <- path:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	if aborted.Load() || ctx.Err() != nil {
		report.Aborted = true
	}
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].SourceFile < report.Results[j].SourceFile
	})
}
