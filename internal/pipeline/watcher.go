package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// debounceWindow coalesces the burst of write events emitted while a
// package file is still being copied into the watched directory.
const debounceWindow = 500 * time.Millisecond

// Watcher observes a directory and runs the pipeline on every new or
// rewritten package file matching the pattern.
type Watcher struct {
	orch    *Orchestrator
	matcher glob.Glob

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher bound to an orchestrator.
func NewWatcher(orch *Orchestrator, pattern string) (*Watcher, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return &Watcher{
		orch:    orch,
		matcher: matcher,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Watch blocks, processing matching files as they appear under dir,
// until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Printf("Watching %s for new packages\n", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.matcher.Match(filepath.Base(event.Name)) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Warning: watcher error: %v\n", err)
		}
	}
}

// schedule arms or resets the debounce timer for one path. The file is
// processed once events for it have been quiet for the debounce window.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Reset(debounceWindow)
		return
	}
	w.pending[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		resp := w.orch.Process(ctx, path)
		if !resp.Success {
			log.Printf("Warning: %s: %s\n", path, resp.Message)
		}
	})
}
