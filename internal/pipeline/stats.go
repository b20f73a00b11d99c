package pipeline

import (
	"sync"
	"time"
)

// Stats is a per-worker local counter set. Workers mutate their own
// Stats without synchronization and merge into the shared Aggregator
// once, when they finish.
type Stats struct {
	FilesProcessed int           `json:"files_processed"`
	FilesFailed    int           `json:"files_failed"`
	ExtractTime    time.Duration `json:"extract_time"`
	TransformTime  time.Duration `json:"transform_time"`
	LoadTime       time.Duration `json:"load_time"`
}

// Record adds one file outcome to the local counters.
func (s *Stats) Record(failed bool, timings map[string]time.Duration) {
	if failed {
		s.FilesFailed++
	} else {
		s.FilesProcessed++
	}
	s.ExtractTime += timings[PhaseExtract]
	s.TransformTime += timings[PhaseTransform]
	s.LoadTime += timings[PhaseLoad]
}

// Aggregator is the only shared mutable state of a batch run. Workers
// merge their local Stats through it; it is resettable on demand.
type Aggregator struct {
	mu    sync.Mutex
	total Stats
}

// NewAggregator creates an empty statistics aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Merge folds a worker's local counters into the cumulative totals.
func (a *Aggregator) Merge(s *Stats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total.FilesProcessed += s.FilesProcessed
	a.total.FilesFailed += s.FilesFailed
	a.total.ExtractTime += s.ExtractTime
	a.total.TransformTime += s.TransformTime
	a.total.LoadTime += s.LoadTime
}

// Snapshot returns a copy of the cumulative totals.
func (a *Aggregator) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// Reset clears all cumulative counters.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total = Stats{}
}
