package main

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// UnitState tracks how far a per-file load unit has progressed. The pipeline
// is a staged commit substituting for a multi-table transaction the warehouse
// doesn't offer; naming the state reached lets a retry (and an operator
// reading logs) reason about what a crashed unit left behind.
type UnitState int

const (
	StateNotStarted UnitState = iota
	StateStaged               // temp load + promotion complete
	StateMerged               // merge into final table complete
	StateManifested           // manifest entry written
	StateCleaned              // staging truncated
)

func (s UnitState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateStaged:
		return "staged"
	case StateMerged:
		return "merged"
	case StateManifested:
		return "manifested"
	case StateCleaned:
		return "cleaned"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// UnitResult contains the outcome of one per-file load unit.
type UnitResult struct {
	Family     string
	Path       string
	Skipped    bool
	RowsLoaded int64
	RowsMerged int64
	State      UnitState
	Duration   time.Duration
}

// warehouseOps is the slice of Warehouse the loader drives. Kept as an
// interface so unit behavior is testable against a fake.
type warehouseOps interface {
	IsLoaded(ctx context.Context, f *Family, path string) (bool, error)
	LoadTemp(ctx context.Context, f *Family, objectPath string) (int64, error)
	PromoteToStaging(ctx context.Context, f *Family, pathDate string) (int64, error)
	DropTemp(ctx context.Context, f *Family) error
	MergeToFinal(ctx context.Context, f *Family) (int64, error)
	TruncateStaging(ctx context.Context, f *Family) error
	RecordLoaded(ctx context.Context, f *Family, path string, loadedAt time.Time) error
}

// unitRunner is the surface the dispatcher and backfill driver invoke.
type unitRunner interface {
	Run(ctx context.Context, f *Family, objectPath, pathDate string) (*UnitResult, error)
}

// Loader runs per-file load units against the warehouse.
type Loader struct {
	wh warehouseOps

	filesLoaded  atomic.Int64
	filesSkipped atomic.Int64
	rowsMerged   atomic.Int64
	lastLoad     atomic.Int64 // Unix timestamp
}

// NewLoader creates a new Loader instance
func NewLoader(wh warehouseOps) *Loader {
	return &Loader{wh: wh}
}

// Run executes the per-file load unit for one object:
// manifest check -> temp load -> promote -> merge -> manifest write -> truncate.
//
// The manifest check runs before any load work; a manifested file is a no-op.
// The manifest entry is written only after the merge has completed — writing
// it earlier could mark a file loaded whose rows never reached the final
// table, silently losing them. Any step failure aborts the unit with no
// manifest entry, so a redelivery retries the whole unit safely.
func (l *Loader) Run(ctx context.Context, f *Family, objectPath, pathDate string) (*UnitResult, error) {
	startTime := time.Now()
	result := &UnitResult{
		Family: f.Name,
		Path:   objectPath,
		State:  StateNotStarted,
	}

	// 1. Idempotency short-circuit
	loaded, err := l.wh.IsLoaded(ctx, f, objectPath)
	if err != nil {
		return result, err
	}
	if loaded {
		log.Printf("Path %s already loaded, skipping", objectPath)
		result.Skipped = true
		result.Duration = time.Since(startTime)
		l.filesSkipped.Add(1)
		unitsTotal.WithLabelValues(f.Name, "skipped").Inc()
		return result, nil
	}

	// 2. Load the file into the temp table with the load-time schema
	rowsLoaded, err := l.wh.LoadTemp(ctx, f, objectPath)
	if err != nil {
		return l.fail(result, f, err)
	}
	result.RowsLoaded = rowsLoaded
	log.Printf("Loaded %d rows from %s to temp table", rowsLoaded, objectPath)

	// 3. Promote into the durable staging table, converting widened fields
	// and injecting path-derived columns
	if _, err := l.wh.PromoteToStaging(ctx, f, pathDate); err != nil {
		return l.fail(result, f, err)
	}
	result.State = StateStaged

	// 4. Drop the temp table. Best-effort: a leftover is overwritten on the
	// next load.
	if err := l.wh.DropTemp(ctx, f); err != nil {
		log.Printf("Warning: failed to drop temp table for %s: %v", f.Name, err)
	}

	// 5. Deduplicating merge into the final table
	rowsMerged, err := l.wh.MergeToFinal(ctx, f)
	if err != nil {
		return l.fail(result, f, err)
	}
	result.RowsMerged = rowsMerged
	result.State = StateMerged
	log.Printf("Merged %d new rows into %s", rowsMerged, f.Table)

	// 6. Manifest entry — only now that the merge is durable
	if err := l.wh.RecordLoaded(ctx, f, objectPath, time.Now()); err != nil {
		return l.fail(result, f, err)
	}
	result.State = StateManifested

	// 7. Clear staging, even when the merge inserted zero rows
	if err := l.wh.TruncateStaging(ctx, f); err != nil {
		return l.fail(result, f, err)
	}
	result.State = StateCleaned

	result.Duration = time.Since(startTime)
	l.filesLoaded.Add(1)
	l.rowsMerged.Add(rowsMerged)
	l.lastLoad.Store(time.Now().Unix())
	unitsTotal.WithLabelValues(f.Name, "loaded").Inc()
	rowsMergedTotal.WithLabelValues(f.Name).Add(float64(rowsMerged))
	unitDuration.WithLabelValues(f.Name).Observe(result.Duration.Seconds())

	log.Printf("Load unit completed in %v (family=%s, path=%s, loaded=%d, merged=%d)",
		result.Duration, f.Name, objectPath, rowsLoaded, rowsMerged)

	return result, nil
}

func (l *Loader) fail(result *UnitResult, f *Family, err error) (*UnitResult, error) {
	unitsTotal.WithLabelValues(f.Name, "error").Inc()
	return result, fmt.Errorf("load unit for %s failed at state %s: %w", result.Path, result.State, err)
}

// GetFilesLoaded returns the number of files loaded by this process
func (l *Loader) GetFilesLoaded() int64 {
	return l.filesLoaded.Load()
}

// GetFilesSkipped returns the number of already-manifested files skipped
func (l *Loader) GetFilesSkipped() int64 {
	return l.filesSkipped.Load()
}

// GetRowsMerged returns the total rows merged into final tables
func (l *Loader) GetRowsMerged() int64 {
	return l.rowsMerged.Load()
}

// GetLastLoadTime returns the Unix timestamp of the last completed load
func (l *Loader) GetLastLoadTime() int64 {
	return l.lastLoad.Load()
}
