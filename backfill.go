package main

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// backfill.go - batch-mode sweep over the root prefix
//
// The backfill driver replays the same per-file load unit the event
// dispatcher runs, for every eligible file not yet in the manifest. One
// file's failure is logged and counted, never fatal: the sweep is
// best-effort, and the exit code reports whether anything failed.

// BackfillSummary reports per-family loaded/skipped counts and errors.
type BackfillSummary struct {
	Loaded  map[string]int
	Skipped map[string]int
	Errors  int
}

// Failed reports whether any file errored during the sweep.
func (s *BackfillSummary) Failed() bool {
	return s.Errors > 0
}

func (s *BackfillSummary) String() string {
	parts := make([]string, 0, len(allFamilies())+1)
	for _, f := range allFamilies() {
		parts = append(parts, fmt.Sprintf("%s=%d (skipped=%d)",
			f.Source, s.Loaded[f.Name], s.Skipped[f.Name]))
	}
	parts = append(parts, fmt.Sprintf("errors=%d", s.Errors))
	return strings.Join(parts, ", ")
}

// RunBackfill lists every .ndjson object under the root prefix and runs the
// per-file load unit for each classifiable one. Already-manifested files
// count as skipped; unclassifiable paths are ignored; a most_popular path
// without an extractable date is logged and passed over.
func RunBackfill(ctx context.Context, store objectLister, units unitRunner, rootPrefix string) (*BackfillSummary, error) {
	paths, err := store.ListNDJSON(ctx, rootPrefix)
	if err != nil {
		return nil, err
	}
	log.Printf("Backfill: found %d candidate files under %s/", len(paths), rootPrefix)

	summary := &BackfillSummary{
		Loaded:  make(map[string]int),
		Skipped: make(map[string]int),
	}

	for _, path := range paths {
		c, err := classify(path, rootPrefix)
		if err != nil {
			log.Printf("Skipping (no snapshot date): %s", path)
			continue
		}
		if c == nil {
			continue
		}

		result, err := units.Run(ctx, c.Family, path, c.PathDate)
		if err != nil {
			log.Printf("Failed to load %s %s: %v", c.Family.Name, path, err)
			summary.Errors++
			continue
		}
		if result.Skipped {
			summary.Skipped[c.Family.Name]++
			continue
		}
		summary.Loaded[c.Family.Name]++
	}

	log.Printf("Backfill complete: %s", summary)
	return summary, nil
}
