package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	paths []string
	err   error
}

func (f *fakeLister) ListNDJSON(ctx context.Context, prefix string) ([]string, error) {
	return f.paths, f.err
}

// scriptedRunner fails for the paths it is told to and marks others loaded.
type scriptedRunner struct {
	failOn  map[string]bool
	skipOn  map[string]bool
	visited []string
}

func (s *scriptedRunner) Run(ctx context.Context, f *Family, objectPath, pathDate string) (*UnitResult, error) {
	s.visited = append(s.visited, objectPath)
	if s.failOn[objectPath] {
		return &UnitResult{Family: f.Name, Path: objectPath}, errors.New("load failed")
	}
	if s.skipOn[objectPath] {
		return &UnitResult{Family: f.Name, Path: objectPath, Skipped: true}, nil
	}
	return &UnitResult{Family: f.Name, Path: objectPath, State: StateCleaned}, nil
}

func TestRunBackfill_IsolatesPerFileFailures(t *testing.T) {
	paths := []string{
		"nyt-ingest/archive_slim/2020/01.ndjson",
		"nyt-ingest/archive_slim/2020/02.ndjson",
		"nyt-ingest/archive_slim/2020/03.ndjson",
		"nyt-ingest/archive_slim/2020/04.ndjson",
		"nyt-ingest/archive_slim/2020/05.ndjson",
	}
	runner := &scriptedRunner{failOn: map[string]bool{paths[2]: true}}

	summary, err := RunBackfill(context.Background(), &fakeLister{paths: paths}, runner, "nyt-ingest")
	require.NoError(t, err)

	// File #3 failed but #4 and #5 were still attempted.
	assert.Equal(t, paths, runner.visited)
	assert.Equal(t, 4, summary.Loaded["archive"])
	assert.Equal(t, 1, summary.Errors)
	assert.True(t, summary.Failed())
}

func TestRunBackfill_CountsSkippedPerFamily(t *testing.T) {
	paths := []string{
		"nyt-ingest/archive_slim/2020/01.ndjson",
		"nyt-ingest/most_popular_slim/2026-02-19/viewed_30.ndjson",
		"nyt-ingest/most_popular_slim/2026-02-20/viewed_30.ndjson",
	}
	runner := &scriptedRunner{skipOn: map[string]bool{paths[1]: true}}

	summary, err := RunBackfill(context.Background(), &fakeLister{paths: paths}, runner, "nyt-ingest")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Loaded["archive"])
	assert.Equal(t, 1, summary.Loaded["most_popular"])
	assert.Equal(t, 1, summary.Skipped["most_popular"])
	assert.Equal(t, 0, summary.Errors)
	assert.False(t, summary.Failed())
}

func TestRunBackfill_IgnoresUnclassifiableAndMalformedPaths(t *testing.T) {
	paths := []string{
		"nyt-ingest/raw/2020/01.ndjson",                  // unknown prefix
		"nyt-ingest/most_popular_slim/viewed_30.ndjson",  // no snapshot date
		"nyt-ingest/archive_slim/2020/02.ndjson",
	}
	runner := &scriptedRunner{}

	summary, err := RunBackfill(context.Background(), &fakeLister{paths: paths}, runner, "nyt-ingest")
	require.NoError(t, err)

	assert.Equal(t, []string{"nyt-ingest/archive_slim/2020/02.ndjson"}, runner.visited)
	assert.Equal(t, 1, summary.Loaded["archive"])
	assert.Equal(t, 0, summary.Errors)
}

func TestRunBackfill_ListFailureIsFatal(t *testing.T) {
	runner := &scriptedRunner{}
	_, err := RunBackfill(context.Background(), &fakeLister{err: errors.New("bucket unreachable")}, runner, "nyt-ingest")
	require.Error(t, err)
	assert.Empty(t, runner.visited)
}

func TestBackfillSummaryString(t *testing.T) {
	summary := &BackfillSummary{
		Loaded:  map[string]int{"archive": 3, "most_popular": 2},
		Skipped: map[string]int{"archive": 1},
		Errors:  1,
	}
	s := summary.String()
	assert.Contains(t, s, "archive_slim=3 (skipped=1)")
	assert.Contains(t, s, "most_popular_slim=2 (skipped=0)")
	assert.Contains(t, s, "errors=1")
}
