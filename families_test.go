package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadColumns_ArchiveWidensPubDate(t *testing.T) {
	cols := archiveFamily.LoadColumns()

	// Same column count: nothing is path-derived in archive.
	assert.Len(t, cols, len(archiveFamily.Columns))

	for _, c := range cols {
		if c.Name == "pub_date" {
			assert.Equal(t, "VARCHAR", c.Type, "pub_date must load as text")
			return
		}
	}
	t.Fatal("pub_date missing from load-time schema")
}

func TestLoadColumns_MostPopularOmitsSnapshotDate(t *testing.T) {
	cols := mostPopularFamily.LoadColumns()

	assert.Len(t, cols, len(mostPopularFamily.Columns)-1)
	for _, c := range cols {
		assert.NotEqual(t, "snapshot_date", c.Name,
			"path-derived column must not be in the load-time schema")
	}
}

func TestFamilyKeysExistInSchema(t *testing.T) {
	for _, f := range allFamilies() {
		names := make(map[string]bool, len(f.Columns))
		for _, c := range f.Columns {
			names[c.Name] = true
		}
		for _, k := range f.Key {
			assert.True(t, names[k], "%s: key column %s not in schema", f.Name, k)
		}
	}
}

func TestClassificationPriorityOrder(t *testing.T) {
	fams := allFamilies()
	assert.Equal(t, "archive", fams[0].Name)
	assert.Equal(t, "most_popular", fams[1].Name)
}
