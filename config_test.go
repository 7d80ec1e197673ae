package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  endpoint: localhost:9000
  bucket: news-lake
warehouse:
  path: ./test.duckdb
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "news-lake-loader", cfg.Service.Name)
	assert.Equal(t, 8080, cfg.Service.Port)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.Equal(t, "staging", cfg.Warehouse.StagingSchema)
	assert.Equal(t, "metadata", cfg.Warehouse.MetadataSchema)
	assert.Equal(t, "prod", cfg.Warehouse.ProdSchema)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing bucket",
			content: `
storage:
  endpoint: localhost:9000
warehouse:
  path: ./test.duckdb
`,
			wantErr: "storage.bucket is required",
		},
		{
			name: "missing warehouse path",
			content: `
storage:
  endpoint: localhost:9000
  bucket: news-lake
`,
			wantErr: "warehouse.path is required",
		},
		{
			name: "bad port",
			content: `
service:
  port: 80
storage:
  endpoint: localhost:9000
  bucket: news-lake
warehouse:
  path: ./test.duckdb
`,
			wantErr: "service.port",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestObjectURI(t *testing.T) {
	cfg := &StorageConfig{Bucket: "news-lake"}
	assert.Equal(t, "s3://news-lake/nyt-ingest/archive_slim/2020/05.ndjson",
		cfg.ObjectURI("nyt-ingest/archive_slim/2020/05.ndjson"))
}
