package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notefuse/notefuse/internal/platform/config"
	"github.com/notefuse/notefuse/internal/process/merge"
)

func testApp() *App {
	logger := zerolog.Nop()

	return New(&config.Config{
		AppEnv:              "test",
		EmbeddingDimensions: 32,
		EmbeddingRateLimit:  1,
	}, &logger)
}

func TestRunMergeEndToEnd(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"),
		[]byte(`[{"text": "A", "section-text": "- alpha\n- bravo"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes1.json"),
		[]byte(`[{"text": "A", "section-text": "- alpha"}]`), 0o644))

	outPath := filepath.Join(dir, "merged.txt")
	reportPath := filepath.Join(dir, "merged_results.json")

	err := testApp().RunMerge(context.Background(), MergeParams{
		NotesDir:   dir,
		OutPath:    outPath,
		ReportPath: reportPath,
		Options:    merge.DefaultOptions(),
	})
	require.NoError(t, err)

	merged, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "A:\n- alpha\n- bravo", string(merged))

	reportData, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var report merge.Report
	require.NoError(t, json.Unmarshal(reportData, &report))

	require.Len(t, report.Headers, 1)
	assert.Equal(t, "A", report.Headers[0].AcceptedHeaderName)
	require.Len(t, report.Headers[0].Bullets, 2)
	assert.Len(t, report.Headers[0].Bullets[0].ConflictingBullets, 1)
}

func TestRunMergeEmptyDirectoryWritesEmptyOutputs(t *testing.T) {
	dir := t.TempDir()

	outPath := filepath.Join(dir, "merged.txt")
	reportPath := filepath.Join(dir, "merged_results.json")

	err := testApp().RunMerge(context.Background(), MergeParams{
		NotesDir:   dir,
		OutPath:    outPath,
		ReportPath: reportPath,
		Options:    merge.DefaultOptions(),
	})
	require.NoError(t, err)

	merged, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Empty(t, merged)

	reportData, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var report merge.Report
	require.NoError(t, json.Unmarshal(reportData, &report))
	assert.Empty(t, report.Headers)
}

func TestRunMergeMissingDirectoryFails(t *testing.T) {
	dir := t.TempDir()

	err := testApp().RunMerge(context.Background(), MergeParams{
		NotesDir:   filepath.Join(dir, "missing"),
		OutPath:    filepath.Join(dir, "merged.txt"),
		ReportPath: filepath.Join(dir, "merged_results.json"),
		Options:    merge.DefaultOptions(),
	})
	require.Error(t, err)
}
