package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFilename(t *testing.T) {
	date := time.Date(2026, time.March, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "Finanzieren_auf_Probe_2026-03-05.pdf", ExportFilename("Finanzieren_auf_Probe", date))
	assert.Equal(t, "Finanzieren_auf_Probe_2026-03-05.pdf", ExportFilename("", date))
	assert.Equal(t, "Probe_2026-03-05.pdf", ExportFilename("Probe", date))
}

func TestSaveDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	doc := &Document{Filename: "Finanzieren_auf_Probe_2026-10-18.pdf", Bytes: []byte("%PDF-1.3 test")}

	path, err := SaveDocument(dir, doc)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, doc.Filename, filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Bytes, data)

	_, err = SaveDocument(dir, nil)
	assert.Error(t, err)
}

func TestSaveExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := saveExport(dir, "table.csv", []byte("Jahr;Fondsguthaben (€)\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "table.csv"), path)

	path, err = saveExport(dir, "table.csv", []byte("replaced"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(data), "existing exports are overwritten")

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	_, err = saveExport(filepath.Join(blocker, "sub"), "x.csv", nil)
	assert.Error(t, err, "directory cannot be created below a file")
}

func TestPruneExports(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	files := map[string]time.Duration{
		"old.pdf":   10 * 24 * time.Hour,
		"old.CSV":   8 * 24 * time.Hour,
		"fresh.pdf": time.Hour,
		"notes.txt": 30 * 24 * time.Hour,
	}
	for name, age := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		require.NoError(t, os.Chtimes(path, now.Add(-age), now.Add(-age)))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0755))

	removed, err := PruneExports(dir, 7*24*time.Hour, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"old.pdf", "old.CSV"}, removed)

	for _, kept := range []string{"fresh.pdf", "notes.txt", "sub.pdf"} {
		_, err := os.Stat(filepath.Join(dir, kept))
		assert.NoError(t, err, "%s must survive", kept)
	}
}

func TestPruneExports_NoopCases(t *testing.T) {
	removed, err := PruneExports(filepath.Join(t.TempDir(), "missing"), time.Hour, time.Now())
	assert.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = PruneExports(t.TempDir(), 0, time.Now())
	assert.NoError(t, err)
	assert.Empty(t, removed)
}

func TestStartExportPruner(t *testing.T) {
	stop, err := StartExportPruner(t.TempDir(), time.Hour)
	require.NoError(t, err)
	stop()
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, RunProjection(scenarioA(), DefaultEngineConfig()).Points))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 16)
	assert.Equal(t, "Jahr;Fondsguthaben (€);Kumulierte Sparrate (€);Inflationsbereinigter Kaufpreis (€);Eigenkapitalquote (%)", lines[0])
	assert.Equal(t, "1;12408;12200,00;408000,00;3,0", lines[1])
	assert.Equal(t, "15;256515;183000,00;538347,34;47,6", lines[15])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "header only")
}
