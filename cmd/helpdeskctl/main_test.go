package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileBackend(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("STORAGE_FILE_PATH", dir)
	t.Setenv("SEED_FILE", "")
	t.Setenv("LOG_FILE", "")
	return dir
}

func TestStatsCommand(t *testing.T) {
	fileBackend(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"stats", "--critical", "active"}, &out))

	var stats struct {
		TotalTickets    int `json:"totalTickets"`
		OpenTickets     int `json:"openTickets"`
		CriticalTickets int `json:"criticalTickets"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, 8, stats.TotalTickets)
	assert.Equal(t, 3, stats.OpenTickets)
	assert.Equal(t, 1, stats.CriticalTickets)

	err := run(context.Background(), []string{"stats", "--critical", "some"}, &out)
	assert.ErrorContains(t, err, "--critical")
}

func TestVolumeCommand(t *testing.T) {
	fileBackend(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"volume", "--days", "7"}, &out))

	var points []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &points))
	assert.Len(t, points, 7)
}

func TestExportCommand(t *testing.T) {
	dir := fileBackend(t)
	target := filepath.Join(dir, "report.xlsx")
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"export", "--out", target}, &out))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
	assert.Contains(t, out.String(), "report.xlsx")
}

func TestResetCommand(t *testing.T) {
	fileBackend(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"reset"}, &out))
	assert.Equal(t, "restored 8 tickets\n", out.String())
}

func TestUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"frobnicate"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, errUsage)
	assert.ErrorIs(t, run(context.Background(), nil, &bytes.Buffer{}), errUsage)
}
