package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogFile_PrunesOldest(t *testing.T) {
	dir := t.TempDir()
	for _, stamp := range []string{"20240101T000000.000", "20240102T000000.000", "20240103T000000.000"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, logFilePrefix+stamp+".log"), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), nil, 0o644))

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	logs, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Contains(t, logs, f.Name())
	assert.Contains(t, logs, filepath.Join(dir, logFilePrefix+"20240103T000000.000.log"))
	assert.FileExists(t, filepath.Join(dir, "unrelated.txt"))
}

func TestSetupLogFile_ZeroKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, logFilePrefix+"20240101T000000.000.log"), nil, 0o644))

	f, err := SetupLogFile(dir, 0)
	require.NoError(t, err)
	defer f.Close()

	logs, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
