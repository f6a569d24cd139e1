package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "../../pkg/vox/testdata/sample.vox"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outputFile, targetName = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootConvertsToOsu(t *testing.T) {
	output := filepath.Join(t.TempDir(), "sample.osu")
	_, err := execute(t, samplePath, "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "osu file format v14\r\n"))
}

func TestRootMissingInput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "missing.osu")
	_, err := execute(t, filepath.Join(dir, "missing.vox"), "-o", output)
	assert.Error(t, err)
	assert.NoFileExists(t, output)
}

func TestConvertTargetFromExtension(t *testing.T) {
	output := filepath.Join(t.TempDir(), "preview.mid")
	_, err := execute(t, "convert", samplePath, "-o", output, "--keys", "6")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "MThd", string(data[:4]))
}

func TestConvertRejectsBadFlags(t *testing.T) {
	output := filepath.Join(t.TempDir(), "chart.osu")

	_, err := execute(t, "convert", samplePath, "-o", output, "--keys", "5")
	assert.Error(t, err)

	_, err = execute(t, "convert", samplePath, "-o", output, "--keys", "4", "--encoding", "latin1")
	assert.Error(t, err)

	_, err = execute(t, "convert", samplePath, "-o", output, "--encoding", "shift_jis", "-t", "bms")
	assert.Error(t, err)
	assert.NoFileExists(t, output)
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", samplePath)
	require.NoError(t, err)

	assert.Contains(t, out, "Initialized .vox file of version 10")
	assert.Contains(t, out, "BPM at 003,01,00 sets chart BPM to 120.00 and DOES pause")
	assert.Contains(t, out, "pause from 003,01,00 to 004,01,00: 4 beats (2000 ms)")
	assert.Contains(t, out, "SPCONTROLLER")
}
