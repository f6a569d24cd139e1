package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/okawaffles/vox2osu/pkg/vox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesVoxDefaultFormat(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, vox.DefaultFormat(), r.VoxFormat())
	assert.Equal(t, "osu file format v14", r.Osu.Signature)
	assert.Equal(t, 0.7, r.Osu.General.StackLeniency)
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	content := `format:
  sections:
    BPM_INFO: "#BPM"
    NOT_A_SECTION: "#WHATEVER"
osu:
  metadata:
    title: "Luminous Days"
  difficulty:
    overall_difficulty: 9.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Luminous Days", r.Osu.Metadata.Title)
	assert.Equal(t, "cocovox", r.Osu.Metadata.Artist, "untouched values keep their default")
	assert.Equal(t, 9.5, r.Osu.Difficulty.OverallDifficulty)
	assert.Equal(t, 5.0, r.Osu.Difficulty.ApproachRate)

	f := r.VoxFormat()
	assert.Equal(t, "#BPM", f.Headers[vox.SectionBPMInfo])
	assert.Equal(t, "#BEAT INFO", f.Headers[vox.SectionBeatInfo])
	assert.NotContains(t, f.Headers, vox.Section("NOT_A_SECTION"))
	assert.Equal(t, "#FORMAT VERSION", f.VersionHeader)
}

func TestLoadEmptyPath(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "#END", r.Format.Terminator)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: [unclosed"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
