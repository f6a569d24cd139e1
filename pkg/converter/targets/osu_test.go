package targets

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/okawaffles/vox2osu/pkg/converter"
	"github.com/okawaffles/vox2osu/pkg/vox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "../../vox/testdata/sample.vox"

func convertSample(t *testing.T, target converter.Target, keys int) ([]byte, *converter.Chart) {
	t.Helper()
	opts, err := converter.DefaultOptions()
	require.NoError(t, err)
	opts.Logger = log.New(io.Discard)
	opts.Keys = keys

	data, err := os.ReadFile(samplePath)
	require.NoError(t, err)
	out, chart, err := converter.New(target, opts).Convert(data)
	require.NoError(t, err)
	return out, chart
}

func defaultOsu(t *testing.T) *Osu {
	t.Helper()
	opts, err := converter.DefaultOptions()
	require.NoError(t, err)
	return NewOsu(opts.Resources.Osu)
}

func TestOsuName(t *testing.T) {
	o := defaultOsu(t)
	if o.Name() != "osu!mania" {
		t.Errorf("Name() = %q, want %q", o.Name(), "osu!mania")
	}
	if o.Format() != converter.FormatOsu {
		t.Errorf("Format() = %v, want %v", o.Format(), converter.FormatOsu)
	}
}

func TestColumnX(t *testing.T) {
	tests := []struct {
		column, keys, want int
	}{
		{0, 4, 64},
		{1, 4, 192},
		{2, 4, 320},
		{3, 4, 448},
		{0, 6, 42},
		{2, 6, 213},
		{5, 6, 469},
	}
	for _, tt := range tests {
		if got := ColumnX(tt.column, tt.keys); got != tt.want {
			t.Errorf("ColumnX(%d, %d) = %d, want %d", tt.column, tt.keys, got, tt.want)
		}
	}
}

func TestOsuGenerateSample(t *testing.T) {
	out, _ := convertSample(t, defaultOsu(t), 4)

	want := strings.Join([]string{
		"osu file format v14",
		"",
		"[Metadata]",
		"Title:converter test",
		"Artist:cocovox",
		"Creator:vox2osu",
		"Version:4K",
		"",
		"[General]",
		"AudioFilename: audio.mp3",
		"AudioLeadIn: 0",
		"PreviewTime: 0",
		"SampleSet: Soft",
		"StackLeniency: 0.7",
		"Mode: 3",
		"",
		"[Difficulty]",
		"HPDrainRate:8",
		"CircleSize:4",
		"OverallDifficulty:8",
		"ApproachRate:5",
		"SliderMultiplier:1.4",
		"SliderTickRate:1",
		"",
		"[TimingPoints]",
		"2500,500,4,2,0,30,1,0",
		"6500,500,4,2,0,30,1,0",
		"8500,500,4,2,0,30,1,0",
		"8400,400,4,2,0,30,1,0",
		"",
		"[HitObjects]",
		"64,192,2500,1,0,0:0:0:0:",
		"192,192,2500,1,0,0:0:0:0:",
		"64,192,4750,128,0,5750:0:0:0:0:",
		"320,192,7000,1,0,0:0:0:0:",
		"448,192,8500,128,0,9000:0:0:0:0:",
	}, "\r\n") + "\r\n"

	assert.Equal(t, want, string(out))
}

func TestOsuBlockOrder(t *testing.T) {
	out, _ := convertSample(t, defaultOsu(t), 6)
	text := string(out)

	blocks := []string{"[Metadata]", "[General]", "[Difficulty]", "[TimingPoints]", "[HitObjects]"}
	last := -1
	for _, b := range blocks {
		i := strings.Index(text, b)
		require.NotEqual(t, -1, i, "missing %s", b)
		assert.Greater(t, i, last, "%s out of order", b)
		last = i
	}
	assert.Contains(t, text, "Version:6K\r\n")
	assert.Contains(t, text, "CircleSize:6\r\n")
	// FX-L chip in the first 6K column
	assert.Contains(t, text, "42,192,4500,1,0,0:0:0:0:\r\n")
}

func TestOsuChordOrder(t *testing.T) {
	chart := &converter.Chart{
		Keys:         4,
		TimingPoints: []converter.TimingPoint{{Time: 0, MsPerBeat: 500, Meter: 4}},
		Objects: []converter.HitObject{
			{Lane: vox.LaneBTC, Column: 2, Time: 1000},
			{Lane: vox.LaneBTA, Column: 0, Time: 1000.2},
			{Lane: vox.LaneBTB, Column: 1, Time: 999.9},
		},
	}
	converter.SortObjects(chart.Objects)

	out, err := defaultOsu(t).Generate(chart)
	require.NoError(t, err)

	objects := strings.Split(string(out), "[HitObjects]\r\n")[1]
	assert.Equal(t, "192,192,1000,1,0,0:0:0:0:\r\n320,192,1000,1,0,0:0:0:0:\r\n64,192,1000,1,0,0:0:0:0:\r\n", objects)
}

func TestOsuHoldNeverEndsBeforeStart(t *testing.T) {
	chart := &converter.Chart{
		Keys:         4,
		TimingPoints: []converter.TimingPoint{{Time: 0, MsPerBeat: 500, Meter: 4}},
		Objects: []converter.HitObject{
			{Lane: vox.LaneBTA, Column: 0, Time: 4500, Hold: true, HoldBeats: -1, HoldDuration: -500},
		},
	}

	out, err := defaultOsu(t).Generate(chart)
	require.NoError(t, err)
	assert.Contains(t, string(out), "64,192,4500,128,0,4500:0:0:0:0:\r\n")
}

func TestOsuMetadataOverride(t *testing.T) {
	opts, err := converter.DefaultOptions()
	require.NoError(t, err)
	settings := opts.Resources.Osu
	settings.Metadata.Title = "Lachryma"
	settings.Metadata.Version = "EXH"

	out, _ := convertSample(t, NewOsu(settings), 4)
	assert.Contains(t, string(out), "Title:Lachryma\r\n")
	assert.Contains(t, string(out), "Version:EXH\r\n")
}

func TestOsuGenerateErrors(t *testing.T) {
	o := defaultOsu(t)

	_, err := o.Generate(nil)
	assert.Error(t, err)

	_, err = o.Generate(&converter.Chart{Keys: 4})
	assert.ErrorIs(t, err, converter.ErrNoTempo)

	_, err = o.Generate(&converter.Chart{TimingPoints: []converter.TimingPoint{{MsPerBeat: 500}}})
	assert.Error(t, err)
}
