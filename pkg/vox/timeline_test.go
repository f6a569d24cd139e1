package vox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(lines ...string) []RawLine {
	out := make([]RawLine, len(lines))
	for i, l := range lines {
		out[i] = RawLine{Number: i + 1, Text: l}
	}
	return out
}

func sep(fields ...string) string {
	s := fields[0]
	for _, f := range fields[1:] {
		s += FieldSeparator + f
	}
	return s
}

func TestParseTempos(t *testing.T) {
	tempos, errs := ParseTempos(raw(
		sep("001,01,00", "120.00", "4"),
		sep("003,01,00", "120.00", "4-"),
		"",
		"// note",
		sep("005,02,12", "183.5", "4"),
	))
	require.Empty(t, errs)
	require.Len(t, tempos, 3)

	assert.Equal(t, TempoChange{Position: Position{1, 1, 0}, BPM: 120}, tempos[0])
	assert.True(t, tempos[1].Pause)
	assert.Equal(t, Position{5, 2, 12}, tempos[2].Position)
	assert.Equal(t, 183.5, tempos[2].BPM)
}

func TestParseTemposMalformed(t *testing.T) {
	tempos, errs := ParseTempos(raw(
		sep("001,01,00", "BAROFF", "4"),
		sep("00x,01,00", "120", "4"),
		sep("002,01", "120", "4"),
		sep("003,01,00", "-5", "4"),
		sep("004,01,00", "140", "8"),
	))

	// the abnormal flag line is still kept
	require.Len(t, tempos, 1)
	assert.Equal(t, 140.0, tempos[0].BPM)
	assert.False(t, tempos[0].Pause)

	require.Len(t, errs, 5)
	for i, err := range errs[:4] {
		var lineErr *LineError
		require.True(t, errors.As(err, &lineErr))
		assert.Equal(t, SectionBPMInfo, lineErr.Section)
		assert.Equal(t, i+1, lineErr.Line)
		assert.True(t, IsMalformed(err), "line %d: %v", i+1, err)
	}
	assert.True(t, errors.Is(errs[4], ErrAbnormalLine))
	assert.False(t, IsMalformed(errs[4]))
}

func TestParseMeters(t *testing.T) {
	meters, errs := ParseMeters(raw(
		sep("001,01,00", "4", "4"),
		sep("009,01,00", "7", "8"),
		sep("010,01,00", "x", "8"),
		sep("011,01,00", "3"),
	))

	require.Len(t, meters, 2)
	assert.Equal(t, MeterChange{Position: Position{9, 1, 0}, Numerator: 7, Denominator: 8}, meters[1])
	require.Len(t, errs, 2)
	assert.True(t, IsMalformed(errs[0]))
	assert.True(t, IsMalformed(errs[1]))
}

func TestTimelineMeter(t *testing.T) {
	assert.Equal(t, DefaultMeter, Timeline{}.Meter())

	tl := Timeline{Meters: []MeterChange{{Numerator: 3, Denominator: 4}, {Numerator: 5, Denominator: 4}}}
	assert.Equal(t, 3, tl.Meter().Numerator)
}

func TestBeatsBetween(t *testing.T) {
	four := MeterChange{Numerator: 4, Denominator: 4}

	tests := []struct {
		name          string
		current, next Position
		want          int
	}{
		{"whole measures", Position{0, 0, 0}, Position{3, 0, 0}, 12},
		{"same measure", Position{2, 1, 0}, Position{2, 3, 0}, 2},
		{"wraparound to beat zero", Position{0, 3, 0}, Position{1, 0, 0}, 1},
		// next.Beat is not added back after a wraparound
		{"wraparound drops next beat", Position{0, 3, 0}, Position{1, 2, 0}, 1},
		{"offset ignored", Position{0, 0, 47}, Position{1, 0, 1}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BeatsBetween(tt.current, tt.next, four))
		})
	}
}

func TestResolvesPause(t *testing.T) {
	tests := []struct {
		name              string
		previous, current TempoChange
		want              bool
	}{
		{"same bpm unpaused", TempoChange{BPM: 120, Pause: true}, TempoChange{BPM: 120}, true},
		{"same bpm still paused", TempoChange{BPM: 120, Pause: true}, TempoChange{BPM: 120, Pause: true}, false},
		{"bpm changed", TempoChange{BPM: 120}, TempoChange{BPM: 140}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvesPause(tt.previous, tt.current))
		})
	}
}

func TestActiveTempo(t *testing.T) {
	four := MeterChange{Numerator: 4, Denominator: 4}
	tempos := []TempoChange{
		{Position: Position{1, 0, 0}, BPM: 100},
		{Position: Position{2, 2, 0}, BPM: 150},
		{Position: Position{4, 0, 0}, BPM: 200},
	}

	tests := []struct {
		name string
		pos  Position
		want float64
	}{
		{"before first falls back to first", Position{0, 0, 0}, 100},
		{"on first", Position{1, 0, 0}, 100},
		{"just before second", Position{2, 1, 47}, 100},
		{"offset ignored on boundary beat", Position{2, 2, 30}, 150},
		{"after last", Position{9, 3, 0}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActiveTempo(tt.pos, tempos, four).BPM)
		})
	}
}

func TestActiveTempoSingleEntry(t *testing.T) {
	four := MeterChange{Numerator: 4, Denominator: 4}
	only := []TempoChange{{Position: Position{3, 1, 0}, BPM: 128}}

	for _, pos := range []Position{{0, 0, 0}, {3, 1, 0}, {999, 3, 47}} {
		assert.Equal(t, only[0], ActiveTempo(pos, only, four))
	}
}

func TestActiveTempoKeepsLastQualifyingInSequenceOrder(t *testing.T) {
	four := MeterChange{Numerator: 4, Denominator: 4}
	// not sorted: the scan keeps the last qualifying entry, not the greatest
	tempos := []TempoChange{
		{Position: Position{0, 0, 0}, BPM: 90},
		{Position: Position{5, 0, 0}, BPM: 180},
		{Position: Position{2, 0, 0}, BPM: 120},
	}
	assert.Equal(t, 120.0, ActiveTempo(Position{6, 0, 0}, tempos, four).BPM)
}

func TestReadTimelineSample(t *testing.T) {
	doc, err := Load("testdata/sample.vox", DefaultFormat(), EncodingShiftJIS)
	require.NoError(t, err)

	tl, errs := ReadTimeline(doc)
	assert.Empty(t, errs)
	assert.Len(t, tl.Tempos, 4)
	assert.Len(t, tl.Meters, 1)
	assert.True(t, tl.Tempos[1].Pause)
}
