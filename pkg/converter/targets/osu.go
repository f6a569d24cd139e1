// Package targets provides the destination format serializers
package targets

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/okawaffles/vox2osu/pkg/config"
	"github.com/okawaffles/vox2osu/pkg/converter"
)

// osu!mania constants
const (
	OsuModeMania    = 3
	OsuPlayfield    = 512 // Playfield width in osu! pixels
	OsuNoteY        = 192
	OsuTypeChip     = 1
	OsuTypeHold     = 128
	OsuSampleSet    = 2  // Timing point sample set (soft)
	OsuSampleVolume = 30 // Timing point volume
)

const crlf = "\r\n"

// Osu implements the Target interface for osu!mania beatmaps
type Osu struct {
	settings config.OsuConfig
}

// NewOsu creates a new osu! target writing the given fixed blocks
func NewOsu(settings config.OsuConfig) *Osu {
	return &Osu{settings: settings}
}

// Name returns the target name
func (o *Osu) Name() string {
	return "osu!mania"
}

// Format returns the file format written by the target
func (o *Osu) Format() converter.Format {
	return converter.FormatOsu
}

// ColumnX returns the x coordinate of column in a keys-wide playfield
func ColumnX(column, keys int) int {
	return (2*column + 1) * OsuPlayfield / (2 * keys)
}

// Generate serializes chart into a .osu file.
// Blocks are written in the order the game reads them; TimingPoints must precede HitObjects.
func (o *Osu) Generate(chart *converter.Chart) ([]byte, error) {
	if chart == nil {
		return nil, errors.New("nil chart")
	}
	if chart.Keys <= 0 {
		return nil, fmt.Errorf("invalid key count %d", chart.Keys)
	}
	if len(chart.TimingPoints) == 0 {
		return nil, converter.ErrNoTempo
	}

	var buf bytes.Buffer
	line := func(format string, args ...any) {
		fmt.Fprintf(&buf, format, args...)
		buf.WriteString(crlf)
	}

	s := o.settings
	line("%s", s.Signature)
	line("")

	version := s.Metadata.Version
	if version == "" {
		version = fmt.Sprintf("%dK", chart.Keys)
	}
	line("[Metadata]")
	line("Title:%s", s.Metadata.Title)
	line("Artist:%s", s.Metadata.Artist)
	line("Creator:%s", s.Metadata.Creator)
	line("Version:%s", version)
	line("")

	line("[General]")
	line("AudioFilename: %s", s.General.AudioFilename)
	line("AudioLeadIn: %d", s.General.AudioLeadIn)
	line("PreviewTime: %d", s.General.PreviewTime)
	line("SampleSet: %s", s.General.SampleSet)
	line("StackLeniency: %s", formatFloat(s.General.StackLeniency))
	line("Mode: %d", OsuModeMania)
	line("")

	line("[Difficulty]")
	line("HPDrainRate:%s", formatFloat(s.Difficulty.HPDrainRate))
	line("CircleSize:%d", chart.Keys)
	line("OverallDifficulty:%s", formatFloat(s.Difficulty.OverallDifficulty))
	line("ApproachRate:%s", formatFloat(s.Difficulty.ApproachRate))
	line("SliderMultiplier:%s", formatFloat(s.Difficulty.SliderMultiplier))
	line("SliderTickRate:%s", formatFloat(s.Difficulty.SliderTickRate))
	line("")

	line("[TimingPoints]")
	for _, tp := range chart.TimingPoints {
		// time,beatLength,meter,sampleSet,sampleIndex,volume,uninherited,effects
		line("%d,%s,%d,%d,0,%d,1,0", roundMs(tp.Time), formatFloat(tp.MsPerBeat), tp.Meter, OsuSampleSet, OsuSampleVolume)
	}
	line("")

	line("[HitObjects]")
	for _, obj := range chart.Objects {
		x := ColumnX(obj.Column, chart.Keys)
		if obj.Hold {
			line("%d,%d,%d,%d,0,%d:0:0:0:0:", x, OsuNoteY, roundMs(obj.Time), OsuTypeHold, roundMs(obj.EndTime()))
			continue
		}
		line("%d,%d,%d,%d,0,0:0:0:0:", x, OsuNoteY, roundMs(obj.Time), OsuTypeChip)
	}

	return buf.Bytes(), nil
}

func roundMs(ms float64) int {
	return int(math.Round(ms))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
