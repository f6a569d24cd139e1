// Package converter assembles playable charts from VOX documents
package converter

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/okawaffles/vox2osu/pkg/config"
	"github.com/okawaffles/vox2osu/pkg/vox"
)

// TimingPoint is one output timing descriptor
type TimingPoint struct {
	Time      float64 // Milliseconds
	MsPerBeat float64
	Meter     int // Beats per measure
	Tempo     vox.TempoChange
}

// HitObject is a note placed on the output time axis
type HitObject struct {
	Lane         vox.Lane
	Column       int
	Position     vox.Position
	Time         float64 // Milliseconds
	Hold         bool
	HoldBeats    float64
	HoldDuration float64 // Milliseconds, HoldBeats at the active tempo
	Aux          int
}

// EndTime returns the absolute release time of a hold, or Time for a chip
func (h HitObject) EndTime() float64 {
	return h.Time + max(h.HoldDuration, 0)
}

// Pause is a span of the chart during which playback is suspended
type Pause struct {
	Start    vox.TempoChange
	End      vox.TempoChange
	Resolved bool    // False when no later tempo change ends the pause
	Beats    int     // Beats between Start and End under the chart meter
	Duration float64 // Milliseconds at the Start tempo
}

// Chart is a fully assembled conversion, held in memory until written
type Chart struct {
	Version      int
	Keys         int
	Layout       []vox.Lane
	Meter        vox.MeterChange
	Timeline     vox.Timeline
	TimingPoints []TimingPoint
	Objects      []HitObject
	Pauses       []Pause
	LaneCounts   map[vox.Lane]int
	Markers      map[vox.Section]vox.Marker
	Offset       float64
	Diagnostics  Diagnostics
}

// Target interface for destination format serializers
type Target interface {
	Name() string
	Format() Format
	Generate(chart *Chart) ([]byte, error)
}

// Options configure a Converter
type Options struct {
	Resources config.Resources
	Keys      int          // 4 (BT only) or 6 (BT + FX)
	Strict    bool         // Fail on any malformed line
	Offset    float64      // Calibration added to every output time, in ms
	Encoding  vox.Encoding // Source text encoding
	Logger    *log.Logger
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() (Options, error) {
	res, err := config.Default()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Resources: res,
		Keys:      4,
		Encoding:  vox.EncodingShiftJIS,
	}, nil
}

// Converter handles format conversions
type Converter struct {
	target Target
	opts   Options
}

// New creates a new Converter writing to target
func New(target Target, opts Options) *Converter {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Keys == 0 {
		opts.Keys = 4
	}
	return &Converter{target: target, opts: opts}
}

// GetTarget returns the current target
func (c *Converter) GetTarget() Target {
	return c.target
}

// SetTarget sets the target for conversion
func (c *Converter) SetTarget(target Target) {
	c.target = target
}

// Options returns the converter options
func (c *Converter) Options() Options {
	return c.opts
}

// Layout returns the lanes mapped to output columns for a key mode
func Layout(keys int) ([]vox.Lane, error) {
	switch keys {
	case 4:
		return []vox.Lane{vox.LaneBTA, vox.LaneBTB, vox.LaneBTC, vox.LaneBTD}, nil
	case 6:
		return []vox.Lane{vox.LaneFXL, vox.LaneBTA, vox.LaneBTB, vox.LaneBTC, vox.LaneBTD, vox.LaneFXR}, nil
	default:
		return nil, fmt.Errorf("unsupported key mode %d (want 4 or 6)", keys)
	}
}
