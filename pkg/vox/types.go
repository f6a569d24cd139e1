// Package vox reads VOX chart files and reconstructs their tempo/meter timeline
package vox

import "fmt"

// TicksPerBeat is the sub-beat resolution of a VOX position offset
const TicksPerBeat = 48

// PauseFlag marks a tempo change that pauses playback
const PauseFlag = "4-"

// ResumeFlag is the ordinary tempo change flag
const ResumeFlag = "4"

// Position locates an event in musical time
type Position struct {
	Measure int // Measure index (>= 0)
	Beat    int // Beat within the measure, below the meter numerator
	Offset  int // Tick within the beat, 0..TicksPerBeat-1
}

// Less reports whether p comes strictly before q (measure, then beat, then offset)
func (p Position) Less(q Position) bool {
	if p.Measure != q.Measure {
		return p.Measure < q.Measure
	}
	if p.Beat != q.Beat {
		return p.Beat < q.Beat
	}
	return p.Offset < q.Offset
}

// BeatIndex returns the absolute beat number of p under meter; the offset is ignored
func (p Position) BeatIndex(meter MeterChange) int {
	return p.Measure*meter.Numerator + p.Beat
}

// String renders p the way it appears in a VOX file
func (p Position) String() string {
	return fmt.Sprintf("%03d,%02d,%02d", p.Measure, p.Beat, p.Offset)
}

// TempoChange is a BPM value effective from Position until superseded
type TempoChange struct {
	Position Position
	BPM      float64
	Pause    bool
}

// MsPerBeat returns the beat length in milliseconds
func (t TempoChange) MsPerBeat() float64 {
	return 60000 / t.BPM
}

// MeterChange is a time signature effective from Position
type MeterChange struct {
	Position    Position
	Numerator   int
	Denominator int
}

// DefaultMeter is used when a chart declares no meter at all
var DefaultMeter = MeterChange{Numerator: 4, Denominator: 4}

// String renders the meter as N/D
func (m MeterChange) String() string {
	return fmt.Sprintf("%d/%d", m.Numerator, m.Denominator)
}

// Lane identifies one of the note input channels of a chart
type Lane int

// Note lanes, in VOX track order (TRACK2..TRACK7)
const (
	LaneFXL Lane = iota
	LaneBTA
	LaneBTB
	LaneBTC
	LaneBTD
	LaneFXR
)

// Lanes lists every note lane in track order
var Lanes = []Lane{LaneFXL, LaneBTA, LaneBTB, LaneBTC, LaneBTD, LaneFXR}

var laneNames = map[Lane]string{
	LaneFXL: "FX-L",
	LaneBTA: "BT-A",
	LaneBTB: "BT-B",
	LaneBTC: "BT-C",
	LaneBTD: "BT-D",
	LaneFXR: "FX-R",
}

func (l Lane) String() string {
	if name, ok := laneNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Lane(%d)", int(l))
}

// Section returns the marker section holding the lane's notes
func (l Lane) Section() Section {
	switch l {
	case LaneFXL:
		return SectionTrackFXL
	case LaneBTA:
		return SectionTrackBTA
	case LaneBTB:
		return SectionTrackBTB
	case LaneBTC:
		return SectionTrackBTC
	case LaneBTD:
		return SectionTrackBTD
	case LaneFXR:
		return SectionTrackFXR
	}
	return ""
}

// Note is either a Chip or a Hold
type Note interface {
	Head() NoteHead
	isNote()
}

// NoteHead holds the fields shared by every note kind
type NoteHead struct {
	Position Position
	Lane     Lane
	Aux      int // Second lane parameter, forwarded untouched
}

// Chip is an instantaneous note
type Chip struct {
	NoteHead
}

// Hold is a sustained note
type Hold struct {
	NoteHead
	Ticks int     // Length in ticks as written in the file
	Beats float64 // Length in beats (Ticks / TicksPerBeat)
}

// Head returns the shared note fields
func (c Chip) Head() NoteHead { return c.NoteHead }

// Head returns the shared note fields
func (h Hold) Head() NoteHead { return h.NoteHead }

func (Chip) isNote() {}
func (Hold) isNote() {}
