package targets

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/okawaffles/vox2osu/pkg/converter"
	"github.com/okawaffles/vox2osu/pkg/vox"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDI preview constants
const (
	MIDITicksPerBeat = 480
	MIDIVelocity     = 100
	midiTickScale    = MIDITicksPerBeat / vox.TicksPerBeat
	chipTicks        = MIDITicksPerBeat / 4
)

// LaneKeys maps each lane to the MIDI key it plays
var LaneKeys = map[vox.Lane]uint8{
	vox.LaneFXL: 48, // C2
	vox.LaneBTA: 60, // C3
	vox.LaneBTB: 62, // D3
	vox.LaneBTC: 64, // E3
	vox.LaneBTD: 65, // F3
	vox.LaneFXR: 50, // D2
}

// MIDI implements the Target interface for a Standard MIDI File preview
type MIDI struct {
	ticksPerBeat uint16
}

// NewMIDI creates a new MIDI preview target
func NewMIDI() *MIDI {
	return &MIDI{ticksPerBeat: MIDITicksPerBeat}
}

// Name returns the target name
func (m *MIDI) Name() string {
	return "MIDI preview"
}

// Format returns the file format written by the target
func (m *MIDI) Format() converter.Format {
	return converter.FormatMIDI
}

// PositionTicks converts a VOX position to absolute MIDI ticks under meter
func PositionTicks(pos vox.Position, meter vox.MeterChange) uint32 {
	return uint32(pos.BeatIndex(meter)*MIDITicksPerBeat + pos.Offset*midiTickScale)
}

// event is a message at an absolute tick; order breaks ties so note-offs come first
type event struct {
	tick  uint32
	order int
	msg   []byte
}

// Generate creates a format 1 SMF: a conductor track with tempo, meter and
// pause markers followed by one track per chart lane
func (m *MIDI) Generate(chart *converter.Chart) ([]byte, error) {
	if chart == nil {
		return nil, errors.New("nil chart")
	}
	if len(chart.Timeline.Tempos) == 0 {
		return nil, converter.ErrNoTempo
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerBeat)

	if err := s.Add(conductorTrack(chart)); err != nil {
		return nil, fmt.Errorf("failed to add conductor track: %w", err)
	}

	for _, lane := range chart.Layout {
		if err := s.Add(laneTrack(chart, lane)); err != nil {
			return nil, fmt.Errorf("failed to add track %s: %w", lane, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

func conductorTrack(chart *converter.Chart) smf.Track {
	meter := chart.Meter
	events := []event{
		{tick: 0, msg: smf.MetaTrackSequenceName("Conductor")},
		{tick: 0, msg: smf.MetaMeter(uint8(meter.Numerator), uint8(meter.Denominator))},
	}
	for _, t := range chart.Timeline.Tempos {
		events = append(events, event{tick: PositionTicks(t.Position, meter), order: 1, msg: smf.MetaTempo(t.BPM)})
	}
	for _, p := range chart.Pauses {
		events = append(events, event{
			tick:  PositionTicks(p.Start.Position, meter),
			order: 2,
			msg:   smf.MetaMarker(fmt.Sprintf("pause %d beats", p.Beats)),
		})
		if p.Resolved {
			events = append(events, event{tick: PositionTicks(p.End.Position, meter), order: 2, msg: smf.MetaMarker("resume")})
		}
	}
	return toTrack(events)
}

func laneTrack(chart *converter.Chart, lane vox.Lane) smf.Track {
	key := LaneKeys[lane]
	events := []event{{tick: 0, msg: smf.MetaTrackSequenceName(lane.String())}}
	for _, obj := range chart.Objects {
		if obj.Lane != lane {
			continue
		}
		start := PositionTicks(obj.Position, chart.Meter)
		length := uint32(chipTicks)
		if ticks := obj.HoldBeats * MIDITicksPerBeat; obj.Hold && ticks >= 1 {
			length = uint32(ticks)
		}
		events = append(events,
			event{tick: start, order: 2, msg: midi.NoteOn(0, key, MIDIVelocity)},
			event{tick: start + length, order: 1, msg: midi.NoteOff(0, key)},
		)
	}
	return toTrack(events)
}

// toTrack sorts absolute events and adds them with delta times
func toTrack(events []event) smf.Track {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].order < events[j].order
	})

	var track smf.Track
	var currentTick uint32
	for _, ev := range events {
		track.Add(ev.tick-currentTick, ev.msg)
		currentTick = ev.tick
	}
	track.Close(0)
	return track
}
