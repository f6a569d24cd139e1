package converter

import (
	"fmt"

	"github.com/okawaffles/vox2osu/pkg/vox"
)

// Summary is a serializable description of an assembled chart
type Summary struct {
	Version     int             `json:"version"`
	Keys        int             `json:"keys"`
	Meter       string          `json:"meter"`
	Markers     []MarkerSummary `json:"markers"`
	Tempos      []TempoSummary  `json:"tempos"`
	Meters      []string        `json:"meters"`
	Lanes       []LaneSummary   `json:"lanes"`
	Objects     int             `json:"objects"`
	Pauses      []PauseSummary  `json:"pauses"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
}

// MarkerSummary reports where a section header was found
type MarkerSummary struct {
	Section string `json:"section"`
	Line    int    `json:"line,omitempty"` // 1-based
	Found   bool   `json:"found"`
}

// TempoSummary describes one tempo change
type TempoSummary struct {
	Position string  `json:"position"`
	BPM      float64 `json:"bpm"`
	Pause    bool    `json:"pause"`
}

// Describe renders the change as a sentence
func (t TempoSummary) Describe() string {
	pause := "DOES NOT"
	if t.Pause {
		pause = "DOES"
	}
	return fmt.Sprintf("BPM at %s sets chart BPM to %.2f and %s pause", t.Position, t.BPM, pause)
}

// LaneSummary counts the notes of a lane
type LaneSummary struct {
	Lane   string `json:"lane"`
	Column int    `json:"column"`
	Notes  int    `json:"notes"`
}

// PauseSummary describes a pause span
type PauseSummary struct {
	Start      string  `json:"start"`
	End        string  `json:"end,omitempty"`
	Resolved   bool    `json:"resolved"`
	Beats      int     `json:"beats"`
	DurationMs float64 `json:"duration_ms"`
}

// Summary returns the serializable description of ch
func (ch *Chart) Summary() Summary {
	s := Summary{
		Version:     ch.Version,
		Keys:        ch.Keys,
		Meter:       ch.Meter.String(),
		Objects:     len(ch.Objects),
		Diagnostics: ch.Diagnostics,
	}
	for _, section := range vox.Sections {
		m := MarkerSummary{Section: string(section)}
		if line, ok := ch.Markers[section].Line(); ok {
			m.Found = true
			m.Line = line + 1
		}
		s.Markers = append(s.Markers, m)
	}
	for _, t := range ch.Timeline.Tempos {
		s.Tempos = append(s.Tempos, TempoSummary{Position: t.Position.String(), BPM: t.BPM, Pause: t.Pause})
	}
	for _, m := range ch.Timeline.Meters {
		s.Meters = append(s.Meters, fmt.Sprintf("%s at %s", m, m.Position))
	}
	for column, lane := range ch.Layout {
		s.Lanes = append(s.Lanes, LaneSummary{Lane: lane.String(), Column: column, Notes: ch.LaneCounts[lane]})
	}
	for _, p := range ch.Pauses {
		ps := PauseSummary{
			Start:      p.Start.Position.String(),
			Resolved:   p.Resolved,
			Beats:      p.Beats,
			DurationMs: p.Duration,
		}
		if p.Resolved {
			ps.End = p.End.Position.String()
		}
		s.Pauses = append(s.Pauses, ps)
	}
	return s
}
