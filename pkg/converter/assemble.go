package converter

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/okawaffles/vox2osu/pkg/vox"
)

// ErrNoTempo is returned when a chart declares no usable tempo change
var ErrNoTempo = errors.New("chart has no tempo changes")

// Assemble builds the chart for doc: timing points, merged hit objects and pause spans.
// Non-fatal conditions are collected in Chart.Diagnostics.
func (c *Converter) Assemble(doc *vox.Document) (*Chart, error) {
	logger := c.opts.Logger

	layout, err := Layout(c.opts.Keys)
	if err != nil {
		return nil, err
	}

	chart := &Chart{
		Version:    doc.Version,
		Keys:       c.opts.Keys,
		Layout:     layout,
		LaneCounts: make(map[vox.Lane]int, len(layout)),
		Markers:    make(map[vox.Section]vox.Marker, len(vox.Sections)),
		Offset:     c.opts.Offset,
	}
	for _, s := range vox.Sections {
		chart.Markers[s] = doc.Marker(s)
	}
	logger.Info("Loaded vox file", "version", doc.Version, "lines", doc.LineCount())

	required := []vox.Section{vox.SectionBPMInfo, vox.SectionBeatInfo}
	for _, lane := range layout {
		required = append(required, lane.Section())
	}
	for _, s := range required {
		if _, ok := chart.Markers[s].Line(); !ok {
			chart.Diagnostics.add(KindMissingSection, fmt.Errorf("%w: %s", vox.ErrMissingSection, s))
		}
	}

	timeline, errs := vox.ReadTimeline(doc)
	chart.Diagnostics.addLineErrors(errs)
	chart.Timeline = timeline
	if len(timeline.Tempos) == 0 {
		return nil, ErrNoTempo
	}
	if len(timeline.Meters) > 1 {
		chart.Diagnostics.add(KindUnsupportedMultiMeter, fmt.Errorf("%w: %d meters declared, using %s",
			vox.ErrUnsupportedMultiMeter, len(timeline.Meters), timeline.Meter()))
	}
	chart.Meter = timeline.Meter()
	logger.Debug("Read timeline", "tempos", len(timeline.Tempos), "meters", len(timeline.Meters), "meter", chart.Meter)

	chart.TimingPoints = timingPoints(timeline.Tempos, chart.Meter, c.opts.Offset)

	for column, lane := range layout {
		notes, errs := vox.ReadNotes(doc, lane)
		chart.Diagnostics.addLineErrors(errs)
		chart.LaneCounts[lane] = len(notes)
		logger.Debug("Read lane", "lane", lane, "notes", len(notes))
		for _, n := range notes {
			chart.Objects = append(chart.Objects, placeNote(n, column, timeline.Tempos, chart.Meter, c.opts.Offset))
		}
	}
	SortObjects(chart.Objects)
	for _, lane := range unmappedLanes(layout) {
		if notes, _ := vox.ReadNotes(doc, lane); len(notes) > 0 {
			chart.Diagnostics.add(KindUnmappedLane, fmt.Errorf("%d %s notes skipped: lane has no column with %d keys",
				len(notes), lane, chart.Keys))
		}
	}

	var unresolved []error
	chart.Pauses, unresolved = pauseSpans(timeline.Tempos, chart.Meter)
	for _, err := range unresolved {
		chart.Diagnostics.add(KindUnresolvedPause, err)
	}
	for _, p := range chart.Pauses {
		if p.Resolved {
			logger.Debug("Pause", "start", p.Start.Position, "end", p.End.Position, "beats", p.Beats)
		}
	}

	chart.Diagnostics.Log(logger)

	if c.opts.Strict {
		if malformed := chart.Diagnostics.Of(KindMalformedLine); len(malformed) > 0 {
			return nil, &StrictError{Errs: malformed.Errors()}
		}
	}
	return chart, nil
}

// unmappedLanes returns the lanes the layout has no column for
func unmappedLanes(layout []vox.Lane) []vox.Lane {
	var out []vox.Lane
	for _, lane := range vox.Lanes {
		if !slices.Contains(layout, lane) {
			out = append(out, lane)
		}
	}
	return out
}

// timingPoints returns one point per tempo change, or a single point at 0 for a constant tempo
func timingPoints(tempos []vox.TempoChange, meter vox.MeterChange, offset float64) []TimingPoint {
	if len(tempos) == 1 {
		return []TimingPoint{{
			Time:      0,
			MsPerBeat: tempos[0].MsPerBeat(),
			Meter:     meter.Numerator,
			Tempo:     tempos[0],
		}}
	}
	points := make([]TimingPoint, 0, len(tempos))
	for _, t := range tempos {
		points = append(points, TimingPoint{
			Time:      vox.ToMilliseconds(t.Position, t, meter) + offset,
			MsPerBeat: t.MsPerBeat(),
			Meter:     meter.Numerator,
			Tempo:     t,
		})
	}
	return points
}

func placeNote(n vox.Note, column int, tempos []vox.TempoChange, meter vox.MeterChange, offset float64) HitObject {
	head := n.Head()
	active := vox.ActiveTempo(head.Position, tempos, meter)
	obj := HitObject{
		Lane:     head.Lane,
		Column:   column,
		Position: head.Position,
		Time:     vox.ToMilliseconds(head.Position, active, meter) + offset,
		Aux:      head.Aux,
	}
	if hold, ok := n.(vox.Hold); ok {
		obj.Hold = true
		obj.HoldBeats = hold.Beats
		obj.HoldDuration = hold.Beats * active.MsPerBeat()
	}
	return obj
}

// SortObjects orders objects by time. Objects with equal time keep their relative order.
func SortObjects(objects []HitObject) {
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].Time < objects[j].Time
	})
}

// pauseSpans pairs every pausing tempo change with the next change that resolves it
func pauseSpans(tempos []vox.TempoChange, meter vox.MeterChange) ([]Pause, []error) {
	var (
		pauses     []Pause
		unresolved []error
	)
	for i := 0; i < len(tempos); i++ {
		start := tempos[i]
		if !start.Pause {
			continue
		}
		p := Pause{Start: start}
		for j := i + 1; j < len(tempos); j++ {
			if vox.ResolvesPause(start, tempos[j]) {
				p.End = tempos[j]
				p.Resolved = true
				i = j
				break
			}
		}
		if !p.Resolved {
			unresolved = append(unresolved, fmt.Errorf("pause at %s (%.2f BPM) is never resolved", start.Position, start.BPM))
			pauses = append(pauses, p)
			break
		}
		p.Beats = vox.BeatsBetween(p.Start.Position, p.End.Position, meter)
		p.Duration = float64(p.Beats) * start.MsPerBeat()
		pauses = append(pauses, p)
	}
	return pauses, unresolved
}
