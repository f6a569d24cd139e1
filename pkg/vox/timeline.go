package vox

import (
	"fmt"
	"strconv"
	"strings"
)

// Timeline is the ordered tempo and meter changes of a chart.
// Order is the file order; it is not re-sorted.
type Timeline struct {
	Tempos []TempoChange
	Meters []MeterChange
}

// ReadTimeline parses the tempo and meter sections of doc.
// Malformed lines are skipped and returned as *LineError values.
func ReadTimeline(doc *Document) (Timeline, []error) {
	tempos, tempoErrs := ParseTempos(doc.Section(SectionBPMInfo))
	meters, meterErrs := ParseMeters(doc.Section(SectionBeatInfo))
	return Timeline{Tempos: tempos, Meters: meters}, append(tempoErrs, meterErrs...)
}

// Meter returns the meter used for every conversion: the first declared one,
// or DefaultMeter when none is declared
func (t Timeline) Meter() MeterChange {
	if len(t.Meters) == 0 {
		return DefaultMeter
	}
	return t.Meters[0]
}

// ParseTempos parses raw `Measure,Beat,Offset<SEP>BPM<SEP>Flag` lines
func ParseTempos(raw []RawLine) ([]TempoChange, []error) {
	var (
		tempos []TempoChange
		errs   []error
	)
	for _, line := range raw {
		if skipLine(line) {
			continue
		}
		fields := line.Fields()
		pos, err := parsePosition(SectionBPMInfo, line, fields)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bpm, err := floatField(SectionBPMInfo, line, fields, 1, "bpm")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if bpm <= 0 {
			errs = append(errs, lineError(SectionBPMInfo, line, "bpm", fields[1], fmt.Errorf("%w: bpm must be positive", ErrMalformedLine)))
			continue
		}

		flag := ""
		if len(fields) > 2 {
			flag = strings.TrimSpace(fields[2])
		}
		if flag != ResumeFlag && flag != PauseFlag {
			errs = append(errs, lineError(SectionBPMInfo, line, "flag", flag, fmt.Errorf("%w: non-4 beat division", ErrAbnormalLine)))
		}

		tempos = append(tempos, TempoChange{
			Position: pos,
			BPM:      bpm,
			Pause:    flag == PauseFlag,
		})
	}
	return tempos, errs
}

// ParseMeters parses raw `Measure,Beat,Offset<SEP>Numerator<SEP>Denominator` lines
func ParseMeters(raw []RawLine) ([]MeterChange, []error) {
	var (
		meters []MeterChange
		errs   []error
	)
	for _, line := range raw {
		if skipLine(line) {
			continue
		}
		fields := line.Fields()
		pos, err := parsePosition(SectionBeatInfo, line, fields)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		num, err := intField(SectionBeatInfo, line, fields, 1, "numerator")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		den, err := intField(SectionBeatInfo, line, fields, 2, "denominator")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if num <= 0 || den <= 0 {
			errs = append(errs, lineError(SectionBeatInfo, line, "meter", fmt.Sprintf("%d/%d", num, den), fmt.Errorf("%w: meter must be positive", ErrMalformedLine)))
			continue
		}
		meters = append(meters, MeterChange{Position: pos, Numerator: num, Denominator: den})
	}
	return meters, errs
}

// BeatsBetween counts the beats separating current and next under meter.
//
// When current.Beat > next.Beat a measure is borrowed and only the beats left
// in current's measure are counted; next.Beat is not added back.
func BeatsBetween(current, next Position, meter MeterChange) int {
	measuresBetween := next.Measure - current.Measure

	var beatsBetween int
	if current.Beat <= next.Beat {
		beatsBetween = next.Beat - current.Beat
	} else {
		measuresBetween--
		beatsBetween = meter.Numerator - current.Beat
	}

	return measuresBetween*meter.Numerator + beatsBetween
}

// ResolvesPause reports whether current ends a pause started at or before previous.
// A change that keeps the pause flag set does not unpause, even at the same BPM.
func ResolvesPause(previous, current TempoChange) bool {
	return previous.BPM == current.BPM && !current.Pause
}

// ActiveTempo returns the tempo change in effect at pos: the last entry, in
// sequence order, whose beat index is not after pos. Falls back to the first entry.
func ActiveTempo(pos Position, tempos []TempoChange, meter MeterChange) TempoChange {
	if len(tempos) == 0 {
		return TempoChange{}
	}
	at := pos.BeatIndex(meter)
	active := tempos[0]
	for _, t := range tempos {
		if t.Position.BeatIndex(meter) <= at {
			active = t
		}
	}
	return active
}

func skipLine(line RawLine) bool {
	text := strings.TrimSpace(strings.ReplaceAll(line.Text, FieldSeparator, " "))
	return text == "" || strings.HasPrefix(text, "//")
}

func lineError(section Section, line RawLine, field, value string, err error) *LineError {
	return &LineError{Section: section, Line: line.Number, Field: field, Value: value, Err: err}
}

func parsePosition(section Section, line RawLine, fields []string) (Position, error) {
	parts := strings.Split(fields[0], ",")
	if len(parts) < 3 {
		return Position{}, lineError(section, line, "position", fields[0], fmt.Errorf("%w: expected measure,beat,offset", ErrMalformedLine))
	}
	var vals [3]int
	names := [3]string{"measure", "beat", "offset"}
	for i := range vals {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return Position{}, lineError(section, line, names[i], parts[i], fmt.Errorf("%w: %v", ErrMalformedLine, err))
		}
		vals[i] = v
	}
	return Position{Measure: vals[0], Beat: vals[1], Offset: vals[2]}, nil
}

func field(section Section, line RawLine, fields []string, i int, name string) (string, error) {
	if i >= len(fields) {
		return "", lineError(section, line, name, "", fmt.Errorf("%w: missing field", ErrMalformedLine))
	}
	return strings.TrimSpace(fields[i]), nil
}

func intField(section Section, line RawLine, fields []string, i int, name string) (int, error) {
	s, err := field(section, line, fields, i, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, lineError(section, line, name, s, fmt.Errorf("%w: %v", ErrMalformedLine, err))
	}
	return v, nil
}

func floatField(section Section, line RawLine, fields []string, i int, name string) (float64, error) {
	s, err := field(section, line, fields, i, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, lineError(section, line, name, s, fmt.Errorf("%w: %v", ErrMalformedLine, err))
	}
	return v, nil
}
