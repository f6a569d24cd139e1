package vox

import "fmt"

// ReadNotes parses the note section of lane
func ReadNotes(doc *Document, lane Lane) ([]Note, []error) {
	return ParseNotes(lane, doc.Section(lane.Section()))
}

// ParseNotes parses raw `Measure,Beat,Offset<SEP>ParamA<SEP>ParamB` lines.
// ParamA == 0 is a chip; anything else is a hold of ParamA ticks. A negative
// ParamA is reported as abnormal and the note is kept as a chip.
func ParseNotes(lane Lane, raw []RawLine) ([]Note, []error) {
	section := lane.Section()
	var (
		notes []Note
		errs  []error
	)
	for _, line := range raw {
		if skipLine(line) {
			continue
		}
		fields := line.Fields()
		pos, err := parsePosition(section, line, fields)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paramA, err := intField(section, line, fields, 1, "param_a")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paramB, err := intField(section, line, fields, 2, "param_b")
		if err != nil {
			errs = append(errs, err)
			continue
		}

		head := NoteHead{Position: pos, Lane: lane, Aux: paramB}
		if paramA < 0 {
			errs = append(errs, lineError(section, line, "param_a", fields[1], fmt.Errorf("%w: negative hold length", ErrAbnormalLine)))
			paramA = 0
		}
		if paramA == 0 {
			notes = append(notes, Chip{NoteHead: head})
			continue
		}
		notes = append(notes, Hold{
			NoteHead: head,
			Ticks:    paramA,
			Beats:    float64(paramA) / TicksPerBeat,
		})
	}
	return notes, errs
}
