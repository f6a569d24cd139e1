package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/okawaffles/vox2osu/pkg/converter"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D7FF"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
)

// printReport writes a human readable inspection of a chart
func printReport(w io.Writer, s converter.Summary) {
	heading := func(text string) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render(text))
	}

	fmt.Fprintf(w, "Initialized .vox file of version %d (%dK, meter %s, %d objects)\n", s.Version, s.Keys, s.Meter, s.Objects)

	heading("Markers")
	markers := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SECTION", "LINE")
	for _, m := range s.Markers {
		line := "absent"
		if m.Found {
			line = strconv.Itoa(m.Line)
		}
		markers.Row(m.Section, line)
	}
	fmt.Fprintln(w, markers.String())

	heading("Tempo")
	for _, t := range s.Tempos {
		fmt.Fprintln(w, t.Describe())
	}
	for _, m := range s.Meters {
		fmt.Fprintf(w, "time signature %s\n", m)
	}

	heading("Lanes")
	lanes := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("LANE", "COLUMN", "NOTES")
	for _, l := range s.Lanes {
		lanes.Row(l.Lane, strconv.Itoa(l.Column), strconv.Itoa(l.Notes))
	}
	fmt.Fprintln(w, lanes.String())

	if len(s.Pauses) > 0 {
		heading("Pauses")
		for _, p := range s.Pauses {
			if !p.Resolved {
				fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("pause at %s is never resolved", p.Start)))
				continue
			}
			fmt.Fprintf(w, "pause from %s to %s: %d beats (%.0f ms)\n", p.Start, p.End, p.Beats, p.DurationMs)
		}
	}

	if len(s.Diagnostics) > 0 {
		heading("Diagnostics")
		for _, d := range s.Diagnostics {
			fmt.Fprintln(w, warnStyle.Render(d.String()))
		}
	}
}
