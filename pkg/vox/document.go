package vox

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// FieldSeparator replaces tab characters in raw section lines
const FieldSeparator = "\x1f"

// Section names a marker-delimited block of a VOX file
type Section string

// Known sections
const (
	SectionBeatInfo          Section = "BEAT_INFO"
	SectionBPMInfo           Section = "BPM_INFO"
	SectionTiltModeInfo      Section = "TILT_MODE_INFO"
	SectionEndPosition       Section = "END_POSITION"
	SectionTabEffectInfo     Section = "TAB_EFFECT_INFO"
	SectionFXButtonEffect    Section = "FXBUTTON_EFFECT_INFO"
	SectionTabParamAssign    Section = "TAB_PARAM_ASSIGN_INFO"
	SectionReverbEffectParam Section = "REVERB_EFFECT_PARAM"
	SectionTrackAutoTab      Section = "TRACK_AUTO_TAB"
	SectionSPController      Section = "SPCONTROLLER"
	SectionTrackFXL          Section = "TRACK_FX_L"
	SectionTrackBTA          Section = "TRACK_BT_A"
	SectionTrackBTB          Section = "TRACK_BT_B"
	SectionTrackBTC          Section = "TRACK_BT_C"
	SectionTrackBTD          Section = "TRACK_BT_D"
	SectionTrackFXR          Section = "TRACK_FX_R"
)

// Sections lists every known section in file order
var Sections = []Section{
	SectionBeatInfo,
	SectionBPMInfo,
	SectionTiltModeInfo,
	SectionEndPosition,
	SectionTabEffectInfo,
	SectionFXButtonEffect,
	SectionTabParamAssign,
	SectionReverbEffectParam,
	SectionTrackAutoTab,
	SectionSPController,
	SectionTrackFXL,
	SectionTrackBTA,
	SectionTrackBTB,
	SectionTrackBTC,
	SectionTrackBTD,
	SectionTrackFXR,
}

// Format holds the header strings used to locate sections.
// Header text differs between format revisions, so it is supplied by the caller.
type Format struct {
	VersionHeader string
	Terminator    string
	Headers       map[Section]string
}

// DefaultFormat returns the header table of current VOX files
func DefaultFormat() Format {
	return Format{
		VersionHeader: "#FORMAT VERSION",
		Terminator:    "#END",
		Headers: map[Section]string{
			SectionBeatInfo:          "#BEAT INFO",
			SectionBPMInfo:           "#BPM INFO",
			SectionTiltModeInfo:      "#TILT MODE INFO",
			SectionEndPosition:       "#END POSITION",
			SectionTabEffectInfo:     "#TAB EFFECT INFO",
			SectionFXButtonEffect:    "#FXBUTTON EFFECT INFO",
			SectionTabParamAssign:    "#TAB PARAM ASSIGN INFO",
			SectionReverbEffectParam: "#REVERB EFFECT PARAM",
			SectionTrackAutoTab:      "#TRACK AUTO TAB",
			SectionSPController:      "#SPCONTROLLER",
			SectionTrackFXL:          "#TRACK2",
			SectionTrackBTA:          "#TRACK3",
			SectionTrackBTB:          "#TRACK4",
			SectionTrackBTC:          "#TRACK5",
			SectionTrackBTD:          "#TRACK6",
			SectionTrackFXR:          "#TRACK7",
		},
	}
}

// Marker is the location of a section header: either found at a line or absent
type Marker struct {
	line  int
	found bool
}

// Found returns a marker pointing at a 0-based line index
func Found(line int) Marker {
	return Marker{line: line, found: true}
}

// Absent is the marker of a section that does not exist in the file
var Absent = Marker{}

// Line returns the 0-based header line and whether the section exists
func (m Marker) Line() (int, bool) {
	return m.line, m.found
}

func (m Marker) String() string {
	if !m.found {
		return "absent"
	}
	return fmt.Sprintf("line %d", m.line+1)
}

// RawLine is one data line of a section with tabs replaced by FieldSeparator
type RawLine struct {
	Number int // 1-based line number in the source file
	Text   string
}

// Fields splits the line on FieldSeparator
func (l RawLine) Fields() []string {
	return strings.Split(l.Text, FieldSeparator)
}

// Encoding is the text encoding of a VOX file
type Encoding string

// Supported encodings
const (
	EncodingShiftJIS Encoding = "shift_jis"
	EncodingUTF8     Encoding = "utf-8"
)

// Decode converts raw file bytes into text.
// Shift-JIS input that is already valid UTF-8 is passed through unchanged.
func Decode(data []byte, enc Encoding) (string, error) {
	switch enc {
	case EncodingUTF8, "":
		return string(data), nil
	case EncodingShiftJIS:
		if utf8.Valid(data) {
			return string(data), nil
		}
		out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode shift_jis: %w", err)
		}
		return string(bytes.TrimPrefix(out, []byte("\ufeff"))), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
}

// Document is a loaded VOX file with its marker index.
// It is never modified after Parse returns.
type Document struct {
	Version int
	lines   []string
	markers map[Section]Marker
	format  Format
}

// Load reads, decodes and parses the VOX file at path
func Load(path string, format Format, enc Encoding) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vox file: %w", err)
	}
	content, err := Decode(data, enc)
	if err != nil {
		return nil, err
	}
	return Parse(content, format)
}

// Parse splits content into lines, reads the format version and indexes every section marker
func Parse(content string, format Format) (*Document, error) {
	lines := strings.Split(content, "\r\n")
	// Some files only use \n
	if len(lines) < 3 {
		lines = strings.Split(content, "\n")
	}

	version, err := readVersion(lines, format.VersionHeader)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version: version,
		lines:   lines,
		markers: make(map[Section]Marker, len(format.Headers)),
		format:  format,
	}
	for section, header := range format.Headers {
		doc.markers[section] = indexOf(lines, header)
	}
	return doc, nil
}

func readVersion(lines []string, header string) (int, error) {
	m := indexOf(lines, header)
	line, ok := m.Line()
	if !ok {
		return 0, fmt.Errorf("%w: could not find version marker %q", ErrInvalidFormat, header)
	}
	if line+1 >= len(lines) {
		return 0, fmt.Errorf("%w: version marker at end of file", ErrInvalidFormat)
	}
	version, err := strconv.Atoi(strings.TrimSpace(lines[line+1]))
	if err != nil {
		return 0, fmt.Errorf("%w: version %q is not a number", ErrInvalidFormat, lines[line+1])
	}
	return version, nil
}

func indexOf(lines []string, header string) Marker {
	if header == "" {
		return Absent
	}
	for i, line := range lines {
		if line == header {
			return Found(i)
		}
	}
	return Absent
}

// Marker returns the header location of section
func (d *Document) Marker(section Section) Marker {
	return d.markers[section]
}

// LineCount returns the number of lines in the file
func (d *Document) LineCount() int {
	return len(d.lines)
}

// RawSection returns the lines following the marker up to the terminator or end of file.
// An absent marker yields no lines.
func (d *Document) RawSection(marker Marker) []RawLine {
	start, ok := marker.Line()
	if !ok {
		return nil
	}
	var raw []RawLine
	for i := start + 1; i < len(d.lines); i++ {
		if d.lines[i] == d.format.Terminator {
			break
		}
		raw = append(raw, RawLine{
			Number: i + 1,
			Text:   strings.ReplaceAll(d.lines[i], "\t", FieldSeparator),
		})
	}
	return raw
}

// Section is shorthand for RawSection(Marker(section))
func (d *Document) Section(section Section) []RawLine {
	return d.RawSection(d.Marker(section))
}
