package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okawaffles/vox2osu/pkg/vox"
)

// Format represents a file format
type Format string

const (
	FormatVOX     Format = "vox"
	FormatOsu     Format = "osu"
	FormatMIDI    Format = "midi"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".vox":
		return FormatVOX
	case ".osu":
		return FormatOsu
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	if bytes.HasPrefix(data, []byte("osu file format")) {
		return FormatOsu
	}

	// The version header is ASCII in both Shift-JIS and UTF-8 files
	if bytes.Contains(data, []byte("#FORMAT VERSION")) {
		return FormatVOX
	}

	return FormatUnknown
}

// Load decodes and parses VOX data with the converter's encoding and header table
func (c *Converter) Load(data []byte) (*vox.Document, error) {
	content, err := vox.Decode(data, c.opts.Encoding)
	if err != nil {
		return nil, err
	}
	return vox.Parse(content, c.opts.Resources.VoxFormat())
}

// Inspect loads and assembles VOX data without generating output
func (c *Converter) Inspect(data []byte) (*Chart, error) {
	doc, err := c.Load(data)
	if err != nil {
		return nil, err
	}
	return c.Assemble(doc)
}

// Convert turns VOX data into the target format.
// The returned bytes are complete; nothing is written.
func (c *Converter) Convert(data []byte) ([]byte, *Chart, error) {
	if c.target == nil {
		return nil, nil, errors.New("no target configured")
	}
	chart, err := c.Inspect(data)
	if err != nil {
		return nil, nil, err
	}
	out, err := c.target.Generate(chart)
	if err != nil {
		return nil, chart, fmt.Errorf("failed to generate %s: %w", c.target.Name(), err)
	}
	return out, chart, nil
}

// ConvertFile converts a VOX file and writes the result to outputPath.
// The output file is only created once conversion has fully succeeded.
func (c *Converter) ConvertFile(inputPath, outputPath string) (*Chart, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	if inputFormat != FormatVOX {
		return nil, fmt.Errorf("unsupported input format: %s", inputFormat)
	}

	if c.target != nil {
		if outputFormat := DetectFormat(outputPath); outputFormat != c.target.Format() {
			return nil, fmt.Errorf("unsupported conversion: %s to %s", inputFormat, outputFormat)
		}
	}

	out, chart, err := c.Convert(data)
	if err != nil {
		return chart, fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return chart, fmt.Errorf("failed to write output file: %w", err)
	}
	c.opts.Logger.Info("Done!", "output", outputPath, "objects", len(chart.Objects), "bytes", len(out))

	return chart, nil
}

// OutputPath derives the default output path for inputPath in format
func OutputPath(inputPath string, format Format) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	switch format {
	case FormatMIDI:
		return base + ".mid"
	default:
		return base + "." + string(format)
	}
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"vox -> osu",
		"vox -> midi",
	}
}
