// Package config provides the VOX header table and osu! output settings
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/okawaffles/vox2osu/pkg/vox"
)

//go:embed resources.yaml
var defaultResources []byte

// Resources is the externally supplied configuration of a conversion
type Resources struct {
	Format FormatConfig `yaml:"format"`
	Osu    OsuConfig    `yaml:"osu"`
}

// FormatConfig maps section names to the header strings that start them
type FormatConfig struct {
	Version    string            `yaml:"version"`
	Terminator string            `yaml:"terminator"`
	Sections   map[string]string `yaml:"sections"`
}

// OsuConfig holds the fixed blocks of a generated .osu file
type OsuConfig struct {
	Signature  string        `yaml:"signature"`
	Metadata   OsuMetadata   `yaml:"metadata"`
	General    OsuGeneral    `yaml:"general"`
	Difficulty OsuDifficulty `yaml:"difficulty"`
}

// OsuMetadata is the [Metadata] block
type OsuMetadata struct {
	Title   string `yaml:"title"`
	Artist  string `yaml:"artist"`
	Creator string `yaml:"creator"`
	Version string `yaml:"version"`
}

// OsuGeneral is the [General] block
type OsuGeneral struct {
	AudioFilename string  `yaml:"audio_filename"`
	AudioLeadIn   int     `yaml:"audio_lead_in"`
	PreviewTime   int     `yaml:"preview_time"`
	SampleSet     string  `yaml:"sample_set"`
	StackLeniency float64 `yaml:"stack_leniency"`
}

// OsuDifficulty is the [Difficulty] block
type OsuDifficulty struct {
	HPDrainRate       float64 `yaml:"hp_drain_rate"`
	OverallDifficulty float64 `yaml:"overall_difficulty"`
	ApproachRate      float64 `yaml:"approach_rate"`
	SliderMultiplier  float64 `yaml:"slider_multiplier"`
	SliderTickRate    float64 `yaml:"slider_tick_rate"`
}

// Default returns the embedded resources
func Default() (Resources, error) {
	var r Resources
	if err := yaml.Unmarshal(defaultResources, &r); err != nil {
		return Resources{}, fmt.Errorf("failed to decode embedded resources: %w", err)
	}
	return r, nil
}

// Load returns the embedded resources overlaid with the YAML file at path.
// An empty path returns the defaults.
func Load(path string) (Resources, error) {
	r, err := Default()
	if err != nil {
		return Resources{}, err
	}
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Resources{}, fmt.Errorf("failed to read resources file: %w", err)
	}
	var override Resources
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Resources{}, fmt.Errorf("failed to decode resources file %s: %w", path, err)
	}
	return r.Merge(override), nil
}

// Merge returns r with every non-zero value of o applied on top
func (r Resources) Merge(o Resources) Resources {
	out := r
	out.Format.Version = pick(r.Format.Version, o.Format.Version)
	out.Format.Terminator = pick(r.Format.Terminator, o.Format.Terminator)
	out.Format.Sections = make(map[string]string, len(r.Format.Sections))
	for k, v := range r.Format.Sections {
		out.Format.Sections[k] = v
	}
	for k, v := range o.Format.Sections {
		out.Format.Sections[k] = v
	}

	out.Osu.Signature = pick(r.Osu.Signature, o.Osu.Signature)
	out.Osu.Metadata = OsuMetadata{
		Title:   pick(r.Osu.Metadata.Title, o.Osu.Metadata.Title),
		Artist:  pick(r.Osu.Metadata.Artist, o.Osu.Metadata.Artist),
		Creator: pick(r.Osu.Metadata.Creator, o.Osu.Metadata.Creator),
		Version: pick(r.Osu.Metadata.Version, o.Osu.Metadata.Version),
	}
	out.Osu.General = OsuGeneral{
		AudioFilename: pick(r.Osu.General.AudioFilename, o.Osu.General.AudioFilename),
		AudioLeadIn:   pick(r.Osu.General.AudioLeadIn, o.Osu.General.AudioLeadIn),
		PreviewTime:   pick(r.Osu.General.PreviewTime, o.Osu.General.PreviewTime),
		SampleSet:     pick(r.Osu.General.SampleSet, o.Osu.General.SampleSet),
		StackLeniency: pick(r.Osu.General.StackLeniency, o.Osu.General.StackLeniency),
	}
	out.Osu.Difficulty = OsuDifficulty{
		HPDrainRate:       pick(r.Osu.Difficulty.HPDrainRate, o.Osu.Difficulty.HPDrainRate),
		OverallDifficulty: pick(r.Osu.Difficulty.OverallDifficulty, o.Osu.Difficulty.OverallDifficulty),
		ApproachRate:      pick(r.Osu.Difficulty.ApproachRate, o.Osu.Difficulty.ApproachRate),
		SliderMultiplier:  pick(r.Osu.Difficulty.SliderMultiplier, o.Osu.Difficulty.SliderMultiplier),
		SliderTickRate:    pick(r.Osu.Difficulty.SliderTickRate, o.Osu.Difficulty.SliderTickRate),
	}
	return out
}

func pick[T comparable](base, override T) T {
	var zero T
	if override != zero {
		return override
	}
	return base
}

// VoxFormat converts the section table into a vox.Format.
// Unknown section names are ignored.
func (r Resources) VoxFormat() vox.Format {
	known := make(map[vox.Section]bool, len(vox.Sections))
	for _, s := range vox.Sections {
		known[s] = true
	}

	f := vox.Format{
		VersionHeader: r.Format.Version,
		Terminator:    r.Format.Terminator,
		Headers:       make(map[vox.Section]string, len(r.Format.Sections)),
	}
	for name, header := range r.Format.Sections {
		if section := vox.Section(name); known[section] {
			f.Headers[section] = header
		}
	}
	return f
}
