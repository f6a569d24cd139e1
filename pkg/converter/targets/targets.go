package targets

import (
	"fmt"
	"strings"

	"github.com/okawaffles/vox2osu/pkg/config"
	"github.com/okawaffles/vox2osu/pkg/converter"
)

// Names lists the accepted target names
var Names = []string{"osu", "midi"}

// ByName returns the target registered under name
func ByName(name string, res config.Resources) (converter.Target, error) {
	switch strings.ToLower(name) {
	case "osu", "osu!mania", "mania":
		return NewOsu(res.Osu), nil
	case "midi", "mid":
		return NewMIDI(), nil
	default:
		return nil, fmt.Errorf("unknown target %q (want one of %s)", name, strings.Join(Names, ", "))
	}
}

// ForFormat returns the target writing format
func ForFormat(format converter.Format, res config.Resources) (converter.Target, error) {
	switch format {
	case converter.FormatOsu:
		return NewOsu(res.Osu), nil
	case converter.FormatMIDI:
		return NewMIDI(), nil
	default:
		return nil, fmt.Errorf("no target writes %s files", format)
	}
}
