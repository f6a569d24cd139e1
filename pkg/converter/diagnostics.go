package converter

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/okawaffles/vox2osu/pkg/vox"
)

// Kind classifies a non-fatal condition found while converting
type Kind string

// Diagnostic kinds
const (
	KindMissingSection        Kind = "missing_section"
	KindMalformedLine         Kind = "malformed_line"
	KindAbnormalLine          Kind = "abnormal_line"
	KindUnsupportedMultiMeter Kind = "unsupported_multi_meter"
	KindUnresolvedPause       Kind = "unresolved_pause"
	KindUnmappedLane          Kind = "unmapped_lane"
)

// Diagnostic is a non-fatal condition; conversion continues with a fallback
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Diagnostics is the ordered list of conditions collected during a run
type Diagnostics []Diagnostic

func (d *Diagnostics) add(kind Kind, err error) {
	*d = append(*d, Diagnostic{Kind: kind, Message: err.Error(), Err: err})
}

// addLineErrors classifies parser errors into malformed and abnormal lines
func (d *Diagnostics) addLineErrors(errs []error) {
	for _, err := range errs {
		if vox.IsMalformed(err) {
			d.add(KindMalformedLine, err)
		} else {
			d.add(KindAbnormalLine, err)
		}
	}
}

// Of returns the diagnostics of one kind
func (d Diagnostics) Of(kind Kind) Diagnostics {
	var out Diagnostics
	for _, diag := range d {
		if diag.Kind == kind {
			out = append(out, diag)
		}
	}
	return out
}

// Errors returns the underlying errors of d
func (d Diagnostics) Errors() []error {
	errs := make([]error, 0, len(d))
	for _, diag := range d {
		errs = append(errs, diag.Err)
	}
	return errs
}

// Log writes every diagnostic as a warning
func (d Diagnostics) Log(logger *log.Logger) {
	for _, diag := range d {
		logger.Warn(diag.Message, "kind", diag.Kind)
	}
}

// StrictError is returned in strict mode when malformed lines were found
type StrictError struct {
	Errs []error
}

func (e *StrictError) Error() string {
	return fmt.Sprintf("strict mode: %d malformed line(s): %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *StrictError) Unwrap() []error {
	return e.Errs
}
