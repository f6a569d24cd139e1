package vox

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat means the version header is absent or not an integer
	ErrInvalidFormat = errors.New("invalid vox format")
	// ErrMissingSection means a section marker was not found
	ErrMissingSection = errors.New("missing section")
	// ErrMalformedLine means a position or parameter failed numeric parsing
	ErrMalformedLine = errors.New("malformed line")
	// ErrAbnormalLine flags a line that parsed but holds an unexpected value
	ErrAbnormalLine = errors.New("abnormal line")
	// ErrUnsupportedMultiMeter means more than one meter is declared
	ErrUnsupportedMultiMeter = errors.New("multiple meters are not supported")
)

// LineError reports a problem with a single data line of a section
type LineError struct {
	Section Section
	Line    int // 1-based line number in the source file
	Field   string
	Value   string
	Err     error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s line %d: %s %q: %v", e.Section, e.Line, e.Field, e.Value, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is (or wraps) a malformed line error
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedLine)
}
