package gbd

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when the binary payload does not contain a single
// complete record.
var ErrTruncated = errors.New("gbd: no complete records in payload")

// FormatError reports a required header field that is missing or unparsable.
// Imports abort on it; no partial measurement is produced.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("gbd: invalid header field %q: %s", e.Field, e.Reason)
}

func newFormatError(field, format string, args ...any) *FormatError {
	return &FormatError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
