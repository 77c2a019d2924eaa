package codec

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every *FormatError via errors.Is.
var ErrFormat = errors.New("format error")

// FormatError reports input that does not fit a fixed packet layout.
type FormatError struct {
	Op     string // "encode" or "decode"
	Packet string // packet kind, e.g. "gamestate"
	Field  int    // offending field index, -1 when the whole input is wrong
	Value  int    // offending value or length
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("%s %s: %s (got %d)", e.Op, e.Packet, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s %s: field %d: %s (got %d)", e.Op, e.Packet, e.Field, e.Reason, e.Value)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func lengthError(op, packet string, want, got int) *FormatError {
	return &FormatError{
		Op:     op,
		Packet: packet,
		Field:  -1,
		Value:  got,
		Reason: fmt.Sprintf("expected %d bytes", want),
	}
}
