package comments

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader reports a declaration header without an element name.
	ErrMalformedHeader = errors.New("malformed declaration header")
	// ErrUnbalancedBlockComment reports a block comment that is never closed.
	ErrUnbalancedBlockComment = errors.New("unbalanced block comment")
)

// LineError attaches a one-based line number to an engine error.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (lineError *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", lineError.Line, lineError.Err, lineError.Text)
}

func (lineError *LineError) Unwrap() error {
	return lineError.Err
}
