package document

import "fmt"

// ParseError reports that a format parser could not extract text.
type ParseError struct {
	Format FileType
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(format FileType, err error) *ParseError {
	return &ParseError{Format: format, Err: err}
}
