package calendar

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrInvalidDate is returned for input that is not a strict YYYY-MM-DD calendar day.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidMonth is returned when a month is outside 1..12.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrUnknownStrategy is returned for an unrecognised bridge-day strategy name.
	ErrUnknownStrategy = errors.New("unknown bridge strategy")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ParseError carries the rejected input.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q: want YYYY-MM-DD", e.Input)
}

func (e *ParseError) Unwrap() error { return ErrInvalidDate }
