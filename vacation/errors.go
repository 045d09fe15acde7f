/*
errors.go - Error types of the vacation package

ERROR CATEGORIES:
  1. Record errors - rejected edits (bad day, entitlement too low)
  2. Session errors - operations that need a signed-in session
  3. Storage errors - unreadable records

Client errors (IsClientError) are the user's to fix and map to 4xx in the API.
Everything else is infrastructure and degrades to "no data" at the edges.
*/
package vacation

import (
	"errors"
	"fmt"

	"github.com/pochivni/planner/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDay wraps calendar.ErrInvalidDate for record edits.
	ErrInvalidDay = fmt.Errorf("vacation day: %w", calendar.ErrInvalidDate)

	// ErrEntitlementTooLow is returned when the entitlement would drop below 1.
	ErrEntitlementTooLow = errors.New("entitlement must be at least 1 day")

	// ErrEntitlementBelowUsed is returned when the entitlement would drop below days already taken.
	ErrEntitlementBelowUsed = errors.New("entitlement below days already used")

	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionChanged is returned when a load finished after the session it belonged to ended.
	ErrSessionChanged = errors.New("session changed")

	// ErrNoConflict is returned by Resolve when there is no pending conflict.
	ErrNoConflict = errors.New("no migration conflict to resolve")

	// ErrUnknownResolution is returned for an unrecognised resolution name.
	ErrUnknownResolution = errors.New("unknown resolution")

	// ErrCorruptRecord is returned when a stored record cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt vacation record")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// EntitlementError explains a rejected entitlement change.
type EntitlementError struct {
	Requested int
	Used      int
	reason    error
}

func (e *EntitlementError) Error() string {
	return fmt.Sprintf("%v: requested %d, used %d", e.reason, e.Requested, e.Used)
}

func (e *EntitlementError) Unwrap() error { return e.reason }

// IsClientError returns true for errors caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, calendar.ErrInvalidDate) ||
		errors.Is(err, ErrEntitlementTooLow) ||
		errors.Is(err, ErrEntitlementBelowUsed) ||
		errors.Is(err, ErrNoConflict) ||
		errors.Is(err, ErrUnknownResolution)
}
