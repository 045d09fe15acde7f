/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain types that are
  already wire-shaped (calendar.Holiday, calendar.DayInfo, vacation.Summary,
  vacation.Rollover) are embedded as-is; the rest gets a DTO here.

NAMING CONVENTION:
  - *Response: top-level response bodies
  - *Request:  request bodies from clients

VALIDATION:
  Request bodies carry go-playground/validator tags and are checked in
  decodeAndValidate before they reach a handler.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/pochivni/planner/calendar"
	"github.com/pochivni/planner/vacation"
)

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidaysResponse lists the public holidays of a year.
type HolidaysResponse struct {
	Year     int                `json:"year"`
	Holidays []calendar.Holiday `json:"holidays"`
}

// BridgesResponse lists the suggested bridge days of a year.
type BridgesResponse struct {
	Year     int                  `json:"year"`
	Strategy string               `json:"strategy"`
	Bridges  []calendar.BridgeDay `json:"bridges"`
}

// SchoolHolidaysResponse lists merged breaks and their highlighted weekdays.
type SchoolHolidaysResponse struct {
	Year     int                      `json:"year"`
	Breaks   []calendar.SchoolHoliday `json:"breaks"`
	Weekdays []string                 `json:"weekdays"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// MonthResponse is one month grid with classified days.
type MonthResponse struct {
	Year           int                  `json:"year"`
	Month          int                  `json:"month"`
	FirstDayOfWeek int                  `json:"firstDayOfWeek"`
	DaysInMonth    int                  `json:"daysInMonth"`
	Weeks          [][7]int             `json:"weeks"`
	Days           []calendar.DayInfo   `json:"days"`
	Bridges        []calendar.BridgeDay `json:"bridges"`
}

// =============================================================================
// RECORDS
// =============================================================================

// RecordRequest is the body of PUT /api/records/{year}.
type RecordRequest struct {
	Version       int      `json:"version" validate:"omitempty,min=1"`
	TotalDays     int      `json:"totalDays" validate:"required,min=1,max=366"`
	VacationDates []string `json:"vacationDates" validate:"max=366,dive,datetime=2006-01-02"`
}

// ToData converts the request into a normalized record.
func (r RecordRequest) ToData() vacation.Data {
	return vacation.Normalize(vacation.Data{
		Version:       r.Version,
		TotalDays:     r.TotalDays,
		VacationDates: r.VacationDates,
	})
}

// RolloverResponse wraps the carryover of a year. Rollover is null when
// nothing carries over.
type RolloverResponse struct {
	Year     int                `json:"year"`
	Rollover *vacation.Rollover `json:"rollover"`
}

// SummaryResponse is the vacation summary of a year.
type SummaryResponse struct {
	Year int `json:"year"`
	vacation.Summary
}

// =============================================================================
// MISC
// =============================================================================

// HealthResponse reports liveness and storage reachability.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
