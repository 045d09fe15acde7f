package calendar

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayType classifies a public holiday.
type HolidayType string

const (
	PublicHoliday   HolidayType = "Public Holiday"
	NationalHoliday HolidayType = "National Holiday"
	Observance      HolidayType = "Observance"
)

// Holiday is a named non-working day. It has no identity beyond (Date, Name).
type Holiday struct {
	Date Date        `json:"date"`
	Name string      `json:"name"`
	Type HolidayType `json:"type"`
}

// HolidaySet indexes holidays by day.
func HolidaySet(holidays []Holiday) DateSet {
	s := make(DateSet, len(holidays))
	for _, h := range holidays {
		if h.Date.IsValid() {
			s.Add(h.Date)
		}
	}
	return s
}

// HolidaysInYear keeps the holidays whose date falls in year.
func HolidaysInYear(holidays []Holiday, year int) []Holiday {
	var out []Holiday
	for _, h := range holidays {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out
}

// =============================================================================
// SCHOOL HOLIDAYS
// =============================================================================

// SchoolType is the only type a SchoolHoliday carries.
const SchoolType = "School"

// SchoolHoliday is an inclusive school-break range.
type SchoolHoliday struct {
	Name       string `json:"name"`
	StartDate  Date   `json:"startDate"`
	EndDate    Date   `json:"endDate"`
	Type       string `json:"type"`
	GradeLevel string `json:"gradeLevel,omitempty"`
}

// Range returns the break as a Range.
func (s SchoolHoliday) Range() Range { return Range{Start: s.StartDate, End: s.EndDate} }

// =============================================================================
// BRIDGE DAYS
// =============================================================================

// BridgeReason tells why a day was suggested.
type BridgeReason string

const (
	ReasonFullWeek         BridgeReason = "full-week"
	ReasonHolidayBefore    BridgeReason = "holiday-before"
	ReasonHolidayAfter     BridgeReason = "holiday-after"
	ReasonClusterConnector BridgeReason = "cluster-connector"
)

// BridgeDay is a suggested workday off. Derived, never persisted.
type BridgeDay struct {
	Date           Date         `json:"date"`
	Reason         BridgeReason `json:"reason"`
	RelatedHoliday string       `json:"relatedHoliday"`
	DaysOff        int          `json:"daysOff"`
}
