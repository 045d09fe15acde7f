package holidays

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/pochivni/planner/calendar"
)

//go:embed data/school_holidays.json
var schoolHolidaysJSON []byte

// embeddedSchoolHolidays decodes the bundled school calendar. The file is
// checked by tests, so a decode failure is a build defect.
func embeddedSchoolHolidays() []calendar.SchoolHoliday {
	out, err := decodeSchoolHolidays(schoolHolidaysJSON)
	if err != nil {
		panic(err)
	}
	return out
}

func decodeSchoolHolidays(data []byte) ([]calendar.SchoolHoliday, error) {
	var raw []calendar.SchoolHoliday
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("school holidays: %w", err)
	}
	for i := range raw {
		raw[i].Type = calendar.SchoolType
	}
	return raw, nil
}
