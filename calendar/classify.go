package calendar

// DayKind is the dominant display class of a day.
type DayKind string

const (
	KindHoliday  DayKind = "holiday"
	KindVacation DayKind = "vacation"
	KindBridge   DayKind = "bridge"
	KindSchool   DayKind = "school"
	KindWeekend  DayKind = "weekend"
	KindWorkday  DayKind = "workday"
)

// DayInfo describes one day of a month grid.
type DayInfo struct {
	Date        Date    `json:"date"`
	Kind        DayKind `json:"kind"`
	HolidayName string  `json:"holidayName,omitempty"`
	IsHoliday   bool    `json:"isHoliday"`
	IsBridge    bool    `json:"isBridge"`
	IsVacation  bool    `json:"isVacation"`
	IsSchool    bool    `json:"isSchool"`
	IsWeekend   bool    `json:"isWeekend"`
	IsToday     bool    `json:"isToday"`
	Selectable  bool    `json:"selectable"`
}

// Classifier assigns a DayKind to days. Precedence, highest first:
// holiday, vacation, bridge, school, weekend, workday.
type Classifier struct {
	holidays map[Date]Holiday
	bridges  DateSet
	school   DateSet
	vacation DateSet
	today    Date
}

func NewClassifier(holidays []Holiday, bridges []BridgeDay, school, vacation DateSet, today Date) *Classifier {
	c := &Classifier{
		holidays: make(map[Date]Holiday, len(holidays)),
		bridges:  make(DateSet, len(bridges)),
		school:   school,
		vacation: vacation,
		today:    today,
	}
	for _, h := range holidays {
		if _, dup := c.holidays[h.Date]; !dup {
			c.holidays[h.Date] = h
		}
	}
	for _, b := range bridges {
		c.bridges.Add(b.Date)
	}
	if c.school == nil {
		c.school = make(DateSet)
	}
	if c.vacation == nil {
		c.vacation = make(DateSet)
	}
	return c
}

// Classify describes d. A bridge suggestion is hidden once d is vacation,
// and holidays can never be selected as vacation.
func (c *Classifier) Classify(d Date) DayInfo {
	h, isHoliday := c.holidays[d]
	info := DayInfo{
		Date:       d,
		IsHoliday:  isHoliday,
		IsVacation: c.vacation.Has(d),
		IsSchool:   c.school.Has(d),
		IsWeekend:  d.IsWeekend(),
		IsToday:    d == c.today,
		Selectable: !isHoliday,
	}
	info.IsBridge = c.bridges.Has(d) && !info.IsVacation
	if isHoliday {
		info.HolidayName = h.Name
	}

	switch {
	case info.IsHoliday:
		info.Kind = KindHoliday
	case info.IsVacation:
		info.Kind = KindVacation
	case info.IsBridge:
		info.Kind = KindBridge
	case info.IsSchool:
		info.Kind = KindSchool
	case info.IsWeekend:
		info.Kind = KindWeekend
	default:
		info.Kind = KindWorkday
	}
	return info
}

// Month classifies every day of g in order.
func (c *Classifier) Month(g Grid) []DayInfo {
	out := make([]DayInfo, 0, g.DaysInMonth)
	for _, day := range g.Days {
		out = append(out, c.Classify(g.Date(day)))
	}
	return out
}
