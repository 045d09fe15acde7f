package holidays

import (
	"context"
	"sort"
	"time"

	"github.com/rickar/cal/v2"

	"github.com/pochivni/planner/calendar"
)

// =============================================================================
// BULGARIAN PUBLIC HOLIDAYS
// =============================================================================

var (
	NewYear = fixed("Нова година", time.January, 1)

	LiberationDay = fixed("Ден на Освобождението на България от османско иго", time.March, 3)

	GoodFriday   = easter("Велики петък", -2)
	HolySaturday = easter("Велика събота", -1)
	Easter       = easter("Великден", 0)
	EasterMonday = easter("Великден", 1)

	LabourDay = fixed("Ден на труда и на международната работническа солидарност", time.May, 1)

	StGeorgesDay = fixed("Гергьовден, Ден на храбростта и Българската армия", time.May, 6)

	EducationDay = fixed("Ден на светите братя Кирил и Методий, на българската азбука, просвета и култура", time.May, 24)

	UnificationDay = fixed("Ден на Съединението", time.September, 6)

	IndependenceDay = fixed("Ден на Независимостта на България", time.September, 22)

	ChristmasEve = fixed("Бъдни вечер", time.December, 24)
	Christmas    = fixed("Рождество Христово", time.December, 25)
	Christmas2   = fixed("Рождество Христово", time.December, 26)
)

// Bulgaria lists every statutory holiday. Easter days never get a substitute.
var Bulgaria = []*cal.Holiday{
	NewYear, LiberationDay,
	GoodFriday, HolySaturday, Easter, EasterMonday,
	LabourDay, StGeorgesDay, EducationDay, UnificationDay, IndependenceDay,
	ChristmasEve, Christmas, Christmas2,
}

var movable = map[*cal.Holiday]bool{
	GoodFriday: true, HolySaturday: true, Easter: true, EasterMonday: true,
}

// SubstituteSuffix marks the rest day moved off a weekend.
const SubstituteSuffix = " (почивен ден)"

func fixed(name string, month time.Month, day int) *cal.Holiday {
	return &cal.Holiday{
		Name:  name,
		Type:  cal.ObservancePublic,
		Month: month,
		Day:   day,
		Func:  cal.CalcDayOfMonth,
	}
}

func easter(name string, offset int) *cal.Holiday {
	return &cal.Holiday{
		Name: name,
		Type: cal.ObservancePublic,
		Func: func(_ *cal.Holiday, year int) time.Time {
			return OrthodoxEaster(year).AddDays(offset).Time()
		},
	}
}

// OrthodoxEaster returns Easter Sunday by the Julian computus, in Gregorian terms.
func OrthodoxEaster(year int) calendar.Date {
	a := year % 4
	b := year % 7
	c := year % 19
	d := (19*c + 15) % 30
	e := (2*a + 4*b - d + 34) % 7
	month := (d + e + 114) / 31
	day := (d+e+114)%31 + 1

	julian := calendar.NewDate(year, time.Month(month), day)
	return julian.AddDays(year/100 - year/400 - 2)
}

// =============================================================================
// COMPUTED SOURCE
// =============================================================================

// Computed is an offline Source: public holidays from rules, school breaks
// from the embedded table.
type Computed struct {
	defs   []*cal.Holiday
	school []calendar.SchoolHoliday
}

// NewComputed returns the offline Bulgarian calendar.
func NewComputed() *Computed {
	return &Computed{defs: Bulgaria, school: embeddedSchoolHolidays()}
}

// Holidays returns the statutory holidays of year followed by their substitute
// rest days, sorted by date.
func (c *Computed) Holidays(_ context.Context, year int) ([]calendar.Holiday, error) {
	if year < 1 || year > 9999 {
		return nil, ErrNoData
	}

	taken := calendar.NewDateSet()
	var out []calendar.Holiday
	var weekend []calendar.Holiday
	for _, def := range c.defs {
		actual, _ := def.Calc(year)
		if actual.IsZero() {
			continue
		}
		d := calendar.FromTime(actual)
		h := calendar.Holiday{Date: d, Name: def.Name, Type: calendar.PublicHoliday}
		out = append(out, h)
		taken.Add(d)
		if d.IsWeekend() && !movable[def] {
			weekend = append(weekend, h)
		}
	}

	sortHolidays(weekend)
	for _, h := range weekend {
		d := h.Date.AddDays(1)
		for d.IsWeekend() || taken.Has(d) {
			d = d.AddDays(1)
		}
		taken.Add(d)
		out = append(out, calendar.Holiday{Date: d, Name: h.Name + SubstituteSuffix, Type: calendar.PublicHoliday})
	}

	sortHolidays(out)
	return calendar.HolidaysInYear(out, year), nil
}

// SchoolHolidays returns the embedded breaks that overlap year.
func (c *Computed) SchoolHolidays(_ context.Context, year int) ([]calendar.SchoolHoliday, error) {
	yr := calendar.Range{
		Start: calendar.NewDate(year, time.January, 1),
		End:   calendar.NewDate(year, time.December, 31),
	}
	var out []calendar.SchoolHoliday
	for _, s := range c.school {
		if s.Range().Overlaps(yr) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

func sortHolidays(hs []calendar.Holiday) {
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
}
