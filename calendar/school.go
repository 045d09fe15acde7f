package calendar

import (
	"sort"
	"strings"
)

// DefaultSchoolExclusions names the breaks left out of calendar highlighting.
var DefaultSchoolExclusions = []string{"Лятна ваканция"}

// =============================================================================
// MERGE
// =============================================================================

// MergeSchoolHolidays collapses same-named breaks whose ranges overlap or touch
// into one break spanning min(start)..max(end). Distinct grade levels are joined
// with ", ". Same-named breaks that stay apart remain separate entries.
// Records with an invalid date are dropped. Output is sorted by start, then name.
func MergeSchoolHolidays(raw []SchoolHoliday) []SchoolHoliday {
	groups := make(map[string][]SchoolHoliday)
	for _, h := range raw {
		if !h.StartDate.IsValid() || !h.EndDate.IsValid() {
			continue
		}
		r := Between(h.StartDate, h.EndDate)
		h.StartDate, h.EndDate = r.Start, r.End
		h.Type = SchoolType
		groups[h.Name] = append(groups[h.Name], h)
	}

	var out []SchoolHoliday
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool { return group[i].StartDate.Before(group[j].StartDate) })

		current := group[0]
		grades := addGrade(nil, current.GradeLevel)
		for _, next := range group[1:] {
			if current.Range().Touches(next.Range()) {
				if next.EndDate.After(current.EndDate) {
					current.EndDate = next.EndDate
				}
				grades = addGrade(grades, next.GradeLevel)
				continue
			}
			current.GradeLevel = strings.Join(grades, ", ")
			out = append(out, current)
			current = next
			grades = addGrade(nil, next.GradeLevel)
		}
		current.GradeLevel = strings.Join(grades, ", ")
		out = append(out, current)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func addGrade(grades []string, grade string) []string {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return grades
	}
	for _, g := range grades {
		if g == grade {
			return grades
		}
	}
	return append(grades, grade)
}

// =============================================================================
// EXPAND
// =============================================================================

// ExpandToWeekdaySet returns every Monday-Friday day covered by ranges, skipping
// ranges whose name contains any of exclude.
func ExpandToWeekdaySet(ranges []SchoolHoliday, exclude []string) DateSet {
	out := make(DateSet)
	for _, h := range ranges {
		if excluded(h.Name, exclude) {
			continue
		}
		for _, d := range Between(h.StartDate, h.EndDate).Weekdays() {
			out.Add(d)
		}
	}
	return out
}

func excluded(name string, exclude []string) bool {
	for _, e := range exclude {
		if e != "" && strings.Contains(name, e) {
			return true
		}
	}
	return false
}
