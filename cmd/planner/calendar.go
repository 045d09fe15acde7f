package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pochivni/planner/calendar"
)

// =============================================================================
// OUTPUT
// =============================================================================

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

var isoWeekdays = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Нд"}

func weekdayName(d calendar.Date) string { return isoWeekdays[d.ISOWeekday()-1] }

// =============================================================================
// HOLIDAYS / BRIDGES / SCHOOL
// =============================================================================

func newHolidaysCmd(a *app) *cobra.Command {
	var year int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List the public holidays of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := a.year(year)
			if err != nil {
				return err
			}
			planner, err := newPlanner(a.cfg, a.logger)
			if err != nil {
				return err
			}
			hs := planner.Holidays(cmd.Context(), y)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), hs)
			}

			tw := table(cmd.OutOrStdout())
			for _, h := range hs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Date, weekdayName(h.Date), h.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newBridgesCmd(a *app) *cobra.Command {
	var year int
	var strategy string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "bridges",
		Short: "Suggest bridge days of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := a.year(year)
			if err != nil {
				return err
			}
			planner, err := newPlanner(a.cfg, a.logger)
			if err != nil {
				return err
			}
			bridges, err := planner.Bridges(cmd.Context(), y, strategy)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), bridges)
			}

			tw := table(cmd.OutOrStdout())
			for _, b := range bridges {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d дни\t%s\n",
					b.Date, weekdayName(b.Date), b.Reason, b.DaysOff, b.RelatedHoliday)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "full-week or adjacent (default: bridges.strategy)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newSchoolCmd(a *app) *cobra.Command {
	var year int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "school",
		Short: "List the merged school breaks of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := a.year(year)
			if err != nil {
				return err
			}
			planner, err := newPlanner(a.cfg, a.logger)
			if err != nil {
				return err
			}
			school := planner.School(cmd.Context(), y)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), school.Breaks)
			}

			tw := table(cmd.OutOrStdout())
			for _, s := range school.Breaks {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.StartDate, s.EndDate, s.Name, s.GradeLevel)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// =============================================================================
// GRID
// =============================================================================

// dayMarks are the one-letter markers of the printed grid.
var dayMarks = map[calendar.DayKind]string{
	calendar.KindHoliday:  "*",
	calendar.KindVacation: "V",
	calendar.KindBridge:   "+",
	calendar.KindSchool:   "s",
	calendar.KindWeekend:  " ",
	calendar.KindWorkday:  " ",
}

func newGridCmd(a *app) *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print one month with holidays, bridges, school breaks and vacation",
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := a.year(year)
			if err != nil {
				return err
			}
			m := time.Month(month)
			if month == 0 {
				m = a.now().Month()
			}
			planner, err := newPlanner(a.cfg, a.logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			dev, err := openDevice(a.cfg, a.logger, a.now)
			if err != nil {
				return err
			}
			defer dev.Close()
			s, err := dev.openSession(ctx, y, false)
			if err != nil {
				return err
			}
			defer s.Close()

			view, err := planner.Month(ctx, y, m, s.Data().Dates(), a.today())
			if err != nil {
				return err
			}
			printGrid(cmd.OutOrStdout(), view.Grid, view.Days)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default: current)")
	return cmd
}

// printGrid renders a Monday-first month followed by the legend and the names
// of its holidays.
func printGrid(w io.Writer, g calendar.Grid, days []calendar.DayInfo) {
	fmt.Fprintf(w, "%d-%02d\n", g.Year, int(g.Month))
	fmt.Fprintln(w, strings.Join(isoWeekdays[:], "  "))

	var line strings.Builder
	line.WriteString(strings.Repeat("    ", g.FirstDayOfWeek))
	for i, info := range days {
		mark := dayMarks[info.Kind]
		if info.IsToday {
			mark = "<"
		}
		fmt.Fprintf(&line, "%2d%s ", info.Date.Day(), mark)
		if (g.FirstDayOfWeek+i)%7 == 6 {
			fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	if line.Len() > 0 {
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}

	fmt.Fprintln(w, "* празник  + мост  V отпуск  s ваканция  < днес")
	for _, info := range days {
		if info.HolidayName != "" {
			fmt.Fprintf(w, "%s %s\n", info.Date, info.HolidayName)
		}
	}
}
