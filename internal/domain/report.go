package domain

import "sort"

type weekKey struct {
	year int
	week int
}

// WeeklyReport sums activity distance per ISO-8601 (year, week), ordered ascending.
// Activities near a year boundary are grouped under their ISO year, not the calendar year.
func WeeklyReport(activities []Activity) []WeeklyReportRow {
	sums := make(map[weekKey]float64)
	for _, a := range activities {
		year, week := a.Date.ISOWeek()
		sums[weekKey{year: year, week: week}] += a.Distance
	}

	rows := make([]WeeklyReportRow, 0, len(sums))
	for k, sum := range sums {
		rows = append(rows, WeeklyReportRow{Year: k.year, Week: k.week, SumDistance: sum})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Week < rows[j].Week
	})
	return rows
}
