package domain

import "time"

// DateLayout is the calendar date format used throughout reports.
const DateLayout = "2006-01-02"

// DateRange returns the inclusive [today-days, today] window in UTC.
func DateRange(now time.Time, days int) (from, to string) {
	today := now.UTC()
	return today.AddDate(0, 0, -days).Format(DateLayout), today.Format(DateLayout)
}

// DateFromTimestamp converts epoch seconds to a UTC calendar date.
func DateFromTimestamp(sec float64) string {
	return time.Unix(int64(sec), 0).UTC().Format(DateLayout)
}

// InRange reports whether date lies within [from, to]. Dates compare as strings.
func InRange(date, from, to string) bool {
	return date >= from && date <= to
}
