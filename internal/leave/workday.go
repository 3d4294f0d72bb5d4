package leave

import "time"

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// CountBusinessDays returns the day count for an inclusive date range. With
// excludeWeekends set, only Monday through Friday are counted; otherwise the
// raw calendar span end-start+1 is returned. Returns 0 when end precedes
// start or the range holds no countable day.
func CountBusinessDays(start, end time.Time, excludeWeekends bool) int {
	if end.Before(start) {
		return 0
	}
	if !excludeWeekends {
		return int(end.Sub(start).Hours()/24) + 1
	}
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			days++
		}
	}
	return days
}
