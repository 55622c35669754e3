package timeutil

import "time"

// IST has no DST, so a fixed offset is exact.
var IST = time.FixedZone("IST", 5*3600+30*60)

// MonthWindowUTC returns the [start, end) instants of the IST calendar month
// containing t, converted back to UTC. Raw UTC timestamps must be compared
// against these boundaries, never against naive local-month cutoffs.
func MonthWindowUTC(t time.Time) (time.Time, time.Time) {
	local := t.In(IST)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, IST)
	end := start.AddDate(0, 1, 0)
	return start.UTC(), end.UTC()
}

// InMonthTail reports whether t falls within the last n IST calendar days of
// its month.
func InMonthTail(t time.Time, n int) bool {
	if n <= 0 {
		return false
	}
	local := t.In(IST)
	firstOfNext := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, IST).AddDate(0, 1, 0)
	tailStart := firstOfNext.AddDate(0, 0, -n)
	return !local.Before(tailStart)
}
