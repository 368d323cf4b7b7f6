package service

import "time"

// truncateDay strips the time-of-day component so range comparisons
// against DATE columns behave as whole-day boundaries.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SalesWindow resolves the inclusive [from, to] range for sales reports.
// Missing bounds default to the last seven days ending today.
func SalesWindow(now time.Time, from, to *time.Time) (time.Time, time.Time) {
	today := truncateDay(now)

	fromDate := today.AddDate(0, 0, -6)
	if from != nil {
		fromDate = truncateDay(*from)
	}
	toDate := today
	if to != nil {
		toDate = truncateDay(*to)
	}
	return fromDate, toDate
}

// AdsWindow resolves the [from, toExclusive) range for ads reports.
// Ads data lags by a day, so missing bounds default to the last seven
// days ending yesterday, the requested end is clamped to yesterday, and
// the returned upper bound is exclusive (end + 1 day).
func AdsWindow(now time.Time, from, to *time.Time) (time.Time, time.Time) {
	yesterday := truncateDay(now).AddDate(0, 0, -1)

	fromDate := yesterday.AddDate(0, 0, -6)
	if from != nil {
		fromDate = truncateDay(*from)
	}
	toDate := yesterday
	if to != nil {
		toDate = truncateDay(*to)
		if toDate.After(yesterday) {
			toDate = yesterday
		}
	}
	return fromDate, toDate.AddDate(0, 0, 1)
}
