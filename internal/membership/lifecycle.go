package membership

import (
	"math"
	"time"
)

const (
	// RenewalPeriodDays is how long a paid period lasts.
	RenewalPeriodDays = 30
	// GraceDays extends an expired membership before it goes inactive.
	GraceDays = 3
	// EndDateToleranceDays is the slack given to end_date in the sweep.
	EndDateToleranceDays = 1
)

// IsExpiredAt reports whether date lies more than toleranceDays whole
// calendar days before now. Time-of-day is stripped on both sides, the day
// difference is ceiling-rounded, and the tolerance boundary itself still
// counts as not expired.
func IsExpiredAt(date time.Time, toleranceDays int, now time.Time) bool {
	today := truncateToDay(now)
	day := truncateToDay(date.In(now.Location()))

	diff := today.Sub(day)
	diffDays := int(math.Ceil(diff.Hours() / 24))

	return diffDays > toleranceDays
}

func IsExpired(date time.Time, toleranceDays int) bool {
	return IsExpiredAt(date, toleranceDays, time.Now())
}

// RenewalWindow computes the dates stamped on a membership when a payment
// is approved at now.
func RenewalWindow(now time.Time) (startDate, endDate, gracePeriodEnd time.Time) {
	startDate = now
	endDate = now.AddDate(0, 0, RenewalPeriodDays)
	gracePeriodEnd = endDate.AddDate(0, 0, GraceDays)
	return startDate, endDate, gracePeriodEnd
}

// PendingEndDate is the payment deadline stamped on a freshly registered
// membership before any payment exists.
func PendingEndDate(now time.Time) time.Time {
	return now.AddDate(0, 0, RenewalPeriodDays)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
