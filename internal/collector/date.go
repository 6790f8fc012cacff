package collector

import "time"

// DateLayout is the session date format used by the open-close endpoint.
const DateLayout = "2006-01-02"

// PreviousDay returns the calendar day before now formatted as YYYY-MM-DD.
// Weekends and market holidays are not skipped; the provider answers those
// dates with an error, which degrades to a placeholder.
func PreviousDay(now time.Time) string {
	return now.AddDate(0, 0, -1).Format(DateLayout)
}
