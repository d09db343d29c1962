package shared

import "time"

const dayFormat = "2006-01-02"

// ParseDate accepts a calendar day (attendance dates, joining dates) or
// a full RFC3339 timestamp (festive windows).
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if len(value) == len(dayFormat) {
		return time.Parse(dayFormat, value)
	}
	return time.Parse(time.RFC3339, value)
}
