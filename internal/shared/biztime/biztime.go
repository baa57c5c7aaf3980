// Package biztime centralizes time handling. All storage and transport use
// UTC; implicit Local timezone is prohibited.
package biztime

import "time"

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// UnixMinute returns the current minute bucket, used for rate-limit windows.
func UnixMinute() int64 {
	return time.Now().Unix() / 60
}
