package params

import "time"

// Durations in seconds, the unit of block timestamps.
const (
	Minute uint64 = 60
	Hour          = 60 * Minute
	Day           = 24 * Hour
)

// UnixToTime converts a Unix second timestamp to time.Time.
func UnixToTime(ts uint64) time.Time {
	return time.Unix(int64(ts), 0).UTC()
}
