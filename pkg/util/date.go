package util

import "time"

// secondsCutoff separates Unix seconds from Unix milliseconds: 1e12 ms is
// September 2001, 1e12 s is tens of thousands of years away.
const secondsCutoff = 1_000_000_000_000

// EpochMillis normalizes a Unix timestamp given in seconds or milliseconds to milliseconds.
func EpochMillis(ts int64) int64 {
	if ts > -secondsCutoff && ts < secondsCutoff {
		return ts * 1000
	}
	return ts
}

// FromMillis converts epoch milliseconds to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ToMillis converts a time to epoch milliseconds.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}
