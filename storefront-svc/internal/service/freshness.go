package service

import "time"

const (
	RestaurantsTTL = 5 * time.Minute
	OrdersTTL      = 2 * time.Minute
)

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// fresh reports whether data fetched at last is still within ttl at now.
// A zero last means nothing was ever fetched.
func fresh(last, now time.Time, ttl time.Duration) bool {
	if last.IsZero() {
		return false
	}
	return now.Sub(last) < ttl
}
