package shared

import "time"

// Clock supplies the current time to domain services that compare against "today"
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time {
	return f()
}

// DateOf truncates t to its calendar date, ignoring time of day and zone offset
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
