package server

import "time"

// Clock abstracts time.Now() to allow deterministic testing. The server uses
// it to pick the term feed's year window and to stamp the generated calendar.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
