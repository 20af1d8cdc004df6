package progression

import "time"

// SystemClock reads the wall clock in a fixed location.
// Calendar days roll over at midnight in that location.
type SystemClock struct {
	Location *time.Location
}

// NewSystemClock returns a clock for loc; nil means time.Local.
func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return SystemClock{Location: loc}
}

// Now implements domain.Clock.
func (c SystemClock) Now() time.Time {
	return time.Now().In(c.Location)
}
