package clock

import "time"

// Clock abstracts the system time so timestamps can be pinned in tests
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// New returns a Clock backed by the system time
func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
