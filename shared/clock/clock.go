package clock

import (
	"time"

	"stayhub/shared/timezone"
)

// Clock abstracts the wall clock so lifecycle rules that depend on the current
// time (cancellation deadlines, upcoming/history cutoffs) can be tested with a
// frozen time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return timezone.Now()
}

// New returns the wall clock in the application timezone.
func New() Clock {
	return systemClock{}
}
