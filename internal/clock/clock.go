package clock

import "time"

// Clock supplies the current time. Sweeps and expiration math go through
// this interface so tests can advance virtual time instead of sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall clock in UTC.
func System() Clock {
	return systemClock{}
}
