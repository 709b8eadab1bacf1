package domain

import "time"

// Clock provides the current time. Token issuance and expiry checks take
// a Clock so tests can pin iat/exp to exact values.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// UnixSeconds returns the clock's current time truncated to whole seconds,
// the resolution of JWT NumericDate claims.
func UnixSeconds(c Clock) time.Time {
	return time.Unix(c.Now().Unix(), 0).UTC()
}

// Ensure RealClock implements Clock at compile time.
var _ Clock = RealClock{}
