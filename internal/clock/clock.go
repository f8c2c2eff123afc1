package clock

import "time"

// Clock supplies the current instant. Ledger timestamps are always UTC with
// microsecond precision, the finest resolution every supported store keeps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return Normalize(time.Now())
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time {
	return Normalize(f())
}

// Normalize converts t to UTC and truncates it to microseconds.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
