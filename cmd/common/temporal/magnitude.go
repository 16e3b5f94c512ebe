package temporal

import (
	"fmt"
	"math"
	"strings"
)

// Unit is the scale of a numeric timestamp or duration.
type Unit int

const (
	// UnitAuto classifies epoch numbers by magnitude and reads durations and
	// times of day as seconds.
	UnitAuto Unit = iota
	Seconds
	Milliseconds
	Microseconds
	Nanoseconds
)

const (
	// msWatershed separates second from millisecond epochs. Anything larger in
	// absolute value is read as milliseconds.
	msWatershed = 20_000_000_000

	unix9999 = 253_402_300_799
	unix1600 = -11_676_096_000

	// maxEpochMagnitude is 9999-12-31T23:59:59 expressed in nanoseconds.
	maxEpochMagnitude = float64(unix9999) * 1e9

	secondsPerDay = 86_400
	microsPerSec  = 1_000_000
	microsPerDay  = secondsPerDay * microsPerSec
)

// Watershed is the epoch magnitude above which numbers are read as milliseconds.
const Watershed = msWatershed

var unitNames = map[string]Unit{
	"auto": UnitAuto,
	"s":    Seconds, "sec": Seconds, "seconds": Seconds,
	"ms": Milliseconds, "millis": Milliseconds, "milliseconds": Milliseconds,
	"us": Microseconds, "µs": Microseconds, "micros": Microseconds, "microseconds": Microseconds,
	"ns": Nanoseconds, "nanos": Nanoseconds, "nanoseconds": Nanoseconds,
}

// ParseUnit reads a unit name such as "ms" or "seconds".
func ParseUnit(s string) (Unit, error) {
	if u, ok := unitNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return u, nil
	}
	return UnitAuto, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

func (u Unit) String() string {
	switch u {
	case Seconds:
		return "s"
	case Milliseconds:
		return "ms"
	case Microseconds:
		return "us"
	case Nanoseconds:
		return "ns"
	default:
		return "auto"
	}
}

// perSecond is the number of units in one second.
func (u Unit) perSecond() int64 {
	switch u {
	case Milliseconds:
		return 1_000
	case Microseconds:
		return 1_000_000
	case Nanoseconds:
		return 1_000_000_000
	default:
		return 1
	}
}

// ClassifyEpoch decides whether an epoch number counts seconds or milliseconds.
// Micro and nanosecond epochs are never inferred; they exceed the year 9999
// bound once read as milliseconds.
func ClassifyEpoch(v float64) Unit {
	if math.Abs(v) > msWatershed {
		return Milliseconds
	}
	return Seconds
}

// split converts a finite number in unit u into whole seconds (floored) and a
// microsecond remainder in [0, 1e6). ok is false when the value is too large
// to be represented at all.
func (n number) split(u Unit) (sec int64, micro int, ok bool) {
	if u == UnitAuto {
		u = Seconds
	}
	scale := u.perSecond()
	switch {
	case n.big != nil:
		return 0, 0, false
	case !n.float:
		sec, rem := floorDiv(n.i, scale), floorMod(n.i, scale)
		switch {
		case scale <= microsPerSec:
			micro = int(rem * (microsPerSec / scale))
		default:
			micro = int((rem + 500) / (scale / microsPerSec))
		}
		if micro >= microsPerSec {
			sec, micro = sec+1, micro-microsPerSec
		}
		return sec, micro, true
	default:
		secs := n.f / float64(scale)
		if math.Abs(secs) > 1e15 {
			return 0, 0, false
		}
		whole := math.Floor(secs)
		micro = int(math.Round((secs - whole) * microsPerSec))
		sec = int64(whole)
		if micro >= microsPerSec {
			sec, micro = sec+1, micro-microsPerSec
		}
		return sec, micro, true
	}
}

// epoch converts a number into seconds and microseconds since 1970-01-01 UTC,
// enforcing the supported 1600..9999 window.
func (n number) epoch(u Unit) (int64, int, parseError) {
	if perr := n.nonFinite(); perr != errNone {
		return 0, 0, perr
	}
	if n.float && math.Abs(n.f) > maxEpochMagnitude {
		return 0, 0, n.outOfRange()
	}
	if u == UnitAuto {
		u = ClassifyEpoch(n.approx())
	}
	sec, micro, ok := n.split(u)
	switch {
	case !ok:
		return 0, 0, n.outOfRange()
	case sec > unix9999:
		return 0, 0, errDateTooLarge
	case sec < unix1600:
		return 0, 0, errDateTooSmall
	}
	return sec, micro, errNone
}

func (n number) outOfRange() parseError {
	if n.sign() < 0 {
		return errDateTooSmall
	}
	return errDateTooLarge
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
