package temporal

import (
	"fmt"
	"time"
)

const timePrefix = "Input should be in a valid time format, "

// TimeOfDay is a wall clock time with microsecond precision and no zone.
type TimeOfDay struct {
	hour, minute, second, micro int
}

// NewTimeOfDay validates and returns the time of day.
func NewTimeOfDay(hour, minute, second, micro int) (TimeOfDay, error) {
	var perr parseError
	switch {
	case hour < 0 || hour > 23:
		perr = errOutOfRangeHour
	case minute < 0 || minute > 59:
		perr = errOutOfRangeMinute
	case second < 0 || second > 59:
		perr = errOutOfRangeSecond
	case micro < 0 || micro >= microsPerSec:
		perr = errSecondFractionTooLong
	default:
		return TimeOfDay{hour, minute, second, micro}, nil
	}
	return TimeOfDay{}, fmt.Errorf("%02d:%02d:%02d.%d: %w", hour, minute, second, micro, perr)
}

// Midnight is 00:00:00.
var Midnight = TimeOfDay{}

func timeOfDayFromMicros(us int64) TimeOfDay {
	sec := us / microsPerSec
	return TimeOfDay{
		hour:   int(sec / 3600),
		minute: int(sec % 3600 / 60),
		second: int(sec % 60),
		micro:  int(us % microsPerSec),
	}
}

func (t TimeOfDay) Hour() int        { return t.hour }
func (t TimeOfDay) Minute() int      { return t.minute }
func (t TimeOfDay) Second() int      { return t.second }
func (t TimeOfDay) Microsecond() int { return t.micro }
func (TimeOfDay) Kind() Kind         { return KindTime }

func (t TimeOfDay) IsMidnight() bool { return t == Midnight }

// SinceMidnight is the elapsed time from 00:00.
func (t TimeOfDay) SinceMidnight() time.Duration {
	return time.Duration(t.micros()) * time.Microsecond
}

func (t TimeOfDay) micros() int64 {
	return (int64(t.hour)*3600+int64(t.minute)*60+int64(t.second))*microsPerSec + int64(t.micro)
}

func (t TimeOfDay) Compare(o TimeOfDay) int {
	a, b := t.micros(), o.micros()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
	if t.micro != 0 {
		s += fmt.Sprintf(".%06d", t.micro)
	}
	return s
}

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTime(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// parseTimePrefix reads HH:MM[:SS[.f{1,6}]] starting at pos and returns the
// position just after it.
func parseTimePrefix(s string, pos int) (TimeOfDay, int, parseError) {
	if len(s)-pos < 5 {
		return TimeOfDay{}, pos, errTooShort
	}
	var t TimeOfDay
	var ok bool
	if t.hour, ok = digits(s, pos, 2); !ok {
		return TimeOfDay{}, pos, errInvalidCharHour
	}
	if t.hour > 23 {
		return TimeOfDay{}, pos, errOutOfRangeHour
	}
	if s[pos+2] != ':' {
		return TimeOfDay{}, pos, errInvalidCharTimeSep
	}
	if t.minute, ok = digits(s, pos+3, 2); !ok {
		return TimeOfDay{}, pos, errInvalidCharMinute
	}
	if t.minute > 59 {
		return TimeOfDay{}, pos, errOutOfRangeMinute
	}
	pos += 5
	if pos >= len(s) || s[pos] != ':' {
		return t, pos, errNone
	}
	if t.second, ok = digits(s, pos+1, 2); !ok {
		return TimeOfDay{}, pos, errInvalidCharSecond
	}
	if t.second > 59 {
		return TimeOfDay{}, pos, errOutOfRangeSecond
	}
	pos += 3
	if pos >= len(s) || s[pos] != '.' {
		return t, pos, errNone
	}
	pos++
	start := pos
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	switch n := pos - start; {
	case n == 0:
		return TimeOfDay{}, pos, errSecondFractionMissing
	case n > 6:
		return TimeOfDay{}, pos, errSecondFractionTooLong
	default:
		frac, _ := digits(s, start, n)
		for ; n < 6; n++ {
			frac *= 10
		}
		t.micro = frac
	}
	return t, pos, errNone
}

// ParseTime coerces input into a TimeOfDay, reading numbers as seconds.
func ParseTime(input any) (TimeOfDay, error) { return Parser{}.Time(input) }

// Time coerces input into a TimeOfDay. Numbers count units since midnight.
func (p Parser) Time(input any) (TimeOfDay, error) {
	if s, ok, perr := textOf(input); ok {
		if perr != errNone {
			return TimeOfDay{}, parsingError(TimeParsing, timePrefix, input, perr)
		}
		t, pos, perr := parseTimePrefix(s, 0)
		if perr == errNone && pos != len(s) {
			perr = errExtraCharacters
		}
		if perr != errNone {
			return TimeOfDay{}, parsingError(TimeParsing, timePrefix, input, perr)
		}
		return t, nil
	}
	if n, ok := numberOf(input); ok {
		t, perr := p.numberTime(n)
		if perr != errNone {
			return TimeOfDay{}, parsingError(TimeParsing, timePrefix, input, perr)
		}
		return t, nil
	}
	if v, ok := input.(TimeOfDay); ok {
		return v, nil
	}
	return TimeOfDay{}, typeError(TimeType, "Input should be a valid time", input)
}

func (p Parser) numberTime(n number) (TimeOfDay, parseError) {
	if perr := n.nonFinite(); perr != errNone {
		return TimeOfDay{}, perr
	}
	if n.sign() < 0 {
		return TimeOfDay{}, errTimeNegative
	}
	sec, micro, ok := n.split(p.Unit)
	if !ok || sec >= secondsPerDay {
		return TimeOfDay{}, errTimeTooLarge
	}
	return timeOfDayFromMicros(sec*microsPerSec + int64(micro)), errNone
}
