package temporal

import (
	"fmt"
	"time"
)

// Offset is a fixed displacement from UTC, strictly less than a day either way.
type Offset struct {
	minutes int
}

// UTC is the zero offset.
var UTC = Offset{}

func NewOffset(minutes int) (Offset, error) {
	if minutes <= -24*60 || minutes >= 24*60 {
		return Offset{}, fmt.Errorf("%d minutes: %w", minutes, errOutOfRangeTz)
	}
	return Offset{minutes}, nil
}

func (o Offset) Minutes() int { return o.minutes }

// String renders Z for UTC and ±HH:MM otherwise.
func (o Offset) String() string {
	if o.minutes == 0 {
		return "Z"
	}
	sign, m := '+', o.minutes
	if m < 0 {
		sign, m = '-', -m
	}
	return fmt.Sprintf("%c%02d:%02d", sign, m/60, m%60)
}

// Location is a fixed zone for the offset.
func (o Offset) Location() *time.Location {
	if o.minutes == 0 {
		return time.UTC
	}
	return time.FixedZone(o.String(), o.minutes*60)
}

// parseOffset reads Z, ±HH, ±HHMM or ±HH:MM at pos.
func parseOffset(s string, pos int) (Offset, int, parseError) {
	switch s[pos] {
	case 'Z', 'z':
		return UTC, pos + 1, errNone
	case '+', '-':
	default:
		return Offset{}, pos, errInvalidCharTzSign
	}
	negative := s[pos] == '-'
	hours, ok := digits(s, pos+1, 2)
	if !ok {
		return Offset{}, pos, errInvalidCharTzHour
	}
	pos += 3
	minutes := 0
	if pos < len(s) && (s[pos] == ':' || isDigit(s[pos])) {
		if s[pos] == ':' {
			pos++
		}
		if minutes, ok = digits(s, pos, 2); !ok {
			return Offset{}, pos, errInvalidCharTzMinute
		}
		if minutes > 59 {
			return Offset{}, pos, errOutOfRangeTzMinute
		}
		pos += 2
	}
	total := hours*60 + minutes
	if total >= 24*60 {
		return Offset{}, pos, errOutOfRangeTz
	}
	if negative {
		total = -total
	}
	return Offset{total}, pos, errNone
}
