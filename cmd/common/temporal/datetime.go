package temporal

import (
	"time"
)

const dateTimePrefix = "Input should be a valid datetime, "

// DateTime is a date with a time of day and an optional UTC offset. Without an
// offset the value is naive.
type DateTime struct {
	date   Date
	time   TimeOfDay
	offset Offset
	aware  bool
}

func NewDateTime(d Date, t TimeOfDay) DateTime {
	return DateTime{date: d, time: t}
}

// WithOffset returns dt attached to offset o.
func (dt DateTime) WithOffset(o Offset) DateTime {
	dt.offset, dt.aware = o, true
	return dt
}

// Naive drops the offset without shifting the wall clock.
func (dt DateTime) Naive() DateTime {
	dt.offset, dt.aware = Offset{}, false
	return dt
}

func (dt DateTime) Date() Date             { return dt.date }
func (dt DateTime) TimeOfDay() TimeOfDay   { return dt.time }
func (dt DateTime) Offset() (Offset, bool) { return dt.offset, dt.aware }
func (dt DateTime) IsAware() bool          { return dt.aware }
func (DateTime) Kind() Kind                { return KindDateTime }

func (dt DateTime) MarshalText() ([]byte, error) { return []byte(dt.String()), nil }

func (dt DateTime) String() string {
	s := dt.date.String() + "T" + dt.time.String()
	if dt.aware {
		s += dt.offset.String()
	}
	return s
}

func (dt *DateTime) UnmarshalText(b []byte) error {
	v, err := ParseDateTime(string(b))
	if err != nil {
		return err
	}
	*dt = v
	return nil
}

// In converts dt to a time.Time. Naive values are placed in naiveLoc.
func (dt DateTime) In(naiveLoc *time.Location) time.Time {
	loc := naiveLoc
	if dt.aware {
		loc = dt.offset.Location()
	}
	t := dt.time
	return time.Date(dt.date.year, dt.date.month, dt.date.day,
		t.hour, t.minute, t.second, t.micro*1000, loc)
}

// Compare orders two naive values by wall clock and anything else by instant,
// reading a naive side as UTC.
func (dt DateTime) Compare(o DateTime) int {
	if !dt.aware && !o.aware {
		if c := dt.date.Compare(o.date); c != 0 {
			return c
		}
		return dt.time.Compare(o.time)
	}
	return dt.In(time.UTC).Compare(o.In(time.UTC))
}

// DateTimeOf converts a time.Time into an aware DateTime, truncating below
// microseconds.
func DateTimeOf(t time.Time) DateTime {
	_, secs := t.Zone()
	return DateTime{
		date: DateOf(t),
		time: TimeOfDay{t.Hour(), t.Minute(), t.Second(), t.Nanosecond() / 1000},
		// sub-minute zone offsets only exist in historical LMT zones
		offset: Offset{secs / 60},
		aware:  true,
	}
}

// fromEpoch builds a naive UTC DateTime from seconds and microseconds since
// 1970-01-01.
func fromEpoch(sec int64, micro int) DateTime {
	t := time.Unix(sec, int64(micro)*1000).UTC()
	return DateTime{
		date: DateOf(t),
		time: TimeOfDay{t.Hour(), t.Minute(), t.Second(), micro},
	}
}

func parseDateTimeText(s string) (DateTime, parseError) {
	d, perr := parseDatePrefix(s)
	if perr != errNone {
		return DateTime{}, perr
	}
	if len(s) == 10 {
		return DateTime{date: d}, errNone
	}
	switch s[10] {
	case 'T', 't', '_', ' ':
	default:
		return DateTime{}, errInvalidCharDateTimeSep
	}
	t, pos, perr := parseTimePrefix(s, 11)
	if perr != errNone {
		return DateTime{}, perr
	}
	dt := DateTime{date: d, time: t}
	if pos < len(s) {
		var o Offset
		if o, pos, perr = parseOffset(s, pos); perr != errNone {
			return DateTime{}, perr
		}
		dt = dt.WithOffset(o)
	}
	if pos != len(s) {
		return DateTime{}, errExtraCharacters
	}
	return dt, errNone
}

func (p Parser) numberDateTime(n number) (DateTime, parseError) {
	sec, micro, perr := n.epoch(p.Unit)
	if perr != errNone {
		return DateTime{}, perr
	}
	return fromEpoch(sec, micro), errNone
}

// ParseDateTime coerces input into a DateTime using magnitude classification
// for numbers.
func ParseDateTime(input any) (DateTime, error) { return Parser{}.DateTime(input) }

// DateTime coerces input into a DateTime. Numeric input yields a naive UTC value.
func (p Parser) DateTime(input any) (DateTime, error) {
	if s, ok, perr := textOf(input); ok {
		if perr == errNone {
			var dt DateTime
			if dt, perr = parseDateTimeText(s); perr == errNone {
				return dt, nil
			}
		}
		return DateTime{}, parsingError(DatetimeParsing, dateTimePrefix, input, perr)
	}
	if n, ok := numberOf(input); ok {
		dt, perr := p.numberDateTime(n)
		if perr != errNone {
			return DateTime{}, parsingError(DatetimeParsing, dateTimePrefix, input, perr)
		}
		return dt, nil
	}
	switch v := input.(type) {
	case DateTime:
		return v, nil
	case Date:
		return DateTime{date: v}, nil
	case time.Time:
		return DateTimeOf(v), nil
	}
	return DateTime{}, typeError(DatetimeType, "Input should be a valid datetime", input)
}
