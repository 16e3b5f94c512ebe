package temporal

import (
	"fmt"
	"time"
)

const datePrefix = "Input should be a valid date or datetime, "

// Date is a calendar date in the proleptic Gregorian calendar.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate returns the date, rejecting impossible calendar days.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if perr := checkDate(year, int(month), day); perr != errNone {
		return Date{}, fmt.Errorf("%04d-%02d-%02d: %w", year, int(month), day, perr)
	}
	return Date{year, month, day}, nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{y, m, d}
}

func (d Date) Year() int         { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int          { return d.day }
func (Date) Kind() Kind          { return KindDate }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

func (d Date) IsZero() bool { return d == Date{} }

// Compare returns -1, 0 or +1 by calendar order.
func (d Date) Compare(o Date) int {
	switch {
	case d.year != o.year:
		return cmpInt(d.year, o.year)
	case d.month != o.month:
		return cmpInt(int(d.month), int(o.month))
	}
	return cmpInt(d.day, o.day)
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func checkDate(year, month, day int) parseError {
	switch {
	case month < 1 || month > 12:
		return errOutOfRangeMonth
	case day < 1 || day > daysIn(year, month):
		return errOutOfRangeDay
	}
	return errNone
}

// parseDatePrefix reads the leading YYYY-MM-DD of s.
func parseDatePrefix(s string) (Date, parseError) {
	if len(s) < 10 {
		return Date{}, errTooShort
	}
	year, ok := digits(s, 0, 4)
	if !ok {
		return Date{}, errInvalidCharYear
	}
	if s[4] != '-' {
		return Date{}, errInvalidCharDateSep
	}
	month, ok := digits(s, 5, 2)
	if !ok {
		return Date{}, errInvalidCharMonth
	}
	if s[7] != '-' {
		return Date{}, errInvalidCharDateSep
	}
	day, ok := digits(s, 8, 2)
	if !ok {
		return Date{}, errInvalidCharDay
	}
	if perr := checkDate(year, month, day); perr != errNone {
		return Date{}, perr
	}
	return Date{year, time.Month(month), day}, errNone
}

// ParseDate coerces input into a Date using magnitude classification for numbers.
func ParseDate(input any) (Date, error) { return Parser{}.Date(input) }

// Date coerces input into a Date.
//
// Text must be YYYY-MM-DD, or a full datetime whose time of day is exactly
// midnight. Numbers are unix timestamps that must land on midnight UTC.
func (p Parser) Date(input any) (Date, error) {
	if s, ok, perr := textOf(input); ok {
		if perr != errNone {
			return Date{}, parsingError(DateParsing, datePrefix, input, perr)
		}
		return dateFromText(s, input)
	}
	if n, ok := numberOf(input); ok {
		dt, perr := p.numberDateTime(n)
		if perr != errNone {
			return Date{}, parsingError(DateFromDatetimeParsing, datePrefix, input, perr)
		}
		return exactDate(dt, input)
	}
	switch v := input.(type) {
	case Date:
		return v, nil
	case DateTime:
		return exactDate(v, input)
	case time.Time:
		return exactDate(DateTimeOf(v), input)
	}
	return Date{}, typeError(DateType, "Input should be a valid date", input)
}

func dateFromText(s string, input any) (Date, error) {
	d, perr := parseDatePrefix(s)
	if perr != errNone {
		return Date{}, parsingError(DateParsing, datePrefix, input, perr)
	}
	if len(s) == 10 {
		return d, nil
	}
	dt, perr := parseDateTimeText(s)
	if perr != errNone {
		return Date{}, parsingError(DateParsing, datePrefix, input, errExtraCharacters)
	}
	return exactDate(dt, input)
}

func exactDate(dt DateTime, input any) (Date, error) {
	if !dt.time.IsMidnight() {
		return Date{}, &ValidationError{Kind: DateFromDatetimeInexact, Message: inexactDateMessage, Input: input}
	}
	return dt.date, nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
