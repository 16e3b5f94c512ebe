package temporal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	durationPrefix  = "Input should be a valid timedelta, "
	maxDurationDays = 999_999_999
)

// Duration is a signed span of time with microsecond precision. It is kept
// normalised as a sign plus days, seconds in [0, 86400) and microseconds in
// [0, 1e6). The zero duration is never negative.
type Duration struct {
	negative bool
	days     int64
	seconds  int
	micros   int
}

// NewDuration builds a duration from a signed day count and a signed
// microsecond count, both counting in the same direction as the total.
func NewDuration(days, micros int64) (Duration, error) {
	d, perr := normalizeDuration(days, micros)
	if perr != errNone {
		return Duration{}, fmt.Errorf("%d days %d µs: %w", days, micros, perr)
	}
	return d, nil
}

// DurationOf converts a time.Duration, rounding to the nearest microsecond.
func DurationOf(d time.Duration) Duration {
	v, _ := normalizeDuration(0, d.Round(time.Microsecond).Microseconds())
	return v
}

func normalizeDuration(days, micros int64) (Duration, parseError) {
	days += micros / microsPerDay
	micros %= microsPerDay
	switch {
	case days > 0 && micros < 0:
		days, micros = days-1, micros+microsPerDay
	case days < 0 && micros > 0:
		days, micros = days+1, micros-microsPerDay
	}
	negative := days < 0 || micros < 0
	if negative {
		days, micros = -days, -micros
	}
	if days > maxDurationDays {
		return Duration{}, errDurationTooLarge
	}
	return Duration{
		negative: negative && (days != 0 || micros != 0),
		days:     days,
		seconds:  int(micros / microsPerSec),
		micros:   int(micros % microsPerSec),
	}, errNone
}

func (d Duration) Negative() bool    { return d.negative }
func (d Duration) Days() int64       { return d.days }
func (d Duration) Seconds() int      { return d.seconds }
func (d Duration) Microseconds() int { return d.micros }
func (Duration) Kind() Kind          { return KindDuration }

func (d Duration) IsZero() bool { return d == Duration{} }

// parts returns the signed day and intra-day microsecond components.
func (d Duration) parts() (int64, int64) {
	days, micros := d.days, int64(d.seconds)*microsPerSec+int64(d.micros)
	if d.negative {
		return -days, -micros
	}
	return days, micros
}

// Std converts to a time.Duration. ok is false when d is beyond its ±292 year range.
func (d Duration) Std() (time.Duration, bool) {
	days, micros := d.parts()
	const maxDays = math.MaxInt64 / int64(24*time.Hour)
	if days >= maxDays || days <= -maxDays {
		return 0, false
	}
	return time.Duration(days)*24*time.Hour + time.Duration(micros)*time.Microsecond, true
}

// TotalSeconds is the signed length in seconds.
func (d Duration) TotalSeconds() float64 {
	days, micros := d.parts()
	return float64(days)*secondsPerDay + float64(micros)/microsPerSec
}

// Add sums two durations, failing beyond the supported day range.
func (d Duration) Add(o Duration) (Duration, error) {
	ad, am := d.parts()
	bd, bm := o.parts()
	return NewDuration(ad+bd, am+bm)
}

func (d Duration) Neg() Duration {
	if !d.IsZero() {
		d.negative = !d.negative
	}
	return d
}

func (d Duration) Compare(o Duration) int {
	ad, am := d.parts()
	bd, bm := o.parts()
	if ad != bd {
		return cmpInt64(ad, bd)
	}
	return cmpInt64(am, bm)
}

// String renders the ISO 8601 form, e.g. P4DT15M30.1S.
func (d Duration) String() string {
	if d.IsZero() {
		return "PT0S"
	}
	var b strings.Builder
	if d.negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.days > 0 {
		b.WriteString(strconv.FormatInt(d.days, 10))
		b.WriteByte('D')
	}
	if d.seconds == 0 && d.micros == 0 {
		return b.String()
	}
	b.WriteByte('T')
	h, m, s := d.seconds/3600, d.seconds%3600/60, d.seconds%60
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s > 0 || d.micros > 0 {
		b.WriteString(strconv.Itoa(s))
		if d.micros > 0 {
			b.WriteString(strings.TrimRight(fmt.Sprintf(".%06d", d.micros), "0"))
		}
		b.WriteByte('S')
	}
	return b.String()
}

// Clock renders the day-count and clock form, e.g. -4d,00:15:30.
func (d Duration) Clock() string {
	var b strings.Builder
	if d.negative {
		b.WriteByte('-')
	}
	if d.days > 0 {
		fmt.Fprintf(&b, "%dd,", d.days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", d.seconds/3600, d.seconds%3600/60, d.seconds%60)
	if d.micros > 0 {
		fmt.Fprintf(&b, ".%06d", d.micros)
	}
	return b.String()
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDuration coerces input into a Duration, reading numbers as seconds.
func ParseDuration(input any) (Duration, error) { return Parser{}.Duration(input) }

// Duration coerces input into a Duration.
//
// Text is accepted as ISO 8601 (P4DT1H), as a day count with an optional
// clock (4d,10:15:30) or as a bare clock (10:15:30.5), each with an optional
// leading sign. Numbers count signed units, seconds by default.
func (p Parser) Duration(input any) (Duration, error) {
	if s, ok, perr := textOf(input); ok {
		var d Duration
		if perr == errNone {
			d, perr = parseDurationText(s)
		}
		if perr != errNone {
			return Duration{}, parsingError(TimedeltaParsing, durationPrefix, input, perr)
		}
		return d, nil
	}
	if n, ok := numberOf(input); ok {
		d, perr := p.numberDuration(n)
		if perr != errNone {
			return Duration{}, parsingError(TimedeltaParsing, durationPrefix, input, perr)
		}
		return d, nil
	}
	switch v := input.(type) {
	case Duration:
		return v, nil
	case time.Duration:
		return DurationOf(v), nil
	}
	return Duration{}, typeError(TimedeltaType, "Input should be a valid timedelta", input)
}

func (p Parser) numberDuration(n number) (Duration, parseError) {
	if perr := n.nonFinite(); perr != errNone {
		return Duration{}, perr
	}
	sec, micro, ok := n.abs().split(p.Unit)
	if !ok || sec/secondsPerDay > maxDurationDays {
		return Duration{}, errDurationTooLarge
	}
	d, perr := normalizeDuration(sec/secondsPerDay, sec%secondsPerDay*microsPerSec+int64(micro))
	if perr != errNone {
		return Duration{}, perr
	}
	if n.sign() < 0 {
		d = d.Neg()
	}
	return d, errNone
}

func parseDurationText(s string) (Duration, parseError) {
	if s == "" {
		return Duration{}, errTooShort
	}
	negative, body := false, s
	switch s[0] {
	case '-':
		negative, body = true, s[1:]
	case '+':
		body = s[1:]
	}
	if body == "" {
		return Duration{}, errTooShort
	}
	var d Duration
	var perr parseError
	switch {
	case body[0] == 'P' || body[0] == 'p':
		d, perr = parseISODuration(body[1:])
	case strings.ContainsAny(body, "dD") || len(body) < 5:
		d, perr = parseDaysClock(body)
	default:
		d, perr = parseClockDuration(body)
	}
	if perr != errNone {
		return Duration{}, perr
	}
	if negative {
		d = d.Neg()
	}
	return d, errNone
}

func parseClockDuration(s string) (Duration, parseError) {
	t, pos, perr := parseTimePrefix(s, 0)
	if perr != errNone {
		return Duration{}, perr
	}
	if pos != len(s) {
		return Duration{}, errExtraCharacters
	}
	return normalizeDuration(0, t.micros())
}

// parseDaysClock reads "N d[ay[s]][,] [clock]".
func parseDaysClock(s string) (Duration, parseError) {
	pos := 0
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	if pos == 0 {
		return Duration{}, errDurationInvalidNumber
	}
	if pos > 10 {
		return Duration{}, errDurationTooLarge
	}
	days, _ := strconv.ParseInt(s[:pos], 10, 64)
	for pos < len(s) && s[pos] == ' ' {
		pos++
	}
	if pos >= len(s) || (s[pos] != 'd' && s[pos] != 'D') {
		return Duration{}, errDurationInvalidDays
	}
	pos++
	rest := strings.ToLower(s[pos:])
	switch {
	case strings.HasPrefix(rest, "ays"):
		pos += 3
	case strings.HasPrefix(rest, "ay"):
		pos += 2
	}
	if pos < len(s) && s[pos] == ',' {
		pos++
	}
	for pos < len(s) && s[pos] == ' ' {
		pos++
	}
	var clock int64
	if pos < len(s) {
		t, end, perr := parseTimePrefix(s, pos)
		if perr != errNone {
			return Duration{}, perr
		}
		if end != len(s) {
			return Duration{}, errExtraCharacters
		}
		clock = t.micros()
	}
	if days > maxDurationDays {
		return Duration{}, errDurationTooLarge
	}
	return normalizeDuration(days, clock)
}

type isoUnit struct {
	designator byte
	days       int64 // for date components
	micros     int64 // for time components
}

var (
	isoDateUnits = []isoUnit{{'Y', 365, 0}, {'M', 30, 0}, {'W', 7, 0}, {'D', 1, 0}}
	isoTimeUnits = []isoUnit{{'H', 0, 3600 * microsPerSec}, {'M', 0, 60 * microsPerSec}, {'S', 0, microsPerSec}}
)

// parseISODuration reads the part of an ISO 8601 duration after P. Components
// must appear in descending order and only the last may carry a fraction.
func parseISODuration(s string) (Duration, parseError) {
	if s == "" {
		return Duration{}, errTooShort
	}
	var days, micros int64
	units, next := isoDateUnits, 0
	inTime, seenFraction, components := false, false, 0
	pos := 0
	for pos < len(s) {
		c := s[pos]
		if c == 'T' || c == 't' {
			if inTime {
				return Duration{}, errDurationTRepeated
			}
			inTime, units, next = true, isoTimeUnits, 0
			pos++
			if pos == len(s) {
				return Duration{}, errTooShort
			}
			continue
		}
		if seenFraction {
			return Duration{}, errDurationInvalidFraction
		}
		start := pos
		for pos < len(s) && isDigit(s[pos]) {
			pos++
		}
		if pos == start {
			return Duration{}, errDurationInvalidNumber
		}
		if pos-start > 12 {
			return Duration{}, errDurationTooLarge
		}
		whole, _ := strconv.ParseInt(s[start:pos], 10, 64)
		frac, fracDigits := int64(0), 0
		if pos < len(s) && (s[pos] == '.' || s[pos] == ',') {
			pos++
			fs := pos
			for pos < len(s) && isDigit(s[pos]) {
				pos++
			}
			fracDigits = pos - fs
			if fracDigits == 0 || fracDigits > 6 {
				return Duration{}, errDurationInvalidFraction
			}
			frac, _ = strconv.ParseInt(s[fs:pos], 10, 64)
			seenFraction = true
		}
		unitErr := errDurationInvalidDateUnit
		if inTime {
			unitErr = errDurationInvalidTimeUnit
		}
		if pos >= len(s) {
			return Duration{}, unitErr
		}
		u := upper(s[pos])
		i := next
		for i < len(units) && units[i].designator != u {
			i++
		}
		if i == len(units) {
			return Duration{}, unitErr
		}
		next = i + 1
		pos++
		components++

		unitMicros := units[i].micros + units[i].days*microsPerDay
		scale := int64(math.Pow10(6 - fracDigits))
		fracMicros := frac * scale * (unitMicros / microsPerSec)
		if units[i].days > 0 {
			days += whole * units[i].days
		} else {
			perDay := microsPerDay / unitMicros
			days += whole / perDay
			micros += whole % perDay * unitMicros
		}
		days += fracMicros / microsPerDay
		micros += fracMicros % microsPerDay
		if days > maxDurationDays+1 {
			return Duration{}, errDurationTooLarge
		}
	}
	if components == 0 {
		return Duration{}, errTooShort
	}
	return normalizeDuration(days, micros)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
