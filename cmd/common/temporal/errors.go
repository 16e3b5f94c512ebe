package temporal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/dustin/go-humanize"
)

// ErrorKind is the stable, machine readable identifier of a validation failure.
type ErrorKind string

const (
	DateParsing             ErrorKind = "date_parsing"
	DateFromDatetimeParsing ErrorKind = "date_from_datetime_parsing"
	DateFromDatetimeInexact ErrorKind = "date_from_datetime_inexact"
	DateType                ErrorKind = "date_type"
	TimeParsing             ErrorKind = "time_parsing"
	TimeType                ErrorKind = "time_type"
	DatetimeParsing         ErrorKind = "datetime_parsing"
	DatetimeType            ErrorKind = "datetime_type"
	TimedeltaParsing        ErrorKind = "timedelta_parsing"
	TimedeltaType           ErrorKind = "timedelta_type"
	GreaterThan             ErrorKind = "greater_than"
	GreaterThanEqual        ErrorKind = "greater_than_equal"
	LessThan                ErrorKind = "less_than"
	LessThanEqual           ErrorKind = "less_than_equal"
	DatePast                ErrorKind = "date_past"
	DateFuture              ErrorKind = "date_future"
	DatetimePast            ErrorKind = "datetime_past"
	DatetimeFuture          ErrorKind = "datetime_future"
)

var (
	ErrUnknownKind           = errors.New("unknown temporal kind")
	ErrUnknownUnit           = errors.New("unknown unit")
	ErrUnsupportedConstraint = errors.New("constraint not supported for kind")
	ErrKindMismatch          = errors.New("values of different kinds cannot be compared")
)

const inexactDateMessage = "Datetimes provided to dates should have zero time - e.g. be exact dates"

// ValidationError is a recoverable failure to coerce or constrain a single input.
type ValidationError struct {
	Kind    ErrorKind
	Message string
	Input   any
	Context map[string]any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s [kind=%s, input_value=%s]", e.Message, e.Kind, Repr(e.Input))
}

func (e *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    ErrorKind      `json:"kind"`
		Message string         `json:"message"`
		Input   any            `json:"input_value"`
		Context map[string]any `json:"context,omitempty"`
	}{e.Kind, e.Message, JSONInput(e.Input), e.Context})
}

// Repr renders an input value the way diagnostics quote it.
func Repr(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case []byte:
		return "b" + strconv.Quote(string(v))
	case Value:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// JSONInput returns a representation of v that encoding/json can always marshal.
func JSONInput(v any) any {
	switch v := v.(type) {
	case json.Number:
		if f, err := v.Float64(); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return string(v)
		}
		return v
	case nil, string, bool, *big.Int, map[string]any, []any,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case []byte:
		return string(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Repr(v)
		}
		return v
	case float32:
		return JSONInput(float64(v))
	default:
		return Repr(v)
	}
}

// parseError is a grammar or range failure detected while parsing raw input. Public
// entry points wrap it into a ValidationError carrying the kind's message prefix.
type parseError int

const (
	errNone parseError = iota
	errTooShort
	errExtraCharacters
	errInvalidUTF8
	errInvalidCharYear
	errInvalidCharDateSep
	errInvalidCharMonth
	errInvalidCharDay
	errOutOfRangeMonth
	errOutOfRangeDay
	errInvalidCharDateTimeSep
	errInvalidCharHour
	errInvalidCharTimeSep
	errInvalidCharMinute
	errInvalidCharSecond
	errOutOfRangeHour
	errOutOfRangeMinute
	errOutOfRangeSecond
	errSecondFractionTooLong
	errSecondFractionMissing
	errInvalidCharTzSign
	errInvalidCharTzHour
	errInvalidCharTzMinute
	errOutOfRangeTzMinute
	errOutOfRangeTz
	errNaN
	errDateTooLarge
	errDateTooSmall
	errTimeNegative
	errTimeTooLarge
	errDurationTooLarge
	errDurationInvalidNumber
	errDurationTRepeated
	errDurationInvalidFraction
	errDurationInvalidTimeUnit
	errDurationInvalidDateUnit
	errDurationInvalidDays
)

var parseErrorText = [...]string{
	errNone:                    "",
	errTooShort:                "input is too short",
	errExtraCharacters:         "unexpected extra characters at the end of the input",
	errInvalidUTF8:             "input is not valid UTF-8",
	errInvalidCharYear:         "invalid character in year",
	errInvalidCharDateSep:      "invalid date separator, expected `-`",
	errInvalidCharMonth:        "invalid character in month",
	errInvalidCharDay:          "invalid character in day",
	errOutOfRangeMonth:         "month value is outside expected range of 1-12",
	errOutOfRangeDay:           "day value is outside expected range",
	errInvalidCharDateTimeSep:  "invalid datetime separator, expected `T`, `t`, `_` or space",
	errInvalidCharHour:         "invalid character in hour",
	errInvalidCharTimeSep:      "invalid time separator, expected `:`",
	errInvalidCharMinute:       "invalid character in minute",
	errInvalidCharSecond:       "invalid character in second",
	errOutOfRangeHour:          "hour value is outside expected range of 0-23",
	errOutOfRangeMinute:        "minute value is outside expected range of 0-59",
	errOutOfRangeSecond:        "second value is outside expected range of 0-59",
	errSecondFractionTooLong:   "second fraction value is more than 6 digits long",
	errSecondFractionMissing:   "second fraction digits missing after `.`",
	errInvalidCharTzSign:       "invalid timezone sign",
	errInvalidCharTzHour:       "invalid timezone hour",
	errInvalidCharTzMinute:     "invalid timezone minute",
	errOutOfRangeTzMinute:      "timezone minute value is outside expected range of 0-59",
	errOutOfRangeTz:            "timezone offset must be less than 24 hours",
	errNaN:                     "NaN values not permitted",
	errDateTooLarge:            "dates after 9999 are not supported as unix timestamps",
	errDateTooSmall:            "dates before 1600 are not supported as unix timestamps",
	errTimeNegative:            "time in seconds should be positive",
	errTimeTooLarge:            "numeric times may not exceed " + humanize.Comma(secondsPerDay-1) + " seconds",
	errDurationTooLarge:        "durations may not exceed " + humanize.Comma(maxDurationDays) + " days",
	errDurationInvalidNumber:   "invalid digit in duration",
	errDurationTRepeated:       "`t` character repeated in duration",
	errDurationInvalidFraction: "invalid or unexpected fraction in duration",
	errDurationInvalidTimeUnit: "invalid time unit in duration",
	errDurationInvalidDateUnit: "invalid date unit in duration",
	errDurationInvalidDays:     `"day" identifier in duration not correctly formatted`,
}

func (e parseError) Error() string { return parseErrorText[e] }

func parsingError(kind ErrorKind, prefix string, input any, perr parseError) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: prefix + perr.Error(),
		Input:   input,
		Context: map[string]any{"error": perr.Error()},
	}
}

func typeError(kind ErrorKind, message string, input any) *ValidationError {
	return &ValidationError{Kind: kind, Message: message, Input: input}
}
