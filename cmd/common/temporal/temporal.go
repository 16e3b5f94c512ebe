// Package temporal coerces loosely typed input (text, bytes, numbers and native
// values) into canonical dates, times of day, datetimes and durations, and
// checks them against ordering constraints.
package temporal

import (
	"fmt"
	"strings"
)

// Kind names one of the four temporal value families.
type Kind int

const (
	KindDate Kind = iota + 1
	KindTime
	KindDateTime
	KindDuration
)

var kindNames = map[string]Kind{
	"date":      KindDate,
	"time":      KindTime,
	"datetime":  KindDateTime,
	"duration":  KindDuration,
	"timedelta": KindDuration,
}

// ParseKind reads a kind name. "timedelta" is accepted for durations.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "datetime"
	case KindDuration:
		return "duration"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a canonical Date, TimeOfDay, DateTime or Duration.
type Value interface {
	Kind() Kind
	String() string
}

// Parser holds coercion options. The zero value classifies epoch numbers by
// magnitude and reads numeric times and durations as seconds.
type Parser struct {
	Unit Unit
}

// Parse coerces input into the requested kind.
func Parse(kind Kind, input any) (Value, error) { return Parser{}.Parse(kind, input) }

func (p Parser) Parse(kind Kind, input any) (Value, error) {
	switch kind {
	case KindDate:
		return wrap(p.Date(input))
	case KindTime:
		return wrap(p.Time(input))
	case KindDateTime:
		return wrap(p.DateTime(input))
	case KindDuration:
		return wrap(p.Duration(input))
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}

func wrap[T Value](v T, err error) (Value, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Compare orders two values of the same kind.
func Compare(a, b Value) (int, error) {
	switch a := a.(type) {
	case Date:
		if b, ok := b.(Date); ok {
			return a.Compare(b), nil
		}
	case TimeOfDay:
		if b, ok := b.(TimeOfDay); ok {
			return a.Compare(b), nil
		}
	case DateTime:
		if b, ok := b.(DateTime); ok {
			return a.Compare(b), nil
		}
	case Duration:
		if b, ok := b.(Duration); ok {
			return a.Compare(b), nil
		}
	}
	return 0, fmt.Errorf("%w: %s and %s", ErrKindMismatch, kindOf(a), kindOf(b))
}

func kindOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}
