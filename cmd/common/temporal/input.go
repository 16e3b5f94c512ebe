package temporal

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// number is a numeric input: an exact integer when it fits in int64, an
// arbitrary precision integer when it does not, or a float.
type number struct {
	float bool
	i     int64
	f     float64
	big   *big.Int
}

// numberOf extracts a number from the numeric Go types accepted as input.
func numberOf(input any) (number, bool) {
	switch v := input.(type) {
	case int:
		return number{i: int64(v)}, true
	case int8:
		return number{i: int64(v)}, true
	case int16:
		return number{i: int64(v)}, true
	case int32:
		return number{i: int64(v)}, true
	case int64:
		return number{i: v}, true
	case uint:
		return unsignedNumber(uint64(v)), true
	case uint8:
		return number{i: int64(v)}, true
	case uint16:
		return number{i: int64(v)}, true
	case uint32:
		return number{i: int64(v)}, true
	case uint64:
		return unsignedNumber(v), true
	case float32:
		return number{float: true, f: float64(v)}, true
	case float64:
		return number{float: true, f: v}, true
	case *big.Int:
		if v == nil {
			return number{}, false
		}
		if v.IsInt64() {
			return number{i: v.Int64()}, true
		}
		return number{big: v}, true
	case json.Number:
		return parseNumber(string(v))
	}
	return number{}, false
}

func unsignedNumber(v uint64) number {
	if v > math.MaxInt64 {
		return number{big: new(big.Int).SetUint64(v)}
	}
	return number{i: int64(v)}
}

// parseNumber reads a decimal literal. Integer literals stay exact.
func parseNumber(s string) (number, bool) {
	if !strings.ContainsAny(s, ".eE") && !strings.EqualFold(strings.TrimLeft(s, "+-"), "inf") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return number{i: i}, true
		}
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return number{big: b}, true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return number{}, false
	}
	return number{float: true, f: f}, true
}

func (n number) sign() int {
	switch {
	case n.big != nil:
		return n.big.Sign()
	case n.float:
		switch {
		case n.f < 0:
			return -1
		case n.f > 0:
			return 1
		}
		return 0
	case n.i < 0:
		return -1
	case n.i > 0:
		return 1
	}
	return 0
}

func (n number) approx() float64 {
	switch {
	case n.big != nil:
		f, _ := new(big.Float).SetInt(n.big).Float64()
		return f
	case n.float:
		return n.f
	}
	return float64(n.i)
}

func (n number) nonFinite() parseError {
	if !n.float {
		return errNone
	}
	switch {
	case math.IsNaN(n.f):
		return errNaN
	case math.IsInf(n.f, 1):
		return errDateTooLarge
	case math.IsInf(n.f, -1):
		return errDateTooSmall
	}
	return errNone
}

// abs returns the magnitude of n.
func (n number) abs() number {
	switch {
	case n.big != nil:
		return number{big: new(big.Int).Abs(n.big)}
	case n.float:
		return number{float: true, f: math.Abs(n.f)}
	case n.i == math.MinInt64:
		return number{big: new(big.Int).Neg(big.NewInt(n.i))}
	case n.i < 0:
		return number{i: -n.i}
	}
	return n
}

// textOf extracts text from string-like input.
func textOf(input any) (string, bool, parseError) {
	switch v := input.(type) {
	case string:
		return v, true, errNone
	case []byte:
		if !utf8.Valid(v) {
			return "", true, errInvalidUTF8
		}
		return string(v), true, errNone
	}
	return "", false, errNone
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// digits reads a fixed-width run of ASCII digits from s at pos.
func digits(s string, pos, width int) (int, bool) {
	if pos+width > len(s) {
		return 0, false
	}
	v := 0
	for i := pos; i < pos+width; i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		v = v*10 + int(s[i]-'0')
	}
	return v, true
}
