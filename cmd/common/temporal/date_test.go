package temporal

import (
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, y int, m time.Month, d int) Date {
	t.Helper()
	v, err := NewDate(y, m, d)
	require.NoError(t, err)
	return v
}

func TestParseDate(t *testing.T) {
	huge, _ := new(big.Int).SetString("1"+strings.Repeat("0", 100), 10)
	tests := []struct {
		name  string
		input any
		want  string
		err   string
	}{
		{"seconds", 1_493_942_400, "2017-05-05", ""},
		{"milliseconds", 1_493_942_400_000, "2017-05-05", ""},
		{"epoch", 0, "1970-01-01", ""},
		{"text", "2012-04-23", "2012-04-23", ""},
		{"bytes", []byte("2012-04-23"), "2012-04-23", ""},
		{"native date", Date{2012, 4, 9}, "2012-04-09", ""},
		{"midnight datetime", NewDateTime(Date{2012, 4, 9}, Midnight), "2012-04-09", ""},
		{"midnight datetime text", "2012-04-09T00:00:00Z", "2012-04-09", ""},
		{"midnight time.Time", time.Date(2012, 4, 9, 0, 0, 0, 0, time.UTC), "2012-04-09", ""},
		{"just before watershed", 19_999_958_400, "2603-10-11", ""},
		{"nowish seconds", 1_549_238_400, "2019-02-04", ""},
		{"nowish milliseconds", 1_549_238_400_000, "2019-02-04", ""},
		{"inexact datetime", NewDateTime(Date{2012, 4, 9}, TimeOfDay{hour: 12, minute: 15}),
			"", "Datetimes provided to dates should have zero time - e.g. be exact dates"},
		{"inexact time.Time", time.Date(2012, 4, 9, 12, 15, 0, 0, time.UTC),
			"", "Datetimes provided to dates should have zero time"},
		{"inexact text", "2012-04-09T12:15:00",
			"", "Datetimes provided to dates should have zero time"},
		{"just after watershed", 20_000_044_800, "", "kind=date_from_datetime_inexact,"},
		{"too short", "x20120423", "", "Input should be a valid date or datetime, input is too short"},
		{"bad day", "2012-04-56", "", "Input should be a valid date or datetime, day value is outside expected range"},
		{"not a leap year", "2019-02-29", "", "day value is outside expected range"},
		{"bad month", "2012-13-01", "", "month value is outside expected range of 1-12"},
		{"trailing junk", "2012-04-23x", "", "unexpected extra characters at the end of the input"},
		{"microseconds", 1_549_238_400_000_000, "", "Input should be a valid date or datetime, dates after 9999"},
		{"nanoseconds", 1_549_238_400_000_000_000, "", "Input should be a valid date or datetime, dates after 9999"},
		{"infinity text", "infinity", "", "Input should be a valid date or datetime, input is too short"},
		{"inf", math.Inf(1), "", "Input should be a valid date or datetime, dates after 9999"},
		{"huge int", huge, "", "Input should be a valid date or datetime, dates after 9999"},
		{"huge float", 1e300, "", "Input should be a valid date or datetime, dates after 9999"},
		{"minus inf", math.Inf(-1), "", "Input should be a valid date or datetime, dates before 1600"},
		{"nan", math.NaN(), "", "Input should be a valid date or datetime, NaN values not permitted"},
		{"slice", []int{}, "", "Input should be a valid date"},
		{"invalid utf8", []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x81, 0x81, 0x81}, "", "kind=date_parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseDateErrorKinds(t *testing.T) {
	tests := []struct {
		input any
		kind  ErrorKind
	}{
		{"2012-04-56", DateParsing},
		{math.NaN(), DateFromDatetimeParsing},
		{1_549_238_400_000_000, DateFromDatetimeParsing},
		{1_494_012_444, DateFromDatetimeInexact},
		{map[string]any{}, DateType},
	}
	for _, tt := range tests {
		_, err := ParseDate(tt.input)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "input %v", tt.input)
		assert.Equal(t, tt.kind, verr.Kind, "input %v", tt.input)
	}
}

func TestParseDateNaNContext(t *testing.T) {
	_, err := ParseDate(math.NaN())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Input should be a valid date or datetime, NaN values not permitted", verr.Message)
	assert.Equal(t, map[string]any{"error": "NaN values not permitted"}, verr.Context)
}

func TestParserDateExplicitUnit(t *testing.T) {
	got, err := Parser{Unit: Microseconds}.Date(1_549_238_400_000_000)
	require.NoError(t, err)
	assert.Equal(t, "2019-02-04", got.String())

	got, err = Parser{Unit: Nanoseconds}.Date(int64(1_549_238_400_000_000_000))
	require.NoError(t, err)
	assert.Equal(t, "2019-02-04", got.String())
}

func TestNewDate(t *testing.T) {
	_, err := NewDate(2020, time.February, 30)
	assert.Error(t, err)
	d := mustDate(t, 2020, time.February, 29)
	assert.Equal(t, "2020-02-29", d.String())
	assert.Equal(t, 1, d.Compare(mustDate(t, 2020, time.February, 28)))
	assert.Equal(t, -1, d.Compare(mustDate(t, 2021, time.January, 1)))
	assert.Equal(t, 0, d.Compare(d))
}

func TestDateText(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("1996-01-22")))
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1996-01-22", string(b))
	assert.Error(t, d.UnmarshalText([]byte("1996-01-32")))
}
