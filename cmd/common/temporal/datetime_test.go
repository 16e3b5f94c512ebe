package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		err   string
	}{
		{"float seconds", 1_494_012_444.883_309, "2017-05-05T19:27:24.883309", ""},
		{"seconds", 1_494_012_444, "2017-05-05T19:27:24", ""},
		{"milliseconds", 1_494_012_444_000, "2017-05-05T19:27:24", ""},
		{"naive", "2012-04-23T09:15:00", "2012-04-23T09:15:00", ""},
		{"utc", "2012-04-23T09:15:00Z", "2012-04-23T09:15:00Z", ""},
		{"half hour offset", "2012-04-23T10:20:30.400+02:30", "2012-04-23T10:20:30.400000+02:30", ""},
		{"positive offset", "2012-04-23T10:20:30.400+02:00", "2012-04-23T10:20:30.400000+02:00", ""},
		{"negative offset", "2012-04-23T10:20:30.400-02:00", "2012-04-23T10:20:30.400000-02:00", ""},
		{"compact offset", "2012-04-23 10:20:30-0200", "2012-04-23T10:20:30-02:00", ""},
		{"hour offset", "2012-04-23_10:20+05", "2012-04-23T10:20:00+05:00", ""},
		{"bytes", []byte("2012-04-23T10:20:30.400-02:00"), "2012-04-23T10:20:30.400000-02:00", ""},
		{"date only", "2012-04-23", "2012-04-23T00:00:00", ""},
		{"native date", Date{2017, 5, 5}, "2017-05-05T00:00:00", ""},
		{"native", NewDateTime(Date{2017, 5, 5}, Midnight), "2017-05-05T00:00:00", ""},
		{"epoch", 0, "1970-01-01T00:00:00", ""},
		{"just before watershed", 19_999_999_999, "2603-10-11T11:33:19", ""},
		{"just after watershed", 20_000_000_001, "1970-08-20T11:33:20.001000", ""},
		{"nowish seconds", 1_549_316_052, "2019-02-04T21:34:12", ""},
		{"nowish milliseconds", 1_549_316_052_104, "2019-02-04T21:34:12.104000", ""},
		{"float text", "1494012444.883309", "", "Input should be a valid datetime, invalid date separator"},
		{"int text", "1494012444", "", "Input should be a valid datetime, invalid date separator"},
		{"int bytes", []byte("1494012444"), "", "Input should be a valid datetime, invalid date separator"},
		{"negative text", "-1494012444000.883309", "", "Input should be a valid datetime, invalid character in year"},
		{"short fields", "2012-4-9 4:8:16", "", "Input should be a valid datetime, invalid character in month"},
		{"bad year", "x20120423091500", "", "Input should be a valid datetime, invalid character in year"},
		{"bad day first", "2012-04-56T09:15:90", "", "Input should be a valid datetime, day value is outside expected range"},
		{"offset too large", "2012-04-23T11:05:00-25:00", "", "Input should be a valid datetime, timezone offset must be less than 24 hours"},
		{"bad separator", "2012-04-23X11:05:00", "", "invalid datetime separator, expected `T`, `t`, `_` or space"},
		{"bad tz sign", "2012-04-23T11:05:00Y", "", "invalid timezone sign"},
		{"bad tz hour", "2012-04-23T11:05:00+x1", "", "invalid timezone hour"},
		{"microseconds", 1_549_316_052_104_324, "", "Input should be a valid datetime, dates after 9999"},
		{"nanoseconds", 1_549_316_052_104_324_096, "", "Input should be a valid datetime, dates after 9999"},
		{"infinity text", "infinity", "", "Input should be a valid datetime, input is too short"},
		{"inf", math.Inf(1), "", "Input should be a valid datetime, dates after 9999"},
		{"minus inf", math.Inf(-1), "", "Input should be a valid datetime, dates before 1600"},
		{"huge float", 1e50, "", "Input should be a valid datetime, dates after 9999"},
		{"nan", math.NaN(), "", "Input should be a valid datetime, NaN values not permitted"},
		{"before 1600", -20_000_000_000_000, "", "dates before 1600 are not supported as unix timestamps"},
		{"duration", time.Second, "", "Input should be a valid datetime"},
		{"slice", []string{}, "", "Input should be a valid datetime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.input)
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

func TestParseDateTimeOffset(t *testing.T) {
	dt, err := ParseDateTime("2012-04-23T10:20:30.400+02:30")
	require.NoError(t, err)
	off, aware := dt.Offset()
	require.True(t, aware)
	assert.Equal(t, 150, off.Minutes())
	assert.Equal(t, 400_000, dt.TimeOfDay().Microsecond())

	want := time.Date(2012, 4, 23, 7, 50, 30, 400_000_000, time.UTC)
	assert.True(t, dt.In(time.Local).Equal(want))
}

func TestParseDateTimeFromTime(t *testing.T) {
	zone := time.FixedZone("x", -90*60)
	dt, err := ParseDateTime(time.Date(2020, 1, 2, 3, 4, 5, 6_789, zone))
	require.NoError(t, err)
	assert.Equal(t, "2020-01-02T03:04:05.000006-01:30", dt.String())
}

func TestDateTimeCompare(t *testing.T) {
	a, _ := ParseDateTime("2020-01-01T12:00:00+01:00")
	b, _ := ParseDateTime("2020-01-01T11:00:00Z")
	c, _ := ParseDateTime("2020-01-01T11:30:00")
	assert.Equal(t, 0, a.Compare(b))
	assert.Equal(t, 1, c.Compare(b))
	assert.Equal(t, -1, b.Compare(c))
}

func TestClassifyEpoch(t *testing.T) {
	assert.Equal(t, Seconds, ClassifyEpoch(19_999_999_999))
	assert.Equal(t, Seconds, ClassifyEpoch(-20_000_000_000))
	assert.Equal(t, Milliseconds, ClassifyEpoch(20_000_000_001))
	assert.Equal(t, Milliseconds, ClassifyEpoch(-20_000_000_001))
	assert.Equal(t, Milliseconds, ClassifyEpoch(1e18))
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"s": Seconds, "MS": Milliseconds, "µs": Microseconds, "nanoseconds": Nanoseconds, "auto": UnitAuto} {
		got, err := ParseUnit(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseUnit("fortnights")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}
