package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		err   string
	}{
		{"hms", "09:15:00", "09:15:00", ""},
		{"hm", "10:10", "10:10:00", ""},
		{"fraction", "10:20:30.400", "10:20:30.400000", ""},
		{"bytes", []byte("10:20:30.400"), "10:20:30.400000", ""},
		{"native", TimeOfDay{4, 8, 16, 0}, "04:08:16", ""},
		{"seconds", 3610, "01:00:10", ""},
		{"float seconds", 3600.5, "01:00:00.500000", ""},
		{"last second", 86400 - 1, "23:59:59", ""},
		{"one digit hour", "4:8:16", "", "Input should be in a valid time format, invalid character in hour [kind=time_parsing,"},
		{"full day", 86400, "", "Input should be in a valid time format, numeric times may not exceed 86,399 seconds"},
		{"negative", -1, "", "time in seconds should be positive"},
		{"nan", math.NaN(), "", "NaN values not permitted"},
		{"too short", "xxx", "", "Input should be in a valid time format, input is too short [kind=time_parsing,"},
		{"no separator", "091500", "", "Input should be in a valid time format, invalid time separator, expected `:`"},
		{"no separator bytes", []byte("091500"), "", "invalid time separator, expected `:`"},
		{"second range", "09:15:90", "", "Input should be in a valid time format, second value is outside expected range of 0-59"},
		{"hour range", "24:00", "", "hour value is outside expected range of 0-23"},
		{"minute range", "23:60", "", "minute value is outside expected range of 0-59"},
		{"trailing", "11:05:00Y", "", "Input should be in a valid time format, unexpected extra characters at the end of the input"},
		{"offset unsupported", "11:05:00Z", "", "unexpected extra characters at the end of the input"},
		{"long fraction", "10:20:30.1234567", "", "second fraction value is more than 6 digits long"},
		{"empty fraction", "10:20:30.", "", "second fraction digits missing after `.`"},
		{"time.Time", time.Now(), "", "Input should be a valid time"},
		{"map", map[string]any{}, "", "Input should be a valid time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.input)
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

func TestParserTimeMilliseconds(t *testing.T) {
	got, err := Parser{Unit: Milliseconds}.Time(3_600_500)
	require.NoError(t, err)
	assert.Equal(t, "01:00:00.500000", got.String())
}

func TestTimeOfDay(t *testing.T) {
	tod, err := NewTimeOfDay(1, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second+4*time.Microsecond, tod.SinceMidnight())
	assert.Equal(t, 1, tod.Compare(Midnight))
	assert.True(t, Midnight.IsMidnight())

	_, err = NewTimeOfDay(24, 0, 0, 0)
	assert.Error(t, err)
}
