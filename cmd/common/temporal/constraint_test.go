package temporal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDateBounds(t *testing.T) {
	tests := []struct {
		op      string
		msg     string
		ok      string
		failing string
	}{
		{"gt", "greater than", "2020-01-02", "2019-12-31"},
		{"gt", "greater than", "2020-01-02", "2020-01-01"},
		{"ge", "greater than or equal to", "2020-01-02", "2019-12-31"},
		{"ge", "greater than or equal to", "2020-01-01", "2019-12-31"},
		{"lt", "less than", "2019-12-31", "2020-01-02"},
		{"lt", "less than", "2019-12-31", "2020-01-01"},
		{"le", "less than or equal to", "2019-12-31", "2020-01-02"},
		{"le", "less than or equal to", "2020-01-01", "2020-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.op+" "+tt.failing, func(t *testing.T) {
			c, err := ParseConstraint(KindDate, tt.op+"=2020-01-01")
			require.NoError(t, err)

			ok, _ := ParseDate(tt.ok)
			assert.NoError(t, c.Check(ok, fixedNow))

			bad, _ := ParseDate(tt.failing)
			err = c.Check(bad, fixedNow)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Input should be "+tt.msg+" 2020-01-01")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, map[string]any{tt.op: "2020-01-01"}, verr.Context)
		})
	}
}

func TestPastFutureDates(t *testing.T) {
	past, err := ParseConstraint(KindDate, "past")
	require.NoError(t, err)
	future, err := ParseConstraint(KindDate, "future")
	require.NoError(t, err)

	today := DateOf(fixedNow)
	tomorrow := DateOf(fixedNow.AddDate(0, 0, 1))
	yesterday := DateOf(fixedNow.AddDate(0, 0, -1))

	assert.NoError(t, past.Check(yesterday, fixedNow))
	assert.NoError(t, future.Check(tomorrow, fixedNow))

	for _, d := range []Date{today, tomorrow} {
		var verr *ValidationError
		require.ErrorAs(t, past.Check(d, fixedNow), &verr)
		assert.Equal(t, DatePast, verr.Kind)
		assert.Equal(t, "Date should be in the past", verr.Message)
	}
	for _, d := range []Date{today, yesterday} {
		var verr *ValidationError
		require.ErrorAs(t, future.Check(d, fixedNow), &verr)
		assert.Equal(t, DateFuture, verr.Kind)
		assert.Equal(t, "Date should be in the future", verr.Message)
	}
}

func TestPastFutureDateTimes(t *testing.T) {
	past, _ := ParseConstraint(KindDateTime, "past")
	future, _ := ParseConstraint(KindDateTime, "future")

	earlier, _ := ParseDateTime("2024-06-15T13:59:00+02:00")
	later, _ := ParseDateTime("2024-06-15T12:00:01")
	now := DateTimeOf(fixedNow)

	assert.NoError(t, past.Check(earlier, fixedNow))
	assert.NoError(t, future.Check(later, fixedNow))

	var verr *ValidationError
	require.ErrorAs(t, past.Check(now, fixedNow), &verr)
	assert.Equal(t, DatetimePast, verr.Kind)
	require.ErrorAs(t, future.Check(now, fixedNow), &verr)
	assert.Equal(t, DatetimeFuture, verr.Kind)
	assert.Equal(t, "Input should be in the future", verr.Message)
}

func TestConstraintErrors(t *testing.T) {
	_, err := ParseConstraint(KindDuration, "past")
	assert.ErrorIs(t, err, ErrUnsupportedConstraint)

	_, err = ParseConstraint(KindTime, "between=1")
	assert.ErrorIs(t, err, ErrUnsupportedConstraint)

	_, err = ParseConstraint(KindDate, "gt=tomorrow")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	c, _ := ParseConstraint(KindDate, "gt=2020-01-01")
	tod, _ := ParseTime("10:00")
	assert.ErrorIs(t, c.Check(tod, fixedNow), ErrKindMismatch)
}

func TestConstraintsCheckFirstFailure(t *testing.T) {
	ge, _ := ParseConstraint(KindDuration, "ge=PT1M")
	le, _ := ParseConstraint(KindDuration, "le=PT1H")
	cs := Constraints{ge, le}
	assert.Equal(t, "ge=PT1M, le=PT1H", cs.String())

	ok, _ := ParseDuration("00:30:00")
	assert.NoError(t, cs.Check(ok, fixedNow))

	long, _ := ParseDuration("02:00:00")
	var verr *ValidationError
	require.ErrorAs(t, cs.Check(long, fixedNow), &verr)
	assert.Equal(t, LessThanEqual, verr.Kind)
	assert.Equal(t, "Input should be less than or equal to PT1H", verr.Message)
}

func TestValidationErrorJSON(t *testing.T) {
	_, err := ParseDateTime(json.Number("NaN"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	b, err := json.Marshal(verr)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "datetime_parsing",
		"message": "Input should be a valid datetime, NaN values not permitted",
		"input_value": "NaN",
		"context": {"error": "NaN values not permitted"}
	}`, string(b))
}
