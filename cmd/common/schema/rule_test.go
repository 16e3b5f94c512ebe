package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const window = `
start: datetime
end:   datetime
grace: duration
`

func TestCompileRule(t *testing.T) {
	s, err := Parse("window", window)
	require.NoError(t, err)

	_, err = s.CompileRule("end > start")
	require.NoError(t, err)

	_, err = s.CompileRule("end + 1")
	assert.Error(t, err, "non boolean rules must be rejected")

	_, err = s.CompileRule("unknown > start")
	assert.Error(t, err)
}

func TestCheck_Rules(t *testing.T) {
	s, err := Parse("window", window)
	require.NoError(t, err)
	order, err := s.CompileRule("end > start")
	require.NoError(t, err)
	grace, err := s.CompileRule(`grace <= duration("1h")`)
	require.NoError(t, err)
	past, err := s.CompileRule("end < now")
	require.NoError(t, err)

	good := map[string]any{"start": "2024-01-01T10:00:00", "end": "2024-01-01T11:00:00Z", "grace": "PT30M"}
	rec, err := s.Check(good, now, order, grace, past)
	require.NoError(t, err)
	assert.Len(t, rec, 3)

	bad := map[string]any{"start": "2024-01-01T12:00:00Z", "end": "2024-01-01T11:00:00Z", "grace": "PT2H"}
	_, err = s.Check(bad, now, order, grace, past)
	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 2)
	assert.Equal(t, RuleFailed, errs[0].Err.Kind)
	assert.Equal(t, "Record should satisfy end > start", errs[0].Err.Message)
	assert.Empty(t, errs[0].Loc)
	assert.Equal(t, `Record should satisfy grace <= duration("1h")`, errs[1].Err.Message)
}

func TestCheck_RulesSkippedOnFieldErrors(t *testing.T) {
	s, err := Parse("window", window)
	require.NoError(t, err)
	order, err := s.CompileRule("end > start")
	require.NoError(t, err)

	_, err = s.Check(map[string]any{"start": "x", "end": "2024-01-01", "grace": "P1D"}, now, order)
	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"start"}, errs[0].Loc)
}

func TestRule_PinnedNow(t *testing.T) {
	s, err := Parse("window", window)
	require.NoError(t, err)
	r, err := s.CompileRule("end < now")
	require.NoError(t, err)

	rec, err := s.Validate(map[string]any{"start": "2024-01-01", "end": "2024-06-01", "grace": 0}, now)
	require.NoError(t, err)
	assert.NoError(t, r.Eval(rec, now))
	assert.Error(t, r.Eval(rec, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
}
