package schema

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/gigurra/tempus/cmd/common/temporal"
)

// Rule is a boolean expr-lang expression over a coerced record. Dates and
// datetimes appear as time.Time (naive values read as UTC), times of day and
// durations as time.Duration, and now is the validation clock.
type Rule struct {
	Source  string
	program *vm.Program
}

// CompileRule type checks src against the fields of s.
func (s *Schema) CompileRule(src string) (*Rule, error) {
	env := map[string]any{"now": time.Time{}}
	for _, f := range s.Fields {
		switch f.Kind {
		case temporal.KindDate, temporal.KindDateTime:
			env[f.Name] = time.Time{}
		default:
			env[f.Name] = time.Duration(0)
		}
	}
	program, err := expr.Compile(src,
		expr.Env(env),
		expr.AsBool(),
		expr.Timezone("UTC"),
		expr.DisableBuiltin("now"),
	)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", src, err)
	}
	return &Rule{Source: src, program: program}, nil
}

// Eval runs the rule against rec. A false result is reported as a FieldError
// of kind rule with an empty Loc.
func (r *Rule) Eval(rec Record, now time.Time) error {
	env := map[string]any{"now": now.UTC()}
	for name, v := range rec {
		x, err := exprValue(v)
		if err != nil {
			return ValidationErrors{{Loc: []string{name}, Err: &temporal.ValidationError{
				Kind:    RuleFailed,
				Message: err.Error(),
				Input:   v.String(),
			}}}
		}
		env[name] = x
	}
	out, err := expr.Run(r.program, env)
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Source, err)
	}
	if out.(bool) {
		return nil
	}
	return ValidationErrors{{Err: &temporal.ValidationError{
		Kind:    RuleFailed,
		Message: "Record should satisfy " + r.Source,
		Input:   r.Source,
	}}}
}

func exprValue(v temporal.Value) (any, error) {
	switch v := v.(type) {
	case temporal.Date:
		return v.In(time.UTC), nil
	case temporal.DateTime:
		return v.In(time.UTC), nil
	case temporal.TimeOfDay:
		return v.SinceMidnight(), nil
	case temporal.Duration:
		d, ok := v.Std()
		if !ok {
			return nil, fmt.Errorf("duration %s is too large for rule expressions", v)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}

// Check validates raw against the schema and, when every field is valid, the
// rules. The returned error is a ValidationErrors unless something other than
// validation went wrong.
func (s *Schema) Check(raw map[string]any, now time.Time, rules ...*Rule) (Record, error) {
	rec, err := s.Validate(raw, now)
	if err != nil {
		return rec, err
	}
	var errs ValidationErrors
	for _, r := range rules {
		err := r.Eval(rec, now)
		if verrs, ok := err.(ValidationErrors); ok {
			errs = append(errs, verrs...)
		} else if err != nil {
			return rec, err
		}
	}
	if len(errs) > 0 {
		return rec, errs
	}
	return rec, nil
}
