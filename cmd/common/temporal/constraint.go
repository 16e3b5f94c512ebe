package temporal

import (
	"fmt"
	"strings"
	"time"
)

// Op is a constraint operator.
type Op int

const (
	Gt Op = iota + 1
	Ge
	Lt
	Le
	Past
	Future
)

var opNames = map[Op]string{Gt: "gt", Ge: "ge", Lt: "lt", Le: "le", Past: "past", Future: "future"}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp reads gt, ge, lt, le, past or future.
func ParseOp(s string) (Op, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for op, name := range opNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown operator %q", ErrUnsupportedConstraint, s)
}

// Constraint restricts a coerced value by ordering against a bound or against
// the current moment.
type Constraint struct {
	Op    Op
	Bound Value
}

// Bound returns an ordering constraint against bound.
func Bound(op Op, bound Value) (Constraint, error) {
	if op < Gt || op > Le {
		return Constraint{}, fmt.Errorf("%w: %s needs no bound", ErrUnsupportedConstraint, op)
	}
	if bound == nil {
		return Constraint{}, fmt.Errorf("%w: %s without a bound", ErrUnsupportedConstraint, op)
	}
	return Constraint{Op: op, Bound: bound}, nil
}

// Relative returns a past or future constraint for kind. Only dates and
// datetimes have a notion of now.
func Relative(op Op, kind Kind) (Constraint, error) {
	if op != Past && op != Future {
		return Constraint{}, fmt.Errorf("%w: %s needs a bound", ErrUnsupportedConstraint, op)
	}
	if kind != KindDate && kind != KindDateTime {
		return Constraint{}, fmt.Errorf("%w: %s on %s", ErrUnsupportedConstraint, op, kind)
	}
	return Constraint{Op: op}, nil
}

// ParseConstraint reads "past", "future" or "op=literal", coercing the literal
// bound as kind.
func ParseConstraint(kind Kind, s string) (Constraint, error) {
	name, literal, hasBound := strings.Cut(s, "=")
	op, err := ParseOp(name)
	if err != nil {
		return Constraint{}, err
	}
	if !hasBound {
		return Relative(op, kind)
	}
	bound, err := Parse(kind, strings.TrimSpace(literal))
	if err != nil {
		return Constraint{}, fmt.Errorf("bound for %s: %w", op, err)
	}
	return Bound(op, bound)
}

func (c Constraint) String() string {
	if c.Op == Past || c.Op == Future {
		return c.Op.String()
	}
	return c.Op.String() + "=" + c.Bound.String()
}

var boundText = map[Op]struct {
	kind ErrorKind
	text string
}{
	Gt: {GreaterThan, "greater than"},
	Ge: {GreaterThanEqual, "greater than or equal to"},
	Lt: {LessThan, "less than"},
	Le: {LessThanEqual, "less than or equal to"},
}

// Check reports a *ValidationError when v violates c. now anchors past and
// future; for dates the comparison is against now's calendar day in now's
// location.
func (c Constraint) Check(v Value, now time.Time) error {
	switch c.Op {
	case Past, Future:
		return c.checkRelative(v, now)
	}
	cmp, err := Compare(v, c.Bound)
	if err != nil {
		return err
	}
	var ok bool
	switch c.Op {
	case Gt:
		ok = cmp > 0
	case Ge:
		ok = cmp >= 0
	case Lt:
		ok = cmp < 0
	case Le:
		ok = cmp <= 0
	}
	if ok {
		return nil
	}
	b := boundText[c.Op]
	return &ValidationError{
		Kind:    b.kind,
		Message: fmt.Sprintf("Input should be %s %s", b.text, c.Bound),
		Input:   v,
		Context: map[string]any{c.Op.String(): c.Bound.String()},
	}
}

func (c Constraint) checkRelative(v Value, now time.Time) error {
	var cmp int
	var kind ErrorKind
	var message string
	switch v := v.(type) {
	case Date:
		cmp = v.Compare(DateOf(now))
		kind, message = DatePast, "Date should be in the past"
		if c.Op == Future {
			kind, message = DateFuture, "Date should be in the future"
		}
	case DateTime:
		cmp = v.In(now.Location()).Compare(now)
		kind, message = DatetimePast, "Input should be in the past"
		if c.Op == Future {
			kind, message = DatetimeFuture, "Input should be in the future"
		}
	default:
		return fmt.Errorf("%w: %s on %s", ErrUnsupportedConstraint, c.Op, kindOf(v))
	}
	if (c.Op == Past && cmp < 0) || (c.Op == Future && cmp > 0) {
		return nil
	}
	return &ValidationError{Kind: kind, Message: message, Input: v}
}

// Constraints is a conjunction checked in order.
type Constraints []Constraint

// Check returns the first violation, or nil.
func (cs Constraints) Check(v Value, now time.Time) error {
	for _, c := range cs {
		if err := c.Check(v, now); err != nil {
			return err
		}
	}
	return nil
}

func (cs Constraints) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
