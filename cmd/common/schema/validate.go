package schema

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gigurra/tempus/cmd/common/temporal"
	"github.com/samber/lo"
)

const (
	Missing    temporal.ErrorKind = "missing"
	RuleFailed temporal.ErrorKind = "rule"
)

// FieldError is a validation failure located inside a record.
type FieldError struct {
	Loc []string
	Err *temporal.ValidationError
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s\n  %s", e.Path(), e.Err)
}

// Path joins Loc with dots. Record level failures have an empty Loc.
func (e FieldError) Path() string {
	if len(e.Loc) == 0 {
		return "(record)"
	}
	return strings.Join(e.Loc, ".")
}

func (e FieldError) MarshalJSON() ([]byte, error) {
	loc := e.Loc
	if loc == nil {
		loc = []string{}
	}
	return json.Marshal(struct {
		Kind    temporal.ErrorKind `json:"kind"`
		Loc     []string           `json:"loc"`
		Message string             `json:"message"`
		Input   any                `json:"input_value"`
		Context map[string]any     `json:"context,omitempty"`
	}{e.Err.Kind, loc, e.Err.Message, temporal.JSONInput(e.Err.Input), e.Err.Context})
}

// ValidationErrors aggregates every failure found in one or more records.
type ValidationErrors []FieldError

func (errs ValidationErrors) Error() string {
	noun := "errors"
	if len(errs) == 1 {
		noun = "error"
	}
	lines := []string{fmt.Sprintf("%d validation %s", len(errs), noun)}
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	return strings.Join(lines, "\n")
}

// Within prefixes every Loc with loc.
func (errs ValidationErrors) Within(loc ...string) ValidationErrors {
	return lo.Map(errs, func(e FieldError, _ int) FieldError {
		return FieldError{Loc: append(append([]string{}, loc...), e.Loc...), Err: e.Err}
	})
}

// Kinds counts failures per error kind.
func (errs ValidationErrors) Kinds() map[temporal.ErrorKind]int {
	return lo.CountValuesBy(errs, func(e FieldError) temporal.ErrorKind { return e.Err.Kind })
}

// Record holds the coerced values of a record's valid fields.
type Record map[string]temporal.Value

// Validate coerces every declared field of raw and checks its constraints.
// All failures are collected; the returned Record holds the fields that passed.
// Undeclared fields are ignored.
func (s *Schema) Validate(raw map[string]any, now time.Time) (Record, error) {
	out := Record{}
	var errs ValidationErrors
	for _, f := range s.Fields {
		input, ok := raw[f.Name]
		if !ok {
			errs = append(errs, FieldError{Loc: []string{f.Name}, Err: &temporal.ValidationError{
				Kind:    Missing,
				Message: "Field required",
				Input:   raw,
			}})
			continue
		}
		v, err := s.Parser.Parse(f.Kind, input)
		if err == nil {
			err = f.Constraints.Check(v, now)
		}
		if err != nil {
			var verr *temporal.ValidationError
			if !errors.As(err, &verr) {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			// Constraint failures quote what the caller sent, not the coerced value.
			verr.Input = input
			errs = append(errs, FieldError{Loc: []string{f.Name}, Err: verr})
			continue
		}
		out[f.Name] = v
	}
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

// ReadRecords decodes a single JSON object, a JSON array of objects, or a
// stream of objects (JSON lines). Numbers are kept as json.Number.
func ReadRecords(r io.Reader) ([]map[string]any, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	if first == '[' {
		var records []map[string]any
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("reading records: %w", err)
		}
		return records, nil
	}

	var records []map[string]any
	for {
		var rec map[string]any
		err := dec.Decode(&rec)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

// Index renders a record position for use in a Loc.
func Index(i int) string { return strconv.Itoa(i) }
