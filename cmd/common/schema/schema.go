// Package schema reads field declarations such as
//
//	created: datetime(past, ge="2000-01-01")
//	window:  duration(le=P1D)
//
// and validates JSON records against them.
package schema

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/gigurra/tempus/cmd/common/temporal"
)

// Field is one declared record field.
type Field struct {
	Name        string
	Kind        temporal.Kind
	Constraints temporal.Constraints
}

func (f Field) String() string {
	if len(f.Constraints) == 0 {
		return f.Name + ": " + f.Kind.String()
	}
	return fmt.Sprintf("%s: %s(%s)", f.Name, f.Kind, f.Constraints)
}

// Schema is an ordered list of fields plus the parser used to coerce them.
type Schema struct {
	Fields []Field
	Parser temporal.Parser
}

// Field returns the declaration for name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Schema) String() string {
	lines := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}

type declFile struct {
	Decls []*decl `parser:"@@*"`
}

type decl struct {
	Pos   lexer.Position
	Name  string  `parser:"@(Ident | String) ':'"`
	Kind  string  `parser:"@Ident"`
	Conds []*cond `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
}

type cond struct {
	Pos   lexer.Position
	Op    string  `parser:"@Ident"`
	Bound *string `parser:"( '=' @(String | Literal) )?"`
}

var (
	declParserOnce sync.Once
	declParser     *participle.Parser[declFile]
)

func parser() *participle.Parser[declFile] {
	declParserOnce.Do(func() {
		declParser = participle.MustBuild[declFile](
			participle.Lexer(lexer.MustStateful(lexer.Rules{
				"Root": {
					{Name: "Comment", Pattern: `#[^\n]*`},
					{Name: "Whitespace", Pattern: `\s+`},
					{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
					{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_\-]*`},
					{Name: "Assign", Pattern: `=`, Action: lexer.Push("Bound")},
					{Name: "Punct", Pattern: `[:(),]`},
				},
				"Bound": {
					{Name: "Whitespace", Pattern: `[ \t]+`},
					{Name: "String", Pattern: `"(\\.|[^"\\])*"`, Action: lexer.Pop()},
					{Name: "Literal", Pattern: `[^\s,()"]+`, Action: lexer.Pop()},
				},
			})),
			participle.Elide("Comment", "Whitespace"),
			participle.Unquote("String"),
		)
	})
	return declParser
}

// Parse reads a schema from source. filename is only used in error positions.
func Parse(filename, source string) (*Schema, error) {
	file, err := parser().ParseString(filename, source)
	if err != nil {
		return nil, err
	}

	s := &Schema{}
	seen := map[string]bool{}
	for _, d := range file.Decls {
		if seen[d.Name] {
			return nil, fmt.Errorf("%s: field %q declared twice", d.Pos, d.Name)
		}
		seen[d.Name] = true

		kind, err := temporal.ParseKind(d.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Pos, err)
		}
		field := Field{Name: d.Name, Kind: kind}
		for _, c := range d.Conds {
			text := c.Op
			if c.Bound != nil {
				text += "=" + *c.Bound
			}
			constraint, err := temporal.ParseConstraint(kind, text)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", c.Pos, d.Name, err)
			}
			field.Constraints = append(field.Constraints, constraint)
		}
		s.Fields = append(s.Fields, field)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("%s: no fields declared", filename)
	}
	return s, nil
}

// Load reads a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(data))
}
