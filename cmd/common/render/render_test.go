package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" table ", FormatTable, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr || got != tt.expected {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.input, got, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello w…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"日本語テキスト", 7, "日本語…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.input, tt.width); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("abcdef", 4); got != "abc…" {
		t.Errorf("PadRight = %q", got)
	}
	if got := StringWidth("\x1b[31mred\x1b[0m"); got != 3 {
		t.Errorf("StringWidth ignores escapes, got %d", got)
	}
}

func TestQuote(t *testing.T) {
	if got := Quote("a\tb\x00"); got != "a·b·" {
		t.Errorf("Quote = %q", got)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Errorf("JSON wrote %q", buf.String())
	}
}

func TestTableRender(t *testing.T) {
	tbl := &Table{Header: []string{"input", "result"}}
	tbl.Append(false, "2020-01-01", "2020-01-01")
	tbl.Append(true, "bad", "Input should be a valid date or datetime, input is too short")

	var buf bytes.Buffer
	tbl.Render(&buf)
	out := buf.String()

	for _, want := range []string{"INPUT", "RESULT", "2020-01-01", "Input should be a valid date or datetime, input…"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("uncolored table contains escapes:\n%s", out)
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
