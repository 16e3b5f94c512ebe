package common

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/atotto/clipboard"
	"github.com/samber/lo"
)

var (
	clipboardWriteAll = clipboard.WriteAll
	clipboardReadAll  = clipboard.ReadAll
)

func DefaultParamEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}

// NewLogger returns a text logger writing to w. Verbose loggers include debug records.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// InputMode controls how a raw command line token is handed to the coercion engine.
type InputMode string

const (
	InputAuto   InputMode = "auto"   // numeric looking tokens become numbers
	InputText   InputMode = "text"   // always text
	InputNumber InputMode = "number" // always a number, including nan and inf
)

var numericToken = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Decode converts a raw token into a value for the engine.
func Decode(raw string, mode InputMode) (any, error) {
	switch mode {
	case InputText:
		return raw, nil
	case InputNumber:
		s := strings.TrimSpace(raw)
		if numericToken.MatchString(s) {
			return json.Number(s), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return f, nil
	case InputAuto, "":
		if s := strings.TrimSpace(raw); numericToken.MatchString(s) {
			return json.Number(s), nil
		}
		return raw, nil
	}
	return nil, fmt.Errorf("unknown input mode %q", mode)
}

// ReadInputs returns the inputs to process: args as given, or one per
// non-empty line of stdin when args is empty or a single "-".
func ReadInputs(args []string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return args, nil
	}
	var lines []string
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return nonEmpty(lines), nil
}

// ClipboardInputs returns the non-empty lines currently on the clipboard.
func ClipboardInputs() ([]string, error) {
	text, err := clipboardReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading clipboard: %w", err)
	}
	return nonEmpty(strings.Split(text, "\n")), nil
}

// CopyToClipboard places lines on the clipboard, one per line.
func CopyToClipboard(lines []string) error {
	if err := clipboardWriteAll(strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

func nonEmpty(lines []string) []string {
	return lo.FilterMap(lines, func(l string, _ int) (string, bool) {
		l = strings.TrimRight(l, "\r")
		return l, strings.TrimSpace(l) != ""
	})
}
