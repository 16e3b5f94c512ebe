package try

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/tempus/cmd/common"
	"github.com/gigurra/tempus/cmd/common/config"
	"github.com/gigurra/tempus/cmd/common/render"
	"github.com/gigurra/tempus/cmd/common/temporal"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Input string `pos:"true" optional:"true" help:"Initial input."`
	Unit  string `short:"u" optional:"true" help:"Unit of numeric input (auto, s, ms, us, ns)." alts:"auto,s,ms,us,ns" strict:"false"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:   "try [input]",
		Short: "Interactively coerce input as every temporal kind",
		Long: `Open an interactive playground that coerces what you type as a date, a time,
a datetime and a duration at once.

Keys:
  tab / shift+tab   select kind
  ctrl+t            toggle text and auto input mode
  ctrl+n            cycle numeric unit
  up / down         browse history
  enter             save input to history
  ctrl+u            clear input
  esc / ctrl+c      quit`,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := runTry(params); err != nil {
				fmt.Fprintf(os.Stderr, "try: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

var (
	tTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	tSelectedStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("238"))
	tOKStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	tErrStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tInputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var (
	kinds = []temporal.Kind{temporal.KindDate, temporal.KindTime, temporal.KindDateTime, temporal.KindDuration}
	units = []temporal.Unit{temporal.UnitAuto, temporal.Seconds, temporal.Milliseconds, temporal.Microseconds, temporal.Nanoseconds}
)

const maxHistory = 100

type model struct {
	input    string
	selected int
	unit     temporal.Unit
	mode     common.InputMode
	now      time.Time

	history []string
	browse  int // index into history while browsing, len(history) otherwise

	width int
}

func newModel(input string, unit temporal.Unit, now time.Time, history []string) model {
	return model{
		input:   input,
		unit:    unit,
		mode:    common.InputAuto,
		now:     now,
		history: history,
		browse:  len(history),
		width:   render.DefaultTerminalWidth,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.selected = (m.selected + 1) % len(kinds)
		case "shift+tab":
			m.selected = (m.selected + len(kinds) - 1) % len(kinds)
		case "ctrl+t":
			if m.mode == common.InputText {
				m.mode = common.InputAuto
			} else {
				m.mode = common.InputText
			}
		case "ctrl+n":
			m.unit = units[(lo.IndexOf(units, m.unit)+1)%len(units)]
		case "ctrl+u":
			m.input = ""
		case "backspace":
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case "up":
			if m.browse > 0 {
				m.browse--
				m.input = m.history[m.browse]
			}
		case "down":
			if m.browse < len(m.history)-1 {
				m.browse++
				m.input = m.history[m.browse]
			} else {
				m.browse = len(m.history)
				m.input = ""
			}
		case "enter":
			m = m.remember()
		default:
			if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
				m.input += string(msg.Runes)
			}
		}
	}
	return m, nil
}

// remember appends the input to the history, dropping an identical last entry.
func (m model) remember() model {
	if strings.TrimSpace(m.input) == "" {
		return m
	}
	if n := len(m.history); n == 0 || m.history[n-1] != m.input {
		m.history = append(m.history, m.input)
	}
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.browse = len(m.history)
	return m
}

// reading is the outcome of coercing the current input as one kind.
type reading struct {
	kind  temporal.Kind
	v     temporal.Value
	value string
	err   string
}

func (m model) readings() []reading {
	input, err := common.Decode(m.input, m.mode)
	parser := temporal.Parser{Unit: m.unit}
	return lo.Map(kinds, func(k temporal.Kind, _ int) reading {
		r := reading{kind: k}
		if err != nil {
			r.err = err.Error()
			return r
		}
		v, err := parser.Parse(k, input)
		var verr *temporal.ValidationError
		switch {
		case errors.As(err, &verr):
			r.err = verr.Message + " [" + string(verr.Kind) + "]"
		case err != nil:
			r.err = err.Error()
		default:
			r.v = v
			r.value = v.String()
			if d, ok := v.(temporal.Duration); ok {
				r.value += "  (" + d.Clock() + ")"
			}
		}
		return r
	})
}

func (m model) View() string {
	var b strings.Builder
	width := max(m.width-4, 20)

	b.WriteString("\n  ")
	b.WriteString(tTitleStyle.Render("tempus try"))
	b.WriteString(tHelpStyle.Render(fmt.Sprintf("  [mode %s, unit %s]", m.mode, m.unit)))
	b.WriteString("\n\n  > ")
	b.WriteString(tInputStyle.Render(render.Truncate(m.input, width-4) + "_"))
	b.WriteString("\n")

	if input, err := common.Decode(m.input, m.mode); err == nil && m.unit == temporal.UnitAuto {
		if _, text := input.(string); !text {
			f, _ := strconv.ParseFloat(strings.TrimSpace(m.input), 64)
			b.WriteString(tHelpStyle.Render("    epoch unit " + temporal.ClassifyEpoch(f).String()))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	readings := m.readings()
	for i, r := range readings {
		label := render.PadRight(r.kind.String(), 9)
		if i == m.selected {
			label = tSelectedStyle.Render(label)
		}
		text := tOKStyle.Render(render.Truncate(r.value, width-12))
		if r.err != "" {
			text = tErrStyle.Render(render.Truncate(r.err, width-12))
		}
		b.WriteString("  " + label + " " + text + "\n")
	}

	if sel := readings[m.selected]; sel.v != nil && (sel.kind == temporal.KindDate || sel.kind == temporal.KindDateTime) {
		b.WriteString(m.relative(sel))
	}

	b.WriteString("\n")
	b.WriteString(tHelpStyle.Render("  tab kind • ctrl+t mode • ctrl+n unit • ↑↓ history • enter save • esc quit"))
	b.WriteString("\n")
	return b.String()
}

// relative describes where a date or datetime reading lies relative to now.
func (m model) relative(r reading) string {
	past, err := temporal.Relative(temporal.Past, r.kind)
	if err != nil {
		return ""
	}
	where := "in the past"
	if past.Check(r.v, m.now) != nil {
		where = "not in the past"
	}
	return tHelpStyle.Render("\n  "+r.kind.String()+" is "+where) + "\n"
}

func historyPath() string {
	return filepath.Join(common.CacheDir(), "try_history")
}

func loadHistory(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > maxHistory {
		lines = lines[len(lines)-maxHistory:]
	}
	return lines
}

func saveHistory(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

func runTry(params *Params) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if params.Unit != "" {
		cfg.Unit = params.Unit
	}
	unit, err := cfg.NumericUnit()
	if err != nil {
		return err
	}
	now, err := cfg.Clock()
	if err != nil {
		return err
	}

	path := historyPath()
	m := newModel(params.Input, unit, now, loadHistory(path))
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	fm := final.(model)
	if len(fm.history) == 0 {
		return nil
	}
	return saveHistory(path, fm.history)
}
