package coerce

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/tempus/cmd/common"
	"github.com/gigurra/tempus/cmd/common/config"
	"github.com/gigurra/tempus/cmd/common/render"
	"github.com/gigurra/tempus/cmd/common/temporal"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Inputs  []string `pos:"true" optional:"true" help:"Values to coerce. Reads one value per line from stdin when empty or -."`
	Gt      string   `optional:"true" help:"Require values greater than this bound."`
	Ge      string   `optional:"true" help:"Require values greater than or equal to this bound."`
	Lt      string   `optional:"true" help:"Require values less than this bound."`
	Le      string   `optional:"true" help:"Require values less than or equal to this bound."`
	Past    bool     `optional:"true" help:"Require dates and datetimes in the past."`
	Future  bool     `optional:"true" help:"Require dates and datetimes in the future."`
	Now     string   `optional:"true" help:"Pin the current moment used by --past and --future (any datetime input)."`
	Unit    string   `short:"u" optional:"true" help:"Unit of numeric input (auto, s, ms, us, ns). Defaults to the config value." alts:"auto,s,ms,us,ns" strict:"false"`
	Input   string   `short:"i" optional:"true" help:"How arguments are read (auto, text, number). Defaults to the config value." alts:"auto,text,number" strict:"false"`
	As      string   `short:"a" optional:"true" help:"Render results as iso, unix, unixms, clock or seconds, where the kind supports it."`
	Output  string   `short:"o" optional:"true" help:"Output format (text, json, table). Defaults to the config value." alts:"text,json,table" strict:"false"`
	Clip    bool     `optional:"true" help:"Read inputs from the clipboard instead of arguments."`
	Copy    bool     `short:"c" optional:"true" help:"Copy the coerced values to the clipboard."`
	Verbose bool     `short:"v" optional:"true" help:"Log each coercion to stderr."`
}

// ErrRejected is returned when at least one input failed coercion or a constraint.
var ErrRejected = errors.New("rejected")

func DateCmd() *cobra.Command {
	return newCmd(temporal.KindDate, "date", "Coerce values into calendar dates", `Coerce each input into a YYYY-MM-DD date.

Accepts YYYY-MM-DD, datetimes at exact midnight, and unix timestamps that land
on midnight UTC. Numbers above 20,000,000,000 are read as milliseconds.

Examples:
  tempus date 2012-04-23
  tempus date 1335139200 --past
  tempus date 2024-02-30 --output json`)
}

func TimeCmd() *cobra.Command {
	return newCmd(temporal.KindTime, "time", "Coerce values into times of day", `Coerce each input into a HH:MM:SS[.ffffff] time of day.

Numbers are seconds since midnight and must lie in [0, 86399].

Examples:
  tempus time 10:20
  tempus time 3723.5 --as seconds`)
}

func DateTimeCmd() *cobra.Command {
	return newCmd(temporal.KindDateTime, "datetime", "Coerce values into datetimes", `Coerce each input into an ISO-8601 datetime.

Text may use T, t, _ or a space between date and time, and may carry an offset
(Z, +HH, +HHMM or +HH:MM). Numbers are unix timestamps, classified as seconds or
milliseconds by magnitude unless --unit is given.

Examples:
  tempus datetime 2012-04-23T09:15:00Z
  tempus datetime 1494012444883 --as unix
  tempus datetime 1494012444883000 --unit us`)
}

func DurationCmd() *cobra.Command {
	return newCmd(temporal.KindDuration, "duration", "Coerce values into durations", `Coerce each input into a duration.

Accepts ISO-8601 (P1DT2H, -PT15M), clock form (HH:MM[:SS[.f]]), day forms
(1 day, 10:20:30 or 3d) and numbers of seconds. Results print as ISO-8601 unless
--as clock or --as seconds is given.

Examples:
  tempus duration P4DT15M30S
  tempus duration "-4 days, 00:15:30" --as clock
  tempus duration 3600 --le PT1H`)
}

func newCmd(kind temporal.Kind, use, short, long string) *cobra.Command {
	return boa.CmdT[Params]{
		Use:         use + " [inputs...]",
		Short:       short,
		Long:        long,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := run(kind, params, os.Stdin, os.Stdout, os.Stderr); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", use, err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

// settings are the flags merged with the config file.
type settings struct {
	parser      temporal.Parser
	mode        common.InputMode
	format      render.Format
	constraints temporal.Constraints
	now         time.Time
	as          string
}

func resolve(kind temporal.Kind, params *Params) (*settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if params.Unit != "" {
		cfg.Unit = params.Unit
	}
	if params.Input != "" {
		cfg.Input = params.Input
	}
	if params.Output != "" {
		cfg.Output = params.Output
	}
	if params.Now != "" {
		cfg.Now = params.Now
	}

	s := &settings{mode: common.InputMode(cfg.Input), as: params.As}
	if s.parser.Unit, err = cfg.NumericUnit(); err != nil {
		return nil, err
	}
	if s.format, err = render.ParseFormat(cfg.Output); err != nil {
		return nil, err
	}
	if s.now, err = cfg.Clock(); err != nil {
		return nil, err
	}
	if err := checkForm(kind, s.as); err != nil {
		return nil, err
	}

	bounds := []struct {
		op    string
		bound string
	}{{"gt", params.Gt}, {"ge", params.Ge}, {"lt", params.Lt}, {"le", params.Le}}
	for _, b := range bounds {
		if b.bound == "" {
			continue
		}
		c, err := temporal.ParseConstraint(kind, b.op+"="+b.bound)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", b.op, err)
		}
		s.constraints = append(s.constraints, c)
	}
	relative := []struct {
		op  temporal.Op
		set bool
	}{{temporal.Past, params.Past}, {temporal.Future, params.Future}}
	for _, r := range relative {
		if !r.set {
			continue
		}
		c, err := temporal.Relative(r.op, kind)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", r.op, err)
		}
		s.constraints = append(s.constraints, c)
	}
	return s, nil
}

// result is the outcome for one input.
type result struct {
	Input string                    `json:"input"`
	Value string                    `json:"value,omitempty"`
	Error *temporal.ValidationError `json:"error,omitempty"`
}

func run(kind temporal.Kind, params *Params, stdin io.Reader, stdout, stderr io.Writer) error {
	log := common.NewLogger(stderr, params.Verbose)

	s, err := resolve(kind, params)
	if err != nil {
		return err
	}

	var inputs []string
	if params.Clip {
		inputs, err = common.ClipboardInputs()
	} else {
		inputs, err = common.ReadInputs(params.Inputs, stdin)
	}
	if err != nil {
		return err
	}
	log.Debug("coercing", "kind", kind, "inputs", len(inputs), "unit", s.parser.Unit, "constraints", s.constraints.String())

	results := make([]result, 0, len(inputs))
	for _, raw := range inputs {
		r, err := coerceOne(kind, s, raw, log)
		if err != nil {
			return err
		}
		results = append(results, r)
	}

	if err := write(stdout, stderr, s.format, kind, results); err != nil {
		return err
	}

	if params.Copy {
		values := lo.FilterMap(results, func(r result, _ int) (string, bool) { return r.Value, r.Error == nil })
		if err := common.CopyToClipboard(values); err != nil {
			return err
		}
	}

	if failed := lo.CountBy(results, func(r result) bool { return r.Error != nil }); failed > 0 {
		return fmt.Errorf("%d of %d inputs %w", failed, len(results), ErrRejected)
	}
	return nil
}

func coerceOne(kind temporal.Kind, s *settings, raw string, log *slog.Logger) (result, error) {
	r := result{Input: raw}
	input, err := common.Decode(raw, s.mode)
	if err != nil {
		return r, err
	}

	v, err := s.parser.Parse(kind, input)
	if err == nil {
		err = s.constraints.Check(v, s.now)
	}
	var verr *temporal.ValidationError
	switch {
	case errors.As(err, &verr):
		verr.Input = input
		r.Error = verr
		log.Debug("rejected", "input", raw, "kind", verr.Kind)
		return r, nil
	case err != nil:
		return r, err
	}

	if r.Value, err = formatValue(v, s.as); err != nil {
		return r, err
	}
	log.Debug("coerced", "input", raw, "value", r.Value)
	return r, nil
}

func write(stdout, stderr io.Writer, format render.Format, kind temporal.Kind, results []result) error {
	switch format {
	case render.FormatJSON:
		return render.JSON(stdout, results)
	case render.FormatTable:
		t := &render.Table{
			Header: []string{"input", kind.String(), "error"},
			Width:  render.TerminalWidth(),
			Color:  render.IsTerminal(stdout),
		}
		for _, r := range results {
			if r.Error != nil {
				t.Append(true, r.Input, "", r.Error.Message)
			} else {
				t.Append(false, r.Input, r.Value, "")
			}
		}
		t.Render(stdout)
		return nil
	}
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(stderr, "%s: %v\n", render.Quote(r.Input), r.Error)
			continue
		}
		fmt.Fprintln(stdout, r.Value)
	}
	return nil
}

var forms = map[string][]temporal.Kind{
	"":        {temporal.KindDate, temporal.KindTime, temporal.KindDateTime, temporal.KindDuration},
	"iso":     {temporal.KindDate, temporal.KindTime, temporal.KindDateTime, temporal.KindDuration},
	"unix":    {temporal.KindDate, temporal.KindDateTime},
	"unixms":  {temporal.KindDate, temporal.KindDateTime},
	"clock":   {temporal.KindDuration},
	"seconds": {temporal.KindTime, temporal.KindDuration},
}

func checkForm(kind temporal.Kind, as string) error {
	kinds, ok := forms[as]
	if !ok {
		return fmt.Errorf("unknown --as %q (want iso, unix, unixms, clock or seconds)", as)
	}
	if !lo.Contains(kinds, kind) {
		return fmt.Errorf("--as %s does not apply to %s", as, kind)
	}
	return nil
}

// formatValue renders v in the requested form. An empty form is the canonical
// ISO rendering.
func formatValue(v temporal.Value, as string) (string, error) {
	switch as {
	case "", "iso":
		return v.String(), nil
	case "unix", "unixms":
		var t time.Time
		switch v := v.(type) {
		case temporal.Date:
			t = v.In(time.UTC)
		case temporal.DateTime:
			t = v.In(time.UTC)
		default:
			return "", fmt.Errorf("--as %s does not apply to %s", as, v.Kind())
		}
		if as == "unixms" {
			return strconv.FormatInt(t.UnixMilli(), 10), nil
		}
		return strconv.FormatInt(t.Unix(), 10), nil
	case "clock":
		if d, ok := v.(temporal.Duration); ok {
			return d.Clock(), nil
		}
		return "", fmt.Errorf("--as clock does not apply to %s", v.Kind())
	case "seconds":
		switch v := v.(type) {
		case temporal.Duration:
			return strconv.FormatFloat(v.TotalSeconds(), 'f', -1, 64), nil
		case temporal.TimeOfDay:
			return strconv.FormatFloat(v.SinceMidnight().Seconds(), 'f', -1, 64), nil
		}
		return "", fmt.Errorf("--as seconds does not apply to %s", v.Kind())
	}
	return "", fmt.Errorf("unknown --as %q (want iso, unix, unixms, clock or seconds)", as)
}
