package check

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/tempus/cmd/common"
	"github.com/gigurra/tempus/cmd/common/config"
	"github.com/gigurra/tempus/cmd/common/render"
	"github.com/gigurra/tempus/cmd/common/schema"
	"github.com/gigurra/tempus/cmd/common/temporal"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Data    string   `pos:"true" optional:"true" help:"JSON records: an object, an array or JSON lines. Reads stdin when empty or -."`
	Schema  string   `short:"s" required:"true" help:"Schema file declaring one field per line, e.g. 'created: datetime(past)'."`
	Rules   []string `short:"r" optional:"true" help:"expr-lang rule every record must satisfy (can be repeated)."`
	Unit    string   `short:"u" optional:"true" help:"Unit of numeric timestamps (auto, s, ms, us, ns)." alts:"auto,s,ms,us,ns" strict:"false"`
	Now     string   `optional:"true" help:"Pin the current moment used by past and future."`
	Output  string   `short:"o" optional:"true" help:"Output format (text, json, table)." alts:"text,json,table" strict:"false"`
	Verbose bool     `short:"v" optional:"true" help:"Log each record to stderr."`
}

// ErrInvalid is returned when at least one record failed validation.
var ErrInvalid = errors.New("invalid records")

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:   "check [data]",
		Short: "Validate JSON records against a temporal schema",
		Long: `Validate JSON records against a schema of temporal fields.

The schema declares one field per line:

  # comments start with #
  created: datetime(past, ge="2000-01-01T00:00:00Z")
  day:     date(lt=2030-01-01)
  opens:   time
  ttl:     duration(le=P1D)

Every failure of every record is reported with its location, kind, message and
the offending input. Rules are expr-lang expressions over the coerced record in
which dates and datetimes are times and durations are durations.

Examples:
  tempus check -s audit.schema records.jsonl
  tempus check -s audit.schema -r 'closed > opened' -o json records.json
  cat record.json | tempus check -s audit.schema`,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := runCheck(params, os.Stdin, os.Stdout, os.Stderr); err != nil {
				fmt.Fprintf(os.Stderr, "check: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

// Options configure a Checker.
type Options struct {
	SchemaPath string
	Rules      []string
	Unit       string
	Now        string
	Log        *slog.Logger
}

// Checker validates records against a loaded schema and compiled rules.
type Checker struct {
	Schema *schema.Schema
	Rules  []*schema.Rule
	Now    time.Time
	log    *slog.Logger
}

// NewChecker loads the config and schema and compiles the rules.
func NewChecker(opts Options) (*Checker, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Unit != "" {
		cfg.Unit = opts.Unit
	}
	if opts.Now != "" {
		cfg.Now = opts.Now
	}
	unit, err := cfg.NumericUnit()
	if err != nil {
		return nil, err
	}
	now, err := cfg.Clock()
	if err != nil {
		return nil, err
	}

	s, err := schema.Load(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	s.Parser = temporal.Parser{Unit: unit}

	rules := make([]*schema.Rule, 0, len(opts.Rules))
	for _, src := range opts.Rules {
		r, err := s.CompileRule(src)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Checker{Schema: s, Rules: rules, Now: now, log: log}, nil
}

// Report is the outcome of checking a batch of records.
type Report struct {
	Records int                     `json:"records"`
	Valid   int                     `json:"valid"`
	Errors  schema.ValidationErrors `json:"errors"`
	Values  []schema.Record         `json:"-"`
}

// OK reports whether every record passed.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Run checks every record. Each record's failures are located under its index.
func (c *Checker) Run(records []map[string]any) (*Report, error) {
	report := &Report{Records: len(records), Errors: schema.ValidationErrors{}}
	for i, raw := range records {
		rec, err := c.Schema.Check(raw, c.Now, c.Rules...)
		report.Values = append(report.Values, rec)
		var errs schema.ValidationErrors
		switch {
		case errors.As(err, &errs):
			c.log.Debug("record invalid", "index", i, "errors", len(errs))
			report.Errors = append(report.Errors, errs.Within(schema.Index(i))...)
		case err != nil:
			return nil, fmt.Errorf("record %d: %w", i, err)
		default:
			c.log.Debug("record valid", "index", i)
			report.Valid++
		}
	}
	return report, nil
}

// CheckFile reads records from path ("-" or empty for stdin) and checks them.
func (c *Checker) CheckFile(path string, stdin io.Reader) (*Report, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	records, err := schema.ReadRecords(r)
	if err != nil {
		return nil, err
	}
	return c.Run(records)
}

// Write renders the report in format.
func (r *Report) Write(w io.Writer, format render.Format) error {
	switch format {
	case render.FormatJSON:
		return render.JSON(w, r)
	case render.FormatTable:
		if !r.OK() {
			t := &render.Table{
				Header: []string{"loc", "kind", "message", "input"},
				Width:  render.TerminalWidth(),
				Color:  render.IsTerminal(w),
			}
			for _, e := range r.Errors {
				t.Append(true, e.Path(), string(e.Err.Kind), e.Err.Message, temporal.Repr(e.Err.Input))
			}
			t.Render(w)
		}
	default:
		for _, e := range r.Errors {
			fmt.Fprintln(w, e.Error())
		}
	}
	fmt.Fprintln(w, r.Summary())
	return nil
}

// Summary is a one line description such as "2 of 3 records invalid (missing=1, date_past=2)".
func (r *Report) Summary() string {
	if r.OK() {
		noun := "records"
		if r.Records == 1 {
			noun = "record"
		}
		return fmt.Sprintf("OK: %d %s valid", r.Records, noun)
	}
	kinds := r.Errors.Kinds()
	names := lo.Keys(kinds)
	slices.Sort(names)
	counts := lo.Map(names, func(k temporal.ErrorKind, _ int) string {
		return fmt.Sprintf("%s=%d", k, kinds[k])
	})
	return fmt.Sprintf("%d of %d records invalid (%s)", r.Records-r.Valid, r.Records, strings.Join(counts, ", "))
}

func runCheck(params *Params, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if params.Output != "" {
		cfg.Output = params.Output
	}
	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	checker, err := NewChecker(Options{
		SchemaPath: params.Schema,
		Rules:      params.Rules,
		Unit:       params.Unit,
		Now:        params.Now,
		Log:        common.NewLogger(stderr, params.Verbose),
	})
	if err != nil {
		return err
	}
	report, err := checker.CheckFile(params.Data, stdin)
	if err != nil {
		return err
	}
	if err := report.Write(stdout, format); err != nil {
		return err
	}
	if !report.OK() {
		return ErrInvalid
	}
	return nil
}
