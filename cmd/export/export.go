package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/dustin/go-humanize"
	"github.com/gigurra/tempus/cmd/check"
	"github.com/gigurra/tempus/cmd/common"
	"github.com/gigurra/tempus/cmd/common/render"
	"github.com/gigurra/tempus/cmd/common/schema"
	"github.com/gigurra/tempus/cmd/common/temporal"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/spf13/cobra"
)

type Params struct {
	Data        string   `pos:"true" optional:"true" help:"JSON records: an object, an array or JSON lines. Reads stdin when empty or -."`
	Schema      string   `short:"s" required:"true" help:"Schema file declaring the fields to export."`
	Out         string   `short:"o" required:"true" help:"Parquet file to write."`
	Rules       []string `short:"r" optional:"true" help:"expr-lang rule every record must satisfy (can be repeated)."`
	Unit        string   `short:"u" optional:"true" help:"Unit of numeric timestamps (auto, s, ms, us, ns)." alts:"auto,s,ms,us,ns" strict:"false"`
	Now         string   `optional:"true" help:"Pin the current moment used by past and future."`
	Compression string   `short:"c" optional:"true" default:"zstd" help:"Column compression codec." alts:"none,snappy,gzip,zstd,lz4,brotli"`
	Strict      bool     `optional:"true" help:"Fail without writing when any record is invalid."`
	Verbose     bool     `short:"v" optional:"true" help:"Log each record to stderr."`
}

// ErrPartial is returned when the file was written but some fields were nulled.
var ErrPartial = errors.New("some fields failed and were written as null")

// RecordColumn holds the index of each record in its input.
const RecordColumn = "record"

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:   "export [data]",
		Short: "Write coerced JSON records to a parquet file",
		Long: `Coerce JSON records against a schema and write them as parquet, one row per
record, using the parquet logical types for each kind:

  date      DATE (days since 1970-01-01)
  time      TIME (microseconds since midnight)
  datetime  TIMESTAMP (microseconds, UTC; naive values are stored as UTC)
  duration  INT64 (microseconds)

Fields that fail to coerce are written as null and reported on stderr. The
record column holds the index of each record in the input.

Examples:
  tempus export -s audit.schema -o audit.parquet records.jsonl
  tempus export -s audit.schema -o audit.parquet --strict -c snappy records.json`,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := runExport(params, os.Stdin, os.Stdout, os.Stderr); err != nil {
				fmt.Fprintf(os.Stderr, "export: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

var codecs = map[string]compress.Codec{
	"none":   &parquet.Uncompressed,
	"snappy": &parquet.Snappy,
	"gzip":   &parquet.Gzip,
	"zstd":   &parquet.Zstd,
	"lz4":    &parquet.Lz4Raw,
	"brotli": &parquet.Brotli,
}

// column maps a schema field onto a leaf column of the parquet schema.
type column struct {
	field schema.Field
	index int
}

// Layout is the parquet shape of a temporal schema.
type Layout struct {
	Schema  *parquet.Schema
	columns []column
	record  int
}

// NewLayout derives the parquet schema for s.
func NewLayout(s *schema.Schema) (*Layout, error) {
	group := parquet.Group{RecordColumn: parquet.Int(64)}
	for _, f := range s.Fields {
		if f.Name == RecordColumn {
			return nil, fmt.Errorf("field name %q is reserved for the record index", RecordColumn)
		}
		node, err := nodeOf(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		group[f.Name] = parquet.Optional(node)
	}

	layout := &Layout{Schema: parquet.NewSchema("tempus", group)}
	leaf, _ := layout.Schema.Lookup(RecordColumn)
	layout.record = leaf.ColumnIndex
	for _, f := range s.Fields {
		leaf, ok := layout.Schema.Lookup(f.Name)
		if !ok {
			return nil, fmt.Errorf("field %s: no parquet column", f.Name)
		}
		layout.columns = append(layout.columns, column{field: f, index: leaf.ColumnIndex})
	}
	return layout, nil
}

func nodeOf(kind temporal.Kind) (parquet.Node, error) {
	switch kind {
	case temporal.KindDate:
		return parquet.Date(), nil
	case temporal.KindTime:
		return parquet.Time(parquet.Microsecond), nil
	case temporal.KindDateTime:
		return parquet.Timestamp(parquet.Microsecond), nil
	case temporal.KindDuration:
		return parquet.Int(64), nil
	}
	return nil, fmt.Errorf("%w: %v", temporal.ErrUnknownKind, kind)
}

// Row converts one coerced record. Fields absent from rec become null. A field
// whose value cannot be represented is nulled and returned as an error.
func (l *Layout) Row(index int, rec schema.Record) (parquet.Row, schema.ValidationErrors) {
	row := make(parquet.Row, len(l.columns)+1)
	row[l.record] = parquet.Int64Value(int64(index)).Level(0, 0, l.record)

	var errs schema.ValidationErrors
	for _, c := range l.columns {
		null := parquet.NullValue().Level(0, 0, c.index)
		v, ok := rec[c.field.Name]
		if !ok {
			row[c.index] = null
			continue
		}
		pv, err := valueOf(v)
		if err != nil {
			errs = append(errs, schema.FieldError{Loc: []string{c.field.Name}, Err: err})
			row[c.index] = null
			continue
		}
		row[c.index] = pv.Level(0, 1, c.index)
	}
	return row, errs
}

func valueOf(v temporal.Value) (parquet.Value, *temporal.ValidationError) {
	switch v := v.(type) {
	case temporal.Date:
		return parquet.Int32Value(int32(v.In(time.UTC).Unix() / 86400)), nil
	case temporal.TimeOfDay:
		return parquet.Int64Value(v.SinceMidnight().Microseconds()), nil
	case temporal.DateTime:
		return parquet.Int64Value(v.In(time.UTC).UnixMicro()), nil
	case temporal.Duration:
		d, ok := v.Std()
		if !ok {
			return parquet.Value{}, &temporal.ValidationError{
				Kind:    "export_range",
				Message: fmt.Sprintf("Duration of %s days does not fit in 64 bit microseconds", humanize.Comma(v.Days())),
				Input:   v,
			}
		}
		return parquet.Int64Value(d.Microseconds()), nil
	}
	return parquet.Value{}, &temporal.ValidationError{Kind: "export_type", Message: "Value has no parquet column type", Input: v}
}

// Write stores the coerced values of report as parquet rows in w.
func (l *Layout) Write(w io.Writer, report *check.Report, codec compress.Codec, meta string) (schema.ValidationErrors, error) {
	pw := parquet.NewWriter(w, l.Schema, //nolint:staticcheck
		parquet.Compression(codec),
		parquet.KeyValueMetadata("tempus.schema", meta),
		parquet.CreatedBy("tempus", "", ""),
	)

	var failed schema.ValidationErrors
	rows := make([]parquet.Row, 0, len(report.Values))
	for i, rec := range report.Values {
		row, errs := l.Row(i, rec)
		failed = append(failed, errs.Within(schema.Index(i))...)
		rows = append(rows, row)
	}
	if _, err := pw.WriteRows(rows); err != nil {
		return nil, fmt.Errorf("failed to write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return failed, nil
}

func runExport(params *Params, stdin io.Reader, stdout, stderr io.Writer) error {
	codec, ok := codecs[strings.ToLower(params.Compression)]
	if !ok {
		return fmt.Errorf("unknown compression %q", params.Compression)
	}
	log := common.NewLogger(stderr, params.Verbose)

	checker, err := check.NewChecker(check.Options{
		SchemaPath: params.Schema,
		Rules:      params.Rules,
		Unit:       params.Unit,
		Now:        params.Now,
		Log:        log,
	})
	if err != nil {
		return err
	}
	layout, err := NewLayout(checker.Schema)
	if err != nil {
		return err
	}
	report, err := checker.CheckFile(params.Data, stdin)
	if err != nil {
		return err
	}
	if params.Strict && !report.OK() {
		_ = report.Write(stderr, render.FormatText)
		return check.ErrInvalid
	}

	f, err := os.Create(params.Out)
	if err != nil {
		return err
	}
	failed, err := layout.Write(f, report, codec, checker.Schema.String())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	failed = append(report.Errors, failed...)
	for _, e := range failed {
		fmt.Fprintln(stderr, e.Error())
	}
	log.Debug("exported", "path", params.Out, "rows", report.Records, "codec", codec.String())
	fmt.Fprintf(stdout, "wrote %s rows to %s\n", humanize.Comma(int64(report.Records)), params.Out)
	if len(failed) > 0 {
		return fmt.Errorf("%d %s: %w", len(failed), plural(len(failed), "field"), ErrPartial)
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
