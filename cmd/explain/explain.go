package explain

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/dustin/go-humanize"
	"github.com/gigurra/tempus/cmd/common"
	"github.com/gigurra/tempus/cmd/common/config"
	"github.com/gigurra/tempus/cmd/common/temporal"
	"github.com/spf13/cobra"
)

type Params struct {
	Numbers []string `pos:"true" optional:"true" help:"Epoch numbers to explain. Shows the current moment when empty."`
	UTC     bool     `short:"u" help:"Show output in UTC only (suppress Local)" default:"false"`
	Now     string   `optional:"true" help:"Pin the moment shown when no number is given."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:   "explain [number...]",
		Short: "Show how an epoch number is classified and read",
		Long: `Explain how a unix timestamp is interpreted.

Numbers whose magnitude exceeds 20,000,000,000 are read as milliseconds, all
others as seconds. The explanation shows the automatic reading next to the
value read in every unit, so mis-scaled timestamps are easy to spot.

With no argument, the current moment is shown in every unit.

Examples:
  tempus explain 1494012444
  tempus explain 1494012444883
  tempus explain -- -1e10`,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := runExplain(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "explain: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

var units = []temporal.Unit{temporal.Seconds, temporal.Milliseconds, temporal.Microseconds, temporal.Nanoseconds}

var unitLabels = map[temporal.Unit]string{
	temporal.Seconds:      "Seconds:",
	temporal.Milliseconds: "Millis:",
	temporal.Microseconds: "Micros:",
	temporal.Nanoseconds:  "Nanos:",
}

func runExplain(params *Params, w io.Writer) error {
	if len(params.Numbers) == 0 {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if params.Now != "" {
			cfg.Now = params.Now
		}
		now, err := cfg.Clock()
		if err != nil {
			return err
		}
		printNow(w, now, params.UTC)
		return nil
	}

	for i, raw := range params.Numbers {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := explainNumber(w, raw, params.UTC); err != nil {
			return err
		}
	}
	return nil
}

func explainNumber(w io.Writer, raw string, utcOnly bool) error {
	input, err := common.Decode(raw, common.InputNumber)
	if err != nil {
		return err
	}
	f, _ := strconv.ParseFloat(strings.TrimSpace(raw), 64)

	fmt.Fprintf(w, "Input:      %s\n", raw)
	unit := temporal.ClassifyEpoch(f)
	relation := "at most"
	if unit == temporal.Milliseconds {
		relation = "above"
	}
	fmt.Fprintf(w, "Magnitude:  %s %s %s, read as %s\n",
		magnitude(f), relation, humanize.Comma(temporal.Watershed), unitName(unit))

	auto, autoErr := temporal.ParseDateTime(input)
	fmt.Fprintf(w, "Auto:       %s\n", reading(auto, autoErr))
	for _, u := range units {
		dt, err := temporal.Parser{Unit: u}.DateTime(input)
		fmt.Fprintf(w, "%-11s %s\n", unitLabels[u], reading(dt, err))
	}
	if autoErr == nil {
		printTime(w, auto.In(time.UTC), utcOnly)
	}
	return nil
}

func reading(dt temporal.DateTime, err error) string {
	var verr *temporal.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid: " + strings.TrimPrefix(verr.Message, "Input should be a valid datetime, ")
	case err != nil:
		return "invalid: " + err.Error()
	}
	return dt.String()
}

func magnitude(f float64) string {
	if f != f || f > 1e300 || f < -1e300 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return humanize.Commaf(f)
}

func unitName(u temporal.Unit) string {
	if u == temporal.Milliseconds {
		return "milliseconds"
	}
	return "seconds"
}

func printTime(w io.Writer, t time.Time, utcOnly bool) {
	if !utcOnly {
		fmt.Fprintf(w, "Local:      %s\n", t.Local().Format("2006-01-02 15:04:05.000000 -0700 MST"))
	}
	fmt.Fprintf(w, "UTC:        %s\n", t.UTC().Format("2006-01-02 15:04:05.000000 -0700 MST"))
}

func printNow(w io.Writer, t time.Time, utcOnly bool) {
	printTime(w, t, utcOnly)
	fmt.Fprintf(w, "Unix:       %d\n", t.Unix())
	fmt.Fprintf(w, "UnixMilli:  %d\n", t.UnixMilli())
	fmt.Fprintf(w, "UnixMicro:  %d\n", t.UnixMicro())
	fmt.Fprintf(w, "UnixNano:   %d\n", t.UnixNano())
	fmt.Fprintf(w, "ISO8601:    %s\n", temporal.DateTimeOf(t))
}
