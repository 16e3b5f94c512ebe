// Package settings implements the config command, which shows and edits the
// tempus config file.
package settings

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/tempus/cmd/common"
	"github.com/gigurra/tempus/cmd/common/config"
	"github.com/gigurra/tempus/cmd/common/render"
	"github.com/gigurra/tempus/cmd/common/temporal"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Key   string `pos:"true" optional:"true" help:"Setting to show or change."`
	Value string `pos:"true" optional:"true" help:"New value. The setting is shown when omitted."`
	Unset bool   `optional:"true" help:"Reset the setting to its default."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:   "config [key] [value]",
		Short: "Show or change settings",
		Long: `Show or change the settings stored in the config file (~/.tempus/config.json,
or the file named by TEMPUS_CONFIG).

Settings:
  output                 default output format (text, json, table)
  input                  default input mode (auto, text, number)
  unit                   default unit of numeric timestamps (auto, s, ms, us, ns)
  now                    pinned current moment, any datetime input
  watch.debounce_millis  delay before watch re-runs after a change
  watch.clear_screen     clear the screen between watch runs (true, false)

Examples:
  tempus config
  tempus config unit ms
  tempus config now 2024-06-15T12:00:00Z
  tempus config now --unset`,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := runConfig(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "config: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

// setting reads and writes one config key as text.
type setting struct {
	get func(*config.Config) string
	set func(*config.Config, string) error
}

var settings = map[string]setting{
	"output": {
		get: func(c *config.Config) string { return c.Output },
		set: func(c *config.Config, v string) error {
			if _, err := render.ParseFormat(v); err != nil {
				return err
			}
			c.Output = v
			return nil
		},
	},
	"input": {
		get: func(c *config.Config) string { return c.Input },
		set: func(c *config.Config, v string) error {
			if !slices.Contains([]common.InputMode{common.InputAuto, common.InputText, common.InputNumber}, common.InputMode(v)) {
				return fmt.Errorf("unknown input mode %q", v)
			}
			c.Input = v
			return nil
		},
	},
	"unit": {
		get: func(c *config.Config) string { return c.Unit },
		set: func(c *config.Config, v string) error {
			if _, err := temporal.ParseUnit(v); err != nil {
				return err
			}
			c.Unit = v
			return nil
		},
	},
	"now": {
		get: func(c *config.Config) string { return c.Now },
		set: func(c *config.Config, v string) error {
			if v != "" {
				if _, err := temporal.ParseDateTime(v); err != nil {
					return err
				}
			}
			c.Now = v
			return nil
		},
	},
	"watch.debounce_millis": {
		get: func(c *config.Config) string { return strconv.Itoa(c.Watch.DebounceMillis) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("debounce must be a non-negative number of milliseconds, got %q", v)
			}
			c.Watch.DebounceMillis = n
			return nil
		},
	},
	"watch.clear_screen": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.Watch.ClearScreen) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("clear_screen must be true or false, got %q", v)
			}
			c.Watch.ClearScreen = b
			return nil
		},
	},
}

func runConfig(params *Params, w io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if params.Key == "" {
		fmt.Fprintf(w, "# %s\n", config.ConfigPath())
		keys := lo.Keys(settings)
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s = %s\n", k, settings[k].get(cfg))
		}
		return nil
	}

	s, ok := settings[params.Key]
	if !ok {
		return fmt.Errorf("unknown setting %q", params.Key)
	}

	switch {
	case params.Unset:
		if err := s.set(cfg, s.get(config.DefaultConfig())); err != nil {
			return err
		}
	case params.Value != "":
		if err := s.set(cfg, params.Value); err != nil {
			return fmt.Errorf("%s: %w", params.Key, err)
		}
	default:
		fmt.Fprintln(w, s.get(cfg))
		return nil
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s = %s\n", params.Key, s.get(cfg))
	return nil
}
