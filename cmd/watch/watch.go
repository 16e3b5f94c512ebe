package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/fsnotify/fsnotify"
	"github.com/gigurra/tempus/cmd/check"
	"github.com/gigurra/tempus/cmd/common"
	"github.com/gigurra/tempus/cmd/common/config"
	"github.com/gigurra/tempus/cmd/common/render"
	"github.com/spf13/cobra"
)

type Params struct {
	Data    string   `pos:"true" help:"JSON records file to re-check on every change."`
	Schema  string   `short:"s" required:"true" help:"Schema file declaring the fields. Changes to it are picked up too."`
	Rules   []string `short:"r" optional:"true" help:"expr-lang rule every record must satisfy (can be repeated)."`
	Unit    string   `short:"u" optional:"true" help:"Unit of numeric timestamps (auto, s, ms, us, ns)." alts:"auto,s,ms,us,ns" strict:"false"`
	Now     string   `optional:"true" help:"Pin the current moment used by past and future."`
	Output  string   `short:"o" optional:"true" help:"Output format (text, json, table)." alts:"text,json,table" strict:"false"`
	NoClear bool     `optional:"true" help:"Do not clear the screen between runs."`
	Verbose bool     `short:"v" optional:"true" help:"Log file events to stderr."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:   "watch <data>",
		Short: "Re-check JSON records whenever they or the schema change",
		Long: `Run check once, then again every time the data file or the schema file
changes on disk. Rapid successive writes are debounced (watch.debounce_millis in
the config file, 100ms by default).

Examples:
  tempus watch -s audit.schema records.jsonl
  tempus watch -s audit.schema -r 'closed > opened' --no-clear records.json`,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := runWatch(ctx, params, os.Stdout, os.Stderr, nil); err != nil {
				fmt.Fprintf(os.Stderr, "watch: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

const clearScreen = "\033[H\033[2J"

// runWatch checks once and then after every debounced change to the data or
// schema file until ctx is done. checked, when set, is called after each run.
func runWatch(ctx context.Context, params *Params, stdout, stderr io.Writer, checked func(*check.Report, error)) error {
	if params.Data == "" || params.Data == "-" {
		return fmt.Errorf("watch needs a data file, not stdin")
	}
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
	log := common.NewLogger(stderr, params.Verbose)

	files := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range []string{params.Data, params.Schema} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", p, err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files instead of writing them, so the directories
	// are watched and events filtered by name.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	run := func() {
		if cfg.Watch.ClearScreen && !params.NoClear {
			fmt.Fprint(stdout, clearScreen)
		}
		fmt.Fprintf(stdout, "[%s] %s against %s\n", time.Now().Format(time.TimeOnly), params.Data, params.Schema)
		report, err := checkOnce(params, log)
		if err != nil {
			fmt.Fprintf(stderr, "watch: %v\n", err)
		} else {
			_ = report.Write(stdout, format)
		}
		if checked != nil {
			checked(report, err)
		}
	}

	changeChan := make(chan string, 1)

	var debounceTimer *time.Timer
	var debounceMutex sync.Mutex
	debounceDelay := cfg.Watch.Debounce()

	triggerChange := func(path string) {
		debounceMutex.Lock()
		defer debounceMutex.Unlock()

		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(debounceDelay, func() {
			select {
			case changeChan <- path:
			default:
			}
		})
	}

	run()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			log.Debug("file event", "path", event.Name, "op", event.Op.String())
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				triggerChange(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case path := <-changeChan:
			log.Debug("change detected", "path", path)
			run()
		}
	}
}

func checkOnce(params *Params, log *slog.Logger) (*check.Report, error) {
	checker, err := check.NewChecker(check.Options{
		SchemaPath: params.Schema,
		Rules:      params.Rules,
		Unit:       params.Unit,
		Now:        params.Now,
		Log:        log,
	})
	if err != nil {
		return nil, err
	}
	return checker.CheckFile(params.Data, nil)
}
