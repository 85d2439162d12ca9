package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gkampitakis/ciinfo"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/stylist/internal/catalog"
	"github.com/wharflab/stylist/internal/config"
	"github.com/wharflab/stylist/internal/logging"
	"github.com/wharflab/stylist/internal/rules"
	_ "github.com/wharflab/stylist/internal/rules/all" // Register all rules
	"github.com/wharflab/stylist/internal/workspace"
)

// sharedFlags are accepted by every command that loads targets.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "ruleset",
			Aliases: []string{"r"},
			Usage:   "Path to ruleset file (default: auto-discover)",
			Sources: cli.EnvVars("STYLIST_RULESET"),
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to .editorconfig style config (default: nearest above the target)",
			Sources: cli.EnvVars("STYLIST_STYLE_CONFIG"),
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Maximum units loaded and scanned in parallel (0 = GOMAXPROCS)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob pattern to exclude files (can be repeated)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log per-document progress",
			Sources: cli.EnvVars("STYLIST_VERBOSE"),
		},
	}
}

// scanOverrides collects the flags shared by check and fix into koanf overrides.
func scanOverrides(cmd *cli.Command) map[string]any {
	overrides := map[string]any{}
	scan := map[string]any{}
	if cmd.IsSet("concurrency") {
		scan["concurrency"] = cmd.Int("concurrency")
	}
	if cmd.IsSet("exclude") {
		scan["exclude"] = cmd.StringSlice("exclude")
	}
	if len(scan) > 0 {
		overrides["scan"] = scan
	}
	return overrides
}

// loadConfig loads the ruleset for the first target, applying CLI overrides.
func loadConfig(cmd *cli.Command, targets []string, overrides map[string]any) (*config.Config, error) {
	target := "."
	if len(targets) > 0 {
		target = targets[0]
	}
	return config.LoadWithOverrides(target, cmd.String("ruleset"), overrides)
}

// loadCatalog builds the active rule set from the default registry.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	severities, err := cfg.Severities()
	if err != nil {
		return nil, err
	}
	return catalog.Load(rules.DefaultRegistry(), severities)
}

// newLoader returns a source loader honoring the scan settings.
func newLoader(cfg *config.Config) *workspace.Loader {
	return &workspace.Loader{
		Concurrency: cfg.Scan.Concurrency,
		Exclude:     cfg.Scan.Exclude,
	}
}

// withLogger attaches a stderr logger to ctx. Colors are used only on an
// interactive terminal outside CI.
func withLogger(ctx context.Context, cmd *cli.Command) (context.Context, *logrus.Logger) {
	w := errWriter(cmd)
	log := logging.New(w, logging.Options{
		Verbose: cmd.Bool("verbose"),
		Color:   isTerminal(w) && !ciinfo.IsCI,
	})
	return logging.WithLogger(ctx, log), log
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// useColor reports whether styled output should be written to w.
func useColor(cmd *cli.Command, w io.Writer) bool {
	if cmd.Bool("no-color") {
		return false
	}
	return isTerminal(w) && termenv.EnvColorProfile() != termenv.Ascii
}

// configError prints err and returns the configuration exit code.
func configError(cmd *cli.Command, format string, args ...any) error {
	fmt.Fprintf(errWriter(cmd), "Error: "+format+"\n", args...)
	return cli.Exit("", ExitConfigError)
}

// loadError maps a target loading failure to an exit code.
func loadError(cmd *cli.Command, err error) error {
	var cfgErr *workspace.ConfigurationError
	if errors.As(err, &cfgErr) {
		return configError(cmd, "%v", cfgErr)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return configError(cmd, "failed to load sources: %v", err)
}
