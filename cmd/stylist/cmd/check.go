package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/stylist/internal/catalog"
	"github.com/wharflab/stylist/internal/config"
	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/reporter"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/scanner"
	"github.com/wharflab/stylist/internal/version"
	"github.com/wharflab/stylist/internal/workspace"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check Go sources for style violations",
		ArgsUsage: "TARGET...",
		Flags: append(sharedFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, xml, json, sarif",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: stdout, stderr, or file path",
			},
			&cli.StringFlag{
				Name:  "fail-level",
				Usage: "Minimum severity to cause non-zero exit: error, warning, info, none",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
		),
		Action: runCheck,
	}
}

// checkOverrides maps check flags onto ruleset keys.
func checkOverrides(cmd *cli.Command) map[string]any {
	overrides := scanOverrides(cmd)
	output := map[string]any{}
	for flag, key := range map[string]string{"format": "format", "output": "path", "fail-level": "fail-level"} {
		if cmd.IsSet(flag) {
			output[key] = cmd.String(flag)
		}
	}
	if len(output) > 0 {
		overrides["output"] = output
	}
	return overrides
}

// runCheck is the action handler for the check command.
func runCheck(ctx context.Context, cmd *cli.Command) error {
	targets := cmd.Args().Slice()
	if len(targets) == 0 {
		fmt.Fprintln(errWriter(cmd), "Error: no targets given")
		return cli.Exit("", ExitNoFiles)
	}

	cfg, err := loadConfig(cmd, targets, checkOverrides(cmd))
	if err != nil {
		return configError(cmd, "failed to load ruleset: %v", err)
	}

	// Everything the report needs is validated before any source is read.
	format, err := reporter.ParseFormat(cfg.Output.Format)
	if err != nil {
		return configError(cmd, "%v", err)
	}
	threshold, never, err := cfg.FailSeverity()
	if err != nil {
		return configError(cmd, "%v", err)
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return configError(cmd, "%v", err)
	}

	ctx, _ = withLogger(ctx, cmd)
	diags, sol, err := scanTargets(ctx, cmd, cfg, cat, targets)
	if err != nil {
		return loadError(cmd, err)
	}

	filesScanned := len(sol.Documents())
	if filesScanned == 0 {
		fmt.Fprintln(errWriter(cmd), "Error: no Go source files found")
		return cli.Exit("", ExitNoFiles)
	}

	if err := writeReport(cmd, cfg, format, cat, diags, sol, filesScanned); err != nil {
		return err
	}

	if !never && slices.ContainsFunc(diags, func(d rules.Diagnostic) bool {
		return d.Severity.IsAtLeast(threshold)
	}) {
		return cli.Exit("", ExitViolations)
	}
	return nil
}

// scanTargets loads and scans every target. The returned snapshot holds the
// units of all targets so reporters can look documents up.
func scanTargets(
	ctx context.Context, cmd *cli.Command, cfg *config.Config, cat *catalog.Catalog, targets []string,
) ([]rules.Diagnostic, *workspace.Solution, error) {
	loader := newLoader(cfg)
	sc := scanner.New(engine.New(), cfg.Scan.Concurrency)

	var (
		diags    []rules.Diagnostic
		projects []*workspace.Project
	)
	for _, target := range targets {
		sol, err := loader.Load(ctx, target, cmd.String("config"))
		if err != nil {
			return nil, nil, err
		}
		found, err := sc.Scan(ctx, sol, cat.Analyzers(), cat.Severities())
		if err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", target, err)
		}
		diags = append(diags, found...)
		projects = append(projects, sol.Projects()...)
	}
	return diags, workspace.NewSolution(projects...), nil
}

// writeReport formats and writes the diagnostic report.
func writeReport(
	cmd *cli.Command, cfg *config.Config, format reporter.Format, cat *catalog.Catalog,
	diags []rules.Diagnostic, sol *workspace.Solution, filesScanned int,
) error {
	writer, closeWriter, err := openOutput(cmd, cfg.Output.Path)
	if err != nil {
		return configError(cmd, "%v", err)
	}
	defer func() {
		if err := closeWriter(); err != nil {
			fmt.Fprintf(errWriter(cmd), "Warning: failed to close output: %v\n", err)
		}
	}()

	color := useColor(cmd, writer)
	rep, err := reporter.New(reporter.Options{
		Format:      format,
		Writer:      writer,
		Color:       &color,
		Rules:       cat.Descriptors(),
		ToolName:    "stylist",
		ToolVersion: version.RawVersion(),
		ToolURI:     "https://github.com/wharflab/stylist",
	})
	if err != nil {
		return configError(cmd, "failed to create reporter: %v", err)
	}

	metadata := reporter.ReportMetadata{
		FilesScanned: filesScanned,
		RulesEnabled: enabledRules(cat),
	}
	if err := rep.Report(diags, sol, metadata); err != nil {
		fmt.Fprintf(errWriter(cmd), "Error: failed to write output: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	return nil
}

// openOutput resolves the output path. stdout and stderr go through the
// command's writers.
func openOutput(cmd *cli.Command, path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return outWriter(cmd), func() error { return nil }, nil
	case "stderr":
		return errWriter(cmd), func() error { return nil }, nil
	default:
		return reporter.GetWriter(path)
	}
}

func enabledRules(cat *catalog.Catalog) int {
	n := 0
	for _, d := range cat.Descriptors() {
		if !cat.IsExcluded(d.ID) {
			n++
		}
	}
	return n
}
