package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/fix"
	"github.com/wharflab/stylist/internal/persist"
	"github.com/wharflab/stylist/internal/remediate"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/scanner"
	"github.com/wharflab/stylist/internal/workspace"
)

func fixCommand() *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "Apply rule fixes to Go sources, one rule at a time",
		ArgsUsage: "TARGET...",
		Flags: append(sharedFlags(),
			&cli.StringFlag{
				Name:    "id",
				Usage:   "Only fix the rule with this diagnostic id",
				Sources: cli.EnvVars("STYLIST_FIX_ID"),
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Compute fixes without writing any file",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
		),
		Action: runFix,
	}
}

// runFix is the action handler for the fix command.
func runFix(ctx context.Context, cmd *cli.Command) error {
	targets := cmd.Args().Slice()
	if len(targets) == 0 {
		fmt.Fprintln(errWriter(cmd), "Error: no targets given")
		return cli.Exit("", ExitNoFiles)
	}

	overrides := scanOverrides(cmd)
	if cmd.IsSet("dry-run") {
		overrides["fix"] = map[string]any{"dry-run": cmd.Bool("dry-run")}
	}
	cfg, err := loadConfig(cmd, targets, overrides)
	if err != nil {
		return configError(cmd, "failed to load ruleset: %v", err)
	}

	id := cmd.String("id")
	if id != "" {
		if _, ok := rules.DefaultRegistry().Descriptor(id); !ok {
			return configError(cmd, "unknown rule id %q", id)
		}
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return configError(cmd, "%v", err)
	}

	ctx, log := withLogger(ctx, cmd)
	eng := engine.New()
	orch := &remediate.Orchestrator{
		Source:          newLoader(cfg),
		Catalog:         cat,
		Scanner:         scanner.New(eng, cfg.Scan.Concurrency),
		Applier:         fix.NewApplier(eng),
		Persister:       persist.NewWriter(cfg.Fix.DryRun),
		StyleConfigPath: cmd.String("config"),
	}
	log.WithField("dry-run", cfg.Fix.DryRun).Debugf("fixing %d targets", len(targets))

	summary, err := orch.Remediate(ctx, targets, id)
	if summary != nil {
		w := errWriter(cmd)
		writeFixSummary(w, summary, cfg.Fix.DryRun, useColor(cmd, w))
	}
	if err != nil {
		var cfgErr *workspace.ConfigurationError
		if errors.As(err, &cfgErr) {
			return configError(cmd, "%v", cfgErr)
		}
		return err
	}
	return nil
}
