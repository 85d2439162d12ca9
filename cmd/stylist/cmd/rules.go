package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/stylist/internal/catalog"
)

// ruleInfo is one catalog entry in machine-readable output.
type ruleInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Fixable  bool   `json:"fixable"`
	DocURL   string `json:"docUrl,omitempty"`
}

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List the rule catalog with effective severities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ruleset",
				Aliases: []string{"r"},
				Usage:   "Path to ruleset file (default: auto-discover)",
				Sources: cli.EnvVars("STYLIST_RULESET"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the catalog as JSON",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd, nil, nil)
			if err != nil {
				return configError(cmd, "failed to load ruleset: %v", err)
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return configError(cmd, "%v", err)
			}

			infos := catalogInfo(cat)
			w := outWriter(cmd)
			if cmd.Bool("json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "SEVERITY", "FIX", "CATEGORY", "TITLE")
			for _, info := range infos {
				fixable := ""
				if info.Fixable {
					fixable = "yes"
				}
				t.Row(info.ID, info.Severity, fixable, info.Category, info.Title)
			}
			_, err = fmt.Fprintln(w, t.String())
			return err
		},
	}
}

func catalogInfo(cat *catalog.Catalog) []ruleInfo {
	descs := cat.Descriptors()
	sev := cat.Severities()
	out := make([]ruleInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, ruleInfo{
			ID:       d.ID,
			Name:     d.Name,
			Title:    d.Title,
			Category: d.Category,
			Severity: sev.Effective(d.ID, d.DefaultSeverity).String(),
			Fixable:  cat.HasFixer(d.ID),
			DocURL:   d.DocURL,
		})
	}
	return out
}
