package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/stylist/internal/version"
)

// Exit codes
const (
	ExitSuccess     = 0 // No violations (or below fail-level threshold)
	ExitViolations  = 1 // Violations found at or above fail-level
	ExitConfigError = 2 // Ruleset, format, target, or rule id error
	ExitNoFiles     = 3 // No targets given or no Go sources found
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "stylist",
		Usage:   "A style-rule checker and fixer for Go sources",
		Version: version.Version(),
		Description: `stylist checks Go files, directories, modules and workspaces against
a catalog of style rules and applies the fixes those rules offer.

Severities come from a ruleset file (stylist.ruleset.toml), formatting
properties from .editorconfig.

Examples:
  stylist check ./...
  stylist check --format xml --output report.xml go.mod
  stylist fix --id ST1000 .
  stylist rules`,
		Commands: []*cli.Command{
			checkCommand(),
			fixCommand(),
			rulesCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
