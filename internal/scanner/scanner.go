// Package scanner computes diagnostics for a snapshot.
package scanner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/logging"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// Scanner evaluates analyzers over every unit of a snapshot.
type Scanner struct {
	Engine engine.Engine

	// Concurrency bounds the number of units evaluated at once.
	// Zero means GOMAXPROCS.
	Concurrency int
}

// New returns a scanner using eng.
func New(eng engine.Engine, concurrency int) *Scanner {
	return &Scanner{Engine: eng, Concurrency: concurrency}
}

// Scan returns the reportable diagnostics for sol. Unit severity overrides win
// over severities. Results are ordered by unit, then in engine order within a
// unit. The snapshot is never modified.
func (s *Scanner) Scan(
	ctx context.Context,
	sol *workspace.Solution,
	analyzers []rules.Analyzer,
	severities rules.SeverityMap,
) ([]rules.Diagnostic, error) {
	projects := sol.Projects()
	if len(projects) == 0 || len(analyzers) == 0 {
		return nil, nil
	}

	jobs := s.Concurrency
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([][]rules.Diagnostic, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, p := range projects {
		g.Go(func() error {
			effective, err := unitSeverities(severities, p)
			if err != nil {
				return err
			}
			diags, err := s.Engine.Evaluate(gctx, sol, p, analyzers, effective)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", p.Name, err)
			}
			results[i] = filterExcluded(diags, effective)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []rules.Diagnostic
	for i, diags := range results {
		logging.FromContext(ctx).WithField("unit", projects[i].Name).Debugf("%d diagnostics", len(diags))
		out = append(out, diags...)
	}
	return out, nil
}

// unitSeverities layers the unit's own overrides over the global map.
func unitSeverities(global rules.SeverityMap, p *workspace.Project) (rules.SeverityMap, error) {
	if len(p.SeverityOverrides) == 0 {
		return global, nil
	}
	overrides, err := rules.ParseSeverityMap(p.SeverityOverrides)
	if err != nil {
		return nil, &workspace.ConfigurationError{Path: p.ID, Reason: "invalid unit severity overrides", Err: err}
	}
	return global.Merge(overrides), nil
}

// filterExcluded drops diagnostics that are hidden or suppressed, whatever
// the engine returned.
func filterExcluded(diags []rules.Diagnostic, severities rules.SeverityMap) []rules.Diagnostic {
	out := diags[:0:0]
	for _, d := range diags {
		if d.Severity.IsExcluded() || severities.IsExcluded(d.RuleID) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// ForRule restricts analyzers to the one reporting id and severities to
// exclude every other id of that analyzer. It returns nil analyzers when no
// analyzer reports id.
func ForRule(analyzers []rules.Analyzer, severities rules.SeverityMap, id string) ([]rules.Analyzer, rules.SeverityMap) {
	for _, a := range analyzers {
		var owns bool
		others := rules.SeverityMap{}
		for _, d := range a.Descriptors() {
			if d.ID == id {
				owns = true
				continue
			}
			others[d.ID] = rules.SeveritySuppress
		}
		if owns {
			return []rules.Analyzer{a}, severities.Merge(others)
		}
	}
	return nil, severities
}
