// Package remediate drives rule-by-rule fixing of targets.
//
// For every target and every rule in scope the orchestrator reloads the
// target from storage, scans for that rule only, applies at most one fix per
// document and fixer, and persists each change set right away. Reloading per
// rule keeps every rule's diagnostics consistent with what is on disk.
package remediate

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/wharflab/stylist/internal/catalog"
	"github.com/wharflab/stylist/internal/fix"
	"github.com/wharflab/stylist/internal/logging"
	"github.com/wharflab/stylist/internal/persist"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/scanner"
	"github.com/wharflab/stylist/internal/workspace"
)

// Source loads a resolved target from storage.
type Source interface {
	LoadTarget(ctx context.Context, t workspace.Target, styleConfigPath string) (*workspace.Solution, error)
}

// Persister writes a change set to storage.
type Persister interface {
	Persist(ctx context.Context, trigger *workspace.Document, cs workspace.ChangeSet) (persist.Result, error)
}

// Orchestrator fixes targets one rule at a time.
type Orchestrator struct {
	Source    Source
	Catalog   *catalog.Catalog
	Scanner   *scanner.Scanner
	Applier   *fix.Applier
	Persister Persister

	// StyleConfigPath overrides style-config discovery when set.
	StyleConfigPath string
}

// Remediate fixes every target. With ruleFilter set only that rule is
// fixed; an id no active analyzer reports is logged and the target skipped.
//
// Failures inside a rule pass are logged and the next rule proceeds, except
// precondition violations, which abort the run. Cancellation is checked
// before every rule pass and every document; files already written stay
// written.
func (o *Orchestrator) Remediate(ctx context.Context, targets []string, ruleFilter string) (*Summary, error) {
	summary := newSummary()

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		t, err := workspace.ResolveTarget(target)
		if err != nil {
			return summary, err
		}
		summary.Targets++
		log := logging.FromContext(ctx).WithField("target", t.Path)

		ids, ok := o.rulesInScope(ruleFilter)
		if !ok {
			log.WithField("rule", ruleFilter).Error("unknown rule id; target skipped")
			continue
		}

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			summary.RulePasses++
			err := o.rulePass(ctx, t, id, summary)
			if err == nil {
				continue
			}
			var pv *rules.PreconditionViolation
			if errors.As(err, &pv) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			log.WithField("rule", id).Errorf("rule pass failed: %v", err)
			summary.Failures = append(summary.Failures, RuleFailure{Target: t.Path, RuleID: id, Err: err})
		}
	}
	return summary, nil
}

// rulesInScope returns the ids to fix in order. ok is false for an unknown
// filter id.
func (o *Orchestrator) rulesInScope(ruleFilter string) ([]string, bool) {
	if ruleFilter != "" {
		if o.Catalog.Rule(ruleFilter) == nil || o.Catalog.IsExcluded(ruleFilter) {
			return nil, false
		}
		return []string{ruleFilter}, true
	}
	var ids []string
	for _, a := range o.Catalog.Analyzers() {
		for _, d := range a.Descriptors() {
			if !o.Catalog.IsExcluded(d.ID) {
				ids = append(ids, d.ID)
			}
		}
	}
	return ids, true
}

// rulePass runs one reload-scan-fix-persist cycle for id. Panics are turned
// into errors; a panic carrying a precondition violation keeps its type.
func (o *Orchestrator) rulePass(ctx context.Context, t workspace.Target, id string, summary *Summary) (err error) {
	log := logging.FromContext(ctx).WithFields(logrus.Fields{"target": t.Path, "rule": id})
	defer func() {
		if r := recover(); r != nil {
			if pv, ok := r.(*rules.PreconditionViolation); ok {
				err = pv
				return
			}
			log.Debugf("rule pass panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	sol, err := o.Source.LoadTarget(ctx, t, o.StyleConfigPath)
	if err != nil {
		return fmt.Errorf("reload target: %w", err)
	}

	analyzers, severities := scanner.ForRule(o.Catalog.Analyzers(), o.Catalog.Severities(), id)
	diags, err := o.Scanner.Scan(ctx, sol, analyzers, severities)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	diags = onlyRule(diags, id)
	if len(diags) == 0 {
		log.Debug("no diagnostics")
		return nil
	}
	summary.Diagnostics += len(diags)

	fixers := o.Catalog.FixersFor(id)
	byDoc := groupByDocument(diags)
	if len(fixers) == 0 {
		log.WithField("diagnostics", len(diags)).Info("not fixed: no fixer available")
		summary.skip(fix.SkipNoFixer, len(byDoc))
		return nil
	}

	// Every fix is computed against the scanned snapshot. A document changed
	// once is left alone until the next reload.
	dirty := map[string]bool{}
	for _, dg := range byDoc {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := sol.Document(dg.documentID)
		if doc == nil {
			log.WithField("document", dg.documentID).Debug("diagnostics not tied to a document")
			continue
		}
		group, err := rules.NewDiagnosticGroup(dg.diagnostics)
		if err != nil {
			return err
		}

		for _, fixer := range fixers {
			summary.Attempts++
			if dirty[doc.ID] {
				summary.skip(fix.SkipStale, 1)
				continue
			}
			attempt, err := o.Applier.Apply(ctx, sol, doc, group, fixer)
			if err != nil {
				var pv *rules.PreconditionViolation
				if errors.As(err, &pv) {
					return err
				}
				log.WithFields(logrus.Fields{"document": doc.DisplayPath(), "fixer": fmt.Sprintf("%T", fixer)}).
					Errorf("fix failed: %v", err)
				summary.skip(fix.SkipResolveError, 1)
				continue
			}
			if !attempt.Applied() {
				summary.skip(attempt.Skip, 1)
				continue
			}

			res, err := o.Persister.Persist(ctx, doc, attempt.Changes)
			summary.Files.Add(res)
			if err != nil {
				return err
			}
			summary.Applied++
			markDirty(dirty, attempt.Changes)
		}
	}
	return nil
}

// documentDiagnostics is one document's diagnostics in scan order.
type documentDiagnostics struct {
	documentID  string
	diagnostics []rules.Diagnostic
}

// groupByDocument groups diagnostics per document, keeping first-seen
// document order.
func groupByDocument(diags []rules.Diagnostic) []documentDiagnostics {
	index := map[string]int{}
	var out []documentDiagnostics
	for _, d := range diags {
		i, ok := index[d.DocumentID]
		if !ok {
			i = len(out)
			index[d.DocumentID] = i
			out = append(out, documentDiagnostics{documentID: d.DocumentID})
		}
		out[i].diagnostics = append(out[i].diagnostics, d)
	}
	return out
}

func onlyRule(diags []rules.Diagnostic, id string) []rules.Diagnostic {
	out := diags[:0:0]
	for _, d := range diags {
		if d.RuleID == id {
			out = append(out, d)
		}
	}
	return out
}

func markDirty(dirty map[string]bool, cs workspace.ChangeSet) {
	for _, d := range cs.Changed {
		dirty[d.ID] = true
	}
	for _, d := range cs.Removed {
		dirty[d.ID] = true
	}
	for _, d := range cs.Added {
		dirty[d.ID] = true
	}
}
