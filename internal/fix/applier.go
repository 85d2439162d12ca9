package fix

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/logging"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// Applier asks one fixer for one action on one document and computes the
// change set it produces.
type Applier struct {
	Engine engine.Engine
}

// NewApplier returns an applier using eng.
func NewApplier(eng engine.Engine) *Applier {
	return &Applier{Engine: eng}
}

// Apply produces at most one change set for doc.
//
// The bulk path is used when the fixer supports it for doc; otherwise only
// the first action for the first diagnostic is taken. An action without
// operations counts as no action; one with several operations is discarded.
//
// An invalid group, a nil fixer or a nil document is a *rules.PreconditionViolation.
// Failures inside the fixer are returned as errors with the attempt marked
// SkipResolveError.
func (a *Applier) Apply(
	ctx context.Context,
	sol *workspace.Solution,
	doc *workspace.Document,
	group rules.DiagnosticGroup,
	fixer rules.Fixer,
) (Attempt, error) {
	switch {
	case !group.Valid():
		return Attempt{}, &rules.PreconditionViolation{Reason: "fix requested for an empty diagnostic group"}
	case fixer == nil:
		return Attempt{}, &rules.PreconditionViolation{Reason: "fix requested without a fixer"}
	case doc == nil:
		return Attempt{}, &rules.PreconditionViolation{Reason: "fix requested without a document"}
	case group.DocumentID() != doc.ID:
		return Attempt{}, &rules.PreconditionViolation{
			Reason: fmt.Sprintf("diagnostic group for %q applied to document %q", group.DocumentID(), doc.ID),
		}
	}

	attempt := Attempt{RuleID: group.RuleID(), Document: doc, Group: group, Fixer: fixer}
	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"rule":     group.RuleID(),
		"document": doc.DisplayPath(),
		"fixer":    fmt.Sprintf("%T", fixer),
	})

	action, err := a.selectAction(ctx, sol, doc, group, fixer, &attempt)
	if err != nil {
		attempt.Skip = SkipResolveError
		return attempt, err
	}
	if action == nil {
		log.Debug("fixer offered no action")
		attempt.Skip = SkipNoAction
		return attempt, nil
	}
	attempt.Action = action.Title

	count, after, err := a.Engine.Materialize(ctx, sol, *action)
	if errors.Is(err, engine.ErrNoOperations) {
		count, err = 0, nil
	}
	if err != nil {
		attempt.Skip = SkipResolveError
		return attempt, err
	}
	if count == 0 {
		log.WithField("action", action.Title).Debug("fix action has no operations")
		attempt.Skip = SkipNoAction
		return attempt, nil
	}
	if count > 1 {
		log.WithField("operations", count).Warn("only a single edit operation is supported")
		attempt.Skip = SkipMultiOperation
		return attempt, nil
	}

	attempt.Changes = workspace.Diff(sol, after)
	if attempt.Changes.IsEmpty() {
		attempt.Skip = SkipNoChanges
	}
	log.WithField("action", action.Title).Debugf("fix produced %d document changes", attempt.Changes.Len())
	return attempt, nil
}

func (a *Applier) selectAction(
	ctx context.Context,
	sol *workspace.Solution,
	doc *workspace.Document,
	group rules.DiagnosticGroup,
	fixer rules.Fixer,
	attempt *Attempt,
) (*rules.FixAction, error) {
	if a.Engine.HasBulkCapability(fixer, doc) {
		attempt.Bulk = true
		action, err := a.Engine.BulkFix(ctx, sol, doc, group, fixer)
		if err != nil {
			return nil, fmt.Errorf("bulk fix: %w", err)
		}
		return action, nil
	}

	actions, err := a.Engine.FixActions(ctx, sol, doc, group.First(), fixer)
	if err != nil {
		return nil, fmt.Errorf("fix actions: %w", err)
	}
	if len(actions) == 0 {
		return nil, nil
	}
	return &actions[0], nil
}
