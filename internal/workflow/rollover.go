package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerline/practice-portal/practice-portal-backend/internal/deadlines"
)

// RolloverEngine spawns the next filing period's workflow when one reaches a
// filed terminal stage, and cleans up after itself when that filing is
// undone. Its failures are reported to the caller but must never fail or
// roll back the stage transition that triggered it.
type RolloverEngine struct {
	repo Repository
}

// NewRolloverEngine creates a rollover engine over the given repository.
func NewRolloverEngine(repo Repository) *RolloverEngine {
	return &RolloverEngine{repo: repo}
}

// RolloverResult describes the next-period workflow after a rollover.
type RolloverResult struct {
	Workflow           *Workflow `json:"workflow"`
	Created            bool      `json:"created"`
	AssigneeBackfilled bool      `json:"assignee_backfilled"`
}

// NextPeriod derives the following filing period's bounds from a completed
// one. Non-Ltd years are fixed 5 April to 5 April; Ltd years move both ends
// forward one year; VAT moves to the next stagger quarter.
func NextPeriod(w *Workflow) (start, end time.Time, err error) {
	switch w.Kind {
	case KindNonLtd:
		return w.PeriodStart.AddDate(1, 0, 0), deadlines.TaxYearEnd(w.PeriodEnd.Year() + 1), nil
	case KindLtd:
		return w.PeriodStart.AddDate(1, 0, 0), w.PeriodEnd.AddDate(1, 0, 0), nil
	case KindVAT:
		return w.PeriodEnd.AddDate(0, 0, 1), deadlines.NextQuarterEnd(w.PeriodEnd), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}
}

// FilingDueFor derives the statutory filing deadline for a period end.
func FilingDueFor(kind Kind, periodEnd time.Time) (time.Time, error) {
	switch kind {
	case KindLtd:
		return deadlines.AccountsFilingDue(periodEnd), nil
	case KindNonLtd:
		return deadlines.SelfAssessmentFilingDue(periodEnd), nil
	case KindVAT:
		return deadlines.VATFilingDue(periodEnd), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// RollForward ensures the next period's workflow exists after the given one
// was filed. Idempotent: an existing next-period workflow is left alone,
// except that an unset assignee is backfilled from the completed period. A
// duplicate-key failure from a concurrent rollover is treated as "already
// rolled over".
func (e *RolloverEngine) RollForward(ctx context.Context, completed *Workflow, actor Actor, now time.Time) (*RolloverResult, error) {
	nextStart, nextEnd, err := NextPeriod(completed)
	if err != nil {
		return nil, err
	}

	existing, err := e.repo.FindByPeriodEnd(ctx, completed.ClientID, completed.Kind, nextEnd)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return e.backfillAssignee(ctx, existing, completed, actor, now)
	}

	cat, err := CatalogFor(completed.Kind)
	if err != nil {
		return nil, err
	}
	due, err := FilingDueFor(completed.Kind, nextEnd)
	if err != nil {
		return nil, err
	}

	next := &Workflow{
		ClientID:              completed.ClientID,
		Kind:                  completed.Kind,
		PeriodStart:           nextStart,
		PeriodEnd:             nextEnd,
		FilingDueDate:         due,
		CurrentStage:          cat.Initial(),
		AssignedUserID:        completed.AssignedUserID,
		CreatedByRolloverFrom: &completed.ID,
	}
	entry := &HistoryEntry{
		ToStage:     cat.Initial(),
		ChangedAt:   now,
		ActorUserID: actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Notes:       fmt.Sprintf("Auto-created on filing of period ending %s", completed.PeriodEnd.Format("2006-01-02")),
	}
	if err := e.repo.Create(ctx, next, entry); err != nil {
		if errors.Is(err, ErrDuplicatePeriod) {
			// Lost the race to a concurrent rollover; fetch the winner.
			existing, findErr := e.repo.FindByPeriodEnd(ctx, completed.ClientID, completed.Kind, nextEnd)
			if findErr != nil || existing == nil {
				return nil, err
			}
			return &RolloverResult{Workflow: existing}, nil
		}
		return nil, err
	}
	return &RolloverResult{Workflow: next, Created: true}, nil
}

func (e *RolloverEngine) backfillAssignee(ctx context.Context, existing, completed *Workflow, actor Actor, now time.Time) (*RolloverResult, error) {
	if existing.AssignedUserID != nil || completed.AssignedUserID == nil {
		return &RolloverResult{Workflow: existing}, nil
	}
	existing.AssignedUserID = completed.AssignedUserID
	stage := existing.CurrentStage
	entry := &HistoryEntry{
		FromStage:   &stage,
		ToStage:     stage,
		ChangedAt:   now,
		ActorUserID: actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Notes:       "Assignee carried over from the filed prior period",
	}
	if err := e.repo.Save(ctx, existing, entry); err != nil {
		return nil, err
	}
	return &RolloverResult{Workflow: existing, AssigneeBackfilled: true}, nil
}

// CleanupUndo removes the next-period workflow that a now-undone filing
// auto-created, provided it is still a pure rollover artifact: in its
// initial stage and not completed. A workflow showing any independent
// progress survives untouched. Returns whether a workflow was deleted.
func (e *RolloverEngine) CleanupUndo(ctx context.Context, reopened *Workflow) (bool, error) {
	_, nextEnd, err := NextPeriod(reopened)
	if err != nil {
		return false, err
	}
	candidate, err := e.repo.FindByPeriodEnd(ctx, reopened.ClientID, reopened.Kind, nextEnd)
	if err != nil || candidate == nil {
		return false, err
	}

	cat, err := CatalogFor(candidate.Kind)
	if err != nil {
		return false, err
	}
	if candidate.CurrentStage != cat.Initial() || candidate.IsCompleted {
		return false, nil
	}
	// Workflows created before the rollover link existed carry no origin;
	// the initial-stage check above is the legacy heuristic for those.
	if candidate.CreatedByRolloverFrom != nil && *candidate.CreatedByRolloverFrom != reopened.ID {
		return false, nil
	}

	if err := e.repo.DeleteWithHistory(ctx, candidate.ID); err != nil {
		return false, err
	}
	return true, nil
}
