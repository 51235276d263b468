package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UpdateWorkflowRequest is a stage and/or assignment change. A nil NewStage
// (or one equal to the current stage) makes this an assignment-only update.
type UpdateWorkflowRequest struct {
	WorkflowID    uuid.UUID  `json:"workflow_id"`
	NewStage      *Stage     `json:"new_stage,omitempty"`
	AssigneeID    *uuid.UUID `json:"assignee_id,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	AllowOverride bool       `json:"allow_override,omitempty"`
}

// CreateWorkflowRequest creates a filing period in its kind's initial stage.
type CreateWorkflowRequest struct {
	ClientID    uuid.UUID  `json:"client_id"`
	Kind        Kind       `json:"kind"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
}

// UpdateResult is the outcome of an accepted update.
type UpdateResult struct {
	Workflow *Workflow       `json:"workflow"`
	History  []HistoryEntry  `json:"history"`
	Rollover *RolloverResult `json:"rollover,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Service drives stage changes through validation, milestone bookkeeping,
// atomic persistence, rollover and notification.
type Service interface {
	CreateWorkflow(ctx context.Context, req CreateWorkflowRequest, actor Actor) (*Workflow, error)
	UpdateWorkflow(ctx context.Context, req UpdateWorkflowRequest, actor Actor) (*UpdateResult, error)
	GetWorkflow(ctx context.Context, id uuid.UUID) (*Workflow, error)
	GetActiveWorkflow(ctx context.Context, clientID uuid.UUID, kind Kind) (*Workflow, error)
	ListHistory(ctx context.Context, workflowID uuid.UUID) ([]HistoryEntry, error)
	ListForClient(ctx context.Context, clientID uuid.UUID) ([]Workflow, error)
}

type workflowService struct {
	repo     Repository
	rollover *RolloverEngine
	notifier NotificationPort
	activity ActivitySink
	now      func() time.Time
}

// NewService wires the engine. notifier and activity may be nil, in which
// case those side channels are skipped.
func NewService(repo Repository, rollover *RolloverEngine, notifier NotificationPort, activity ActivitySink) Service {
	return &workflowService{
		repo:     repo,
		rollover: rollover,
		notifier: notifier,
		activity: activity,
		now:      time.Now,
	}
}

func (s *workflowService) CreateWorkflow(ctx context.Context, req CreateWorkflowRequest, actor Actor) (*Workflow, error) {
	cat, err := CatalogFor(req.Kind)
	if err != nil {
		return nil, err
	}
	due, err := FilingDueFor(req.Kind, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	w := &Workflow{
		ClientID:       req.ClientID,
		Kind:           req.Kind,
		PeriodStart:    req.PeriodStart,
		PeriodEnd:      req.PeriodEnd,
		FilingDueDate:  due,
		CurrentStage:   cat.Initial(),
		AssignedUserID: req.AssigneeID,
	}
	entry := &HistoryEntry{
		ToStage:     cat.Initial(),
		ChangedAt:   s.now(),
		ActorUserID: actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Notes:       fmt.Sprintf("Period ending %s opened", req.PeriodEnd.Format("2006-01-02")),
	}
	if err := s.repo.Create(ctx, w, entry); err != nil {
		return nil, err
	}
	s.recordActivity(w.ID, actor, "workflow.created", string(w.Kind))
	return w, nil
}

func (s *workflowService) UpdateWorkflow(ctx context.Context, req UpdateWorkflowRequest, actor Actor) (*UpdateResult, error) {
	w, err := s.repo.GetByID(ctx, req.WorkflowID)
	if err != nil {
		return nil, err
	}
	cat, err := CatalogFor(w.Kind)
	if err != nil {
		return nil, err
	}

	requested := Stage("")
	if req.NewStage != nil {
		requested = *req.NewStage
	}
	check, err := ValidateTransition(cat, w.CurrentStage, requested, req.AllowOverride)
	if err != nil {
		return nil, err
	}
	if check.NoOp {
		return s.applyAssignmentOnly(ctx, w, req, actor)
	}

	from := w.CurrentStage
	wasTerminal := cat.IsTerminal(from)
	now := s.now()
	cleared := ApplyStageChange(cat, w, requested, actor, now)

	assigneeChanged := false
	if req.AssigneeID != nil && (w.AssignedUserID == nil || *w.AssignedUserID != *req.AssigneeID) {
		w.AssignedUserID = req.AssigneeID
		assigneeChanged = true
	}

	entry := &HistoryEntry{
		FromStage:   &from,
		ToStage:     requested,
		ChangedAt:   now,
		ActorUserID: actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Notes:       transitionNotes(req.Notes, check, cleared),
	}
	if err := s.repo.Save(ctx, w, entry); err != nil {
		return nil, err
	}

	result := &UpdateResult{Workflow: w, History: []HistoryEntry{*entry}}

	// Post-commit side effects. None of these may fail the transition.
	if !wasTerminal && w.IsCompleted {
		roll, err := s.rollover.RollForward(ctx, w, actor, now)
		if err != nil {
			log.Printf("rollover after filing workflow %s failed: %v", w.ID, err)
			result.Warnings = append(result.Warnings, "next period could not be created automatically")
		} else {
			result.Rollover = roll
		}
	} else if wasTerminal && !w.IsCompleted {
		deleted, err := s.rollover.CleanupUndo(ctx, w)
		if err != nil {
			log.Printf("rollover undo cleanup for workflow %s failed: %v", w.ID, err)
			result.Warnings = append(result.Warnings, "auto-created next period could not be removed")
		} else if deleted {
			result.Warnings = append(result.Warnings, "auto-created next period was removed")
		}
	}

	s.notifyStageChange(w, from, requested, actor)
	if assigneeChanged {
		s.notifyAssignment(w, *req.AssigneeID, actor)
	}
	s.recordActivity(w.ID, actor, "workflow.stage_changed", fmt.Sprintf("%s -> %s", from, requested))

	return result, nil
}

func (s *workflowService) applyAssignmentOnly(ctx context.Context, w *Workflow, req UpdateWorkflowRequest, actor Actor) (*UpdateResult, error) {
	if req.AssigneeID == nil && req.Notes == "" {
		return &UpdateResult{Workflow: w}, nil
	}

	notes := req.Notes
	assigneeChanged := false
	if req.AssigneeID != nil && (w.AssignedUserID == nil || *w.AssignedUserID != *req.AssigneeID) {
		w.AssignedUserID = req.AssigneeID
		assigneeChanged = true
		if notes != "" {
			notes += "; "
		}
		notes += fmt.Sprintf("Assigned to user %s", req.AssigneeID)
	}

	stage := w.CurrentStage
	entry := &HistoryEntry{
		FromStage:   &stage,
		ToStage:     stage,
		ChangedAt:   s.now(),
		ActorUserID: actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Notes:       notes,
	}
	if err := s.repo.Save(ctx, w, entry); err != nil {
		return nil, err
	}

	if assigneeChanged {
		s.notifyAssignment(w, *req.AssigneeID, actor)
		s.recordActivity(w.ID, actor, "workflow.assigned", req.AssigneeID.String())
	}
	return &UpdateResult{Workflow: w, History: []HistoryEntry{*entry}}, nil
}

func (s *workflowService) GetWorkflow(ctx context.Context, id uuid.UUID) (*Workflow, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *workflowService) GetActiveWorkflow(ctx context.Context, clientID uuid.UUID, kind Kind) (*Workflow, error) {
	return s.repo.LoadActive(ctx, clientID, kind)
}

func (s *workflowService) ListHistory(ctx context.Context, workflowID uuid.UUID) ([]HistoryEntry, error) {
	return s.repo.ListHistory(ctx, workflowID)
}

func (s *workflowService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]Workflow, error) {
	return s.repo.ListForClient(ctx, clientID)
}

// notifyStageChange dispatches after the transaction has committed and never
// blocks the response.
func (s *workflowService) notifyStageChange(w *Workflow, from, to Stage, actor Actor) {
	if s.notifier == nil {
		return
	}
	snapshot := *w
	go func() {
		if err := s.notifier.NotifyStageChange(context.Background(), &snapshot, from, to, actor); err != nil {
			log.Printf("stage change notification for workflow %s failed: %v", snapshot.ID, err)
		}
	}()
}

func (s *workflowService) notifyAssignment(w *Workflow, assigneeID uuid.UUID, actor Actor) {
	if s.notifier == nil {
		return
	}
	snapshot := *w
	go func() {
		if err := s.notifier.NotifyAssignment(context.Background(), &snapshot, assigneeID, actor); err != nil {
			log.Printf("assignment notification for workflow %s failed: %v", snapshot.ID, err)
		}
	}()
}

func (s *workflowService) recordActivity(workflowID uuid.UUID, actor Actor, action, detail string) {
	if s.activity == nil {
		return
	}
	go func() {
		if err := s.activity.Record(context.Background(), workflowID, actor, action, detail); err != nil {
			log.Printf("activity record %s for workflow %s failed: %v", action, workflowID, err)
		}
	}()
}

func transitionNotes(userNotes string, check TransitionCheck, cleared []Stage) string {
	parts := []string{}
	if userNotes != "" {
		parts = append(parts, userNotes)
	}
	if check.Skip {
		parts = append(parts, fmt.Sprintf("Skipped %d stage(s) with override", len(check.SkippedStages)))
	}
	if check.Undo && len(cleared) > 0 {
		names := make([]string, len(cleared))
		for i, s := range cleared {
			names[i] = string(s)
		}
		parts = append(parts, "Undo cleared: "+strings.Join(names, ", "))
	}
	return strings.Join(parts, "; ")
}
