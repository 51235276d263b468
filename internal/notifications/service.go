package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// UserLookup resolves a user's notification address.
type UserLookup interface {
	EmailFor(ctx context.Context, userID uuid.UUID) (string, error)
}

// Service implements workflow.NotificationPort: every notification is stored
// as an in-app row, and emailed to the affected user when an address can be
// resolved. Email failures mark the row failed but are not fatal.
type Service struct {
	db    *gorm.DB
	email *EmailChannel
	users UserLookup
}

// NewService creates the notification service. email may be nil when no SES
// configuration is present; delivery then stops at the in-app row.
func NewService(db *gorm.DB, email *EmailChannel, users UserLookup) *Service {
	return &Service{db: db, email: email, users: users}
}

var _ workflow.NotificationPort = (*Service)(nil)

// NotifyStageChange records and emails a stage transition.
func (s *Service) NotifyStageChange(ctx context.Context, w *workflow.Workflow, from, to workflow.Stage, actor workflow.Actor) error {
	subject := fmt.Sprintf("%s %s moved to %s", w.Kind, w.PeriodEnd.Format("Jan 2006"), to)
	body := fmt.Sprintf("%s moved the %s workflow for period ending %s from %s to %s.",
		actor.Name, w.Kind, w.PeriodEnd.Format("02 Jan 2006"), from, to)
	return s.dispatch(ctx, CategoryStageChange, w, w.AssignedUserID, subject, body)
}

// NotifyAssignment records and emails a new assignment.
func (s *Service) NotifyAssignment(ctx context.Context, w *workflow.Workflow, assigneeID uuid.UUID, actor workflow.Actor) error {
	subject := fmt.Sprintf("%s %s assigned to you", w.Kind, w.PeriodEnd.Format("Jan 2006"))
	body := fmt.Sprintf("%s assigned you the %s workflow for period ending %s (currently %s).",
		actor.Name, w.Kind, w.PeriodEnd.Format("02 Jan 2006"), w.CurrentStage)
	return s.dispatch(ctx, CategoryAssignment, w, &assigneeID, subject, body)
}

// NotifyDeadlineApproaching records and emails an upcoming statutory
// deadline, used by the reminder scheduler.
func (s *Service) NotifyDeadlineApproaching(ctx context.Context, w *workflow.Workflow, daysRemaining int) error {
	subject := fmt.Sprintf("%s filing due in %d day(s)", w.Kind, daysRemaining)
	body := fmt.Sprintf("The %s filing for period ending %s is due on %s and the workflow is at %s.",
		w.Kind, w.PeriodEnd.Format("02 Jan 2006"), w.FilingDueDate.Format("02 Jan 2006"), w.CurrentStage)
	return s.dispatch(ctx, CategoryDeadlineReminder, w, w.AssignedUserID, subject, body)
}

func (s *Service) dispatch(ctx context.Context, category Category, w *workflow.Workflow, userID *uuid.UUID, subject, body string) error {
	workflowID := w.ID
	n := &Notification{
		UserID:      userID,
		WorkflowID:  &workflowID,
		Category:    category,
		Subject:     subject,
		Body:        body,
		EmailStatus: StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if s.email == nil || userID == nil {
		return nil
	}
	address, err := s.users.EmailFor(ctx, *userID)
	if err != nil {
		log.Printf("resolve address for user %s: %v", userID, err)
		s.markEmail(ctx, n, StatusFailed)
		return nil
	}
	if err := s.email.Send(ctx, address, subject, body); err != nil {
		log.Printf("notification email for workflow %s: %v", workflowID, err)
		s.markEmail(ctx, n, StatusFailed)
		return nil
	}
	s.markEmail(ctx, n, StatusDelivered)
	return nil
}

func (s *Service) markEmail(ctx context.Context, n *Notification, status DeliveryStatus) {
	if err := s.db.WithContext(ctx).Model(n).Update("email_status", status).Error; err != nil {
		log.Printf("update notification %s status: %v", n.ID, err)
	}
}

// ListForUser returns a user's most recent notifications.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error) {
	var list []Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %s: %w", userID, err)
	}
	return list, nil
}

// MarkRead stamps a notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", id).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("mark notification %s read: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}
