// Package activity is the fire-and-forget audit trail. Writers never treat
// a failed append as an operation failure.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// Entry is one audit record.
type Entry struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkflowID uuid.UUID `gorm:"type:uuid;index" json:"workflow_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	UserName   string    `json:"user_name"`
	Action     string    `gorm:"not null" json:"action"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

// Sink writes audit entries to the database.
type Sink struct {
	db *gorm.DB
}

// NewSink creates a gorm-backed activity sink.
func NewSink(db *gorm.DB) *Sink {
	return &Sink{db: db}
}

var _ workflow.ActivitySink = (*Sink)(nil)

// Record appends one entry.
func (s *Sink) Record(ctx context.Context, workflowID uuid.UUID, actor workflow.Actor, action, detail string) error {
	entry := &Entry{
		WorkflowID: workflowID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		Action:     action,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record activity %s: %w", action, err)
	}
	return nil
}

// ListForWorkflow returns the audit trail for one workflow, newest first.
func (s *Sink) ListForWorkflow(ctx context.Context, workflowID uuid.UUID) ([]Entry, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list activity for workflow %s: %w", workflowID, err)
	}
	return entries, nil
}
