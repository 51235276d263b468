package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists workflows and their history. A stage change must be
// written atomically: workflow update plus history append in one
// transaction. Concurrent updates to the same workflow are serialized by the
// database; the unique (client_id, kind, period_end) index backs the
// rollover idempotency guarantee.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Workflow, error)
	LoadActive(ctx context.Context, clientID uuid.UUID, kind Kind) (*Workflow, error)
	// FindByPeriodEnd returns (nil, nil) when no workflow matches.
	FindByPeriodEnd(ctx context.Context, clientID uuid.UUID, kind Kind, periodEnd time.Time) (*Workflow, error)
	Save(ctx context.Context, w *Workflow, entries ...*HistoryEntry) error
	// Create returns ErrDuplicatePeriod when the period already exists.
	Create(ctx context.Context, w *Workflow, entry *HistoryEntry) error
	DeleteWithHistory(ctx context.Context, workflowID uuid.UUID) error
	ListHistory(ctx context.Context, workflowID uuid.UUID) ([]HistoryEntry, error)
	ListForClient(ctx context.Context, clientID uuid.UUID) ([]Workflow, error)
	ListDueWithin(ctx context.Context, due time.Time) ([]Workflow, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed workflow repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// WithTx returns a repository bound to an externally supplied transaction,
// so owners (client deletion) can cascade inside their own unit of work.
func WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Workflow, error) {
	var w Workflow
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("load workflow %s: %w", id, err)
	}
	return &w, nil
}

func (r *gormRepository) LoadActive(ctx context.Context, clientID uuid.UUID, kind Kind) (*Workflow, error) {
	var w Workflow
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND kind = ? AND is_completed = ?", clientID, kind, false).
		Order("period_end ASC").
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("load active %s workflow for client %s: %w", kind, clientID, err)
	}
	return &w, nil
}

func (r *gormRepository) FindByPeriodEnd(ctx context.Context, clientID uuid.UUID, kind Kind, periodEnd time.Time) (*Workflow, error) {
	var w Workflow
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND kind = ? AND period_end = ?", clientID, kind, periodEnd).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s workflow by period end: %w", kind, err)
	}
	return &w, nil
}

func (r *gormRepository) Save(ctx context.Context, w *Workflow, entries ...*HistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(w).Error; err != nil {
			return fmt.Errorf("save workflow %s: %w", w.ID, err)
		}
		for _, entry := range entries {
			entry.WorkflowID = w.ID
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("append history for workflow %s: %w", w.ID, err)
			}
		}
		return nil
	})
}

func (r *gormRepository) Create(ctx context.Context, w *Workflow, entry *HistoryEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		entry.WorkflowID = w.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePeriod
		}
		return fmt.Errorf("create %s workflow for client %s: %w", w.Kind, w.ClientID, err)
	}
	return nil
}

func (r *gormRepository) DeleteWithHistory(ctx context.Context, workflowID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workflow_id = ?", workflowID).Delete(&HistoryEntry{}).Error; err != nil {
			return fmt.Errorf("delete history for workflow %s: %w", workflowID, err)
		}
		if err := tx.Delete(&Workflow{}, "id = ?", workflowID).Error; err != nil {
			return fmt.Errorf("delete workflow %s: %w", workflowID, err)
		}
		return nil
	})
}

func (r *gormRepository) ListHistory(ctx context.Context, workflowID uuid.UUID) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("changed_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list history for workflow %s: %w", workflowID, err)
	}
	return entries, nil
}

func (r *gormRepository) ListForClient(ctx context.Context, clientID uuid.UUID) ([]Workflow, error) {
	var workflows []Workflow
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("period_end DESC").
		Find(&workflows).Error
	if err != nil {
		return nil, fmt.Errorf("list workflows for client %s: %w", clientID, err)
	}
	return workflows, nil
}

func (r *gormRepository) ListDueWithin(ctx context.Context, due time.Time) ([]Workflow, error) {
	var workflows []Workflow
	err := r.db.WithContext(ctx).
		Where("is_completed = ? AND filing_due_date <= ?", false, due).
		Order("filing_due_date ASC").
		Find(&workflows).Error
	if err != nil {
		return nil, fmt.Errorf("list workflows due before %s: %w", due.Format("2006-01-02"), err)
	}
	return workflows, nil
}
