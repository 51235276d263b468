package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// ErrClientNotFound means no client exists for the given id.
var ErrClientNotFound = errors.New("client not found")

// Repository handles client persistence. Deletion cascades the client's
// workflows and their history in a single transaction.
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, client *Client) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed client repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, client *Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	var client Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("load client %s: %w", id, err)
	}
	return &client, nil
}

func (r *gormRepository) List(ctx context.Context) ([]Client, error) {
	var clients []Client
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (r *gormRepository) Update(ctx context.Context, client *Client) error {
	if err := r.db.WithContext(ctx).Save(client).Error; err != nil {
		return fmt.Errorf("update client %s: %w", client.ID, err)
	}
	return nil
}

func (r *gormRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workflowIDs []uuid.UUID
		if err := tx.Model(&workflow.Workflow{}).Where("client_id = ?", id).Pluck("id", &workflowIDs).Error; err != nil {
			return fmt.Errorf("list workflows for client %s: %w", id, err)
		}
		if len(workflowIDs) > 0 {
			if err := tx.Where("workflow_id IN ?", workflowIDs).Delete(&workflow.HistoryEntry{}).Error; err != nil {
				return fmt.Errorf("delete workflow history for client %s: %w", id, err)
			}
			if err := tx.Where("client_id = ?", id).Delete(&workflow.Workflow{}).Error; err != nil {
				return fmt.Errorf("delete workflows for client %s: %w", id, err)
			}
		}
		if err := tx.Delete(&Client{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete client %s: %w", id, err)
		}
		return nil
	})
}
