package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Category string

const (
	CategoryStageChange        Category = "STAGE_CHANGE"
	CategoryAssignment         Category = "ASSIGNMENT"
	CategoryDeadlineReminder   Category = "DEADLINE_REMINDER"
	CategorySystemAnnouncement Category = "SYSTEM_ANNOUNCEMENT"
)

type DeliveryStatus string

const (
	StatusPending   DeliveryStatus = "pending"
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
)

// Notification is an in-app notification row; email delivery is recorded on
// the same row.
type Notification struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	WorkflowID  *uuid.UUID     `gorm:"type:uuid;index" json:"workflow_id,omitempty"`
	Category    Category       `gorm:"not null" json:"category"`
	Subject     string         `gorm:"not null" json:"subject"`
	Body        string         `json:"body"`
	EmailStatus DeliveryStatus `gorm:"not null;default:'pending'" json:"email_status"`
	Metadata    datatypes.JSON `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
}
