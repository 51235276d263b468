package workflow

import (
	"context"

	"github.com/google/uuid"
)

// NotificationPort delivers stage-change and assignment notifications.
// Delivery is best effort: the engine logs and swallows failures, they never
// abort a stage change.
type NotificationPort interface {
	NotifyStageChange(ctx context.Context, w *Workflow, from, to Stage, actor Actor) error
	NotifyAssignment(ctx context.Context, w *Workflow, assigneeID uuid.UUID, actor Actor) error
}

// ActivitySink receives fire-and-forget audit records.
type ActivitySink interface {
	Record(ctx context.Context, workflowID uuid.UUID, actor Actor, action, detail string) error
}
