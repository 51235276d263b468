// Package reports produces practice-facing exports: the deadline workload
// spreadsheet and paperwork chase letters.
package reports

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ledgerline/practice-portal/practice-portal-backend/internal/deadlines"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// WorkloadRow is one line of the deadline workload report.
type WorkloadRow struct {
	ClientName    string
	Kind          workflow.Kind
	PeriodEnd     time.Time
	FilingDueDate time.Time
	DaysRemaining int
	Urgency       deadlines.Urgency
	CurrentStage  workflow.Stage
	AssigneeName  string
}

// Service assembles report data.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates the report service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Workload lists every active workflow with its deadline position, most
// urgent first.
func (s *Service) Workload(ctx context.Context) ([]WorkloadRow, error) {
	var rows []struct {
		ClientName    string
		Kind          workflow.Kind
		PeriodEnd     time.Time
		FilingDueDate time.Time
		CurrentStage  workflow.Stage
		AssigneeName  *string
	}
	err := s.db.WithContext(ctx).
		Table("workflows").
		Select("clients.name AS client_name, workflows.kind, workflows.period_end, workflows.filing_due_date, workflows.current_stage, users.name AS assignee_name").
		Joins("JOIN clients ON clients.id = workflows.client_id AND clients.deleted_at IS NULL").
		Joins("LEFT JOIN users ON users.id = workflows.assigned_user_id").
		Where("workflows.is_completed = ?", false).
		Order("workflows.filing_due_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load workload: %w", err)
	}

	today := s.now()
	out := make([]WorkloadRow, 0, len(rows))
	for _, r := range rows {
		remaining := deadlines.DaysUntilDue(r.FilingDueDate, today)
		row := WorkloadRow{
			ClientName:    r.ClientName,
			Kind:          r.Kind,
			PeriodEnd:     r.PeriodEnd,
			FilingDueDate: r.FilingDueDate,
			DaysRemaining: remaining,
			Urgency:       deadlines.UrgencyFor(remaining),
			CurrentStage:  r.CurrentStage,
		}
		if r.AssigneeName != nil {
			row.AssigneeName = *r.AssigneeName
		}
		out = append(out, row)
	}
	return out, nil
}
