package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"ledgerline/practice-portal/practice-portal-backend/internal/deadlines"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) LoadActive(ctx context.Context, clientID uuid.UUID, kind workflow.Kind) (*workflow.Workflow, error) {
	args := m.Called(ctx, clientID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) FindByPeriodEnd(ctx context.Context, clientID uuid.UUID, kind workflow.Kind, periodEnd time.Time) (*workflow.Workflow, error) {
	args := m.Called(ctx, clientID, kind, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) Save(ctx context.Context, w *workflow.Workflow, entries ...*workflow.HistoryEntry) error {
	callArgs := []interface{}{ctx, w}
	for _, e := range entries {
		callArgs = append(callArgs, e)
	}
	args := m.Called(callArgs...)
	return args.Error(0)
}

func (m *MockWorkflowRepository) Create(ctx context.Context, w *workflow.Workflow, entry *workflow.HistoryEntry) error {
	args := m.Called(ctx, w, entry)
	return args.Error(0)
}

func (m *MockWorkflowRepository) DeleteWithHistory(ctx context.Context, workflowID uuid.UUID) error {
	args := m.Called(ctx, workflowID)
	return args.Error(0)
}

func (m *MockWorkflowRepository) ListHistory(ctx context.Context, workflowID uuid.UUID) ([]workflow.HistoryEntry, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workflow.HistoryEntry), args.Error(1)
}

func (m *MockWorkflowRepository) ListForClient(ctx context.Context, clientID uuid.UUID) ([]workflow.Workflow, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workflow.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) ListDueWithin(ctx context.Context, due time.Time) ([]workflow.Workflow, error) {
	args := m.Called(ctx, due)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workflow.Workflow), args.Error(1)
}

type recordingNotifier struct {
	reminders map[uuid.UUID]int
	err       error
}

func (r *recordingNotifier) NotifyDeadlineApproaching(ctx context.Context, w *workflow.Workflow, daysRemaining int) error {
	if r.err != nil {
		return r.err
	}
	if r.reminders == nil {
		r.reminders = make(map[uuid.UUID]int)
	}
	r.reminders[w.ID] = daysRemaining
	return nil
}

func dueWorkflow(due time.Time) workflow.Workflow {
	return workflow.Workflow{
		ID:            uuid.New(),
		ClientID:      uuid.New(),
		Kind:          workflow.KindLtd,
		FilingDueDate: due,
		CurrentStage:  workflow.StageWorkInProgress,
	}
}

func TestScan_NotifiesOnlyMatchingOffsets(t *testing.T) {
	mockRepo := new(MockWorkflowRepository)
	notifier := &recordingNotifier{}
	s := NewScheduler(mockRepo, notifier, zap.NewNop(), DefaultConfig())
	today := time.Date(2024, time.June, 1, 7, 0, 0, 0, deadlines.Location())
	s.now = func() time.Time { return today }

	dueIn7 := dueWorkflow(today.AddDate(0, 0, 7))
	dueIn10 := dueWorkflow(today.AddDate(0, 0, 10))
	overdue := dueWorkflow(today.AddDate(0, 0, -3))
	dueToday := dueWorkflow(today)

	mockRepo.On("ListDueWithin", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]workflow.Workflow{dueIn7, dueIn10, overdue, dueToday}, nil)

	s.Scan(context.Background())

	assert.Len(t, notifier.reminders, 3)
	assert.Equal(t, 7, notifier.reminders[dueIn7.ID])
	assert.Equal(t, -3, notifier.reminders[overdue.ID])
	assert.Equal(t, 0, notifier.reminders[dueToday.ID])
	assert.NotContains(t, notifier.reminders, dueIn10.ID)
}

func TestScan_RepositoryFailureIsSwallowed(t *testing.T) {
	mockRepo := new(MockWorkflowRepository)
	notifier := &recordingNotifier{}
	s := NewScheduler(mockRepo, notifier, zap.NewNop(), DefaultConfig())

	mockRepo.On("ListDueWithin", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("connection refused"))

	s.Scan(context.Background())

	assert.Empty(t, notifier.reminders)
}

func TestScan_NotifierFailureDoesNotStopTheScan(t *testing.T) {
	mockRepo := new(MockWorkflowRepository)
	notifier := &recordingNotifier{err: errors.New("ses throttled")}
	s := NewScheduler(mockRepo, notifier, zap.NewNop(), DefaultConfig())
	today := time.Date(2024, time.June, 1, 7, 0, 0, 0, deadlines.Location())
	s.now = func() time.Time { return today }

	mockRepo.On("ListDueWithin", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]workflow.Workflow{dueWorkflow(today)}, nil)

	assert.NotPanics(t, func() { s.Scan(context.Background()) })
}

func TestOffsetMatches(t *testing.T) {
	s := NewScheduler(new(MockWorkflowRepository), &recordingNotifier{}, zap.NewNop(), DefaultConfig())

	assert.True(t, s.offsetMatches(30))
	assert.True(t, s.offsetMatches(0))
	assert.True(t, s.offsetMatches(-10))
	assert.False(t, s.offsetMatches(13))
	assert.False(t, s.offsetMatches(29))
}
