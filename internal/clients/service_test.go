package clients

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ledgerline/practice-portal/practice-portal-backend/internal/deadlines"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, client *Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Client), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Client), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, client *Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) CreateWorkflow(ctx context.Context, req workflow.CreateWorkflowRequest, actor workflow.Actor) (*workflow.Workflow, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Workflow), args.Error(1)
}

func (m *MockWorkflowService) UpdateWorkflow(ctx context.Context, req workflow.UpdateWorkflowRequest, actor workflow.Actor) (*workflow.UpdateResult, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.UpdateResult), args.Error(1)
}

func (m *MockWorkflowService) GetWorkflow(ctx context.Context, id uuid.UUID) (*workflow.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Workflow), args.Error(1)
}

func (m *MockWorkflowService) GetActiveWorkflow(ctx context.Context, clientID uuid.UUID, kind workflow.Kind) (*workflow.Workflow, error) {
	args := m.Called(ctx, clientID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Workflow), args.Error(1)
}

func (m *MockWorkflowService) ListHistory(ctx context.Context, workflowID uuid.UUID) ([]workflow.HistoryEntry, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workflow.HistoryEntry), args.Error(1)
}

func (m *MockWorkflowService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]workflow.Workflow, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workflow.Workflow), args.Error(1)
}

func TestNextAccountsPeriodEnd(t *testing.T) {
	today := time.Date(2024, time.June, 1, 0, 0, 0, 0, deadlines.Location())

	ltd := &Client{EntityType: workflow.KindLtd, AccountsRefDay: 31, AccountsRefMonth: 3}
	assert.Equal(t, "2025-03-31", ltd.NextAccountsPeriodEnd(today).Format("2006-01-02"))

	last := time.Date(2023, time.December, 31, 0, 0, 0, 0, deadlines.Location())
	ltd.LastAccountsMadeUpTo = &last
	ltd.AccountsRefDay = 31
	ltd.AccountsRefMonth = 12
	assert.Equal(t, "2024-12-31", ltd.NextAccountsPeriodEnd(today).Format("2006-01-02"))

	nonLtd := &Client{EntityType: workflow.KindNonLtd}
	assert.Equal(t, "2025-04-05", nonLtd.NextAccountsPeriodEnd(today).Format("2006-01-02"))

	beforeTaxYearEnd := time.Date(2024, time.February, 1, 0, 0, 0, 0, deadlines.Location())
	assert.Equal(t, "2024-04-05", nonLtd.NextAccountsPeriodEnd(beforeTaxYearEnd).Format("2006-01-02"))
}

func TestEnrolWorkflows_VATRegisteredLtd(t *testing.T) {
	mockRepo := new(MockRepository)
	mockWorkflows := new(MockWorkflowService)
	svc := NewService(mockRepo, mockWorkflows, nil).(*clientService)
	today := time.Date(2024, time.May, 15, 9, 0, 0, 0, deadlines.Location())
	svc.now = func() time.Time { return today }

	client := &Client{
		ID:               uuid.New(),
		Name:             "Hartley Joinery Ltd",
		EntityType:       workflow.KindLtd,
		VATRegistered:    true,
		VATStagger:       deadlines.Stagger1,
		AccountsRefDay:   31,
		AccountsRefMonth: 3,
	}
	mockRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil)

	accountsWorkflow := &workflow.Workflow{ID: uuid.New(), Kind: workflow.KindLtd}
	vatWorkflow := &workflow.Workflow{ID: uuid.New(), Kind: workflow.KindVAT}
	mockWorkflows.On("CreateWorkflow", mock.Anything, mock.MatchedBy(func(req workflow.CreateWorkflowRequest) bool {
		return req.Kind == workflow.KindLtd && req.PeriodEnd.Format("2006-01-02") == "2025-03-31"
	}), mock.Anything).Return(accountsWorkflow, nil)
	mockWorkflows.On("CreateWorkflow", mock.Anything, mock.MatchedBy(func(req workflow.CreateWorkflowRequest) bool {
		return req.Kind == workflow.KindVAT &&
			req.PeriodEnd.Format("2006-01-02") == "2024-06-30" &&
			req.PeriodStart.Format("2006-01-02") == "2024-04-01"
	}), mock.Anything).Return(vatWorkflow, nil)

	created, err := svc.EnrolWorkflows(context.Background(), client.ID, workflow.Actor{ID: uuid.New(), Name: "Priya"})

	assert.NoError(t, err)
	assert.Len(t, created, 2)
	mockWorkflows.AssertExpectations(t)
}

func TestEnrolWorkflows_ExistingPeriodIsTolerated(t *testing.T) {
	mockRepo := new(MockRepository)
	mockWorkflows := new(MockWorkflowService)
	svc := NewService(mockRepo, mockWorkflows, nil).(*clientService)
	svc.now = func() time.Time {
		return time.Date(2024, time.May, 15, 9, 0, 0, 0, deadlines.Location())
	}

	client := &Client{
		ID:               uuid.New(),
		EntityType:       workflow.KindLtd,
		AccountsRefDay:   31,
		AccountsRefMonth: 3,
	}
	mockRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil)
	mockWorkflows.On("CreateWorkflow", mock.Anything, mock.Anything, mock.Anything).Return(nil, workflow.ErrDuplicatePeriod)

	created, err := svc.EnrolWorkflows(context.Background(), client.ID, workflow.Actor{ID: uuid.New()})

	assert.NoError(t, err)
	assert.Empty(t, created)
}

func TestCreateClient_RejectsUnknownEntityType(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, new(MockWorkflowService), nil)

	_, err := svc.Create(context.Background(), &Client{Name: "Acme", EntityType: workflow.Kind("CHARITY")})

	assert.ErrorIs(t, err, workflow.ErrUnknownKind)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestDeleteClient_RequiresExistingClient(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, new(MockWorkflowService), nil)

	id := uuid.New()
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, ErrClientNotFound)

	err := svc.Delete(context.Background(), id)

	assert.ErrorIs(t, err, ErrClientNotFound)
	mockRepo.AssertNotCalled(t, "DeleteCascade")
}
