package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ledgerline/practice-portal/practice-portal-backend/internal/companieshouse"
	"ledgerline/practice-portal/practice-portal-backend/internal/deadlines"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// Service manages the client directory and opens the filing workflows a
// client is enrolled for.
type Service interface {
	Create(ctx context.Context, client *Client) (*Client, error)
	Get(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error

	// EnrolWorkflows creates the client's initial workflows (accounts, and
	// VAT when registered) unless they already exist.
	EnrolWorkflows(ctx context.Context, id uuid.UUID, actor workflow.Actor) ([]workflow.Workflow, error)

	// RefreshCompanyProfile updates reference dates from Companies House.
	RefreshCompanyProfile(ctx context.Context, id uuid.UUID) (*Client, error)
}

type clientService struct {
	repo      Repository
	workflows workflow.Service
	registry  *companieshouse.Client
	now       func() time.Time
}

// NewService wires the client service. registry may be nil when no
// Companies House API key is configured.
func NewService(repo Repository, workflows workflow.Service, registry *companieshouse.Client) Service {
	return &clientService{repo: repo, workflows: workflows, registry: registry, now: time.Now}
}

func (s *clientService) Create(ctx context.Context, client *Client) (*Client, error) {
	if _, err := workflow.CatalogFor(client.EntityType); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *clientService) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

func (s *clientService) Update(ctx context.Context, client *Client) error {
	return s.repo.Update(ctx, client)
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteCascade(ctx, id)
}

func (s *clientService) EnrolWorkflows(ctx context.Context, id uuid.UUID, actor workflow.Actor) ([]workflow.Workflow, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	today := s.now()
	var created []workflow.Workflow

	accountsEnd := client.NextAccountsPeriodEnd(today)
	accountsStart := accountsEnd.AddDate(-1, 0, 1)
	if client.EntityType == workflow.KindNonLtd {
		accountsStart = deadlines.TaxYearStart(accountsEnd.Year() - 1)
	}
	w, err := s.workflows.CreateWorkflow(ctx, workflow.CreateWorkflowRequest{
		ClientID:    client.ID,
		Kind:        client.EntityType,
		PeriodStart: accountsStart,
		PeriodEnd:   accountsEnd,
	}, actor)
	if err != nil && !errors.Is(err, workflow.ErrDuplicatePeriod) {
		return nil, err
	}
	if w != nil {
		created = append(created, *w)
	}

	if client.VATRegistered {
		quarterEnd, err := deadlines.QuarterEndOnOrAfter(client.VATStagger, today)
		if err != nil {
			return nil, err
		}
		quarterStart := quarterEnd.AddDate(0, -3, 1)
		vw, err := s.workflows.CreateWorkflow(ctx, workflow.CreateWorkflowRequest{
			ClientID:    client.ID,
			Kind:        workflow.KindVAT,
			PeriodStart: quarterStart,
			PeriodEnd:   quarterEnd,
		}, actor)
		if err != nil && !errors.Is(err, workflow.ErrDuplicatePeriod) {
			return nil, err
		}
		if vw != nil {
			created = append(created, *vw)
		}
	}

	return created, nil
}

func (s *clientService) RefreshCompanyProfile(ctx context.Context, id uuid.UUID) (*Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.registry == nil {
		return nil, fmt.Errorf("companies house integration is not configured")
	}
	if client.CompanyNumber == nil {
		return nil, fmt.Errorf("client %s has no company number", client.ID)
	}

	profile, err := s.registry.GetCompanyProfile(ctx, *client.CompanyNumber)
	if err != nil {
		return nil, fmt.Errorf("refresh profile for %s: %w", *client.CompanyNumber, err)
	}

	if profile.AccountingReferenceDay > 0 {
		client.AccountsRefDay = profile.AccountingReferenceDay
		client.AccountsRefMonth = profile.AccountingReferenceMonth
	}
	if profile.LastAccountsMadeUpTo != nil {
		client.LastAccountsMadeUpTo = profile.LastAccountsMadeUpTo
	}
	refreshed := s.now()
	client.ProfileRefreshedAt = &refreshed

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}
