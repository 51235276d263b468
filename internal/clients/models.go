package clients

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ledgerline/practice-portal/practice-portal-backend/internal/deadlines"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// Client is a practice client that compliance workflows belong to.
type Client struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string        `gorm:"not null" json:"name"`
	ContactEmail  string        `json:"contact_email"`
	ContactName   string        `json:"contact_name"`
	EntityType    workflow.Kind `gorm:"not null" json:"entity_type"` // LTD or NON_LTD
	CompanyNumber *string       `gorm:"index" json:"company_number,omitempty"`

	VATRegistered bool                   `gorm:"not null;default:false" json:"vat_registered"`
	VATNumber     *string                `json:"vat_number,omitempty"`
	VATStagger    deadlines.StaggerGroup `gorm:"default:1" json:"vat_stagger"`

	// Companies House accounting reference date (day/month, no year) and
	// the accounts it last filed, refreshed from the public register.
	AccountsRefDay       int        `json:"accounts_ref_day"`
	AccountsRefMonth     int        `json:"accounts_ref_month"`
	LastAccountsMadeUpTo *time.Time `json:"last_accounts_made_up_to,omitempty"`
	ProfileRefreshedAt   *time.Time `json:"profile_refreshed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NextAccountsPeriodEnd resolves the client's next accounting period end.
// Non-Ltd entities are fixed to the 5 April tax year; Ltd entities use the
// Companies House reference date.
func (c *Client) NextAccountsPeriodEnd(today time.Time) time.Time {
	if c.EntityType == workflow.KindNonLtd {
		end := deadlines.TaxYearEnd(today.Year())
		if end.Before(today) {
			end = deadlines.TaxYearEnd(today.Year() + 1)
		}
		return end
	}
	return deadlines.ResolveReferenceDate(c.AccountsRefDay, time.Month(c.AccountsRefMonth), c.LastAccountsMadeUpTo, today)
}
