// Package companieshouse is a thin client for the Companies House public
// data API. Only the company profile fields the tracker needs are decoded.
package companieshouse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.company-information.service.gov.uk"

// Client calls the Companies House REST API with API-key basic auth.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a Companies House client. baseURL may be empty for the
// production endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

// CompanyProfile is the subset of the company profile resource the tracker
// consumes.
type CompanyProfile struct {
	CompanyNumber            string
	CompanyName              string
	AccountingReferenceDay   int
	AccountingReferenceMonth int
	LastAccountsMadeUpTo     *time.Time
	NextAccountsDue          *time.Time
}

type companyProfileResponse struct {
	CompanyNumber string `json:"company_number"`
	CompanyName   string `json:"company_name"`
	Accounts      struct {
		AccountingReferenceDate struct {
			Day   string `json:"day"`
			Month string `json:"month"`
		} `json:"accounting_reference_date"`
		LastAccounts struct {
			MadeUpTo string `json:"made_up_to"`
		} `json:"last_accounts"`
		NextDue string `json:"next_due"`
	} `json:"accounts"`
}

// GetCompanyProfile fetches the profile for a company number.
func (c *Client) GetCompanyProfile(ctx context.Context, companyNumber string) (*CompanyProfile, error) {
	url := fmt.Sprintf("%s/company/%s", c.baseURL, companyNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("companies house request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("company %s not found on the register", companyNumber)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("companies house returned status %d for company %s", resp.StatusCode, companyNumber)
	}

	var body companyProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode company profile: %w", err)
	}

	profile := &CompanyProfile{
		CompanyNumber: body.CompanyNumber,
		CompanyName:   body.CompanyName,
	}
	if d, err := strconv.Atoi(body.Accounts.AccountingReferenceDate.Day); err == nil {
		profile.AccountingReferenceDay = d
	}
	if m, err := strconv.Atoi(body.Accounts.AccountingReferenceDate.Month); err == nil {
		profile.AccountingReferenceMonth = m
	}
	if t, err := time.Parse("2006-01-02", body.Accounts.LastAccounts.MadeUpTo); err == nil {
		profile.LastAccountsMadeUpTo = &t
	}
	if t, err := time.Parse("2006-01-02", body.Accounts.NextDue); err == nil {
		profile.NextAccountsDue = &t
	}
	return profile, nil
}
