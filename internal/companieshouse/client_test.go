package companieshouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCompanyProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/01234567", r.URL.Path)
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "test-key", user)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"company_number": "01234567",
			"company_name": "HARTLEY JOINERY LIMITED",
			"accounts": {
				"accounting_reference_date": {"day": "31", "month": "3"},
				"last_accounts": {"made_up_to": "2023-03-31"},
				"next_due": "2024-12-31"
			}
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	profile, err := client.GetCompanyProfile(context.Background(), "01234567")

	assert.NoError(t, err)
	assert.Equal(t, "01234567", profile.CompanyNumber)
	assert.Equal(t, "HARTLEY JOINERY LIMITED", profile.CompanyName)
	assert.Equal(t, 31, profile.AccountingReferenceDay)
	assert.Equal(t, 3, profile.AccountingReferenceMonth)
	assert.Equal(t, "2023-03-31", profile.LastAccountsMadeUpTo.Format("2006-01-02"))
	assert.Equal(t, "2024-12-31", profile.NextAccountsDue.Format("2006-01-02"))
}

func TestGetCompanyProfile_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	_, err := client.GetCompanyProfile(context.Background(), "99999999")

	assert.ErrorContains(t, err, "not found on the register")
}

func TestGetCompanyProfile_PartialAccountsData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"company_number": "01234567", "company_name": "NEWCO LIMITED", "accounts": {}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	profile, err := client.GetCompanyProfile(context.Background(), "01234567")

	assert.NoError(t, err)
	assert.Zero(t, profile.AccountingReferenceDay)
	assert.Nil(t, profile.LastAccountsMadeUpTo)
}
