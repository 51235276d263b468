package deadlines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, Location())
}

func TestAccountsFilingDue(t *testing.T) {
	got := AccountsFilingDue(date(2024, time.March, 31))
	assert.Equal(t, "2024-12-31", got.Format("2006-01-02"))
}

func TestCorporationTaxFilingDue(t *testing.T) {
	got := CorporationTaxFilingDue(date(2024, time.March, 31))
	assert.Equal(t, "2025-03-31", got.Format("2006-01-02"))
}

func TestCorporationTaxPaymentDue(t *testing.T) {
	got := CorporationTaxPaymentDue(date(2024, time.March, 31))
	assert.Equal(t, "2025-01-01", got.Format("2006-01-02"))
}

func TestVATFilingDue(t *testing.T) {
	tests := []struct {
		quarterEnd time.Time
		want       string
	}{
		{date(2024, time.June, 30), "2024-07-31"},
		{date(2024, time.January, 31), "2024-02-29"}, // leap year February
		{date(2024, time.December, 31), "2025-01-31"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VATFilingDue(tt.quarterEnd).Format("2006-01-02"))
	}
}

func TestNonLtdPeriodForYear(t *testing.T) {
	start, end := NonLtdPeriodForYear(2024)
	assert.Equal(t, "2024-04-06", start.Format("2006-01-02"))
	assert.Equal(t, "2025-04-05", end.Format("2006-01-02"))
}

func TestSelfAssessmentFilingDue(t *testing.T) {
	got := SelfAssessmentFilingDue(TaxYearEnd(2025))
	assert.Equal(t, "2026-01-05", got.Format("2006-01-02"))
}

func TestResolveReferenceDate_FromLastAccounts(t *testing.T) {
	last := date(2023, time.March, 31)
	got := ResolveReferenceDate(31, time.March, &last, date(2024, time.January, 10))
	assert.Equal(t, "2024-03-31", got.Format("2006-01-02"))
}

func TestResolveReferenceDate_NextOccurrence(t *testing.T) {
	// Reference date already passed this year: roll to next year.
	got := ResolveReferenceDate(31, time.March, nil, date(2024, time.June, 1))
	assert.Equal(t, "2025-03-31", got.Format("2006-01-02"))

	// Still ahead this year.
	got = ResolveReferenceDate(31, time.March, nil, date(2024, time.February, 1))
	assert.Equal(t, "2024-03-31", got.Format("2006-01-02"))

	// Due exactly today counts as this year.
	got = ResolveReferenceDate(31, time.March, nil, date(2024, time.March, 31))
	assert.Equal(t, "2024-03-31", got.Format("2006-01-02"))
}

func TestDaysUntilDue(t *testing.T) {
	due := date(2024, time.June, 30)

	// Late in the evening of the due date it is still due today.
	now := time.Date(2024, time.June, 30, 23, 30, 0, 0, Location())
	assert.Equal(t, 0, DaysUntilDue(due, now))

	now = time.Date(2024, time.June, 29, 0, 5, 0, 0, Location())
	assert.Equal(t, 1, DaysUntilDue(due, now))

	now = time.Date(2024, time.July, 2, 8, 0, 0, 0, Location())
	assert.Equal(t, -2, DaysUntilDue(due, now))
}

func TestDaysUntilDue_AcrossClockChange(t *testing.T) {
	// The spring BST changeover shortens 30 March to 23 hours; the count
	// must still be whole days.
	due := date(2025, time.April, 2)
	now := time.Date(2025, time.March, 29, 12, 0, 0, 0, Location())
	assert.Equal(t, 4, DaysUntilDue(due, now))
}

func TestUrgencyFor(t *testing.T) {
	assert.Equal(t, UrgencyExpired, UrgencyFor(-1))
	assert.Equal(t, UrgencyCritical, UrgencyFor(0))
	assert.Equal(t, UrgencyCritical, UrgencyFor(7))
	assert.Equal(t, UrgencyUrgent, UrgencyFor(8))
	assert.Equal(t, UrgencyNormal, UrgencyFor(31))
	assert.Equal(t, UrgencyFuture, UrgencyFor(91))
}

func TestQuarterEndOnOrAfter(t *testing.T) {
	got, err := QuarterEndOnOrAfter(Stagger1, date(2024, time.May, 15))
	assert.NoError(t, err)
	assert.Equal(t, "2024-06-30", got.Format("2006-01-02"))

	got, err = QuarterEndOnOrAfter(Stagger2, date(2024, time.November, 2))
	assert.NoError(t, err)
	assert.Equal(t, "2025-01-31", got.Format("2006-01-02"))

	// A quarter end today is returned, not skipped.
	got, err = QuarterEndOnOrAfter(Stagger1, date(2024, time.June, 30))
	assert.NoError(t, err)
	assert.Equal(t, "2024-06-30", got.Format("2006-01-02"))

	_, err = QuarterEndOnOrAfter(StaggerGroup(9), date(2024, time.June, 1))
	assert.Error(t, err)
}

func TestNextQuarterEnd(t *testing.T) {
	assert.Equal(t, "2024-06-30", NextQuarterEnd(date(2024, time.March, 31)).Format("2006-01-02"))
	assert.Equal(t, "2024-11-30", NextQuarterEnd(date(2024, time.August, 31)).Format("2006-01-02"))
	assert.Equal(t, "2025-02-28", NextQuarterEnd(date(2024, time.November, 30)).Format("2006-01-02"))
}
