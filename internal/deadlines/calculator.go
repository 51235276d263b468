// Package deadlines derives UK statutory filing dates from company and
// period data. Everything here is a pure function; day arithmetic is done
// against date-starts in Europe/London so a deadline due "today" never
// drifts a day with the wall clock.
package deadlines

import (
	"fmt"
	"math"
	"time"
)

var london *time.Location

func init() {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.FixedZone("GMT", 0)
	}
	london = loc
}

// Location returns the reference timezone all deadline dates are computed in.
func Location() *time.Location {
	return london
}

// AccountsFilingDue is the Companies House accounts deadline: period end
// plus 9 calendar months.
func AccountsFilingDue(periodEnd time.Time) time.Time {
	return periodEnd.AddDate(0, 9, 0)
}

// CorporationTaxFilingDue is the CT600 deadline: period end plus 12 months.
func CorporationTaxFilingDue(periodEnd time.Time) time.Time {
	return periodEnd.AddDate(0, 12, 0)
}

// CorporationTaxPaymentDue is period end plus 9 months and 1 day.
func CorporationTaxPaymentDue(periodEnd time.Time) time.Time {
	return periodEnd.AddDate(0, 9, 1)
}

// VATFilingDue is the last calendar day of the month following the VAT
// quarter's end month.
func VATFilingDue(quarterEnd time.Time) time.Time {
	// Day 0 of month+2 normalizes to the last day of month+1.
	return time.Date(quarterEnd.Year(), quarterEnd.Month()+2, 0, 0, 0, 0, 0, london)
}

// TaxYearEnd is the fixed 5 April end of the UK tax year that finishes in
// the given calendar year.
func TaxYearEnd(year int) time.Time {
	return time.Date(year, time.April, 5, 0, 0, 0, 0, london)
}

// TaxYearStart is the fixed 6 April start of the UK tax year beginning in
// the given calendar year.
func TaxYearStart(year int) time.Time {
	return time.Date(year, time.April, 6, 0, 0, 0, 0, london)
}

// SelfAssessmentFilingDue is 9 months after a sole trader or partnership
// year end, landing on 5 January for a standard 5 April year.
func SelfAssessmentFilingDue(yearEnd time.Time) time.Time {
	return yearEnd.AddDate(0, 9, 0)
}

// NonLtdPeriodForYear is the tax year starting in the given calendar year:
// 6 April to the following 5 April.
func NonLtdPeriodForYear(year int) (start, end time.Time) {
	return TaxYearStart(year), TaxYearEnd(year + 1)
}

// ResolveReferenceDate turns a Companies House day/month pair (which carries
// no year) into a concrete date. The year is taken from the last filed
// accounts date plus one when available, otherwise the next occurrence of
// the day/month on or after today is used.
func ResolveReferenceDate(day int, month time.Month, lastAccounts *time.Time, today time.Time) time.Time {
	if lastAccounts != nil {
		return time.Date(lastAccounts.Year()+1, month, day, 0, 0, 0, 0, london)
	}
	candidate := time.Date(today.Year(), month, day, 0, 0, 0, 0, london)
	if candidate.Before(dateStart(today)) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}

// DaysUntilDue counts whole days from today's date-start to the due date's
// date-start. Zero means due today; negative means overdue. The civil dates
// are diffed in UTC so BST changeovers cannot shorten or stretch a day.
func DaysUntilDue(due, today time.Time) int {
	diff := civilUTC(due).Sub(civilUTC(today))
	return int(math.Ceil(diff.Hours() / 24))
}

func civilUTC(t time.Time) time.Time {
	t = t.In(london)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateStart(t time.Time) time.Time {
	t = t.In(london)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, london)
}

// Urgency buckets a deadline by days remaining.
type Urgency string

const (
	UrgencyExpired  Urgency = "expired"
	UrgencyCritical Urgency = "critical" // <= 7 days
	UrgencyUrgent   Urgency = "urgent"   // <= 30 days
	UrgencyNormal   Urgency = "normal"   // <= 90 days
	UrgencyFuture   Urgency = "future"
)

// UrgencyFor classifies a days-remaining count.
func UrgencyFor(daysRemaining int) Urgency {
	switch {
	case daysRemaining < 0:
		return UrgencyExpired
	case daysRemaining <= 7:
		return UrgencyCritical
	case daysRemaining <= 30:
		return UrgencyUrgent
	case daysRemaining <= 90:
		return UrgencyNormal
	default:
		return UrgencyFuture
	}
}

// StaggerGroup is an HMRC VAT quarter group.
type StaggerGroup int

const (
	Stagger1 StaggerGroup = 1 // quarters ending Mar / Jun / Sep / Dec
	Stagger2 StaggerGroup = 2 // quarters ending Jan / Apr / Jul / Oct
	Stagger3 StaggerGroup = 3 // quarters ending Feb / May / Aug / Nov
)

var staggerEndMonths = map[StaggerGroup][]time.Month{
	Stagger1: {time.March, time.June, time.September, time.December},
	Stagger2: {time.January, time.April, time.July, time.October},
	Stagger3: {time.February, time.May, time.August, time.November},
}

// QuarterEndOnOrAfter returns the first quarter end for the stagger group
// falling on or after the given date.
func QuarterEndOnOrAfter(group StaggerGroup, from time.Time) (time.Time, error) {
	months, ok := staggerEndMonths[group]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown VAT stagger group %d", group)
	}
	from = dateStart(from)
	for year := from.Year(); ; year++ {
		for _, m := range months {
			end := lastDayOfMonth(year, m)
			if !end.Before(from) {
				return end, nil
			}
		}
	}
}

// NextQuarterEnd returns the last day of the month three months after the
// given quarter end's month.
func NextQuarterEnd(quarterEnd time.Time) time.Time {
	return lastDayOfMonth(quarterEnd.Year(), quarterEnd.Month()+3)
}

func lastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, london)
}
