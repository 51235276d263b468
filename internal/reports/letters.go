package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"ledgerline/practice-portal/practice-portal-backend/internal/clients"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// ChaseLetter renders a paperwork chase letter for a workflow awaiting
// records from the client.
func ChaseLetter(client *clients.Client, w *workflow.Workflow, practiceName string, today time.Time) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, practiceName)
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, today.Format("2 January 2006"))
	pdf.Ln(10)
	pdf.Cell(0, 6, client.ContactName)
	pdf.Ln(6)
	pdf.Cell(0, 6, client.Name)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	subject := fmt.Sprintf("Re: %s records for the period ending %s",
		filingLabel(w.Kind), w.PeriodEnd.Format("2 January 2006"))
	pdf.MultiCell(0, 6, subject, "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"We are preparing your %s for the period ending %s. The statutory filing deadline is %s.\n\n"+
			"We have not yet received the books and records we need for this period. Please send them to us at your earliest convenience so we can complete the work in good time.\n\n"+
			"If you have already sent them, or if you would like to discuss anything, please get in touch.\n\n"+
			"Yours sincerely,\n\n%s",
		letterSalutation(client),
		filingLabel(w.Kind),
		w.PeriodEnd.Format("2 January 2006"),
		w.FilingDueDate.Format("2 January 2006"),
		practiceName,
	)
	pdf.MultiCell(0, 6, body, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render chase letter: %w", err)
	}
	return &buf, nil
}

func filingLabel(kind workflow.Kind) string {
	switch kind {
	case workflow.KindVAT:
		return "VAT return"
	case workflow.KindLtd:
		return "annual accounts"
	case workflow.KindNonLtd:
		return "accounts and tax return"
	default:
		return "filing"
	}
}

func letterSalutation(client *clients.Client) string {
	if client.ContactName != "" {
		return client.ContactName
	}
	return client.Name
}
