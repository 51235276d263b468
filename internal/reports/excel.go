package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// writeWorkloadSheet renders the workload report as a spreadsheet.
func writeWorkloadSheet(rows []WorkloadRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Deadlines"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Client", "Kind", "Period End", "Filing Due", "Days Left", "Urgency", "Stage", "Assignee"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header %q: %w", h, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	}

	for i, row := range rows {
		values := []interface{}{
			row.ClientName,
			string(row.Kind),
			row.PeriodEnd.Format("2006-01-02"),
			row.FilingDueDate.Format("2006-01-02"),
			row.DaysRemaining,
			string(row.Urgency),
			string(row.CurrentStage),
			row.AssigneeName,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.AutoFilter(sheet, "A1:H1", nil); err != nil {
		return nil, fmt.Errorf("set autofilter: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}
