package Services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Sales Summary"

// SummaryWorkbook renders summary groups as a single-sheet xlsx file.
func SummaryWorkbook(period Period, groups []SummaryGroup) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("error removing default sheet: %w", err)
	}

	headers := []string{"Period (" + string(period) + ")", "Total Amount", "Line Items"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summarySheet, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		f.SetRowStyle(summarySheet, 1, 1, headerStyle)
	}

	for i, g := range groups {
		row := i + 2
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), g.Key)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), g.TotalAmount)
		f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), g.Count)
	}
	f.SetColWidth(summarySheet, "A", "C", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf, nil
}
