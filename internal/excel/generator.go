package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/highwaynet/ucc-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the blended contract list as a single-sheet workbook.
func (g *Generator) Generate(rows []model.ContractRow) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Contracts"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"UCC",
		"Contract Name",
		"PIU",
		"RO",
		"Type of Work",
		"Stretch",
		"Length (Km)",
		"Phase",
		"Corridor",
		"Scheme",
		"Program",
		"Status",
		"Source",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, row := range rows {
		r := i + 2
		set(fmt.Sprintf("A%d", r), row.UCC)
		set(fmt.Sprintf("B%d", r), row.ProjectName)
		set(fmt.Sprintf("C%d", r), formatString(row.PIU))
		set(fmt.Sprintf("D%d", r), formatString(row.RO))
		set(fmt.Sprintf("E%d", r), formatString(row.TypeOfWork))
		set(fmt.Sprintf("F%d", r), row.StretchName)
		set(fmt.Sprintf("G%d", r), formatLength(row.TotalLength, row.RevisedLength))
		set(fmt.Sprintf("H%d", r), formatString(row.PhaseCode))
		set(fmt.Sprintf("I%d", r), formatString(row.CorridorCode))
		set(fmt.Sprintf("J%d", r), formatString(row.Scheme))
		set(fmt.Sprintf("K%d", r), formatString(row.ProgramName))
		set(fmt.Sprintf("L%d", r), row.ProjectStatus)
		set(fmt.Sprintf("M%d", r), string(row.Source))
	}

	_ = file.SetColWidth(sheet, "A", "A", 22)
	_ = file.SetColWidth(sheet, "B", "B", 55)
	_ = file.SetColWidth(sheet, "C", "E", 28)
	_ = file.SetColWidth(sheet, "F", "F", 40)
	_ = file.SetColWidth(sheet, "G", "M", 14)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// Revised length supersedes the original where present.
func formatLength(total, revised *float64) string {
	if revised != nil {
		return fmt.Sprintf("%.2f", *revised)
	}
	if total != nil {
		return fmt.Sprintf("%.2f", *total)
	}
	return ""
}
