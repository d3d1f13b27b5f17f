package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/highwaynet/ucc-service/internal/service"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the pre-submission review summary as a one-pager.
func (g *Generator) Generate(review service.Review) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Unique Contract Code - Review Summary", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	code := fmt.Sprintf("Draft #%d", review.ContractID)
	if review.PermanentCode != nil {
		code = *review.PermanentCode
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s)", code, review.Status), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Contract", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf("Name: %s", review.ContractName), "", "L", false)
	if review.ShortName != "" {
		pdf.MultiCell(0, 5, fmt.Sprintf("Short name: %s", review.ShortName), "", "L", false)
	}
	pdf.MultiCell(0, 5, fmt.Sprintf("Length: %.2f Km", review.ContractLength), "", "L", false)
	if len(review.PIU) > 0 {
		names := ""
		for i, office := range review.PIU {
			if i > 0 {
				names += ", "
			}
			names += office.Name
		}
		pdf.MultiCell(0, 5, fmt.Sprintf("PIU: %s", names), "", "L", false)
	}
	pdf.Ln(2)

	if len(review.WorkLocations) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Work Locations", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 9)

		headers := []string{"Type of Work", "Nature", "From", "To", "Lane"}
		widths := []float64{70, 25, 30, 30, 15}
		drawTableRow(pdf, g.fontName, headers, widths, true)
		for _, wl := range review.WorkLocations {
			to := ""
			if wl.EndKm != nil && wl.EndMetre != nil {
				to = fmt.Sprintf("%d + %d", *wl.EndKm, *wl.EndMetre)
			}
			drawTableRow(pdf, g.fontName, []string{
				wl.NameOfWork,
				string(wl.IssueKind),
				fmt.Sprintf("%d + %d", wl.StartKm, wl.StartMetre),
				to,
				fmt.Sprintf("%d", wl.Lane),
			}, widths, false)
		}
		pdf.Ln(2)
	}

	if len(review.NHDetails) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "National Highway Details", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 9)

		headers := []string{"NH Number", "Start Chainage", "End Chainage", "Length (Km)"}
		widths := []float64{40, 45, 45, 40}
		drawTableRow(pdf, g.fontName, headers, widths, true)
		for _, nh := range review.NHDetails {
			drawTableRow(pdf, g.fontName, []string{
				nh.NHNumber,
				fmt.Sprintf("%.3f", nh.StartChainage),
				fmt.Sprintf("%.3f", nh.EndChainage),
				fmt.Sprintf("%.3f", nh.Length),
			}, widths, false)
		}
		pdf.Ln(2)
	}

	if len(review.NHStates) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "State Distances", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 9)

		headers := []string{"State", "Distance (Km)"}
		widths := []float64{90, 40}
		drawTableRow(pdf, g.fontName, headers, widths, true)
		for _, st := range review.NHStates {
			drawTableRow(pdf, g.fontName, []string{
				st.StateName,
				fmt.Sprintf("%.3f", st.StateDistance),
			}, widths, false)
		}
		pdf.Ln(2)
	}

	if len(review.Documents) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Documents", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 9)
		for _, doc := range review.Documents {
			pdf.MultiCell(0, 5, fmt.Sprintf("%s (%s)", doc.DocumentName, doc.DocumentType), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 6, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}
