package reports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/roufai-ne/crou-management-system-sub011/models"
)

// ExportAllocationSummaryPdf renders the allocation summary as a PDF byte
// stream.
func ExportAllocationSummaryPdf(title string, data []*AllocationSummaryResponse) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(14)

	headers := []string{"Code", "Crou", "Allocations", "Total Received", "Total Executed", "Total Pending"}
	widths := []float64{20, 70, 30, 50, 50, 50}

	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, d := range data {
		pdf.CellFormat(widths[0], 8, d.CrouCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, d.CrouName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, fmt.Sprint(d.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, d.TotalReceived.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 8, d.TotalExecuted.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 8, d.TotalPending.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportOccupancyPdf renders the housing occupancy summary as PDF.
func ExportOccupancyPdf(title string, data []*models.OccupancySummaryRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(14)

	headers := []string{"Residence", "Rooms", "Capacity", "Occupied"}
	widths := []float64{80, 30, 30, 30}

	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, d := range data {
		pdf.CellFormat(widths[0], 8, d.ResidenceName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, fmt.Sprint(d.RoomCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, fmt.Sprint(d.Capacity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, fmt.Sprint(d.Occupied), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
