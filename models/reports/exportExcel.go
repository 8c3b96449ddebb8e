package reports

import (
	"bytes"
	"fmt"

	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/xuri/excelize/v2"
)

// ExportAllocationSummaryExcel renders the allocation summary as an xlsx byte
// stream.
func ExportAllocationSummaryExcel(data []*AllocationSummaryResponse) ([]byte, error) {

	f := excelize.NewFile()
	_, err := f.NewSheet("Sheet1")
	if err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue("Sheet1", "A1", "Code")
	f.SetCellValue("Sheet1", "B1", "Crou")
	f.SetCellValue("Sheet1", "C1", "Allocations")
	f.SetCellValue("Sheet1", "D1", "TotalReceived")
	f.SetCellValue("Sheet1", "E1", "TotalExecuted")
	f.SetCellValue("Sheet1", "F1", "TotalPending")

	// Add data
	for i, d := range data {
		f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), d.CrouCode)
		f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), d.CrouName)
		f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), d.Count)
		f.SetCellValue("Sheet1", "D"+fmt.Sprint(i+2), d.TotalReceived.InexactFloat64())
		f.SetCellValue("Sheet1", "E"+fmt.Sprint(i+2), d.TotalExecuted.InexactFloat64())
		f.SetCellValue("Sheet1", "F"+fmt.Sprint(i+2), d.TotalPending.InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportOccupancyExcel renders the housing occupancy summary as xlsx.
func ExportOccupancyExcel(data []*models.OccupancySummaryRow) ([]byte, error) {

	f := excelize.NewFile()
	_, err := f.NewSheet("Sheet1")
	if err != nil {
		return nil, err
	}

	f.SetCellValue("Sheet1", "A1", "Residence")
	f.SetCellValue("Sheet1", "B1", "Rooms")
	f.SetCellValue("Sheet1", "C1", "Capacity")
	f.SetCellValue("Sheet1", "D1", "Occupied")
	f.SetCellValue("Sheet1", "E1", "OccupancyRate")

	for i, d := range data {
		rate := 0.0
		if d.Capacity > 0 {
			rate = float64(d.Occupied) / float64(d.Capacity)
		}
		f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), d.ResidenceName)
		f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), d.RoomCount)
		f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), d.Capacity)
		f.SetCellValue("Sheet1", "D"+fmt.Sprint(i+2), d.Occupied)
		f.SetCellValue("Sheet1", "E"+fmt.Sprint(i+2), rate)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
