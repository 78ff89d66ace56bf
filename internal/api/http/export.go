package apihttp

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"grid-atlas/internal/district"
)

const exportSheet = "Districts"

var exportColumns = []string{
	"District", "ISO", "Wind Parks", "Turbines", "Installed MW",
	"Transformers", "Booked MW", "Official Available MW",
	"Estimated Available MW", "Capacity Score",
}

// BuildDistrictsXLSX renders the district capacity analysis as a workbook,
// one row per district ordered by ISO code.
func BuildDistrictsXLSX(result district.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	f.SetSheetName("Sheet1", exportSheet)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(exportSheet, cell, col)
	}

	for row, report := range sortedReports(result) {
		values := []any{
			report.Name,
			report.ISO,
			report.WindParks,
			report.Turbines,
			report.InstalledMW,
			report.Transformers,
			report.BookedCapacityMW,
			report.OfficialAvailableMW,
			report.EstimatedAvailableMW,
			report.CapacityScore,
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDistrictsPDF renders the district capacity analysis as a compact
// landscape table.
func BuildDistrictsPDF(result district.Result) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "District Grid Capacity")
	pdf.Ln(12)

	widths := []float64{52, 14, 22, 20, 26, 26, 24, 28, 30, 22}
	pdf.SetFont("Helvetica", "B", 8)
	for i, col := range exportColumns {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, report := range sortedReports(result) {
		cells := []string{
			report.Name,
			report.ISO,
			fmt.Sprintf("%d", report.WindParks),
			fmt.Sprintf("%d", report.Turbines),
			fmt.Sprintf("%.2f", report.InstalledMW),
			fmt.Sprintf("%d", report.Transformers),
			fmt.Sprintf("%.2f", report.BookedCapacityMW),
			fmt.Sprintf("%.2f", report.OfficialAvailableMW),
			fmt.Sprintf("%.2f", report.EstimatedAvailableMW),
			fmt.Sprintf("%.1f", report.CapacityScore),
		}
		for i, cell := range cells {
			align := "R"
			if i <= 1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedReports(result district.Result) []district.Report {
	reports := make([]district.Report, 0, len(result.Reports))
	for _, r := range result.Reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ISO < reports[j].ISO })
	return reports
}
