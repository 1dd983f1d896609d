package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// TimetableDocument describes a weekly timetable for PDF rendering:
// one section per day, each with assignment rows.
type TimetableDocument struct {
	Title   string
	Days    []string
	Rows    map[string][]TimetableRow
	Summary []string
}

// TimetableRow is one scheduled meeting on a day.
type TimetableRow struct {
	Slot    string
	Window  string
	Section string
	Room    string
	Faculty string
}

// PDFExporter renders timetables into a weekly PDF document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF with a day-by-day timetable layout.
func (e *PDFExporter) Render(doc TimetableDocument) ([]byte, error) {
	if len(doc.Days) == 0 {
		return nil, fmt.Errorf("pdf requires at least one day")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(doc.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	headers := []string{"Slot", "Time", "Section", "Room", "Faculty"}
	widths := []float64{20, 35, 55, 35, 45}

	for _, day := range doc.Days {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 9, day, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 9)
		for i, header := range headers {
			pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		rows := doc.Rows[day]
		if len(rows) == 0 {
			pdf.CellFormat(190, 7, "no meetings scheduled", "1", 1, "C", false, 0, "")
			pdf.Ln(2)
			continue
		}
		for _, row := range rows {
			cells := []string{row.Slot, row.Window, row.Section, row.Room, row.Faculty}
			for i, cell := range cells {
				pdf.CellFormat(widths[i], 7, cell, "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(2)
	}

	if len(doc.Summary) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 9)
		for _, line := range doc.Summary {
			pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
