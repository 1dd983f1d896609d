package service

import (
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.TimetableDocument) ([]byte, error)
}

// ExportService renders retained proposals into downloadable documents.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// RenderCSV flattens a proposal's schedule into one row per meeting.
func (s *ExportService) RenderCSV(proposal *Proposal) ([]byte, error) {
	dataset := export.Dataset{
		Headers: []string{"section_id", "course_id", "day", "slot_id", "start_time", "end_time", "room_id", "faculty_id"},
	}
	for _, e := range proposal.Result.Schedule {
		dataset.Rows = append(dataset.Rows, []string{
			e.SectionID, e.CourseID, e.Day, e.SlotID, e.StartTime, e.EndTime, e.RoomID, e.FacultyID,
		})
	}
	return s.csv.Render(dataset)
}

// RenderPDF lays the proposal out day by day in grid order.
func (s *ExportService) RenderPDF(proposal *Proposal) ([]byte, error) {
	days := append([]string(nil), proposal.Config.WorkingDays...)
	rows := make(map[string][]export.TimetableRow, len(days))

	slotOrder := make(map[string]int, len(proposal.Slots))
	for i, slot := range proposal.Slots {
		slotOrder[slot.ID] = i
	}
	for _, e := range proposal.Result.Schedule {
		if !slices.Contains(days, e.Day) {
			continue
		}
		rows[e.Day] = append(rows[e.Day], export.TimetableRow{
			Slot:    e.SlotID,
			Window:  e.StartTime + " - " + e.EndTime,
			Section: e.SectionID,
			Room:    e.RoomID,
			Faculty: e.FacultyID,
		})
	}
	for day := range rows {
		sort.Slice(rows[day], func(i, j int) bool {
			return slotOrder[rows[day][i].Slot] < slotOrder[rows[day][j].Slot]
		})
	}

	doc := export.TimetableDocument{
		Title: "Weekly Timetable",
		Days:  days,
		Rows:  rows,
		Summary: []string{
			fmt.Sprintf("Status: %s", proposal.Result.Status),
			fmt.Sprintf("Optimization score: %.1f", proposal.Result.Score),
			fmt.Sprintf("Sections placed: %d of %d", proposal.Result.Metrics.SectionsPlaced, proposal.Result.Metrics.SectionsTotal),
		},
	}
	return s.pdf.Render(doc)
}
