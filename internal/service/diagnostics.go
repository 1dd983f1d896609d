package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
)

// DiagnosticsService is the shared conflict and scoring vocabulary for
// both assigners. All methods are pure functions of their arguments so
// they can be re-run on any schedule, including hand-edited ones.
type DiagnosticsService struct {
	cfg config.SchedulerConfig
}

func NewDiagnosticsService(cfg config.SchedulerConfig) *DiagnosticsService {
	return &DiagnosticsService{cfg: cfg}
}

// DetectConflicts groups entries by room-slot, faculty-slot and
// section-slot pairs and reports every pair claimed more than once. The
// section-slot grouping catches a section scheduled twice in one slot,
// which room and faculty groupings miss when the duplicate meetings use
// different rooms and instructors.
func (d *DiagnosticsService) DetectConflicts(schedule []models.ScheduleEntry) []models.Conflict {
	byRoom := make(map[string][]models.ScheduleEntry)
	byFaculty := make(map[string][]models.ScheduleEntry)
	bySection := make(map[string][]models.ScheduleEntry)
	for _, e := range schedule {
		rk := e.RoomID + "|" + e.SlotID
		fk := e.FacultyID + "|" + e.SlotID
		sk := e.SectionID + "|" + e.SlotID
		byRoom[rk] = append(byRoom[rk], e)
		byFaculty[fk] = append(byFaculty[fk], e)
		bySection[sk] = append(bySection[sk], e)
	}

	var conflicts []models.Conflict
	conflicts = append(conflicts, groupConflicts(byRoom, "room_double_booking",
		func(e models.ScheduleEntry) string { return e.RoomID })...)
	conflicts = append(conflicts, groupConflicts(byFaculty, "faculty_double_booking",
		func(e models.ScheduleEntry) string { return e.FacultyID })...)
	conflicts = append(conflicts, groupConflicts(bySection, "section_double_booking",
		func(e models.ScheduleEntry) string { return e.SectionID })...)

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Kind != conflicts[j].Kind {
			return conflicts[i].Kind < conflicts[j].Kind
		}
		return conflicts[i].Description < conflicts[j].Description
	})
	return conflicts
}

func groupConflicts(groups map[string][]models.ScheduleEntry, kind string, resource func(models.ScheduleEntry) string) []models.Conflict {
	var out []models.Conflict
	for _, entries := range groups {
		if len(entries) < 2 {
			continue
		}
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.SectionID)
		}
		sort.Strings(ids)
		description := fmt.Sprintf("%s %s is claimed by %d sections in slot %s",
			resourceLabel(kind), resource(entries[0]), len(entries), entries[0].SlotID)
		if kind == "section_double_booking" {
			description = fmt.Sprintf("section %s meets %d times in slot %s",
				resource(entries[0]), len(entries), entries[0].SlotID)
		}
		out = append(out, models.Conflict{
			Kind:        kind,
			Severity:    models.SeverityHigh,
			Description: description,
			SectionIDs:  ids,
			SlotID:      entries[0].SlotID,
		})
	}
	return out
}

func resourceLabel(kind string) string {
	if kind == "room_double_booking" {
		return "room"
	}
	return "faculty"
}

// ComputeMetrics derives utilization and load figures for a schedule.
// Slot duration is taken from the grid so hour totals match the grid
// the schedule was built against.
func (d *DiagnosticsService) ComputeMetrics(schedule []models.ScheduleEntry, sections []models.Section, faculty []models.Faculty, rooms []models.Room, slots []models.TimeSlot) models.Metrics {
	slotHours := make(map[string]float64, len(slots))
	for _, s := range slots {
		slotHours[s.ID] = float64(s.DurationMinutes) / 60
	}

	m := models.Metrics{
		FacultyLoadHours:  make(map[string]float64, len(faculty)),
		RoomOccupiedSlots: make(map[string]int, len(rooms)),
		SectionsTotal:     len(sections),
	}
	occupied := make(map[string]struct{}, len(schedule))
	for _, e := range schedule {
		m.FacultyLoadHours[e.FacultyID] += slotHours[e.SlotID]
		occupied[e.RoomID+"|"+e.SlotID] = struct{}{}
		m.RoomOccupiedSlots[e.RoomID]++
	}

	var maxHours float64
	for _, f := range faculty {
		maxHours += float64(f.MaxHoursPerWeek)
	}
	var assigned float64
	for _, h := range m.FacultyLoadHours {
		assigned += h
	}
	if maxHours > 0 {
		m.FacultyUtilization = assigned / maxHours
	}
	if pairs := len(rooms) * len(slots); pairs > 0 {
		m.RoomUtilization = float64(len(occupied)) / float64(pairs)
	}
	for _, s := range sections {
		if len(s.AssignedSlots) == s.RequiredMeetings && s.RequiredMeetings > 0 {
			m.SectionsPlaced++
		}
	}
	return m
}

// Score folds conflicts and metrics into the 0..100 optimization score.
func (d *DiagnosticsService) Score(conflicts []models.Conflict, m models.Metrics) float64 {
	score := 100.0
	for _, c := range conflicts {
		switch c.Severity {
		case models.SeverityHigh:
			score -= 20
		case models.SeverityMedium:
			score -= 10
		}
	}
	if m.FacultyUtilization > 0.70 {
		score += 5
	}
	if m.RoomUtilization > 0.60 {
		score += 5
	}
	if m.AllocationSuccess > 0.90 {
		score += 5
	}
	return math.Max(0, math.Min(100, score))
}

// Recommend turns diagnostics into actionable follow-ups for the caller.
func (d *DiagnosticsService) Recommend(status models.SolveStatus, conflicts []models.Conflict, m models.Metrics) []models.Recommendation {
	var recs []models.Recommendation
	if status == models.StatusInfeasible {
		recs = append(recs, models.Recommendation{
			Priority: "high",
			Message:  "no conflict-free arrangement exists with the current resources; add rooms or faculty, or reduce section counts",
		})
	}
	if status == models.StatusTimedOut {
		recs = append(recs, models.Recommendation{
			Priority: "high",
			Message:  "the search ran out of time; raise the time budget or switch to the genetic assigner",
		})
	}
	if len(conflicts) > 0 && status != models.StatusInfeasible {
		recs = append(recs, models.Recommendation{
			Priority: "high",
			Message:  fmt.Sprintf("%d double-booking conflicts remain; review the conflict list before publishing", len(conflicts)),
		})
	}
	if m.FacultyUtilization > 0.95 {
		recs = append(recs, models.Recommendation{
			Priority: "medium",
			Message:  "faculty are loaded near their weekly maximums; hiring or reducing offerings would add slack",
		})
	}
	if m.RoomUtilization < d.cfg.UtilizationLow && m.SectionsTotal > 0 {
		recs = append(recs, models.Recommendation{
			Priority: "low",
			Message:  fmt.Sprintf("room utilization is %.0f%%; the room pool could be reduced", m.RoomUtilization*100),
		})
	}
	if m.SectionsPlaced < m.SectionsTotal {
		recs = append(recs, models.Recommendation{
			Priority: "high",
			Message:  fmt.Sprintf("%d of %d sections are not fully placed", m.SectionsTotal-m.SectionsPlaced, m.SectionsTotal),
		})
	}
	return recs
}

// workloadBalance is 100 times one minus the coefficient of variation of
// per-faculty hours. Single loads or zero means score a perfect 100.
func workloadBalance(loads map[string]float64) float64 {
	if len(loads) == 0 {
		return 100
	}
	var sum float64
	for _, h := range loads {
		sum += h
	}
	mean := sum / float64(len(loads))
	if mean == 0 {
		return 100
	}
	var variance float64
	for _, h := range loads {
		variance += (h - mean) * (h - mean)
	}
	variance /= float64(len(loads))
	cv := math.Sqrt(variance) / mean
	return math.Max(0, 100*(1-cv))
}
