package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
)

// ConstraintSolver runs a complete backtracking search over the pruned
// (section, slot, room, faculty) decision space. Sections are attacked
// most-constrained-first so dead ends surface early; within a section,
// candidate faculty and rooms are ordered by the soft objectives
// (workload balance, tight room fit) so the first solution found is the
// policy's preferred one.
type ConstraintSolver struct {
	cfg config.SchedulerConfig
	log *zap.Logger
}

func NewConstraintSolver(cfg config.SchedulerConfig, log *zap.Logger) *ConstraintSolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConstraintSolver{cfg: cfg, log: log}
}

// SolveInput is the fully materialized problem both assigners consume.
type SolveInput struct {
	Sections []models.Section
	Courses  []models.Course
	Faculty  []models.Faculty
	Rooms    []models.Room
	Slots    []models.TimeSlot
}

// sectionDomain holds one section's pruned candidate sets. A section
// meets required_meetings times in distinct slots; each meeting picks
// its own faculty and room from these sets.
type sectionDomain struct {
	section models.Section
	faculty []int
	rooms   []int
	slots   []int
}

func (d sectionDomain) branching() int {
	return len(d.faculty) * len(d.rooms) * len(d.slots)
}

// meetingAssignment is one committed (slot, faculty, room) choice.
type meetingAssignment struct {
	slotID    string
	facultyID string
	roomID    string
}

// placement is a committed assignment for one section, one entry per
// required meeting. Meetings of a section may use different faculty and
// rooms; only the slots must be pairwise distinct.
type placement struct {
	meetings []meetingAssignment
}

// deadline checks are amortized over this many search nodes.
const deadlineCheckInterval = 1024

type searchState struct {
	roomBusy  map[string]bool
	facBusy   map[string]bool
	facHours  map[string]float64
	facMax    map[string]float64
	slotHours map[string]float64

	placed map[string]placement
	order  []sectionDomain

	deadline time.Time
	nodes    int
	timedOut bool

	solution    map[string]placement
	bestPartial map[string]placement
}

// Solve searches for a conflict-free assignment of every section. The
// context deadline is a cooperative cancellation point: once it passes,
// the search stops at the next node boundary and the best partial result
// is returned with an honest status instead of a fabricated schedule.
func (s *ConstraintSolver) Solve(ctx context.Context, in SolveInput) (models.SolveStatus, []models.Section, []models.ScheduleEntry, []models.Conflict) {
	domains, pruneConflicts := s.buildDomains(in)
	if len(pruneConflicts) > 0 {
		return models.StatusInfeasible, in.Sections, nil, pruneConflicts
	}
	sort.SliceStable(domains, func(i, j int) bool {
		return domains[i].branching() < domains[j].branching()
	})

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.cfg.TimeBudget)
	}
	st := &searchState{
		roomBusy:  make(map[string]bool),
		facBusy:   make(map[string]bool),
		facHours:  make(map[string]float64, len(in.Faculty)),
		facMax:    make(map[string]float64, len(in.Faculty)),
		slotHours: make(map[string]float64, len(in.Slots)),
		placed:    make(map[string]placement, len(domains)),
		order:     domains,
		deadline:  deadline,
	}
	for _, f := range in.Faculty {
		st.facMax[f.ID] = float64(f.MaxHoursPerWeek)
	}
	for _, slot := range in.Slots {
		st.slotHours[slot.ID] = float64(slot.DurationMinutes) / 60
	}

	s.search(ctx, st, in, 0)
	s.log.Debug("constraint search finished",
		zap.Int("nodes", st.nodes),
		zap.Bool("solved", st.solution != nil),
		zap.Bool("timed_out", st.timedOut))

	switch {
	case st.solution != nil:
		return models.StatusOptimal, applyPlacements(in.Sections, st.solution), buildSchedule(in, st.solution), nil
	case st.timedOut:
		sections := applyPlacements(in.Sections, st.bestPartial)
		return models.StatusTimedOut, sections, buildSchedule(in, st.bestPartial), partialConflicts(sections)
	default:
		sections := applyPlacements(in.Sections, st.bestPartial)
		return models.StatusInfeasible, sections, buildSchedule(in, st.bestPartial), partialConflicts(sections)
	}
}

// buildDomains prunes tuples that can never hold: capacity, room kind,
// expertise, and slot kind filters. A section left with an empty
// candidate set proves infeasibility before any search runs.
func (s *ConstraintSolver) buildDomains(in SolveInput) ([]sectionDomain, []models.Conflict) {
	courseByID := make(map[string]models.Course, len(in.Courses))
	for _, c := range in.Courses {
		courseByID[c.ID] = c
	}

	var conflicts []models.Conflict
	domains := make([]sectionDomain, 0, len(in.Sections))
	for _, sec := range in.Sections {
		course := courseByID[sec.CourseID]
		d := sectionDomain{section: sec}
		for i, f := range in.Faculty {
			if qualifies(f, course) {
				d.faculty = append(d.faculty, i)
			}
		}
		for i, r := range in.Rooms {
			if r.Capacity < sec.Capacity {
				continue
			}
			if sec.Kind == models.SectionLab && r.Kind != models.RoomLab {
				continue
			}
			d.rooms = append(d.rooms, i)
		}
		for i, slot := range in.Slots {
			if sec.Kind == models.SectionLab && slot.Kind != models.SlotLabEligible {
				continue
			}
			d.slots = append(d.slots, i)
		}

		switch {
		case len(d.faculty) == 0:
			conflicts = append(conflicts, infeasibleConflict(sec, "no faculty member covers the required expertise"))
		case len(d.rooms) == 0:
			conflicts = append(conflicts, infeasibleConflict(sec, "no room is large enough or of the right kind"))
		case len(d.slots) < sec.RequiredMeetings:
			conflicts = append(conflicts, infeasibleConflict(sec, "the grid has fewer eligible slots than required meetings"))
		default:
			domains = append(domains, d)
		}
	}
	return domains, conflicts
}

func infeasibleConflict(sec models.Section, reason string) models.Conflict {
	return models.Conflict{
		Kind:        "unsatisfiable_section",
		Severity:    models.SeverityHigh,
		Description: fmt.Sprintf("section %s cannot be placed: %s", sec.ID, reason),
		SectionIDs:  []string{sec.ID},
	}
}

func qualifies(f models.Faculty, course models.Course) bool {
	if len(course.RequiredExpertise) == 0 {
		return true
	}
	for _, need := range course.RequiredExpertise {
		for _, have := range f.Expertise {
			if need == have {
				return true
			}
		}
	}
	return false
}

// search returns true once a complete assignment has been recorded.
func (s *ConstraintSolver) search(ctx context.Context, st *searchState, in SolveInput, depth int) bool {
	st.nodes++
	if st.nodes%deadlineCheckInterval == 0 {
		if time.Now().After(st.deadline) || ctx.Err() != nil {
			st.timedOut = true
		}
	}
	if st.timedOut {
		return false
	}
	if depth == len(st.order) {
		st.solution = clonePlacements(st.placed)
		return true
	}
	if len(st.placed) > len(st.bestPartial) {
		st.bestPartial = clonePlacements(st.placed)
	}

	d := st.order[depth]
	return s.placeMeetings(ctx, st, in, depth, d, nil, 0)
}

// orderFaculty prefers whoever already teaches this section's earlier
// meetings, then the least-loaded qualified instructor, so the first
// solution found keeps sections cohesive and workloads balanced.
func (s *ConstraintSolver) orderFaculty(st *searchState, in SolveInput, d sectionDomain, chosen []meetingAssignment) []int {
	prior := ""
	if len(chosen) > 0 {
		prior = chosen[len(chosen)-1].facultyID
	}
	out := append([]int(nil), d.faculty...)
	sort.SliceStable(out, func(a, b int) bool {
		fa, fb := in.Faculty[out[a]], in.Faculty[out[b]]
		if (fa.ID == prior) != (fb.ID == prior) {
			return fa.ID == prior
		}
		return st.facHours[fa.ID] < st.facHours[fb.ID]
	})
	return out
}

// orderRooms prefers the room this section's earlier meetings already
// use, then the tightest fit, leaving larger spaces for sections that
// need them.
func (s *ConstraintSolver) orderRooms(in SolveInput, d sectionDomain, chosen []meetingAssignment) []int {
	prior := ""
	if len(chosen) > 0 {
		prior = chosen[len(chosen)-1].roomID
	}
	out := append([]int(nil), d.rooms...)
	sort.SliceStable(out, func(a, b int) bool {
		ra, rb := in.Rooms[out[a]], in.Rooms[out[b]]
		if (ra.ID == prior) != (rb.ID == prior) {
			return ra.ID == prior
		}
		return ra.Capacity < rb.Capacity
	})
	return out
}

// placeMeetings recursively picks a (slot, faculty, room) tuple per
// required meeting, then descends to the next section. Slots are walked
// in increasing domain order so each distinct slot combination is tried
// once; faculty and room are chosen independently per meeting.
func (s *ConstraintSolver) placeMeetings(ctx context.Context, st *searchState, in SolveInput, depth int, d sectionDomain, chosen []meetingAssignment, slotFrom int) bool {
	st.nodes++
	if st.nodes%deadlineCheckInterval == 0 {
		if time.Now().After(st.deadline) || ctx.Err() != nil {
			st.timedOut = true
		}
	}
	if st.timedOut {
		return false
	}
	if len(chosen) == d.section.RequiredMeetings {
		st.placed[d.section.ID] = placement{meetings: append([]meetingAssignment(nil), chosen...)}
		if s.search(ctx, st, in, depth+1) {
			return true
		}
		delete(st.placed, d.section.ID)
		return false
	}
	// Not enough slots left for the remaining meetings.
	if len(d.slots)-slotFrom < d.section.RequiredMeetings-len(chosen) {
		return false
	}

	facultyOrder := s.orderFaculty(st, in, d, chosen)
	roomOrder := s.orderRooms(in, d, chosen)
	for i := slotFrom; i < len(d.slots); i++ {
		slot := in.Slots[d.slots[i]]
		hours := st.slotHours[slot.ID]
		for _, fi := range facultyOrder {
			fac := in.Faculty[fi]
			fk := fac.ID + "|" + slot.ID
			if st.facBusy[fk] {
				continue
			}
			if st.facHours[fac.ID]+hours > st.facMax[fac.ID] {
				continue
			}
			for _, ri := range roomOrder {
				room := in.Rooms[ri]
				rk := room.ID + "|" + slot.ID
				if st.roomBusy[rk] {
					continue
				}
				st.roomBusy[rk] = true
				st.facBusy[fk] = true
				st.facHours[fac.ID] += hours
				next := append(chosen, meetingAssignment{slotID: slot.ID, facultyID: fac.ID, roomID: room.ID})
				solved := s.placeMeetings(ctx, st, in, depth, d, next, i+1)
				if !solved {
					st.facHours[fac.ID] -= hours
					delete(st.facBusy, fk)
					delete(st.roomBusy, rk)
				}
				if solved || st.timedOut {
					return solved
				}
			}
			if st.timedOut {
				return false
			}
		}
	}
	return false
}

func clonePlacements(src map[string]placement) map[string]placement {
	out := make(map[string]placement, len(src))
	for k, v := range src {
		out[k] = placement{meetings: append([]meetingAssignment(nil), v.meetings...)}
	}
	return out
}

// applyPlacements copies slot assignments onto the sections. A section's
// single-valued faculty and room fields take the first meeting's choice;
// per-meeting detail lives in the schedule entries.
func applyPlacements(sections []models.Section, placed map[string]placement) []models.Section {
	out := make([]models.Section, len(sections))
	copy(out, sections)
	for i := range out {
		p, ok := placed[out[i].ID]
		if !ok || len(p.meetings) == 0 {
			continue
		}
		out[i].AssignedFaculty = p.meetings[0].facultyID
		out[i].AssignedRoom = p.meetings[0].roomID
		slots := make([]string, len(p.meetings))
		for j, m := range p.meetings {
			slots[j] = m.slotID
		}
		out[i].AssignedSlots = slots
	}
	return out
}

func buildSchedule(in SolveInput, placed map[string]placement) []models.ScheduleEntry {
	slotByID := make(map[string]models.TimeSlot, len(in.Slots))
	for _, s := range in.Slots {
		slotByID[s.ID] = s
	}
	courseBySection := make(map[string]string, len(in.Sections))
	for _, sec := range in.Sections {
		courseBySection[sec.ID] = sec.CourseID
	}

	var entries []models.ScheduleEntry
	for sectionID, p := range placed {
		for _, m := range p.meetings {
			slot := slotByID[m.slotID]
			entries = append(entries, models.ScheduleEntry{
				SectionID: sectionID,
				CourseID:  courseBySection[sectionID],
				FacultyID: m.facultyID,
				RoomID:    m.roomID,
				SlotID:    m.slotID,
				Day:       slot.Day,
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SectionID != entries[j].SectionID {
			return entries[i].SectionID < entries[j].SectionID
		}
		return entries[i].SlotID < entries[j].SlotID
	})
	return entries
}

func partialConflicts(sections []models.Section) []models.Conflict {
	var out []models.Conflict
	for _, sec := range sections {
		if len(sec.AssignedSlots) < sec.RequiredMeetings {
			out = append(out, models.Conflict{
				Kind:        "unplaced_section",
				Severity:    models.SeverityHigh,
				Description: fmt.Sprintf("section %s has %d of %d meetings placed", sec.ID, len(sec.AssignedSlots), sec.RequiredMeetings),
				SectionIDs:  []string{sec.ID},
			})
		}
	}
	return out
}
