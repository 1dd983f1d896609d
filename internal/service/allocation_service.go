package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
)

// preferenceWeights maps a 1-based preference rank to its satisfaction
// weight. Ranks beyond the table score zero.
var preferenceWeights = map[int]float64{1: 10, 2: 7, 3: 5, 4: 3, 5: 1}

// AllocationService places students into solved sections. Compulsory
// courses are filled first-fit; electives honor ranked preferences with
// a bounded local improvement phase.
type AllocationService struct {
	cfg config.AllocatorConfig
	log *zap.Logger
}

func NewAllocationService(cfg config.AllocatorConfig, log *zap.Logger) *AllocationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AllocationService{cfg: cfg, log: log}
}

// studentState tracks one student's growing schedule during allocation.
type studentState struct {
	occupied map[string]struct{}
	placed   map[string]string
}

// Allocate assigns every student one section per compulsory course and,
// where preferences are given, elective sections in preference order.
// Placement failures are accumulated, never fatal.
func (a *AllocationService) Allocate(sections []models.Section, courses []models.Course, studentIDs []string, prefs []models.ElectivePreference) ([]models.Section, models.AllocationReport) {
	out := make([]models.Section, len(sections))
	copy(out, sections)
	for i := range out {
		out[i].EnrolledStudents = append([]string(nil), out[i].EnrolledStudents...)
	}

	courseByID := make(map[string]models.Course, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = c
	}
	sectionsByCourse := make(map[string][]*models.Section)
	for i := range out {
		if out[i].Kind != models.SectionTheory && out[i].Kind != models.SectionLab {
			continue
		}
		sectionsByCourse[out[i].CourseID] = append(sectionsByCourse[out[i].CourseID], &out[i])
	}
	for _, group := range sectionsByCourse {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}

	states := make(map[string]*studentState, len(studentIDs))
	for _, id := range studentIDs {
		states[id] = &studentState{occupied: make(map[string]struct{}), placed: make(map[string]string)}
	}

	var report models.AllocationReport
	compulsory := compulsoryCourseIDs(courses)

	// Compulsory first: every student scans the course's sections in
	// stable order and takes the first conflict-free seat.
	failed := make(map[string]bool)
	for _, courseID := range compulsory {
		for _, studentID := range studentIDs {
			st := states[studentID]
			if !a.placeFirstFit(st, studentID, courseID, sectionsByCourse[courseID]) {
				failed[studentID] = true
				a.log.Debug("student unplaced in compulsory course",
					zap.String("student_id", studentID), zap.String("course_id", courseID))
			}
		}
	}

	a.allocateElectives(states, sectionsByCourse, courseByID, prefs)

	// Report assembly. Satisfaction compares achieved preference weight
	// against the first-choice maximum.
	var achieved, maximum float64
	for _, p := range prefs {
		if _, ok := states[p.StudentID]; !ok {
			continue
		}
		maximum += preferenceWeights[1]
		for rank, courseID := range p.CourseIDs {
			if _, placed := states[p.StudentID].placed[courseID]; placed {
				achieved += preferenceWeights[rank+1]
				break
			}
		}
	}
	if maximum > 0 {
		report.SatisfactionScore = achieved / maximum
	}

	prefRank := buildRankIndex(prefs)
	for _, studentID := range studentIDs {
		st := states[studentID]
		for courseID, sectionID := range st.placed {
			rank := 0
			if course, ok := courseByID[courseID]; ok && !course.IsCompulsory {
				rank = prefRank[studentID][courseID]
			}
			report.Allocations = append(report.Allocations, models.StudentAllocation{
				StudentID: studentID,
				CourseID:  courseID,
				SectionID: sectionID,
				Rank:      rank,
			})
		}
		if failed[studentID] {
			report.Unallocated = append(report.Unallocated, studentID)
		}
	}
	sort.Slice(report.Allocations, func(i, j int) bool {
		if report.Allocations[i].StudentID != report.Allocations[j].StudentID {
			return report.Allocations[i].StudentID < report.Allocations[j].StudentID
		}
		return report.Allocations[i].CourseID < report.Allocations[j].CourseID
	})
	sort.Strings(report.Unallocated)

	if want := len(studentIDs) * len(compulsory); want > 0 {
		placed := 0
		for _, st := range states {
			for courseID := range st.placed {
				if course, ok := courseByID[courseID]; ok && course.IsCompulsory {
					placed++
				}
			}
		}
		report.SuccessRate = float64(placed) / float64(want)
	} else {
		report.SuccessRate = 1
	}
	return out, report
}

func (a *AllocationService) placeFirstFit(st *studentState, studentID, courseID string, group []*models.Section) bool {
	for _, sec := range group {
		if len(sec.EnrolledStudents) >= sec.Capacity {
			continue
		}
		if slotsClash(st.occupied, sec.AssignedSlots) {
			continue
		}
		enroll(st, sec, studentID, courseID)
		return true
	}
	return false
}

// electiveCandidate is one feasible (student, section, rank) triple.
type electiveCandidate struct {
	studentID string
	rank      int
	section   *models.Section
}

func (a *AllocationService) allocateElectives(states map[string]*studentState, sectionsByCourse map[string][]*models.Section, courseByID map[string]models.Course, prefs []models.ElectivePreference) {
	var candidates []electiveCandidate
	for _, p := range prefs {
		st, ok := states[p.StudentID]
		if !ok {
			continue
		}
		for rank, courseID := range p.CourseIDs {
			course, known := courseByID[courseID]
			if !known || course.IsCompulsory {
				continue
			}
			for _, sec := range sectionsByCourse[courseID] {
				if slotsClash(st.occupied, sec.AssignedSlots) {
					continue
				}
				candidates = append(candidates, electiveCandidate{studentID: p.StudentID, rank: rank + 1, section: sec})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}
		if candidates[i].studentID != candidates[j].studentID {
			return candidates[i].studentID < candidates[j].studentID
		}
		return candidates[i].section.ID < candidates[j].section.ID
	})

	for _, c := range candidates {
		st := states[c.studentID]
		if _, done := st.placed[c.section.CourseID]; done {
			continue
		}
		if len(c.section.EnrolledStudents) >= c.section.Capacity {
			continue
		}
		if slotsClash(st.occupied, c.section.AssignedSlots) {
			continue
		}
		enroll(st, c.section, c.studentID, c.section.CourseID)
	}

	a.improveElectives(states, candidates)
}

// improveElectives runs bounded passes swapping students into strictly
// higher ranked sections when a seat and the student's slots allow it.
func (a *AllocationService) improveElectives(states map[string]*studentState, candidates []electiveCandidate) {
	rankOf := make(map[string]map[string]int)
	for _, c := range candidates {
		if rankOf[c.studentID] == nil {
			rankOf[c.studentID] = make(map[string]int)
		}
		if prev, ok := rankOf[c.studentID][c.section.ID]; !ok || c.rank < prev {
			rankOf[c.studentID][c.section.ID] = c.rank
		}
	}

	for pass := 0; pass < a.cfg.ImprovementPasses; pass++ {
		improved := false
		for _, c := range candidates {
			st := states[c.studentID]
			currentID, placed := st.placed[c.section.CourseID]
			if !placed || currentID == c.section.ID {
				continue
			}
			if rankOf[c.studentID][c.section.ID] >= rankOf[c.studentID][currentID] {
				continue
			}
			if len(c.section.EnrolledStudents) >= c.section.Capacity {
				continue
			}
			current := findByID(candidates, currentID)
			if current == nil {
				continue
			}
			unenroll(st, current, c.studentID)
			if slotsClash(st.occupied, c.section.AssignedSlots) {
				enroll(st, current, c.studentID, current.CourseID)
				continue
			}
			enroll(st, c.section, c.studentID, c.section.CourseID)
			improved = true
		}
		if !improved {
			break
		}
	}
}

func findByID(candidates []electiveCandidate, sectionID string) *models.Section {
	for _, c := range candidates {
		if c.section.ID == sectionID {
			return c.section
		}
	}
	return nil
}

func enroll(st *studentState, sec *models.Section, studentID, courseID string) {
	sec.EnrolledStudents = append(sec.EnrolledStudents, studentID)
	st.placed[courseID] = sec.ID
	for _, slot := range sec.AssignedSlots {
		st.occupied[slot] = struct{}{}
	}
}

func unenroll(st *studentState, sec *models.Section, studentID string) {
	for i, id := range sec.EnrolledStudents {
		if id == studentID {
			sec.EnrolledStudents = append(sec.EnrolledStudents[:i], sec.EnrolledStudents[i+1:]...)
			break
		}
	}
	delete(st.placed, sec.CourseID)
	for _, slot := range sec.AssignedSlots {
		delete(st.occupied, slot)
	}
}

func slotsClash(occupied map[string]struct{}, slots []string) bool {
	for _, s := range slots {
		if _, used := occupied[s]; used {
			return true
		}
	}
	return false
}

func compulsoryCourseIDs(courses []models.Course) []string {
	var ids []string
	for _, c := range courses {
		if c.IsCompulsory {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// buildRankIndex maps student to course to 1-based preference rank.
func buildRankIndex(prefs []models.ElectivePreference) map[string]map[string]int {
	index := make(map[string]map[string]int, len(prefs))
	for _, p := range prefs {
		ranks := make(map[string]int, len(p.CourseIDs))
		for i, courseID := range p.CourseIDs {
			if _, seen := ranks[courseID]; !seen {
				ranks[courseID] = i + 1
			}
		}
		index[p.StudentID] = ranks
	}
	return index
}
