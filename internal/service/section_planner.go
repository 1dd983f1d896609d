package service

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
)

// SectionPlanner sizes and materializes the parallel sections every
// course needs for the given student strength.
type SectionPlanner struct {
	cfg config.SchedulerConfig
	log *zap.Logger
}

func NewSectionPlanner(cfg config.SchedulerConfig, log *zap.Logger) *SectionPlanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &SectionPlanner{cfg: cfg, log: log}
}

// PlanResult carries the planned sections plus the warnings the planner
// accumulated while sizing them.
type PlanResult struct {
	Sections []models.Section
	Warnings []string
}

// Plan computes theory and lab section counts per course and emits the
// section entities in deterministic course-then-ordinal order.
func (p *SectionPlanner) Plan(courses []models.Course, totalStudents int, rooms []models.Room) (PlanResult, error) {
	if totalStudents <= 0 {
		return PlanResult{}, appErrors.Clone(appErrors.ErrConfig, "student strength must be positive")
	}
	avgCapacity := averageRoomCapacity(rooms)

	var result PlanResult
	for _, course := range courses {
		expected := expectedEnrollment(course, totalStudents)
		if course.TheoryHours == 0 && course.LabHours == 0 {
			msg := fmt.Sprintf("course %s has no weekly hours and produces no sections", course.ID)
			p.log.Warn("skipping course without hours", zap.String("course_id", course.ID))
			result.Warnings = append(result.Warnings, msg)
			continue
		}
		if expected == 0 {
			msg := fmt.Sprintf("course %s has zero expected enrollment", course.ID)
			result.Warnings = append(result.Warnings, msg)
			continue
		}

		if course.TheoryHours > 0 {
			capacity := course.MaxTheoryCapacity
			if capacity <= 0 {
				capacity = avgCapacity
			}
			count := sectionCount(expected, capacity)
			for n := 1; n <= count; n++ {
				result.Sections = append(result.Sections, models.Section{
					ID:               fmt.Sprintf("%s_T%d", course.ID, n),
					CourseID:         course.ID,
					Kind:             models.SectionTheory,
					Capacity:         minInt(capacity, expected),
					RequiredMeetings: course.TheoryHours,
				})
			}
		}
		if course.LabHours > 0 {
			capacity := course.MaxLabCapacity
			if capacity <= 0 {
				capacity = avgCapacity
			}
			count := sectionCount(expected, capacity)
			meetings := int(math.Ceil(float64(course.LabHours) / float64(p.cfg.LabBlockHours)))
			for n := 1; n <= count; n++ {
				result.Sections = append(result.Sections, models.Section{
					ID:               fmt.Sprintf("%s_L%d", course.ID, n),
					CourseID:         course.ID,
					Kind:             models.SectionLab,
					Capacity:         minInt(capacity, expected),
					RequiredMeetings: meetings,
				})
			}
		}
	}
	return result, nil
}

func expectedEnrollment(course models.Course, totalStudents int) int {
	if course.IsCompulsory {
		return totalStudents
	}
	return int(math.Round(float64(totalStudents) * course.DemandFraction))
}

func sectionCount(expected, capacity int) int {
	return int(math.Ceil(float64(expected) / float64(capacity)))
}

// averageRoomCapacity backs courses that omit an explicit capacity.
// Falls back to a conventional classroom size when no rooms are known.
func averageRoomCapacity(rooms []models.Room) int {
	if len(rooms) == 0 {
		return 60
	}
	total := 0
	for _, r := range rooms {
		total += r.Capacity
	}
	avg := total / len(rooms)
	if avg <= 0 {
		return 60
	}
	return avg
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
