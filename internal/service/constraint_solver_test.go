package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/timetable-api/internal/models"
)

func standardSolveInput(t *testing.T) SolveInput {
	t.Helper()
	grid := NewGridService(testSchedulerConfig(), nil)
	slots, err := grid.BuildGrid(standardWeekConfig())
	require.NoError(t, err)

	courses := []models.Course{{
		ID:                "CS101",
		Name:              "Intro to Computing",
		Kind:              models.CourseCore,
		TheoryHours:       3,
		MaxTheoryCapacity: 60,
		IsCompulsory:      true,
	}}
	planner := NewSectionPlanner(testSchedulerConfig(), nil)
	plan, err := planner.Plan(courses, 200, nil)
	require.NoError(t, err)

	return SolveInput{
		Sections: plan.Sections,
		Courses:  courses,
		Faculty: []models.Faculty{
			{ID: "F1", Name: "Prof. One", MaxHoursPerWeek: 12},
			{ID: "F2", Name: "Prof. Two", MaxHoursPerWeek: 12},
			{ID: "F3", Name: "Prof. Three", MaxHoursPerWeek: 12},
			{ID: "F4", Name: "Prof. Four", MaxHoursPerWeek: 12},
		},
		Rooms: []models.Room{
			{ID: "R1", Name: "Hall 1", Capacity: 60, Kind: models.RoomClassroom},
			{ID: "R2", Name: "Hall 2", Capacity: 60, Kind: models.RoomClassroom},
			{ID: "R3", Name: "Hall 3", Capacity: 60, Kind: models.RoomClassroom},
		},
		Slots: slots,
	}
}

func TestConstraintSolverSolvesStandardScenario(t *testing.T) {
	solver := NewConstraintSolver(testSchedulerConfig(), nil)
	in := standardSolveInput(t)

	status, sections, schedule, conflicts := solver.Solve(context.Background(), in)
	require.Equal(t, models.StatusOptimal, status)
	assert.Empty(t, conflicts)
	assert.Len(t, schedule, 12)

	for _, sec := range sections {
		assert.Len(t, sec.AssignedSlots, sec.RequiredMeetings)
		assert.NotEmpty(t, sec.AssignedRoom)
		assert.NotEmpty(t, sec.AssignedFaculty)
	}

	diag := NewDiagnosticsService(testSchedulerConfig())
	assert.Empty(t, diag.DetectConflicts(schedule))
}

func TestConstraintSolverMeetingsUseDistinctSlots(t *testing.T) {
	solver := NewConstraintSolver(testSchedulerConfig(), nil)
	in := standardSolveInput(t)

	_, sections, _, _ := solver.Solve(context.Background(), in)
	for _, sec := range sections {
		seen := make(map[string]struct{})
		for _, slot := range sec.AssignedSlots {
			_, dup := seen[slot]
			assert.Falsef(t, dup, "section %s meets twice in slot %s", sec.ID, slot)
			seen[slot] = struct{}{}
		}
	}
}

func TestConstraintSolverRespectsFacultyHourLimits(t *testing.T) {
	solver := NewConstraintSolver(testSchedulerConfig(), nil)
	in := standardSolveInput(t)
	in.Faculty = []models.Faculty{
		{ID: "F1", MaxHoursPerWeek: 6},
		{ID: "F2", MaxHoursPerWeek: 6},
	}

	status, _, schedule, _ := solver.Solve(context.Background(), in)
	require.Equal(t, models.StatusOptimal, status)

	hours := make(map[string]int)
	for _, e := range schedule {
		hours[e.FacultyID]++
	}
	for id, h := range hours {
		assert.LessOrEqualf(t, h, 6, "faculty %s exceeds weekly limit", id)
	}
}

func TestConstraintSolverSplitsMeetingsAcrossFaculty(t *testing.T) {
	solver := NewConstraintSolver(testSchedulerConfig(), nil)
	in := standardSolveInput(t)
	in.Sections = []models.Section{{
		ID:               "CS101_T1",
		CourseID:         "CS101",
		Kind:             models.SectionTheory,
		Capacity:         60,
		RequiredMeetings: 2,
	}}
	// Feasible only when the two meetings go to different instructors.
	in.Faculty = []models.Faculty{
		{ID: "F1", MaxHoursPerWeek: 1},
		{ID: "F2", MaxHoursPerWeek: 1},
	}

	status, _, schedule, conflicts := solver.Solve(context.Background(), in)
	require.Equal(t, models.StatusOptimal, status)
	assert.Empty(t, conflicts)
	require.Len(t, schedule, 2)

	taught := map[string]int{}
	for _, e := range schedule {
		taught[e.FacultyID]++
	}
	assert.Len(t, taught, 2)
}

func TestConstraintSolverReportsInfeasibleWhenNoFacultyQualifies(t *testing.T) {
	solver := NewConstraintSolver(testSchedulerConfig(), nil)
	in := standardSolveInput(t)
	in.Courses[0].RequiredExpertise = []string{"quantum-computing"}

	status, _, _, conflicts := solver.Solve(context.Background(), in)
	assert.Equal(t, models.StatusInfeasible, status)
	require.NotEmpty(t, conflicts)
	assert.Equal(t, "unsatisfiable_section", conflicts[0].Kind)
}

func TestConstraintSolverHonoursExpertiseTags(t *testing.T) {
	solver := NewConstraintSolver(testSchedulerConfig(), nil)
	in := standardSolveInput(t)
	in.Courses[0].RequiredExpertise = []string{"programming"}
	in.Faculty = []models.Faculty{
		{ID: "F1", Expertise: []string{"history"}, MaxHoursPerWeek: 40},
		{ID: "F2", Expertise: []string{"programming"}, MaxHoursPerWeek: 40},
	}
	in.Sections = in.Sections[:1]

	status, sections, _, _ := solver.Solve(context.Background(), in)
	require.Equal(t, models.StatusOptimal, status)
	assert.Equal(t, "F2", sections[0].AssignedFaculty)
}

func TestConstraintSolverLabSectionsNeedLabRooms(t *testing.T) {
	solver := NewConstraintSolver(testSchedulerConfig(), nil)
	in := standardSolveInput(t)
	in.Sections = []models.Section{{
		ID:               "CH202_L1",
		CourseID:         "CH202",
		Kind:             models.SectionLab,
		Capacity:         30,
		RequiredMeetings: 1,
	}}
	in.Courses = []models.Course{{ID: "CH202", Kind: models.CourseLab, LabHours: 2}}

	status, _, _, conflicts := solver.Solve(context.Background(), in)
	assert.Equal(t, models.StatusInfeasible, status)
	require.NotEmpty(t, conflicts)
	assert.Contains(t, conflicts[0].Description, "cannot be placed")
}

func TestConstraintSolverTimesOutGracefully(t *testing.T) {
	solver := NewConstraintSolver(testSchedulerConfig(), nil)
	in := standardSolveInput(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	status, _, _, _ := solver.Solve(ctx, in)
	assert.Contains(t, []models.SolveStatus{models.StatusTimedOut, models.StatusOptimal}, status)
}
