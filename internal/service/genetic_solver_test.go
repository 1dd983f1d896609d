package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
)

func testGeneticConfig() config.GeneticConfig {
	return config.GeneticConfig{
		PopulationSize: 40,
		Generations:    120,
		MutationRate:   0.1,
		CrossoverRate:  0.8,
		StallLimit:     50,
	}
}

func newTestGeneticSolver() *GeneticSolver {
	sch := testSchedulerConfig()
	return NewGeneticSolver(testGeneticConfig(), sch, NewDiagnosticsService(sch), nil)
}

func TestGeneticSolverEmitsOneEntryPerMeeting(t *testing.T) {
	solver := newTestGeneticSolver()
	in := standardSolveInput(t)

	status, sections, schedule, _ := solver.Solve(context.Background(), in, 7)
	assert.Contains(t, []models.SolveStatus{models.StatusFeasible, models.StatusInfeasible}, status)
	assert.Len(t, schedule, 12)

	meetings := 0
	for _, sec := range sections {
		meetings += len(sec.AssignedSlots)
		assert.NotEmpty(t, sec.AssignedRoom)
		assert.NotEmpty(t, sec.AssignedFaculty)
	}
	assert.Equal(t, 12, meetings)
}

func TestGeneticSolverDeterministicForSeed(t *testing.T) {
	in := standardSolveInput(t)

	statusA, _, scheduleA, _ := newTestGeneticSolver().Solve(context.Background(), in, 42)
	statusB, _, scheduleB, _ := newTestGeneticSolver().Solve(context.Background(), in, 42)
	assert.Equal(t, statusA, statusB)
	assert.Equal(t, scheduleA, scheduleB)
}

func TestGeneticSolverSingleMeetingIsConflictFree(t *testing.T) {
	solver := newTestGeneticSolver()
	in := standardSolveInput(t)
	in.Sections = []models.Section{{
		ID:               "CS101_T1",
		CourseID:         "CS101",
		Kind:             models.SectionTheory,
		Capacity:         60,
		RequiredMeetings: 1,
	}}

	status, _, schedule, conflicts := solver.Solve(context.Background(), in, 3)
	assert.Equal(t, models.StatusFeasible, status)
	assert.Empty(t, conflicts)
	assert.Len(t, schedule, 1)
}

func TestGeneticSolverFitnessRewardsConflictFreedom(t *testing.T) {
	solver := newTestGeneticSolver()
	in := standardSolveInput(t)

	domains, conflicts := NewConstraintSolver(testSchedulerConfig(), nil).buildDomains(in)
	require.Empty(t, conflicts)
	require.NotEmpty(t, domains)
	d := &domains[0]

	meetings := []meetingSlot{{sectionIdx: 0, domain: d}, {sectionIdx: 0, domain: d}}
	clashing := individual{genes: []gene{
		{sectionIdx: 0, facultyIdx: 0, roomIdx: 0, slotIdx: 0},
		{sectionIdx: 0, facultyIdx: 0, roomIdx: 0, slotIdx: 0},
	}}
	separated := individual{genes: []gene{
		{sectionIdx: 0, facultyIdx: 0, roomIdx: 0, slotIdx: 0},
		{sectionIdx: 0, facultyIdx: 0, roomIdx: 0, slotIdx: 1},
	}}

	assert.Greater(t, solver.fitness(separated, in, meetings), solver.fitness(clashing, in, meetings))
}

func TestGeneticSolverNeverCertifiesSectionSelfOverlap(t *testing.T) {
	in := SolveInput{
		Sections: []models.Section{{
			ID:               "CS101_T1",
			CourseID:         "CS101",
			Kind:             models.SectionTheory,
			Capacity:         30,
			RequiredMeetings: 2,
		}},
		Courses: []models.Course{{ID: "CS101", Kind: models.CourseCore, TheoryHours: 2, IsCompulsory: true}},
		Faculty: []models.Faculty{
			{ID: "F1", MaxHoursPerWeek: 10},
			{ID: "F2", MaxHoursPerWeek: 10},
		},
		Rooms: []models.Room{
			{ID: "R1", Capacity: 40, Kind: models.RoomClassroom},
			{ID: "R2", Capacity: 40, Kind: models.RoomClassroom},
		},
		Slots: []models.TimeSlot{
			{ID: "MON-A1", Day: "Monday", StartTime: "09:00", EndTime: "10:00", DurationMinutes: 60, Kind: models.SlotTheory},
			{ID: "MON-A2", Day: "Monday", StartTime: "10:10", EndTime: "11:10", DurationMinutes: 60, Kind: models.SlotTheory},
		},
	}

	// The tiny decision space makes duplicate-slot genomes likely, so a
	// seed sweep exercises the degenerate corner thoroughly.
	for seed := int64(1); seed <= 25; seed++ {
		status, _, schedule, conflicts := newTestGeneticSolver().Solve(context.Background(), in, seed)
		slotsSeen := make(map[string]int)
		for _, e := range schedule {
			slotsSeen[e.SectionID+"|"+e.SlotID]++
		}
		for key, n := range slotsSeen {
			if n > 1 {
				require.NotEqualf(t, models.StatusFeasible, status,
					"seed %d: feasible schedule repeats %s %d times", seed, key, n)
				require.NotEmptyf(t, conflicts, "seed %d: repeated %s but no conflict reported", seed, key)
			}
		}
	}
}

func TestGeneticSolverFitnessPenalizesSectionSelfOverlap(t *testing.T) {
	solver := newTestGeneticSolver()
	in := standardSolveInput(t)

	domains, conflicts := NewConstraintSolver(testSchedulerConfig(), nil).buildDomains(in)
	require.Empty(t, conflicts)
	d := &domains[0]
	meetings := []meetingSlot{{sectionIdx: 0, domain: d}, {sectionIdx: 0, domain: d}}

	// Same slot twice for one section, disguised with distinct rooms and
	// faculty so room and faculty bookings both look clean.
	selfOverlap := individual{genes: []gene{
		{sectionIdx: 0, facultyIdx: 0, roomIdx: 0, slotIdx: 0},
		{sectionIdx: 0, facultyIdx: 1, roomIdx: 1, slotIdx: 0},
	}}
	separated := individual{genes: []gene{
		{sectionIdx: 0, facultyIdx: 0, roomIdx: 0, slotIdx: 0},
		{sectionIdx: 0, facultyIdx: 1, roomIdx: 1, slotIdx: 1},
	}}

	assert.Greater(t, solver.fitness(separated, in, meetings), solver.fitness(selfOverlap, in, meetings))
}

func TestGeneticSolverBestFitnessNeverRegresses(t *testing.T) {
	for _, seed := range []int64{3, 11, 42} {
		solver := newTestGeneticSolver()
		var trace []float64
		solver.onGeneration = func(_ int, bestFitness float64) {
			trace = append(trace, bestFitness)
		}

		solver.Solve(context.Background(), standardSolveInput(t), seed)
		require.NotEmpty(t, trace)
		for i := 1; i < len(trace); i++ {
			assert.GreaterOrEqualf(t, trace[i], trace[i-1],
				"seed %d: best fitness regressed at generation %d", seed, i)
		}
	}
}

func TestGeneticSolverPropagatesPruningInfeasibility(t *testing.T) {
	solver := newTestGeneticSolver()
	in := standardSolveInput(t)
	in.Courses[0].RequiredExpertise = []string{"quantum-computing"}

	status, _, _, conflicts := solver.Solve(context.Background(), in, 1)
	assert.Equal(t, models.StatusInfeasible, status)
	assert.NotEmpty(t, conflicts)
}
