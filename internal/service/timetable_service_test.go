package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/timetable-api/internal/dto"
	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/pkg/config"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
)

func newTestTimetableService() *TimetableService {
	sch := testSchedulerConfig()
	sch.ProposalTTL = time.Hour
	diag := NewDiagnosticsService(sch)
	return NewTimetableService(
		sch,
		NewGridService(sch, nil),
		NewSectionPlanner(sch, nil),
		NewConstraintSolver(sch, nil),
		NewGeneticSolver(testGeneticConfig(), sch, diag, nil),
		NewAllocationService(config.AllocatorConfig{ImprovementPasses: 100}, nil),
		diag,
		nil,
		nil,
		nil,
		nil,
	)
}

func standardPlanRequest() dto.PlanAndAssignRequest {
	return dto.PlanAndAssignRequest{
		Grid: dto.GridRequest{
			StartTime:           "09:00",
			EndTime:             "17:00",
			SlotDurationMinutes: 60,
			GraceMinutes:        10,
			WorkingDays:         []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
			Breaks: []dto.BreakInput{
				{Kind: "lunch", StartTime: "13:00", DurationMinutes: 60},
			},
		},
		Courses: []dto.CourseInput{{
			ID:                "CS101",
			Name:              "Intro to Computing",
			Kind:              "core",
			TheoryHours:       3,
			MaxTheoryCapacity: 60,
			IsCompulsory:      true,
		}},
		Faculty: []dto.FacultyInput{
			{ID: "F1", Name: "Prof. One", MaxHoursPerWeek: 12},
			{ID: "F2", Name: "Prof. Two", MaxHoursPerWeek: 12},
			{ID: "F3", Name: "Prof. Three", MaxHoursPerWeek: 12},
			{ID: "F4", Name: "Prof. Four", MaxHoursPerWeek: 12},
		},
		Rooms: []dto.RoomInput{
			{ID: "R1", Name: "Hall 1", Capacity: 60, Kind: "classroom"},
			{ID: "R2", Name: "Hall 2", Capacity: 60, Kind: "classroom"},
			{ID: "R3", Name: "Hall 3", Capacity: 60, Kind: "classroom"},
		},
		StudentCount: 200,
	}
}

func TestTimetableServiceBuildGrid(t *testing.T) {
	svc := newTestTimetableService()

	resp, err := svc.BuildGrid(standardPlanRequest().Grid)
	require.NoError(t, err)
	assert.Equal(t, 25, resp.TotalCapacity)
	assert.Equal(t, 25, resp.TheorySlots)
	assert.Zero(t, resp.LabSlots)
	assert.Equal(t, 5, resp.SlotsPerDay)
	require.Len(t, resp.DayGrid["Monday"], 5)
	assert.Equal(t, "MON-A1 (09:00-10:00)", resp.DayGrid["Monday"][0])
}

func TestTimetableServicePlanAndAssignEndToEnd(t *testing.T) {
	svc := newTestTimetableService()

	resp, err := svc.PlanAndAssign(context.Background(), standardPlanRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ProposalID)
	assert.Equal(t, models.StatusOptimal, resp.Result.Status)
	assert.Empty(t, resp.Result.Conflicts)
	assert.Len(t, resp.Result.Sections, 4)
	assert.Len(t, resp.Result.Schedule, 12)
	assert.Greater(t, resp.Result.Score, 0.0)

	// The proposal is retrievable afterwards.
	proposal, err := svc.GetProposal(resp.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, resp.ProposalID, proposal.ID)
}

func TestTimetableServiceGeneticPathSharesResultShape(t *testing.T) {
	svc := newTestTimetableService()

	req := standardPlanRequest()
	req.Algorithm = dto.AlgorithmGenetic
	req.Seed = 11

	resp, err := svc.PlanAndAssign(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Result.Schedule, 12)
	assert.Contains(t, []models.SolveStatus{models.StatusFeasible, models.StatusInfeasible}, resp.Result.Status)
}

func TestTimetableServiceAllocateAgainstProposal(t *testing.T) {
	svc := newTestTimetableService()

	planResp, err := svc.PlanAndAssign(context.Background(), standardPlanRequest())
	require.NoError(t, err)

	allocResp, err := svc.AllocateStudents(context.Background(), dto.AllocateRequest{
		ProposalID: planResp.ProposalID,
		StudentIDs: studentIDs(200),
	})
	require.NoError(t, err)
	assert.Empty(t, allocResp.Report.Unallocated)
	assert.InDelta(t, 1.0, allocResp.Report.SuccessRate, 0.001)

	proposal, err := svc.GetProposal(planResp.ProposalID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, proposal.Result.Metrics.AllocationSuccess, 0.001)
}

func TestTimetableServiceAllocateUnknownProposal(t *testing.T) {
	svc := newTestTimetableService()

	_, err := svc.AllocateStudents(context.Background(), dto.AllocateRequest{
		ProposalID: "missing",
		StudentIDs: []string{"S1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceValidatesRequest(t *testing.T) {
	svc := newTestTimetableService()

	req := standardPlanRequest()
	req.Courses = nil
	_, err := svc.PlanAndAssign(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceDeleteProposal(t *testing.T) {
	svc := newTestTimetableService()

	resp, err := svc.PlanAndAssign(context.Background(), standardPlanRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProposal(context.Background(), resp.ProposalID))
	_, err = svc.GetProposal(resp.ProposalID)
	require.Error(t, err)
}

func TestTimetableServiceProposalExpires(t *testing.T) {
	svc := newTestTimetableService()
	svc.store = newProposalStore(time.Millisecond)

	resp, err := svc.PlanAndAssign(context.Background(), standardPlanRequest())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = svc.GetProposal(resp.ProposalID)
	require.Error(t, err)
}
