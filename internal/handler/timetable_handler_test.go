package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/timetable-api/internal/dto"
	"github.com/slotwise/timetable-api/internal/models"
	"github.com/slotwise/timetable-api/internal/service"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
)

type timetablePlannerMock struct {
	captured   dto.PlanAndAssignRequest
	planErr    error
	getErr     error
	proposalID string
}

func (m *timetablePlannerMock) BuildGrid(req dto.GridRequest) (*dto.GridResponse, error) {
	return &dto.GridResponse{TotalCapacity: 25}, nil
}

func (m *timetablePlannerMock) PlanAndAssign(ctx context.Context, req dto.PlanAndAssignRequest) (*dto.PlanAndAssignResponse, error) {
	m.captured = req
	if m.planErr != nil {
		return nil, m.planErr
	}
	return &dto.PlanAndAssignResponse{
		ProposalID: m.proposalID,
		Result:     models.SolveResult{Status: models.StatusOptimal},
	}, nil
}

func (m *timetablePlannerMock) GetProposal(id string) (*service.Proposal, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &service.Proposal{ID: id}, nil
}

func (m *timetablePlannerMock) DeleteProposal(ctx context.Context, id string) error {
	return m.getErr
}

func postJSON(t *testing.T, h gin.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	h(c)
	return w
}

func TestTimetableHandlerPlanAndAssignSuccess(t *testing.T) {
	mockSvc := &timetablePlannerMock{proposalID: "prop-1"}
	handler := &TimetableHandler{planner: mockSvc}

	w := postJSON(t, handler.PlanAndAssign, "/timetables", dto.PlanAndAssignRequest{
		StudentCount: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 10, mockSvc.captured.StudentCount)
	require.Contains(t, w.Body.String(), "prop-1")
}

func TestTimetableHandlerPlanAndAssignMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{planner: &timetablePlannerMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/timetables", bytes.NewReader([]byte(`{"grid":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.PlanAndAssign(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerPlanAndAssignServiceError(t *testing.T) {
	mockSvc := &timetablePlannerMock{planErr: appErrors.ErrInfeasible}
	handler := &TimetableHandler{planner: mockSvc}

	w := postJSON(t, handler.PlanAndAssign, "/timetables", dto.PlanAndAssignRequest{})
	require.Equal(t, appErrors.ErrInfeasible.Status, w.Code)
}

func TestTimetableHandlerGetProposal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{planner: &timetablePlannerMock{}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetables/prop-9", nil)
	c.Params = gin.Params{{Key: "id", Value: "prop-9"}}

	handler.GetProposal(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "prop-9")
}

func TestTimetableHandlerGetProposalNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{planner: &timetablePlannerMock{getErr: appErrors.ErrNotFound}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/timetables/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.GetProposal(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerBuildGrid(t *testing.T) {
	handler := &TimetableHandler{planner: &timetablePlannerMock{}}

	w := postJSON(t, handler.BuildGrid, "/grids", dto.GridRequest{
		StartTime:           "09:00",
		EndTime:             "17:00",
		SlotDurationMinutes: 60,
		WorkingDays:         []string{"Monday"},
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTimetableHandlerJobsDisabled(t *testing.T) {
	handler := &TimetableHandler{planner: &timetablePlannerMock{}}

	w := postJSON(t, handler.SubmitJob, "/jobs", dto.PlanAndAssignRequest{})
	require.Equal(t, appErrors.ErrPreconditionFailed.Status, w.Code)
}

type solveJobRunnerMock struct{}

func (m *solveJobRunnerMock) Submit(req dto.PlanAndAssignRequest) (*dto.JobAccepted, error) {
	return &dto.JobAccepted{JobID: "job-1", Status: "queued", PollPath: "/jobs/job-1"}, nil
}

func (m *solveJobRunnerMock) Status(id string) (*dto.JobStatus, error) {
	return &dto.JobStatus{JobID: id, Status: "finished"}, nil
}

func TestTimetableHandlerSubmitJob(t *testing.T) {
	handler := &TimetableHandler{planner: &timetablePlannerMock{}, jobs: &solveJobRunnerMock{}}

	w := postJSON(t, handler.SubmitJob, "/jobs", dto.PlanAndAssignRequest{})
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Contains(t, w.Body.String(), "job-1")
}

func TestTimetableHandlerJobStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{planner: &timetablePlannerMock{}, jobs: &solveJobRunnerMock{}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/jobs/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.JobStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "finished")
}
