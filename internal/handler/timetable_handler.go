package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/timetable-api/internal/dto"
	"github.com/slotwise/timetable-api/internal/service"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
	"github.com/slotwise/timetable-api/pkg/response"
)

type timetablePlanner interface {
	BuildGrid(req dto.GridRequest) (*dto.GridResponse, error)
	PlanAndAssign(ctx context.Context, req dto.PlanAndAssignRequest) (*dto.PlanAndAssignResponse, error)
	GetProposal(id string) (*service.Proposal, error)
	DeleteProposal(ctx context.Context, id string) error
}

type solveJobRunner interface {
	Submit(req dto.PlanAndAssignRequest) (*dto.JobAccepted, error)
	Status(id string) (*dto.JobStatus, error)
}

// TimetableHandler exposes grid building and assignment endpoints.
type TimetableHandler struct {
	planner timetablePlanner
	jobs    solveJobRunner
}

// NewTimetableHandler constructs the handler. The jobs runner may be
// nil when async solving is disabled.
func NewTimetableHandler(planner *service.TimetableService, jobs *service.SolveJobService) *TimetableHandler {
	h := &TimetableHandler{planner: planner}
	if jobs != nil {
		h.jobs = jobs
	}
	return h
}

// BuildGrid expands an administrative config into the labeled slot grid.
func (h *TimetableHandler) BuildGrid(c *gin.Context) {
	var req dto.GridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grid payload"))
		return
	}
	resp, err := h.planner.BuildGrid(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// PlanAndAssign runs the full pipeline synchronously.
func (h *TimetableHandler) PlanAndAssign(c *gin.Context) {
	var req dto.PlanAndAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	resp, err := h.planner.PlanAndAssign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// GetProposal returns a retained proposal with its full result.
func (h *TimetableHandler) GetProposal(c *gin.Context) {
	proposal, err := h.planner.GetProposal(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PlanAndAssignResponse{ProposalID: proposal.ID, Result: proposal.Result})
}

// DeleteProposal discards a retained proposal.
func (h *TimetableHandler) DeleteProposal(c *gin.Context) {
	if err := h.planner.DeleteProposal(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SubmitJob queues a solve to run in the background.
func (h *TimetableHandler) SubmitJob(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "async solving is disabled"))
		return
	}
	var req dto.PlanAndAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	accepted, err := h.jobs.Submit(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, accepted)
}

// JobStatus reports where a queued solve stands.
func (h *TimetableHandler) JobStatus(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "async solving is disabled"))
		return
	}
	status, err := h.jobs.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}
