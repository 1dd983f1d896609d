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

type studentAllocator interface {
	AllocateStudents(ctx context.Context, req dto.AllocateRequest) (*dto.AllocateResponse, error)
}

// AllocationHandler exposes student allocation endpoints.
type AllocationHandler struct {
	service studentAllocator
}

func NewAllocationHandler(svc *service.TimetableService) *AllocationHandler {
	return &AllocationHandler{service: svc}
}

// Allocate places students into a retained proposal's sections.
func (h *AllocationHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}
	resp, err := h.service.AllocateStudents(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
