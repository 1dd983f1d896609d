package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/timetable-api/internal/dto"
	"github.com/slotwise/timetable-api/internal/models"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
)

type studentAllocatorMock struct {
	captured dto.AllocateRequest
	err      error
}

func (m *studentAllocatorMock) AllocateStudents(ctx context.Context, req dto.AllocateRequest) (*dto.AllocateResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.AllocateResponse{
		Report: models.AllocationReport{SuccessRate: 1},
	}, nil
}

func TestAllocationHandlerAllocate(t *testing.T) {
	mockSvc := &studentAllocatorMock{}
	handler := &AllocationHandler{service: mockSvc}

	w := postJSON(t, handler.Allocate, "/allocations", dto.AllocateRequest{
		ProposalID: "prop-1",
		StudentIDs: []string{"S1", "S2"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "prop-1", mockSvc.captured.ProposalID)
	require.Len(t, mockSvc.captured.StudentIDs, 2)
}

func TestAllocationHandlerAllocateMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &AllocationHandler{service: &studentAllocatorMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/allocations", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Allocate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAllocationHandlerAllocateUnknownProposal(t *testing.T) {
	handler := &AllocationHandler{service: &studentAllocatorMock{err: appErrors.ErrNotFound}}

	w := postJSON(t, handler.Allocate, "/allocations", dto.AllocateRequest{ProposalID: "missing"})
	require.Equal(t, http.StatusNotFound, w.Code)
}
