package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/timetable-api/internal/service"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
	"github.com/slotwise/timetable-api/pkg/response"
)

type proposalReader interface {
	GetProposal(id string) (*service.Proposal, error)
}

type timetableRenderer interface {
	RenderCSV(proposal *service.Proposal) ([]byte, error)
	RenderPDF(proposal *service.Proposal) ([]byte, error)
}

// ExportHandler serves retained proposals as downloadable documents.
type ExportHandler struct {
	proposals proposalReader
	renderer  timetableRenderer
}

func NewExportHandler(proposals *service.TimetableService, renderer *service.ExportService) *ExportHandler {
	return &ExportHandler{proposals: proposals, renderer: renderer}
}

// Export streams the proposal as CSV or PDF depending on ?format=.
func (h *ExportHandler) Export(c *gin.Context) {
	proposal, err := h.proposals.GetProposal(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	var (
		payload     []byte
		contentType string
	)
	switch format {
	case "csv":
		payload, err = h.renderer.RenderCSV(proposal)
		contentType = "text/csv"
	case "pdf":
		payload, err = h.renderer.RenderPDF(proposal)
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format)))
		return
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	filename := fmt.Sprintf("timetable-%s.%s", proposal.ID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
