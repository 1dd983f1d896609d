package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/timetable-api/internal/dto"
	"github.com/slotwise/timetable-api/internal/service"
	appErrors "github.com/slotwise/timetable-api/pkg/errors"
	"github.com/slotwise/timetable-api/pkg/response"
)

// ParserHandler exposes the keyword instruction parser.
type ParserHandler struct {
	parser *service.RequestParser
}

func NewParserHandler(parser *service.RequestParser) *ParserHandler {
	return &ParserHandler{parser: parser}
}

// Parse classifies a free-text scheduling instruction.
func (h *ParserHandler) Parse(c *gin.Context) {
	var req dto.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid parse payload"))
		return
	}
	response.JSON(c, http.StatusOK, h.parser.Parse(req))
}
