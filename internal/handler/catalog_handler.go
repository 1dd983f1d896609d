package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/timetable-api/internal/service"
	"github.com/slotwise/timetable-api/pkg/response"
)

// CatalogHandler serves the provisioned scheduling inputs.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Courses lists the course catalog.
func (h *CatalogHandler) Courses(c *gin.Context) {
	courses, err := h.catalog.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Faculty lists the instructor catalog.
func (h *CatalogHandler) Faculty(c *gin.Context) {
	faculty, err := h.catalog.Faculty(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty)
}

// Rooms lists the room catalog.
func (h *CatalogHandler) Rooms(c *gin.Context) {
	rooms, err := h.catalog.Rooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms)
}

// Students lists enrolled students with optional program/year filters.
func (h *CatalogHandler) Students(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	students, err := h.catalog.Students(c.Request.Context(), c.Query("program"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}
