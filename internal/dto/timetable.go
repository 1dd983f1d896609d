package dto

import "github.com/slotwise/timetable-api/internal/models"

// Assignment algorithm selectors accepted by PlanAndAssignRequest.
const (
	AlgorithmConstraint = "constraint"
	AlgorithmGenetic    = "genetic"
)

// CourseInput is a course definition supplied inline with a request.
type CourseInput struct {
	ID                string   `json:"id" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	Kind              string   `json:"kind" validate:"required,oneof=core elective lab clinic"`
	Credits           int      `json:"credits" validate:"min=0"`
	TheoryHours       int      `json:"theory_hours_per_week" validate:"min=0"`
	LabHours          int      `json:"lab_hours_per_week" validate:"min=0"`
	MaxTheoryCapacity int      `json:"max_theory_capacity" validate:"min=0"`
	MaxLabCapacity    int      `json:"max_lab_capacity" validate:"min=0"`
	RequiredExpertise []string `json:"required_expertise"`
	IsCompulsory      bool     `json:"is_compulsory"`
	DemandFraction    float64  `json:"estimated_demand_fraction" validate:"min=0,max=1"`
}

// FacultyInput is an instructor record supplied inline with a request.
type FacultyInput struct {
	ID              string   `json:"id" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	Expertise       []string `json:"expertise"`
	MaxHoursPerWeek int      `json:"max_hours_per_week" validate:"required,min=1"`
}

// RoomInput is a teaching space supplied inline with a request.
type RoomInput struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	Kind     string `json:"kind" validate:"required,oneof=classroom lab auditorium"`
}

// PlanAndAssignRequest drives a full sectioning-and-assignment run.
type PlanAndAssignRequest struct {
	Grid              GridRequest    `json:"grid" validate:"required"`
	Courses           []CourseInput  `json:"courses" validate:"required,min=1,dive"`
	Faculty           []FacultyInput `json:"faculty" validate:"required,min=1,dive"`
	Rooms             []RoomInput    `json:"rooms" validate:"required,min=1,dive"`
	StudentCount      int            `json:"student_count" validate:"required,min=1"`
	Algorithm         string         `json:"algorithm" validate:"omitempty,oneof=constraint genetic"`
	TimeBudgetSeconds int            `json:"time_budget_seconds" validate:"omitempty,min=1,max=600"`
	Seed              int64          `json:"seed"`
}

// Courses converts the inline inputs to domain models.
func (r PlanAndAssignRequest) ToCourses() []models.Course {
	out := make([]models.Course, 0, len(r.Courses))
	for _, c := range r.Courses {
		out = append(out, models.Course{
			ID:                c.ID,
			Name:              c.Name,
			Kind:              models.CourseKind(c.Kind),
			Credits:           c.Credits,
			TheoryHours:       c.TheoryHours,
			LabHours:          c.LabHours,
			MaxTheoryCapacity: c.MaxTheoryCapacity,
			MaxLabCapacity:    c.MaxLabCapacity,
			RequiredExpertise: c.RequiredExpertise,
			IsCompulsory:      c.IsCompulsory,
			DemandFraction:    c.DemandFraction,
		})
	}
	return out
}

// ToFaculty converts the inline inputs to domain models.
func (r PlanAndAssignRequest) ToFaculty() []models.Faculty {
	out := make([]models.Faculty, 0, len(r.Faculty))
	for _, f := range r.Faculty {
		out = append(out, models.Faculty{
			ID:              f.ID,
			Name:            f.Name,
			Expertise:       f.Expertise,
			MaxHoursPerWeek: f.MaxHoursPerWeek,
		})
	}
	return out
}

// ToRooms converts the inline inputs to domain models.
func (r PlanAndAssignRequest) ToRooms() []models.Room {
	out := make([]models.Room, 0, len(r.Rooms))
	for _, rm := range r.Rooms {
		out = append(out, models.Room{
			ID:       rm.ID,
			Name:     rm.Name,
			Capacity: rm.Capacity,
			Kind:     models.RoomKind(rm.Kind),
		})
	}
	return out
}

// PlanAndAssignResponse wraps a solve result with its proposal handle.
type PlanAndAssignResponse struct {
	ProposalID string             `json:"proposal_id"`
	Result     models.SolveResult `json:"result"`
}
