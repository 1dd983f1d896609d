package dto

import "github.com/slotwise/timetable-api/internal/models"

// PreferenceInput is one student's ranked elective choices.
type PreferenceInput struct {
	StudentID string   `json:"student_id" validate:"required"`
	CourseIDs []string `json:"course_ids" validate:"required,min=1"`
}

// AllocateRequest asks the allocator to place students into the sections
// of a previously generated proposal.
type AllocateRequest struct {
	ProposalID  string            `json:"proposal_id" validate:"required"`
	StudentIDs  []string          `json:"student_ids" validate:"required,min=1"`
	Preferences []PreferenceInput `json:"preferences" validate:"dive"`
}

// ToPreferences converts the inline inputs to domain models.
func (r AllocateRequest) ToPreferences() []models.ElectivePreference {
	out := make([]models.ElectivePreference, 0, len(r.Preferences))
	for _, p := range r.Preferences {
		out = append(out, models.ElectivePreference{
			StudentID: p.StudentID,
			CourseIDs: p.CourseIDs,
		})
	}
	return out
}

// AllocateResponse is the allocator's report for a proposal.
type AllocateResponse struct {
	ProposalID string                  `json:"proposal_id"`
	Report     models.AllocationReport `json:"report"`
}
