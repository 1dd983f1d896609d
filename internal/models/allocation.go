package models

// ElectivePreference is one student's ranked elective choices, most
// preferred first.
type ElectivePreference struct {
	StudentID string   `json:"student_id"`
	CourseIDs []string `json:"course_ids"`
}

// StudentAllocation records where a single student landed.
type StudentAllocation struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	SectionID string `json:"section_id"`
	// Rank is the 1-based position of the course in the student's
	// preference list, 0 when the course was compulsory.
	Rank int `json:"rank,omitempty"`
}

// AllocationReport is the allocator's full output.
type AllocationReport struct {
	Allocations       []StudentAllocation `json:"allocations"`
	Unallocated       []string            `json:"unallocated_students"`
	SuccessRate       float64             `json:"success_rate"`
	SatisfactionScore float64             `json:"satisfaction_score"`
}

// Student is a read-only enrollment record.
type Student struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Program string `db:"program" json:"program"`
	Year    int    `db:"year" json:"year"`
}
