package models

// SectionKind distinguishes theory meetings from lab blocks.
type SectionKind string

const (
	SectionTheory SectionKind = "theory"
	SectionLab    SectionKind = "lab"
)

// Section is one scheduled instance of a course. Slot, room, and faculty
// fields are write-once outputs of an assigner; EnrolledStudents is owned
// by the student allocator.
type Section struct {
	ID               string      `json:"id"`
	CourseID         string      `json:"course_id"`
	Kind             SectionKind `json:"kind"`
	Capacity         int         `json:"capacity"`
	RequiredMeetings int         `json:"required_meetings"`
	AssignedSlots    []string    `json:"assigned_slots"`
	AssignedRoom     string      `json:"assigned_room"`
	AssignedFaculty  string      `json:"assigned_faculty"`
	EnrolledStudents []string    `json:"enrolled_students"`
}
