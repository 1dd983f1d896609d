package models

// CourseKind distinguishes how a course is offered and sectioned.
type CourseKind string

const (
	CourseCore     CourseKind = "core"
	CourseElective CourseKind = "elective"
	CourseLab      CourseKind = "lab"
	CourseClinic   CourseKind = "clinic"
)

// Course is the immutable course definition scheduling works from.
type Course struct {
	ID                string     `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Kind              CourseKind `db:"kind" json:"kind"`
	Credits           int        `db:"credits" json:"credits"`
	TheoryHours       int        `db:"theory_hours" json:"theory_hours_per_week"`
	LabHours          int        `db:"lab_hours" json:"lab_hours_per_week"`
	MaxTheoryCapacity int        `db:"max_theory_capacity" json:"max_theory_capacity"`
	MaxLabCapacity    int        `db:"max_lab_capacity" json:"max_lab_capacity"`
	RequiredExpertise []string   `db:"-" json:"required_expertise"`
	IsCompulsory      bool       `db:"is_compulsory" json:"is_compulsory"`
	DemandFraction    float64    `db:"demand_fraction" json:"estimated_demand_fraction"`
}
