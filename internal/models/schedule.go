package models

// SolveStatus reports how an assignment run ended.
type SolveStatus string

const (
	StatusOptimal    SolveStatus = "optimal"
	StatusFeasible   SolveStatus = "feasible"
	StatusInfeasible SolveStatus = "infeasible"
	StatusTimedOut   SolveStatus = "timed_out"
)

// ScheduleEntry is one section meeting placed on the grid. A section with
// several required meetings produces one entry per occupied slot.
type ScheduleEntry struct {
	SectionID string `json:"section_id"`
	CourseID  string `json:"course_id"`
	FacultyID string `json:"faculty_id"`
	RoomID    string `json:"room_id"`
	SlotID    string `json:"slot_id"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ConflictSeverity marks how strongly a conflict degrades a timetable.
type ConflictSeverity string

const (
	SeverityHigh   ConflictSeverity = "high"
	SeverityMedium ConflictSeverity = "medium"
	SeverityLow    ConflictSeverity = "low"
)

// Conflict is one detected violation in a candidate timetable.
type Conflict struct {
	Kind        string           `json:"kind"`
	Severity    ConflictSeverity `json:"severity"`
	Description string           `json:"description"`
	SectionIDs  []string         `json:"section_ids,omitempty"`
	SlotID      string           `json:"slot_id,omitempty"`
}

// Metrics summarizes resource usage for a solved timetable.
type Metrics struct {
	FacultyUtilization   float64            `json:"faculty_utilization"`
	RoomUtilization      float64            `json:"room_utilization"`
	FacultyLoadHours     map[string]float64 `json:"faculty_load_hours"`
	RoomOccupiedSlots    map[string]int     `json:"room_occupied_slots"`
	SectionsPlaced       int                `json:"sections_placed"`
	SectionsTotal        int                `json:"sections_total"`
	AllocationSuccess    float64            `json:"allocation_success_rate"`
	ElectiveSatisfaction float64            `json:"elective_satisfaction"`
}

// Recommendation is an actionable suggestion derived from diagnostics.
type Recommendation struct {
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// SolveResult is the full outcome of a planning-and-assignment run.
type SolveResult struct {
	Status          SolveStatus      `json:"status"`
	Sections        []Section        `json:"sections"`
	Schedule        []ScheduleEntry  `json:"schedule"`
	Conflicts       []Conflict       `json:"conflicts"`
	Metrics         Metrics          `json:"metrics"`
	Score           float64          `json:"score"`
	Recommendations []Recommendation `json:"recommendations"`
	ElapsedSeconds  float64          `json:"elapsed_seconds"`
}
