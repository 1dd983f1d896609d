package models

// BreakKind labels the purpose of a configured break window.
type BreakKind string

const (
	BreakMorning BreakKind = "morning"
	BreakLunch   BreakKind = "lunch"
	BreakEvening BreakKind = "evening"
)

// Break is a non-teaching window inside the working day.
type Break struct {
	Kind            BreakKind `json:"kind"`
	StartTime       string    `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// AdminConfig is the administrative setup a grid is generated from.
// It is treated as immutable once handed to the grid builder.
type AdminConfig struct {
	StartTime           string   `json:"start_time"`
	EndTime             string   `json:"end_time"`
	SlotDurationMinutes int      `json:"slot_duration_minutes"`
	GraceMinutes        int      `json:"grace_minutes"`
	WorkingDays         []string `json:"working_days"`
	Breaks              []Break  `json:"breaks"`
}
