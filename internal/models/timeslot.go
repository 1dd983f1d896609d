package models

// SlotKind classifies what a slot can host.
type SlotKind string

const (
	SlotTheory      SlotKind = "theory"
	SlotLabEligible SlotKind = "lab"
)

// TimeSlot is one labeled teaching interval within a working day.
// Slots are generated once per run and never mutated afterwards.
type TimeSlot struct {
	ID              string   `json:"id"`
	Day             string   `json:"day"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	DurationMinutes int      `json:"duration_minutes"`
	Kind            SlotKind `json:"kind"`
	IsBreak         bool     `json:"is_break"`
}
