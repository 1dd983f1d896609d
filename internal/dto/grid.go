package dto

import "github.com/slotwise/timetable-api/internal/models"

// BreakInput mirrors models.Break for request payloads.
type BreakInput struct {
	Kind            string `json:"kind" validate:"required,oneof=morning lunch evening"`
	StartTime       string `json:"start_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=5"`
}

// GridRequest carries the administrative setup a slot grid is built from.
type GridRequest struct {
	StartTime           string       `json:"start_time" validate:"required"`
	EndTime             string       `json:"end_time" validate:"required"`
	SlotDurationMinutes int          `json:"slot_duration_minutes" validate:"required,min=30,max=240"`
	GraceMinutes        int          `json:"grace_minutes" validate:"required,min=1,max=60"`
	WorkingDays         []string     `json:"working_days" validate:"required,min=1,dive,required"`
	Breaks              []BreakInput `json:"breaks" validate:"dive"`
}

// ToConfig converts the request into the immutable domain config.
func (r GridRequest) ToConfig() models.AdminConfig {
	breaks := make([]models.Break, 0, len(r.Breaks))
	for _, b := range r.Breaks {
		breaks = append(breaks, models.Break{
			Kind:            models.BreakKind(b.Kind),
			StartTime:       b.StartTime,
			DurationMinutes: b.DurationMinutes,
		})
	}
	return models.AdminConfig{
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		SlotDurationMinutes: r.SlotDurationMinutes,
		GraceMinutes:        r.GraceMinutes,
		WorkingDays:         r.WorkingDays,
		Breaks:              breaks,
	}
}

// GridResponse is the generated slot grid plus summary counts. DayGrid
// is a per-day preview of "LABEL (start-end)" strings in slot order.
type GridResponse struct {
	Slots         []models.TimeSlot   `json:"slots"`
	TheorySlots   int                 `json:"theory_slots"`
	LabSlots      int                 `json:"lab_eligible_slots"`
	SlotsPerDay   int                 `json:"slots_per_day"`
	WorkingDays   []string            `json:"working_days"`
	TotalCapacity int                 `json:"total_weekly_slots"`
	DayGrid       map[string][]string `json:"day_grid,omitempty"`
}
