package models

// Faculty is a read-only instructor record consumed by the assigners.
type Faculty struct {
	ID              string   `db:"id" json:"id"`
	Name            string   `db:"name" json:"name"`
	Expertise       []string `db:"-" json:"expertise"`
	MaxHoursPerWeek int      `db:"max_hours_per_week" json:"max_hours_per_week"`
}
