package models

// RoomKind classifies teaching spaces.
type RoomKind string

const (
	RoomClassroom  RoomKind = "classroom"
	RoomLab        RoomKind = "lab"
	RoomAuditorium RoomKind = "auditorium"
)

// Room is a read-only teaching space record.
type Room struct {
	ID       string   `db:"id" json:"id"`
	Name     string   `db:"name" json:"name"`
	Capacity int      `db:"capacity" json:"capacity"`
	Kind     RoomKind `db:"kind" json:"kind"`
}
