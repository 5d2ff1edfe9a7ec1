// Package domain contains entities without logic, just meta-data.
package domain

type (
	RoomID    string
	SessionID string
	UserID    string
)

// RoomSnapshot is a read view of a room. Participants appear in join order.
type RoomSnapshot struct {
	RoomID       RoomID        `json:"roomId"`
	Participants []Participant `json:"participants"`
}
