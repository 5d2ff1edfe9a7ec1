package domain

import "strings"

const DefaultDisplayName = "Anonymous"

// Participant is the user-identity record bound to a room membership.
// Identity key is UserID within a room.
type Participant struct {
	UserID      UserID `json:"userId"`
	DisplayName string `json:"displayName"`
	Muted       bool   `json:"muted"`
}

// ParticipantSession binds one transport session to one room and one
// participant identity. A session belongs to at most one room at a time.
type ParticipantSession struct {
	RoomID      RoomID      `json:"roomId"`
	SessionID   SessionID   `json:"sessionId"`
	Participant Participant `json:"participant"`
}

// NewParticipant keeps construction obvious and applies the display-name
// fallback in one place instead of ad-hoc literals in adapters.
func NewParticipant(userID UserID, displayName string) Participant {
	if strings.TrimSpace(displayName) == "" {
		displayName = DefaultDisplayName
	}
	return Participant{UserID: userID, DisplayName: displayName}
}
