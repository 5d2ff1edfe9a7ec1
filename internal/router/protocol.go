package router

import (
	"encoding/json"

	"github.com/echoroom/relay/internal/domain"
)

// Client message types.
const (
	TypeJoinRoom     = "join_room"
	TypeLeaveRoom    = "leave_room"
	TypeSignalOffer  = "signal_offer"
	TypeSignalAnswer = "signal_answer"
	TypeSignalICE    = "signal_ice"
	TypeMuteState    = "mute_state"
	TypeAIPing       = "ai_ping"
)

// Server message types. The three signal types are forwarded unchanged.
const (
	TypeRoomSnapshot = "room_snapshot"
	TypeUserJoined   = "user_joined"
	TypeUserLeft     = "user_left"
	TypeUserMuted    = "user_muted"
	TypeAIReply      = "ai_reply"
	TypeError        = "error"
)

// Error codes reported in error envelopes. INVALID_JOIN and ROOM_FULL come
// from the room store's rejections.
const (
	CodeInvalidJSON     = "INVALID_JSON"
	CodeInvalidType     = "INVALID_TYPE"
	CodeUnsupportedType = "UNSUPPORTED_TYPE"
	CodeNotInRoom       = "NOT_IN_ROOM"
	CodeTargetRequired  = "TARGET_REQUIRED"
	CodeTargetNotFound  = "TARGET_NOT_FOUND"
)

// envelope is the inbound frame. Payload stays raw so malformed or non-object
// payloads degrade to an empty document instead of failing the whole frame.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// outgoing is the outbound frame.
type outgoing struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type RoomSnapshotPayload struct {
	RoomID       domain.RoomID        `json:"roomId"`
	SelfUserID   domain.UserID        `json:"selfUserId"`
	Participants []domain.Participant `json:"participants"`
}

type UserJoinedPayload struct {
	RoomID domain.RoomID      `json:"roomId"`
	User   domain.Participant `json:"user"`
}

type UserLeftPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
}

type UserMutedPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
	Muted  bool          `json:"muted"`
}

type AIReplyPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	Text   string        `json:"text"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
