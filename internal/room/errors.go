package room

// Rejection is a business-rule refusal. The router maps Code onto the wire
// error envelope; Message is safe to show to the client.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string { return r.Message }

var (
	ErrInvalidJoin = &Rejection{Code: "INVALID_JOIN", Message: "Room ID and User ID are required."}
	ErrRoomFull    = &Rejection{Code: "ROOM_FULL", Message: "Room is full (max 5 participants)."}
)
