// Package room owns the authoritative mapping of rooms to participants and
// sessions to rooms. It enforces the capacity and identity invariants and is
// the only mutator of that state.
package room

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/echoroom/relay/internal/domain"
)

// MaxCapacity is the number of concurrent sessions a room can hold.
const MaxCapacity = 5

// JoinResult carries the accepted membership: the room as seen right after
// the join, plus the joiner's own session binding.
type JoinResult struct {
	Snapshot domain.RoomSnapshot
	Self     domain.ParticipantSession
}

// LeaveResult reports what a leave removed. Left is false when the session
// had no membership, which is not an error.
type LeaveResult struct {
	Left        bool
	RoomID      domain.RoomID
	Participant domain.Participant
}

// roomState keeps per-room membership. The order slice preserves join order
// for snapshots; the members map serves lookups.
type roomState struct {
	order   []domain.SessionID
	members map[domain.SessionID]domain.ParticipantSession
}

// Store is a threadsafe in-memory room state store. A single mutex serializes
// every operation so the capacity check and the membership mutation are atomic
// as a unit. Internal maps are never handed out; reads return copies.
type Store struct {
	mu          sync.Mutex
	rooms       map[domain.RoomID]*roomState
	sessionRoom map[domain.SessionID]domain.RoomID
}

func NewStore() *Store {
	return &Store{
		rooms:       make(map[domain.RoomID]*roomState),
		sessionRoom: make(map[domain.SessionID]domain.RoomID),
	}
}

// Join places a session into a room, implicitly leaving any previous room
// first. The capacity check runs against the post-leave state, so a session
// re-joining its own full room is not blocked by the slot it just vacated.
func (s *Store) Join(roomID domain.RoomID, sessionID domain.SessionID, userID domain.UserID, displayName string) (JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(string(roomID)) == "" || strings.TrimSpace(string(userID)) == "" {
		return JoinResult{}, ErrInvalidJoin
	}

	s.removeSession(sessionID)

	state, ok := s.rooms[roomID]
	if !ok {
		state = &roomState{members: make(map[domain.SessionID]domain.ParticipantSession)}
		s.rooms[roomID] = state
	}
	if len(state.members) >= MaxCapacity {
		return JoinResult{}, ErrRoomFull
	}

	self := domain.ParticipantSession{
		RoomID:      roomID,
		SessionID:   sessionID,
		Participant: domain.NewParticipant(userID, displayName),
	}
	state.order = append(state.order, sessionID)
	state.members[sessionID] = self
	s.sessionRoom[sessionID] = roomID

	log.Debug().
		Str("module", "room.store").
		Str("room", string(roomID)).
		Str("sid", string(sessionID)).
		Int("members", len(state.members)).
		Msg("session joined")

	return JoinResult{Snapshot: s.snapshotLocked(roomID, state), Self: self}, nil
}

// LeaveBySession removes a session from whatever room it is in. A room with
// no members left is dropped entirely; rooms only exist while occupied.
func (s *Store) LeaveBySession(sessionID domain.SessionID) LeaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeSession(sessionID)
}

// Snapshot returns the room's current view, or false if the room does not exist.
func (s *Store) Snapshot(roomID domain.RoomID) (domain.RoomSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.rooms[roomID]
	if !ok {
		return domain.RoomSnapshot{}, false
	}
	return s.snapshotLocked(roomID, state), true
}

// FindBySession returns the session's current membership, or false if the
// session is not in any room.
func (s *Store) FindBySession(sessionID domain.SessionID) (domain.ParticipantSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, ok := s.sessionRoom[sessionID]
	if !ok {
		return domain.ParticipantSession{}, false
	}
	state, ok := s.rooms[roomID]
	if !ok {
		return domain.ParticipantSession{}, false
	}
	ps, ok := state.members[sessionID]
	return ps, ok
}

// Info is a read-only per-room view for the REST API.
type Info struct {
	RoomID           domain.RoomID `json:"roomId"`
	ParticipantCount int           `json:"participantCount"`
}

// Rooms lists every occupied room with its member count.
func (s *Store) Rooms() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Info, 0, len(s.rooms))
	for roomID, state := range s.rooms {
		out = append(out, Info{RoomID: roomID, ParticipantCount: len(state.members)})
	}
	return out
}

// removeSession is the shared leave path. Caller must hold s.mu.
func (s *Store) removeSession(sessionID domain.SessionID) LeaveResult {
	roomID, ok := s.sessionRoom[sessionID]
	if !ok {
		return LeaveResult{}
	}
	delete(s.sessionRoom, sessionID)

	state, ok := s.rooms[roomID]
	if !ok {
		return LeaveResult{}
	}
	removed, ok := state.members[sessionID]
	if ok {
		delete(state.members, sessionID)
		for i, sid := range state.order {
			if sid == sessionID {
				state.order = append(state.order[:i], state.order[i+1:]...)
				break
			}
		}
	}
	if len(state.members) == 0 {
		delete(s.rooms, roomID)
		log.Debug().Str("module", "room.store").Str("room", string(roomID)).Msg("empty room removed")
	}
	if !ok {
		return LeaveResult{}
	}
	return LeaveResult{Left: true, RoomID: roomID, Participant: removed.Participant}
}

// snapshotLocked builds a copy in join order. Caller must hold s.mu.
func (s *Store) snapshotLocked(roomID domain.RoomID, state *roomState) domain.RoomSnapshot {
	participants := make([]domain.Participant, 0, len(state.members))
	for _, sid := range state.order {
		participants = append(participants, state.members[sid].Participant)
	}
	return domain.RoomSnapshot{RoomID: roomID, Participants: participants}
}
