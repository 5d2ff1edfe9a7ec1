// Package router decodes inbound envelopes, dispatches them by type, and
// fans typed messages out to the right subset of connected sessions. It owns
// the live-session registry; room state lives in the room store.
package router

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/echoroom/relay/internal/ai"
	"github.com/echoroom/relay/internal/domain"
	"github.com/echoroom/relay/internal/room"
)

// Session is a live transport connection as the router sees it. Owned by the
// transport adapter; Send is best-effort and must never block or panic.
type Session interface {
	ID() domain.SessionID
	IsOpen() bool
	Send(text string)
}

type Router struct {
	store     *room.Store
	responder ai.Responder

	mu       sync.RWMutex
	sessions map[domain.SessionID]Session
}

func New(store *room.Store, responder ai.Responder) *Router {
	return &Router{
		store:     store,
		responder: responder,
		sessions:  make(map[domain.SessionID]Session),
	}
}

// Register adds a session to the live registry. A second registration under
// the same id replaces the first.
func (rt *Router) Register(s Session) {
	rt.mu.Lock()
	rt.sessions[s.ID()] = s
	rt.mu.Unlock()
	log.Info().Str("module", "router").Str("sid", string(s.ID())).Msg("session registered")
}

// HandleMessage decodes one inbound frame and dispatches it. Every failure
// path answers the sender with an error envelope; nothing here terminates
// the session.
func (rt *Router) HandleMessage(sid domain.SessionID, payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		rt.sendError(sid, CodeInvalidJSON, "Malformed message payload.")
		return
	}
	if strings.TrimSpace(env.Type) == "" {
		rt.sendError(sid, CodeInvalidType, "Message type is required.")
		return
	}

	doc := ParseDocument(env.Payload)
	switch env.Type {
	case TypeJoinRoom:
		rt.handleJoin(sid, doc)
	case TypeLeaveRoom:
		rt.leaveAndBroadcast(sid)
	case TypeSignalOffer, TypeSignalAnswer, TypeSignalICE:
		rt.handleSignal(sid, env.Type, doc)
	case TypeMuteState:
		rt.handleMuteState(sid, doc)
	case TypeAIPing:
		rt.handleAIPing(sid, doc)
	default:
		log.Warn().Str("module", "router").Str("sid", string(sid)).Str("type", env.Type).Msg("unsupported message type")
		rt.sendError(sid, CodeUnsupportedType, "Unsupported message type: "+env.Type)
	}
}

// HandleClose runs the leave sequence for a dropped transport, then removes
// the session from the registry. The leave must read the prior membership
// before the registry entry disappears.
func (rt *Router) HandleClose(sid domain.SessionID) {
	rt.leaveAndBroadcast(sid)
	rt.mu.Lock()
	delete(rt.sessions, sid)
	rt.mu.Unlock()
	log.Info().Str("module", "router").Str("sid", string(sid)).Msg("session closed")
}

func (rt *Router) handleJoin(sid domain.SessionID, doc Document) {
	roomID := domain.RoomID(doc.GetString("roomId"))
	userID := domain.UserID(doc.GetString("userId"))
	displayName := doc.GetString("displayName")

	res, err := rt.store.Join(roomID, sid, userID, displayName)
	if err != nil {
		var rej *room.Rejection
		if errors.As(err, &rej) {
			rt.sendError(sid, rej.Code, rej.Message)
		}
		return
	}

	log.Info().
		Str("module", "router").
		Str("sid", string(sid)).
		Str("room", string(res.Snapshot.RoomID)).
		Str("user", string(res.Self.Participant.UserID)).
		Msg("joined room")

	rt.send(sid, TypeRoomSnapshot, RoomSnapshotPayload{
		RoomID:       res.Snapshot.RoomID,
		SelfUserID:   res.Self.Participant.UserID,
		Participants: res.Snapshot.Participants,
	})
	rt.broadcastToRoomExcept(res.Snapshot.RoomID, sid, TypeUserJoined, UserJoinedPayload{
		RoomID: res.Snapshot.RoomID,
		User:   res.Self.Participant,
	})
}

func (rt *Router) handleSignal(sid domain.SessionID, msgType string, doc Document) {
	sender, ok := rt.store.FindBySession(sid)
	if !ok {
		rt.sendError(sid, CodeNotInRoom, "Join a room before signaling.")
		return
	}

	targetUserID := doc.GetString("targetUserId")
	if strings.TrimSpace(targetUserID) == "" {
		rt.sendError(sid, CodeTargetRequired, "targetUserId is required.")
		return
	}

	targetSID, ok := rt.findSessionByRoomAndUser(sender.RoomID, domain.UserID(targetUserID))
	if !ok {
		rt.sendError(sid, CodeTargetNotFound, "Target user is not connected.")
		return
	}

	forward := doc.Without("targetUserId")
	from, err := json.Marshal(sender.Participant.UserID)
	if err != nil {
		return
	}
	forward["fromUserId"] = from
	rt.send(targetSID, msgType, forward)
}

func (rt *Router) handleMuteState(sid domain.SessionID, doc Document) {
	sender, ok := rt.store.FindBySession(sid)
	if !ok {
		rt.sendError(sid, CodeNotInRoom, "Join a room before updating mute state.")
		return
	}

	// The flag is relayed to peers but not written back to the participant
	// record; a later snapshot still reports muted=false. Known gap.
	muted := doc.GetBool("muted", false)
	rt.broadcastToRoomExcept(sender.RoomID, sid, TypeUserMuted, UserMutedPayload{
		RoomID: sender.RoomID,
		UserID: sender.Participant.UserID,
		Muted:  muted,
	})
}

func (rt *Router) handleAIPing(sid domain.SessionID, doc Document) {
	sender, ok := rt.store.FindBySession(sid)
	if !ok {
		rt.sendError(sid, CodeNotInRoom, "Join a room before using AI features.")
		return
	}

	reply := rt.responder.Reply(ai.Request{
		RoomID: sender.RoomID,
		UserID: sender.Participant.UserID,
		Prompt: doc.GetString("text"),
	})
	rt.send(sid, TypeAIReply, AIReplyPayload{RoomID: sender.RoomID, Text: reply.Text})
}

func (rt *Router) leaveAndBroadcast(sid domain.SessionID) {
	res := rt.store.LeaveBySession(sid)
	if !res.Left {
		return
	}
	log.Info().
		Str("module", "router").
		Str("sid", string(sid)).
		Str("room", string(res.RoomID)).
		Msg("left room")
	rt.broadcastToRoomExcept(res.RoomID, sid, TypeUserLeft, UserLeftPayload{
		RoomID: res.RoomID,
		UserID: res.Participant.UserID,
	})
}

// findSessionByRoomAndUser resolves the open session whose membership matches
// both room and user. Deliberately an O(sessions) scan over the registry; the
// room store stays the single source of truth for membership.
func (rt *Router) findSessionByRoomAndUser(roomID domain.RoomID, userID domain.UserID) (domain.SessionID, bool) {
	for _, s := range rt.snapshotSessions() {
		if !s.IsOpen() {
			continue
		}
		ps, ok := rt.store.FindBySession(s.ID())
		if ok && ps.RoomID == roomID && ps.Participant.UserID == userID {
			return s.ID(), true
		}
	}
	return "", false
}

// broadcastToRoomExcept delivers to every open session currently in the room
// other than the excluded one. Recipients are whoever matches at call time;
// per-recipient failures stay isolated.
func (rt *Router) broadcastToRoomExcept(roomID domain.RoomID, excluded domain.SessionID, msgType string, payload any) {
	for _, s := range rt.snapshotSessions() {
		if s.ID() == excluded || !s.IsOpen() {
			continue
		}
		ps, ok := rt.store.FindBySession(s.ID())
		if ok && ps.RoomID == roomID {
			rt.send(s.ID(), msgType, payload)
		}
	}
}

func (rt *Router) snapshotSessions() []Session {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]Session, 0, len(rt.sessions))
	for _, s := range rt.sessions {
		out = append(out, s)
	}
	return out
}

func (rt *Router) sendError(sid domain.SessionID, code, message string) {
	rt.send(sid, TypeError, ErrorPayload{Code: code, Message: message})
}

// send encodes and delivers one envelope. Missing or closed sessions are
// silently skipped; encoding failures are logged and swallowed so a bad
// payload can never break the dispatch loop.
func (rt *Router) send(sid domain.SessionID, msgType string, payload any) {
	rt.mu.RLock()
	s, ok := rt.sessions[sid]
	rt.mu.RUnlock()
	if !ok || !s.IsOpen() {
		return
	}

	data, err := json.Marshal(outgoing{Type: msgType, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("module", "router").Str("sid", string(sid)).Str("type", msgType).Msg("encode outbound")
		return
	}
	s.Send(string(data))
}
