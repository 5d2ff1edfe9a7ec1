// Package ai holds the reply generator the router calls for ai_ping messages.
// The router treats it as an opaque synchronous request/response function.
package ai

import (
	"strings"

	"github.com/echoroom/relay/internal/domain"
)

type Request struct {
	RoomID domain.RoomID
	UserID domain.UserID
	Prompt string
}

type Reply struct {
	Text string
}

// Responder produces a reply for a prompt. Implementations must be safe for
// concurrent use and must not block.
type Responder interface {
	Reply(req Request) Reply
}

// MockResponder echoes the prompt back with a marker prefix. It stands in for
// a real model during development and in tests.
type MockResponder struct{}

func NewMockResponder() *MockResponder { return &MockResponder{} }

func (MockResponder) Reply(req Request) Reply {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return Reply{Text: "[mock-ai] Ping received."}
	}
	return Reply{Text: "[mock-ai] " + prompt}
}
