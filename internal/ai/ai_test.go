package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockResponderEchoesPrompt(t *testing.T) {
	r := NewMockResponder()

	reply := r.Reply(Request{RoomID: "r-1", UserID: "u-1", Prompt: "  hello  "})
	assert.Equal(t, "[mock-ai] hello", reply.Text)
}

func TestMockResponderEmptyPrompt(t *testing.T) {
	r := NewMockResponder()

	reply := r.Reply(Request{RoomID: "r-1", UserID: "u-1"})
	assert.Equal(t, "[mock-ai] Ping received.", reply.Text)
}
