package rtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoroom/relay/internal/config"
)

func TestCatalogFallsBackToDefaultStun(t *testing.T) {
	servers := Catalog(nil)
	require.Len(t, servers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, servers[0].URLs)
}

func TestCatalogFromConfig(t *testing.T) {
	servers := Catalog([]config.ICEServer{
		{URLs: []string{"stun:stun.example.org:3478"}},
		{URLs: []string{"turn:turn.example.org:3478"}, Username: "relay", Credential: "secret"},
	})

	require.Len(t, servers, 2)
	assert.Empty(t, servers[0].Username)
	assert.Equal(t, "relay", servers[1].Username)
	assert.Equal(t, "secret", servers[1].Credential)
}
