// Package rtc builds the ICE server catalog clients plug into their
// RTCPeerConnection configuration. The relay itself never opens a peer
// connection; media stays between the browsers.
package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/echoroom/relay/internal/config"
)

// DefaultICEServers is the fallback when no servers are configured.
func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
	}
}

// Catalog converts configured entries into pion's wire representation,
// falling back to the default STUN server when the config lists none.
func Catalog(servers []config.ICEServer) []webrtc.ICEServer {
	if len(servers) == 0 {
		return DefaultICEServers()
	}
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		ice := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			ice.Username = s.Username
			ice.Credential = s.Credential
		}
		out = append(out, ice)
	}
	return out
}
