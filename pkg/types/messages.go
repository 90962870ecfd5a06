package types

// Server -> Client
// Status: transient HUD text (countdowns, phase banners)
//   top: string
//   bottom: string
//
// Overlay: win/lose panel shown at round resolution
//   visible: boolean
//   top: string
//   bottom: string
//   won: boolean
//
// Client -> Server
// The round server is authoritative and player input (movement, actions)
// goes to the game engine, not here; the socket exists to deliver UI
// signals. Client frames are decoded and ignored except for:
//
// Ping: {} (keepalive, no reply)

const (
	MsgStatus  = "Status"
	MsgOverlay = "Overlay"
)

type ServerMessage struct {
	Type    string `json:"type"`
	Top     string `json:"top,omitempty"`
	Bottom  string `json:"bottom,omitempty"`
	Visible bool   `json:"visible,omitempty"`
	Won     bool   `json:"won,omitempty"`
}

type ClientMessage struct {
	Type string `json:"type"`
}
