package ipc

import "github.com/nstehr/wingman/model"

// Message types the engine sends.
const (
	TypeHello = "hello"
	TypeTick  = "tick"
	TypeAck   = "ack"
)

// HelloMessage opens a session: which team this connection drives, the
// arena it plays in and where home is.
type HelloMessage struct {
	Team  int             `json:"team"`
	Arena ArenaBounds     `json:"arena"`
	Home  model.BaseState `json:"home"`
}

type ArenaBounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Empty reports whether the engine left the bounds out.
func (b ArenaBounds) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}

type AckMessage struct {
	Status   string `json:"status"`
	Tick     int    `json:"tick,omitempty"`
	MatchID  string `json:"matchId,omitempty"`
	Commands int    `json:"commands,omitempty"`
}
