package fleet

// EventKind tags a decision worth journaling or showing to spectators.
type EventKind string

const (
	EventJoin       EventKind = "join"
	EventLost       EventKind = "lost"
	EventRole       EventKind = "role"
	EventClaim      EventKind = "claim"
	EventLookahead  EventKind = "lookahead"
	EventTheft      EventKind = "theft"
	EventDepleted   EventKind = "depleted"
	EventIdle       EventKind = "idle"
	EventRetreat    EventKind = "retreat"
	EventAttack     EventKind = "attack"
	EventAdvance    EventKind = "advance"
	EventAbort      EventKind = "abort"
	EventRoleReject EventKind = "role_mismatch"
)

type Event struct {
	Tick   int       `json:"tick" db:"tick"`
	Kind   EventKind `json:"kind" db:"kind"`
	Agent  int       `json:"agent,omitempty" db:"agent"`
	Other  int       `json:"other,omitempty" db:"other"`
	X      float64   `json:"x,omitempty" db:"x"`
	Y      float64   `json:"y,omitempty" db:"y"`
	Detail string    `json:"detail,omitempty" db:"detail"`
}

// Emit buffers e stamped with the current tick.
func (f *Fleet) Emit(e Event) {
	e.Tick = f.Tick
	f.events = append(f.events, e)
}

// Drain returns and clears the buffered events.
func (f *Fleet) Drain() []Event {
	out := f.events
	f.events = nil
	return out
}
