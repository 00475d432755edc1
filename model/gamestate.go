package model

// GameState is one tick of the engine's world as seen by a fleet, plus the
// hook callbacks the engine raised since the previous tick.
type GameState struct {
	Tick      int             `json:"tick"`
	Agents    []AgentState    `json:"agents"`
	Resources []ResourceState `json:"resources"`
	Bases     []BaseState     `json:"bases"`
	Events    []HookEvent     `json:"events"`
}

type AgentState struct {
	ID        int     `json:"id"`
	Team      int     `json:"team"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Heading   float64 `json:"heading"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"maxHealth"`
	Cargo     int     `json:"cargo"`
	Capacity  int     `json:"capacity"`
	Moving    bool    `json:"moving"`
	Dead      bool    `json:"dead"`
}

type ResourceState struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Payload int     `json:"payload"`
}

type BaseState struct {
	ID      int     `json:"id"`
	Team    int     `json:"team"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Payload int     `json:"payload"`
	Health  int     `json:"health"`
	Dead    bool    `json:"dead"`
}

// RefKind names the entity table a Ref points into.
type RefKind string

const (
	RefResource RefKind = "resource"
	RefBase     RefKind = "base"
	RefAgent    RefKind = "agent"
	RefPoint    RefKind = "point"
)

// Ref identifies a target on the wire. Points carry coordinates instead of an ID.
type Ref struct {
	Kind RefKind `json:"kind"`
	ID   int     `json:"id,omitempty"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
}

// HookKind is an engine callback delivered alongside a tick.
type HookKind string

const (
	HookSpawn          HookKind = "spawn"
	HookArriveDeposit  HookKind = "arrive_deposit"
	HookLoadComplete   HookKind = "load_complete"
	HookArriveBase     HookKind = "arrive_base"
	HookUnloadComplete HookKind = "unload_complete"
	HookWakeUp         HookKind = "wake_up"
)

type HookEvent struct {
	Kind    HookKind `json:"kind"`
	AgentID int      `json:"agentId"`
	Target  *Ref     `json:"target,omitempty"`
	// Role is only set on spawn; empty means harvester.
	Role string `json:"role,omitempty"`
}
