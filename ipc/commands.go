package ipc

import "github.com/nstehr/wingman/model"

// Command type constants; the engine executes one per message.
const (
	TypeMove   = "move"
	TypeTurn   = "turn"
	TypeLoad   = "load"
	TypeUnload = "unload"
	TypeFire   = "fire"
)

type MoveCommand struct {
	AgentID int       `json:"agentId"`
	Target  model.Ref `json:"target"`
}

type TurnCommand struct {
	AgentID int       `json:"agentId"`
	Target  model.Ref `json:"target"`
}

type LoadCommand struct {
	AgentID int       `json:"agentId"`
	Target  model.Ref `json:"target"`
}

type UnloadCommand struct {
	AgentID int `json:"agentId"`
	BaseID  int `json:"baseId"`
}

type FireCommand struct {
	AgentID int       `json:"agentId"`
	Target  model.Ref `json:"target"`
}
