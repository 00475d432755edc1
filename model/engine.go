package model

import "github.com/paulmach/orb"

// Engine is the movement/combat collaborator. Commands are fire-and-forget;
// their effects show up in later snapshots or hook callbacks.
type Engine interface {
	MoveTo(a *Agent, t Target)
	TurnTo(a *Agent, t Target)
	LoadFrom(a *Agent, d Deposit)
	UnloadTo(a *Agent, b *Base)
	FireAt(a *Agent, t Target)
}

// World is what an agent can observe. Slices are in a stable engine-defined
// order and contain dead entities too; callers filter.
type World interface {
	Resources() []*Resource
	Bases() []*Base
	Agents() []*Agent
	Bounds() orb.Bound
}
