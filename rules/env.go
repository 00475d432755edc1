package rules

import (
	"strings"

	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/model"
)

// RoleEnv exposes one agent and its fleet to expr conditions. Every helper
// reads live state.
type RoleEnv struct {
	Agent *model.Agent
	Fleet *fleet.Fleet
	World model.World
}

func (e RoleEnv) Role() string { return e.Agent.Role.String() }

func (e RoleEnv) IsRole(r string) bool {
	return strings.EqualFold(e.Agent.Role.String(), r)
}

// Health is the agent's health as a fraction of its maximum.
func (e RoleEnv) Health() float64 { return e.Agent.HealthFraction() }

func (e RoleEnv) Offensive() bool { return e.Agent.Offensive }

func (e RoleEnv) AtHome() bool { return e.Fleet.AtHome(e.Agent) }

// Homebound reports whether the agent is already heading for its home base.
func (e RoleEnv) Homebound() bool {
	home := e.Agent.Home
	if home == nil {
		home = e.Fleet.Home
	}
	if home == nil || e.Agent.Target == nil {
		return false
	}
	return geom.Near(e.Agent.Target.Position(), home.Pos, e.Fleet.NearTolerance)
}

// EnemiesAlive counts living agents of other teams.
func (e RoleEnv) EnemiesAlive() int {
	n := 0
	for _, o := range e.World.Agents() {
		if o.Team != e.Fleet.Team && o.Alive() {
			n++
		}
	}
	return n
}

// EnemyBasesAlive counts living bases of other teams.
func (e RoleEnv) EnemyBasesAlive() int {
	n := 0
	for _, b := range e.World.Bases() {
		if b.Team != e.Fleet.Team && b.Alive() {
			n++
		}
	}
	return n
}

func (e RoleEnv) OwnAlive() int   { return len(e.Fleet.Live()) }
func (e RoleEnv) Casualties() int { return e.Fleet.Casualties }
