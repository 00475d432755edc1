package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Role is the behaviour an agent is currently running.
type Role int

const (
	RoleHarvester Role = iota
	RoleFighter
	RoleGuardian
)

func (r Role) String() string {
	switch r {
	case RoleHarvester:
		return "harvester"
	case RoleFighter:
		return "fighter"
	case RoleGuardian:
		return "guardian"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole maps a role name to a Role. The empty name is a harvester.
func ParseRole(name string) (Role, error) {
	switch name {
	case "", "harvester":
		return RoleHarvester, nil
	case "fighter":
		return RoleFighter, nil
	case "guardian":
		return RoleGuardian, nil
	}
	return RoleHarvester, fmt.Errorf("unknown role %q", name)
}

// Target is anything an agent can be sent towards.
type Target interface {
	Position() orb.Point
}

// Deposit is a target that holds payload an agent can load from: a resource
// node, a dead agent's wreck or a base.
type Deposit interface {
	Target
	Remaining() int
}

// Waypoint is a bare formation or defense position.
type Waypoint orb.Point

func (w Waypoint) Position() orb.Point { return orb.Point(w) }

// Resource is a depletable node. Payload only ever goes down.
type Resource struct {
	ID      int
	Pos     orb.Point
	Payload int
}

func (r *Resource) Position() orb.Point { return r.Pos }
func (r *Resource) Remaining() int      { return r.Payload }

// Rich reports whether the node alone holds at least threshold payload.
func (r *Resource) Rich(threshold int) bool { return r.Payload >= threshold }

// Base is a team's mothership. Dead bases keep whatever payload they held
// and can be looted.
type Base struct {
	ID      int
	Team    int
	Pos     orb.Point
	Payload int
	Health  int
	Dead    bool
}

func (b *Base) Position() orb.Point { return b.Pos }
func (b *Base) Remaining() int      { return b.Payload }
func (b *Base) Alive() bool         { return !b.Dead }
func (b *Base) Empty() bool         { return b.Payload <= 0 }

// Agent is a single drone. Position, health, cargo and the Moving flag are
// owned by the engine; everything else is decision state.
type Agent struct {
	ID        int
	Team      int
	Pos       orb.Point
	Heading   float64
	Health    int
	MaxHealth int
	Cargo     int
	Capacity  int
	Moving    bool
	Dead      bool

	Role       Role
	Target     Target
	NextTarget Deposit
	Engaged    bool
	Offensive  bool
	Waiting    bool
	Home       *Base

	// PrevPos marks where the current leg started, for travel statistics.
	PrevPos orb.Point
}

func (a *Agent) Position() orb.Point { return a.Pos }

// Remaining is the cargo a wreck still carries.
func (a *Agent) Remaining() int { return a.Cargo }
func (a *Agent) Alive() bool    { return !a.Dead }
func (a *Agent) Full() bool     { return a.Cargo >= a.Capacity }
func (a *Agent) Empty() bool    { return a.Cargo <= 0 }
func (a *Agent) FreeSpace() int { return max(0, a.Capacity-a.Cargo) }

// HealthFraction returns health as a fraction of MaxHealth (1 when unknown).
func (a *Agent) HealthFraction() float64 {
	if a.MaxHealth <= 0 {
		return 1
	}
	return float64(a.Health) / float64(a.MaxHealth)
}

func (a *Agent) String() string {
	return fmt.Sprintf("agent-%d/%d", a.Team, a.ID)
}
