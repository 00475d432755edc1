// Package fleet holds the state one team's drones share: the claim table,
// the depleted set, the role rosters and the formation plan. Nothing here is
// safe for concurrent use on its own; callers hold the fleet lock for the
// whole decision phase of a tick so "select, then claim" stays atomic.
package fleet

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/nstehr/wingman/formation"
	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/model"
)

type Fleet struct {
	mu sync.Mutex

	Team int
	Home *model.Base
	Plan *formation.Plan

	// Claims holds every deposit that is some member's target or next target.
	Claims *Set
	// Depleted holds deposits seen at zero payload. They never come back.
	Depleted *Set

	// Members is every agent ever spawned into the fleet, in spawn order.
	Members    []*model.Agent
	rosters    map[model.Role][]*model.Agent
	Casualties int

	NearTolerance float64
	Tick          int
	events        []Event
}

func New(team int, plan *formation.Plan, nearTolerance float64) *Fleet {
	return &Fleet{
		Team:          team,
		Plan:          plan,
		Claims:        NewSet(),
		Depleted:      NewSet(),
		rosters:       make(map[model.Role][]*model.Agent),
		NearTolerance: nearTolerance,
	}
}

func (f *Fleet) Lock()   { f.mu.Lock() }
func (f *Fleet) Unlock() { f.mu.Unlock() }

// SetHome registers the home base once; the formation plan derives its
// defense posts from it.
func (f *Fleet) SetHome(b *model.Base) {
	if f.Home != nil || b == nil {
		return
	}
	f.Home = b
	if f.Plan != nil {
		f.Plan.SetHome(b)
	}
}

// Join adds a freshly spawned agent to the fleet under role.
func (f *Fleet) Join(a *model.Agent, role model.Role) {
	for _, m := range f.Members {
		if m == a {
			return
		}
	}
	if a.Home == nil {
		a.Home = f.Home
	}
	f.Members = append(f.Members, a)
	a.Role = role
	f.rosters[role] = append(f.rosters[role], a)
	f.applyRoleFlags(a, role)
	f.Emit(Event{Kind: EventJoin, Agent: a.ID, Detail: role.String()})
}

// SetRole moves a between rosters. It is a no-op when a already has role.
func (f *Fleet) SetRole(a *model.Agent, role model.Role) {
	if a.Role == role && f.inRoster(a, role) {
		return
	}
	from := a.Role
	f.removeFromRosters(a)
	a.Role = role
	f.rosters[role] = append(f.rosters[role], a)
	f.applyRoleFlags(a, role)
	slog.Info("role changed", "agent", a.ID, "from", from.String(), "to", role.String())
	f.Emit(Event{Kind: EventRole, Agent: a.ID, Detail: fmt.Sprintf("%s->%s", from, role)})
}

func (f *Fleet) applyRoleFlags(a *model.Agent, role model.Role) {
	switch role {
	case model.RoleFighter:
		a.Offensive = true
		a.Waiting = false
	case model.RoleHarvester:
		a.Offensive = false
		a.Engaged = false
		a.Waiting = f.AtHome(a)
	case model.RoleGuardian:
		a.Offensive = false
		a.Waiting = false
	}
}

// AtHome reports whether a is parked at its home base.
func (f *Fleet) AtHome(a *model.Agent) bool {
	home := a.Home
	if home == nil {
		home = f.Home
	}
	if home == nil {
		return false
	}
	return geom.Near(a.Pos, home.Pos, f.NearTolerance)
}

// Roster returns the live members currently in role, in roster order.
func (f *Fleet) Roster(role model.Role) []*model.Agent {
	src := f.rosters[role]
	out := make([]*model.Agent, 0, len(src))
	for _, a := range src {
		if a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

func (f *Fleet) Harvesters() []*model.Agent { return f.Roster(model.RoleHarvester) }
func (f *Fleet) Fighters() []*model.Agent   { return f.Roster(model.RoleFighter) }
func (f *Fleet) Guardians() []*model.Agent  { return f.Roster(model.RoleGuardian) }

// Live returns every living member in spawn order.
func (f *Fleet) Live() []*model.Agent {
	var out []*model.Agent
	for _, a := range f.Members {
		if a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

// IsMember reports whether a belongs to this fleet.
func (f *Fleet) IsMember(a *model.Agent) bool {
	for _, m := range f.Members {
		if m == a {
			return true
		}
	}
	return false
}

// Prune drops dead members from every roster, releases their claims and
// counts them as casualties. Safe to call every tick.
func (f *Fleet) Prune() int {
	lost := 0
	for _, a := range f.Members {
		if a.Alive() || !f.inAnyRoster(a) {
			continue
		}
		f.removeFromRosters(a)
		f.ReleaseTargets(a)
		f.Casualties++
		lost++
		slog.Info("agent lost", "agent", a.ID, "role", a.Role.String(), "casualties", f.Casualties)
		f.Emit(Event{Kind: EventLost, Agent: a.ID, Detail: a.Role.String()})
	}
	return lost
}

// Release drops d from the claim table.
func (f *Fleet) Release(d model.Deposit) {
	if f.Claims.Remove(d) {
		slog.Debug("claim released", "x", d.Position()[0], "y", d.Position()[1])
	}
}

// ReleaseTargets drops any claims a holds and clears its look-ahead.
func (f *Fleet) ReleaseTargets(a *model.Agent) {
	if d, ok := a.Target.(model.Deposit); ok {
		f.Release(d)
	}
	if a.NextTarget != nil {
		f.Release(a.NextTarget)
		a.NextTarget = nil
	}
}

// Deplete marks d permanently unavailable and evicts any claim on it.
func (f *Fleet) Deplete(d model.Deposit) {
	if f.Depleted.Add(d) {
		f.Claims.Remove(d)
		f.Emit(Event{Kind: EventDepleted, X: d.Position()[0], Y: d.Position()[1]})
	}
}

// CheckPartition verifies that the three rosters partition the live members.
func (f *Fleet) CheckPartition() error {
	seen := make(map[*model.Agent]model.Role)
	for _, role := range []model.Role{model.RoleHarvester, model.RoleFighter, model.RoleGuardian} {
		for _, a := range f.rosters[role] {
			if prev, ok := seen[a]; ok {
				return fmt.Errorf("%s in both %s and %s rosters", a, prev, role)
			}
			seen[a] = role
			if a.Role != role {
				return fmt.Errorf("%s in %s roster but has role %s", a, role, a.Role)
			}
		}
	}
	for _, a := range f.Live() {
		if _, ok := seen[a]; !ok {
			return fmt.Errorf("%s is alive but in no roster", a)
		}
	}
	return nil
}

func (f *Fleet) inRoster(a *model.Agent, role model.Role) bool {
	for _, m := range f.rosters[role] {
		if m == a {
			return true
		}
	}
	return false
}

func (f *Fleet) inAnyRoster(a *model.Agent) bool {
	for role := range f.rosters {
		if f.inRoster(a, role) {
			return true
		}
	}
	return false
}

func (f *Fleet) removeFromRosters(a *model.Agent) {
	for role, list := range f.rosters {
		kept := list[:0]
		for _, m := range list {
			if m != a {
				kept = append(kept, m)
			}
		}
		f.rosters[role] = kept
	}
}
