package drone

import (
	"github.com/nstehr/wingman/formation"
	"github.com/nstehr/wingman/model"
)

// Behaviour is what an agent does each tick in a given role.
type Behaviour interface {
	Role() model.Role
	Step(p *Pilot, a *model.Agent)
}

type harvester struct{}

func (harvester) Role() model.Role { return model.RoleHarvester }

func (harvester) Step(p *Pilot, a *model.Agent) {
	if a.Waiting {
		if p.Harvest.ShouldWake(a) {
			p.Harvest.TryDepart(a)
		}
		return
	}
	if a.Moving {
		return
	}
	switch a.Target.(type) {
	case nil, model.Waypoint:
		// fresh from combat duty
		if p.Harvest.Loot(a) {
			return
		}
		p.Harvest.MoveToClosest(a)
	}
}

type fighter struct{}

func (fighter) Role() model.Role { return model.RoleFighter }

func (fighter) Step(p *Pilot, a *model.Agent) {
	if !a.Offensive {
		return
	}
	p.engage(a, true)
	plan := p.Fleet.Plan
	if a.Engaged || plan == nil || !plan.Active() {
		return
	}
	if pt, ok := formation.Assign(a, plan.Waypoints(), p.Fleet.Fighters(), p.Fleet.NearTolerance); ok {
		p.moveToPoint(a, pt)
	}
}

type guardian struct{}

func (guardian) Role() model.Role { return model.RoleGuardian }

func (guardian) Step(p *Pilot, a *model.Agent) {
	p.engage(a, false)
	if a.Engaged || p.Fleet.Plan == nil {
		return
	}
	// a guardian that fell back stays home until it has recovered
	if home := p.home(a); home != nil && a.Target == model.Target(home) && a.HealthFraction() < p.recoverHealth {
		return
	}
	if pt, ok := formation.Assign(a, p.Fleet.Plan.DefensePosts(), p.Fleet.Guardians(), p.Fleet.NearTolerance); ok {
		p.moveToPoint(a, pt)
	}
}
