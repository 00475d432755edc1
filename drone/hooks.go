package drone

import (
	"fmt"

	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/model"
)

// OnSpawn registers a new agent with the fleet. Harvesters leave for the
// nearest deposit straight away.
func (p *Pilot) OnSpawn(a *model.Agent, role model.Role) {
	if a.Home == nil {
		a.Home = p.Fleet.Home
	}
	a.PrevPos = a.Pos
	p.Fleet.Join(a, role)
	if role == model.RoleHarvester {
		p.Harvest.TryDepart(a)
	}
}

// OnArriveDeposit starts loading from d.
func (p *Pilot) OnArriveDeposit(a *model.Agent, d model.Deposit) error {
	if err := p.expect(a, model.RoleHarvester, "arrive deposit"); err != nil {
		return err
	}
	p.Harvest.OnArrive(a, d)
	return nil
}

func (p *Pilot) OnLoadComplete(a *model.Agent) error {
	if err := p.expect(a, model.RoleHarvester, "load complete"); err != nil {
		return err
	}
	p.Harvest.OnLoadComplete(a)
	return nil
}

// OnArriveBase handles reaching a base. Harvesters unload at home and loot
// enemy bases; combat roles only close their travel leg.
func (p *Pilot) OnArriveBase(a *model.Agent, b *model.Base) error {
	if a.Role != model.RoleHarvester {
		p.Travel.Leg(a)
		return nil
	}
	if b.Team != p.Fleet.Team {
		p.Harvest.OnArrive(a, b)
		return nil
	}
	p.Travel.Leg(a)
	if a.Cargo > 0 {
		p.Engine.UnloadTo(a, b)
		return nil
	}
	p.Harvest.TryDepart(a)
	return nil
}

func (p *Pilot) OnUnloadComplete(a *model.Agent) error {
	if err := p.expect(a, model.RoleHarvester, "unload complete"); err != nil {
		return err
	}
	p.Harvest.TryDepart(a)
	return nil
}

// OnWakeUp is delivered to a parked harvester when deposits may have freed up.
func (p *Pilot) OnWakeUp(a *model.Agent) error {
	if err := p.expect(a, model.RoleHarvester, "wake up"); err != nil {
		return err
	}
	if a.Waiting {
		p.Harvest.TryDepart(a)
	}
	return nil
}

func (p *Pilot) expect(a *model.Agent, role model.Role, hook string) error {
	if a.Role == role {
		return nil
	}
	p.Fleet.Emit(fleet.Event{Kind: fleet.EventRoleReject, Agent: a.ID, Detail: hook})
	return fmt.Errorf("%s: %w: %s is a %s, want %s", hook, ErrRoleMismatch, a, a.Role, role)
}
