// Package drone binds the fleet's decision logic to the hooks an engine
// calls for each agent: spawn, arrivals, load and unload completion, wake-up
// and the per-tick step.
package drone

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/config"
	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/formation"
	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/harvest"
	"github.com/nstehr/wingman/model"
	"github.com/nstehr/wingman/rules"
	"github.com/nstehr/wingman/stats"
)

// ErrRoleMismatch is returned when a hook only valid for one role is
// delivered to an agent in another. The hook does nothing.
var ErrRoleMismatch = errors.New("role mismatch")

// Pilot makes every decision for one fleet. It is not safe for concurrent
// use; callers hold the fleet lock around a tick.
type Pilot struct {
	Fleet   *fleet.Fleet
	World   model.World
	Engine  model.Engine
	Harvest *harvest.Planner
	Rules   *rules.Engine
	Travel  *stats.Tracker

	fireRange     float64
	recoverHealth float64
	behaviours    map[model.Role]Behaviour
}

// NewFleet builds an empty fleet for team with a formation plan laid out
// for cfg's arena.
func NewFleet(team int, cfg config.Config) *fleet.Fleet {
	plan := formation.NewPlan(formation.Config{
		Bounds:         cfg.Arena.Bound(),
		StageLength:    cfg.Formation.StageLength,
		WingLength:     cfg.Formation.WingLength,
		RebaseFactor:   cfg.Formation.RebaseFactor,
		NearTolerance:  cfg.Arena.NearTolerance,
		DefenseOffsets: cfg.Formation.DefenseOffsets,
	})
	return fleet.New(team, plan, cfg.Arena.NearTolerance)
}

func New(f *fleet.Fleet, world model.World, engine model.Engine, cfg config.Config, travel *stats.Tracker) (*Pilot, error) {
	re, err := rules.NewEngine(rules.CompileRoles(cfg.Roles))
	if err != nil {
		return nil, fmt.Errorf("compile role rules: %w", err)
	}
	p := &Pilot{
		Fleet:  f,
		World:  world,
		Engine: engine,
		Harvest: &harvest.Planner{
			Fleet:       f,
			World:       world,
			Engine:      engine,
			Travel:      travel,
			RichPayload: cfg.Harvest.RichPayload,
			SensorRange: cfg.Harvest.SensorRange,
		},
		Rules:         re,
		Travel:        travel,
		fireRange:     cfg.Roles.FireRange,
		recoverHealth: cfg.Roles.RecoverHealth,
		behaviours:    make(map[model.Role]Behaviour),
	}
	for _, b := range []Behaviour{harvester{}, fighter{}, guardian{}} {
		p.behaviours[b.Role()] = b
	}
	return p, nil
}

// Retune recompiles the role rules for r and swaps them in. On error the
// old rules and thresholds stay. The caller holds the fleet lock.
func (p *Pilot) Retune(r config.Roles) error {
	if err := p.Rules.Swap(rules.CompileRoles(r)); err != nil {
		return fmt.Errorf("compile role rules: %w", err)
	}
	p.fireRange = r.FireRange
	p.recoverHealth = r.RecoverHealth
	return nil
}

// Behaviour returns the behaviour run for role.
func (p *Pilot) Behaviour(role model.Role) Behaviour {
	return p.behaviours[role]
}

// Coordinate runs the fleet-wide part of a tick: casualty bookkeeping and
// launching, advancing or aborting the attack. Call it once per tick before
// stepping the agents.
func (p *Pilot) Coordinate(tick int) {
	p.Fleet.Tick = tick
	p.Fleet.Prune()
	plan := p.Fleet.Plan
	if plan == nil {
		return
	}
	fighters := p.Fleet.Fighters()
	if plan.Active() {
		switch {
		case plan.Target.Dead:
			p.abort(fighters, "target destroyed")
		case formation.QuorumLost(fighters):
			p.abort(fighters, "quorum lost")
		default:
			if plan.TryAdvance(fighters) {
				c := plan.Waypoints()[0]
				p.Fleet.Emit(fleet.Event{Kind: fleet.EventAdvance, X: c[0], Y: c[1], Detail: fmt.Sprintf("%d/%d", plan.Stage+1, plan.Stages)})
			}
		}
		return
	}
	if !p.readyToAttack(fighters) {
		return
	}
	if target := p.nearestEnemyBase(); target != nil && plan.Start(target) {
		p.Fleet.Emit(fleet.Event{Kind: fleet.EventAttack, Other: target.ID, X: target.Pos[0], Y: target.Pos[1],
			Detail: fmt.Sprintf("%d stages", plan.Stages)})
	}
}

func (p *Pilot) abort(fighters []*model.Agent, reason string) {
	p.Fleet.Plan.Abort(fighters, p.Retreat)
	p.Fleet.Emit(fleet.Event{Kind: fleet.EventAbort, Detail: reason})
}

// readyToAttack holds when there are fighters and every one of them is
// offensive and healthy.
func (p *Pilot) readyToAttack(fighters []*model.Agent) bool {
	if len(fighters) == 0 {
		return false
	}
	for _, a := range fighters {
		if !a.Offensive || a.HealthFraction() < p.recoverHealth {
			return false
		}
	}
	return true
}

func (p *Pilot) nearestEnemyBase() *model.Base {
	var best *model.Base
	bestDist := 0.0
	for _, b := range p.World.Bases() {
		if b.Team == p.Fleet.Team || b.Dead {
			continue
		}
		d := 0.0
		if p.Fleet.Home != nil {
			d = geom.Distance(p.Fleet.Home.Pos, b.Pos)
		}
		if best == nil || d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}

// Step runs one agent's decisions for the tick: housekeeping, role rules,
// then the behaviour for whatever role the agent ends up in.
func (p *Pilot) Step(a *model.Agent) {
	if !a.Alive() || !p.Fleet.IsMember(a) {
		return
	}
	p.Harvest.Housekeep(a)
	p.Rules.Evaluate(rules.RoleEnv{Agent: a, Fleet: p.Fleet, World: p.World}, p)
	if b := p.Behaviour(a.Role); b != nil {
		b.Step(p, a)
	}
}

// SwitchRole moves a to role, dropping whatever it was doing.
func (p *Pilot) SwitchRole(a *model.Agent, role model.Role) {
	if a.Role == role {
		return
	}
	p.Fleet.ReleaseTargets(a)
	a.Target = nil
	a.Engaged = false
	p.Fleet.SetRole(a, role)
}

// Retreat sends a home and takes it out of the attack.
func (p *Pilot) Retreat(a *model.Agent) {
	a.Offensive = false
	a.Engaged = false
	p.Travel.Leg(a)
	home := p.home(a)
	if home == nil {
		return
	}
	a.Target = home
	p.Engine.MoveTo(a, home)
	p.Fleet.Emit(fleet.Event{Kind: fleet.EventRetreat, Agent: a.ID, Detail: a.Role.String()})
}

// Rearm puts a recovered fighter back on the offensive.
func (p *Pilot) Rearm(a *model.Agent) {
	a.Offensive = true
	slog.Debug("fighter re-armed", "agent", a.ID, "health", a.Health)
}

func (p *Pilot) home(a *model.Agent) *model.Base {
	if a.Home != nil {
		return a.Home
	}
	return p.Fleet.Home
}

// engage fires at the first living enemy agent in range, or at the attack
// target when withBase is set and it is in range.
func (p *Pilot) engage(a *model.Agent, withBase bool) {
	a.Engaged = false
	for _, o := range p.World.Agents() {
		if o.Team == p.Fleet.Team || !o.Alive() {
			continue
		}
		if geom.Distance(a.Pos, o.Pos) <= p.fireRange {
			a.Engaged = true
			p.Engine.FireAt(a, o)
			return
		}
	}
	if !withBase {
		return
	}
	plan := p.Fleet.Plan
	if plan != nil && plan.Active() && plan.Target.Alive() && geom.Distance(a.Pos, plan.Target.Pos) <= p.fireRange {
		a.Engaged = true
		p.Engine.FireAt(a, plan.Target)
	}
}

// moveToPoint sends a to pt unless it is already on its way there.
func (p *Pilot) moveToPoint(a *model.Agent, pt orb.Point) {
	if wp, ok := a.Target.(model.Waypoint); ok && orb.Point(wp) == pt {
		if a.Moving || geom.Near(a.Pos, pt, p.Fleet.NearTolerance) {
			return
		}
	}
	a.Target = model.Waypoint(pt)
	p.Engine.MoveTo(a, a.Target)
}
