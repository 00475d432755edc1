// Package sim is a minimal in-process engine: straight-line motion at a
// fixed speed, instant loading and unloading, and fixed-damage fire. It
// exists to drive fleets end to end without a remote engine.
package sim

import (
	"log/slog"
	"math"

	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/model"
)

// Hooks is what the arena calls on each fleet. drone.Pilot implements it.
type Hooks interface {
	OnSpawn(a *model.Agent, role model.Role)
	OnArriveDeposit(a *model.Agent, d model.Deposit) error
	OnLoadComplete(a *model.Agent) error
	OnArriveBase(a *model.Agent, b *model.Base) error
	OnUnloadComplete(a *model.Agent) error
	OnWakeUp(a *model.Agent) error
	Coordinate(tick int)
	Step(a *model.Agent)
}

type Options struct {
	Speed    float64 // distance per tick
	Damage   int     // health per shot
	HealRate int     // health per tick while parked at home
	Capacity int
	Health   int
}

func DefaultOptions() Options {
	return Options{Speed: 25, Damage: 4, HealRate: 2, Capacity: 90, Health: 100}
}

type completion int

const (
	loadDone completion = iota
	unloadDone
)

type pending struct {
	agent *model.Agent
	kind  completion
}

type team struct {
	id    int
	hooks Hooks
}

// Arena implements model.World and model.Engine.
type Arena struct {
	opts   Options
	bounds orb.Bound

	resources []*model.Resource
	bases     []*model.Base
	agents    []*model.Agent
	teams     []team

	orders  map[*model.Agent]model.Target
	pending []pending
	nextID  int

	Tick int
	// HookErrors counts hooks that returned an error.
	HookErrors int
	Shots      int
}

func New(bounds orb.Bound, opts Options) *Arena {
	return &Arena{
		opts:   opts,
		bounds: bounds,
		orders: make(map[*model.Agent]model.Target),
		nextID: 1,
	}
}

func (w *Arena) Resources() []*model.Resource { return w.resources }
func (w *Arena) Bases() []*model.Base         { return w.bases }
func (w *Arena) Agents() []*model.Agent       { return w.agents }
func (w *Arena) Bounds() orb.Bound            { return w.bounds }

func (w *Arena) AddResource(r *model.Resource) {
	w.resources = append(w.resources, r)
}

func (w *Arena) AddBase(b *model.Base) {
	w.bases = append(w.bases, b)
}

// AddAgent places an agent no fleet controls, such as a scripted intruder.
func (w *Arena) AddAgent(a *model.Agent) {
	w.agents = append(w.agents, a)
}

// Join registers the hooks driving team.
func (w *Arena) Join(teamID int, h Hooks) {
	w.teams = append(w.teams, team{id: teamID, hooks: h})
}

func (w *Arena) hooks(teamID int) Hooks {
	for _, t := range w.teams {
		if t.id == teamID {
			return t.hooks
		}
	}
	return nil
}

// Spawn creates an agent at its team's base and hands it to the team's hooks.
func (w *Arena) Spawn(teamID int, role model.Role) *model.Agent {
	a := &model.Agent{
		ID:        w.nextID,
		Team:      teamID,
		Health:    w.opts.Health,
		MaxHealth: w.opts.Health,
		Capacity:  w.opts.Capacity,
	}
	w.nextID++
	for _, b := range w.bases {
		if b.Team == teamID {
			a.Pos = b.Pos
			a.Home = b
			break
		}
	}
	w.agents = append(w.agents, a)
	if h := w.hooks(teamID); h != nil {
		h.OnSpawn(a, role)
	}
	return a
}

func (w *Arena) MoveTo(a *model.Agent, t model.Target) {
	if a.Dead || t == nil {
		return
	}
	w.orders[a] = t
	a.Moving = !geom.Near(a.Pos, t.Position(), 0)
	if a.Moving {
		a.Heading = geom.Direction(geom.Sub(t.Position(), a.Pos))
	}
}

func (w *Arena) TurnTo(a *model.Agent, t model.Target) {
	if t == nil {
		return
	}
	a.Heading = geom.Direction(geom.Sub(t.Position(), a.Pos))
}

func (w *Arena) LoadFrom(a *model.Agent, d model.Deposit) {
	n := min(a.FreeSpace(), d.Remaining())
	switch v := d.(type) {
	case *model.Resource:
		v.Payload -= n
	case *model.Base:
		v.Payload -= n
	case *model.Agent:
		v.Cargo -= n
	default:
		return
	}
	a.Cargo += n
	w.pending = append(w.pending, pending{agent: a, kind: loadDone})
}

func (w *Arena) UnloadTo(a *model.Agent, b *model.Base) {
	b.Payload += a.Cargo
	a.Cargo = 0
	w.pending = append(w.pending, pending{agent: a, kind: unloadDone})
}

func (w *Arena) FireAt(a *model.Agent, t model.Target) {
	w.Shots++
	switch v := t.(type) {
	case *model.Agent:
		if v.Dead {
			return
		}
		v.Health -= w.opts.Damage
		if v.Health <= 0 {
			v.Health = 0
			v.Dead = true
			v.Moving = false
			delete(w.orders, v)
		}
	case *model.Base:
		if v.Dead {
			return
		}
		v.Health -= w.opts.Damage
		if v.Health <= 0 {
			v.Health = 0
			v.Dead = true
		}
	}
}

// Step advances the arena one tick: completions from the previous tick are
// delivered, agents move, arrivals are reported, parked agents heal and
// finally every fleet decides.
func (w *Arena) Step() {
	w.Tick++

	done := w.pending
	w.pending = nil
	for _, p := range done {
		if p.agent.Dead {
			continue
		}
		h := w.hooks(p.agent.Team)
		if h == nil {
			continue
		}
		switch p.kind {
		case loadDone:
			w.check(p.agent, h.OnLoadComplete(p.agent))
		case unloadDone:
			w.check(p.agent, h.OnUnloadComplete(p.agent))
		}
	}

	var arrived []*model.Agent
	for _, a := range w.agents {
		t, ok := w.orders[a]
		if !ok || a.Dead {
			continue
		}
		if w.advance(a, t.Position()) {
			delete(w.orders, a)
			arrived = append(arrived, a)
		}
	}
	for _, a := range arrived {
		w.arrive(a)
	}

	w.heal()

	for _, t := range w.teams {
		t.hooks.Coordinate(w.Tick)
		for _, a := range w.agents {
			if a.Team == t.id && !a.Dead {
				t.hooks.Step(a)
			}
		}
	}
}

// Run steps the arena n times.
func (w *Arena) Run(n int) {
	for _i := 0; _i < n; _i++ {
		w.Step()
	}
}

func (w *Arena) advance(a *model.Agent, dst orb.Point) bool {
	d := geom.Distance(a.Pos, dst)
	if d <= w.opts.Speed {
		a.Pos = dst
		a.Moving = false
		return true
	}
	step := geom.Scale(geom.Sub(dst, a.Pos), w.opts.Speed/d)
	a.Pos = geom.Add(a.Pos, step)
	a.Moving = true
	return false
}

func (w *Arena) arrive(a *model.Agent) {
	h := w.hooks(a.Team)
	if h == nil {
		return
	}
	switch t := a.Target.(type) {
	case *model.Base:
		w.check(a, h.OnArriveBase(a, t))
	case model.Deposit:
		w.check(a, h.OnArriveDeposit(a, t))
	}
}

func (w *Arena) heal() {
	for _, a := range w.agents {
		if a.Dead || a.Moving || a.Home == nil || a.Health >= a.MaxHealth {
			continue
		}
		if geom.Distance(a.Pos, a.Home.Pos) <= w.opts.Speed {
			a.Health = int(math.Min(float64(a.MaxHealth), float64(a.Health+w.opts.HealRate)))
		}
	}
}

func (w *Arena) check(a *model.Agent, err error) {
	if err != nil {
		w.HookErrors++
		slog.Warn("hook failed", "agent", a.ID, "team", a.Team, "error", err)
	}
}
