package session

import (
	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/model"
)

// World mirrors the engine's snapshots into long-lived model objects. The
// fleet holds pointers to agents, claims and bases across ticks, so each
// entity keeps one object for the whole match and only its fields change.
type World struct {
	bounds orb.Bound
	team   int

	resources []*model.Resource
	bases     []*model.Base
	agents    []*model.Agent

	resourceByID map[int]*model.Resource
	baseByID     map[int]*model.Base
	agentByID    map[int]*model.Agent
}

func NewWorld(bounds orb.Bound, team int) *World {
	return &World{
		bounds:       bounds,
		team:         team,
		resourceByID: make(map[int]*model.Resource),
		baseByID:     make(map[int]*model.Base),
		agentByID:    make(map[int]*model.Agent),
	}
}

func (w *World) Resources() []*model.Resource { return w.resources }
func (w *World) Bases() []*model.Base         { return w.bases }
func (w *World) Agents() []*model.Agent       { return w.agents }
func (w *World) Bounds() orb.Bound            { return w.bounds }

func (w *World) Agent(id int) *model.Agent       { return w.agentByID[id] }
func (w *World) Base(id int) *model.Base         { return w.baseByID[id] }
func (w *World) Resource(id int) *model.Resource { return w.resourceByID[id] }

// Sync applies gs and returns the own-team agents seen for the first time,
// in snapshot order. Entities missing from gs are treated as gone: agents
// and bases die, resources drop to zero.
func (w *World) Sync(gs model.GameState) []*model.Agent {
	seenRes := make(map[int]bool, len(gs.Resources))
	for _, rs := range gs.Resources {
		seenRes[rs.ID] = true
		r, ok := w.resourceByID[rs.ID]
		if !ok {
			r = &model.Resource{ID: rs.ID}
			w.resourceByID[rs.ID] = r
			w.resources = append(w.resources, r)
		}
		r.Pos = orb.Point{rs.X, rs.Y}
		r.Payload = rs.Payload
	}
	for _, r := range w.resources {
		if !seenRes[r.ID] {
			r.Payload = 0
		}
	}

	seenBase := make(map[int]bool, len(gs.Bases))
	for _, bs := range gs.Bases {
		seenBase[bs.ID] = true
		w.SyncBase(bs)
	}
	for _, b := range w.bases {
		if !seenBase[b.ID] {
			b.Dead = true
		}
	}

	var fresh []*model.Agent
	seenAgent := make(map[int]bool, len(gs.Agents))
	for _, as := range gs.Agents {
		seenAgent[as.ID] = true
		a, ok := w.agentByID[as.ID]
		if !ok {
			a = &model.Agent{ID: as.ID, Team: as.Team}
			w.agentByID[as.ID] = a
			w.agents = append(w.agents, a)
			if as.Team == w.team && !as.Dead {
				fresh = append(fresh, a)
			}
		}
		a.Pos = orb.Point{as.X, as.Y}
		a.Heading = as.Heading
		a.Health = as.Health
		a.MaxHealth = as.MaxHealth
		a.Cargo = as.Cargo
		a.Capacity = as.Capacity
		a.Moving = as.Moving
		a.Dead = as.Dead
	}
	for _, a := range w.agents {
		if !seenAgent[a.ID] {
			a.Dead = true
		}
	}
	return fresh
}

// SyncBase updates or registers a single base.
func (w *World) SyncBase(bs model.BaseState) *model.Base {
	b, ok := w.baseByID[bs.ID]
	if !ok {
		b = &model.Base{ID: bs.ID}
		w.baseByID[bs.ID] = b
		w.bases = append(w.bases, b)
	}
	b.Team = bs.Team
	b.Pos = orb.Point{bs.X, bs.Y}
	b.Payload = bs.Payload
	b.Health = bs.Health
	b.Dead = bs.Dead
	return b
}

// Resolve turns a wire reference into the entity it names. Unknown IDs
// resolve to nil.
func (w *World) Resolve(ref *model.Ref) model.Target {
	if ref == nil {
		return nil
	}
	switch ref.Kind {
	case model.RefResource:
		if r := w.resourceByID[ref.ID]; r != nil {
			return r
		}
	case model.RefBase:
		if b := w.baseByID[ref.ID]; b != nil {
			return b
		}
	case model.RefAgent:
		if a := w.agentByID[ref.ID]; a != nil {
			return a
		}
	case model.RefPoint:
		return model.Waypoint{ref.X, ref.Y}
	}
	return nil
}

// RefOf is the inverse of Resolve.
func RefOf(t model.Target) model.Ref {
	switch v := t.(type) {
	case *model.Resource:
		return model.Ref{Kind: model.RefResource, ID: v.ID}
	case *model.Base:
		return model.Ref{Kind: model.RefBase, ID: v.ID}
	case *model.Agent:
		return model.Ref{Kind: model.RefAgent, ID: v.ID}
	}
	p := t.Position()
	return model.Ref{Kind: model.RefPoint, X: p[0], Y: p[1]}
}
