// Package harvest implements the fleet's resource allocation protocol: every
// harvester picks the nearest unclaimed deposit, claims it in the fleet's
// claim table, plans one hop ahead when the deposit cannot fill its hold and
// steals claims from teammates that are further away than it is.
package harvest

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/model"
	"github.com/nstehr/wingman/stats"
)

type Planner struct {
	Fleet  *fleet.Fleet
	World  model.World
	Engine model.Engine
	Travel *stats.Tracker

	// RichPayload is the payload at which a single deposit fills a hold.
	RichPayload int
	// SensorRange limits what an agent can see. Zero means everything.
	SensorRange float64
}

// Theft describes a claim taken from a teammate by Intercept.
type Theft struct {
	Deposit  model.Deposit
	From     *model.Agent
	Distance float64
}

type candidate struct {
	dep  model.Deposit
	dist float64
}

// contestFunc returns how close another agent must be to t to keep it.
type contestFunc func(t model.Deposit) float64

func (p *Planner) visible(a *model.Agent, pos orb.Point) bool {
	return p.SensorRange <= 0 || geom.Distance(a.Pos, pos) <= p.SensorRange
}

func (p *Planner) available(d model.Deposit) bool {
	return d.Remaining() > 0 && !p.Fleet.Claims.Contains(d) && !p.Fleet.Depleted.Contains(d)
}

// deposits lists every deposit a can see: resource nodes, then enemy wrecks,
// then dead enemy bases, each in world order.
func (p *Planner) deposits(a *model.Agent) []model.Deposit {
	var out []model.Deposit
	for _, r := range p.World.Resources() {
		if p.visible(a, r.Pos) {
			out = append(out, r)
		}
	}
	for _, o := range p.World.Agents() {
		if o.Team != p.Fleet.Team && o.Dead && p.visible(a, o.Pos) {
			out = append(out, o)
		}
	}
	for _, b := range p.World.Bases() {
		if b.Team != p.Fleet.Team && b.Dead && p.visible(a, b.Pos) {
			out = append(out, b)
		}
	}
	return out
}

func (p *Planner) candidates(a *model.Agent, origin orb.Point, contest contestFunc) []candidate {
	var out []candidate
	for _, d := range p.deposits(a) {
		if !p.available(d) || p.contested(a, d, contest) {
			continue
		}
		out = append(out, candidate{dep: d, dist: geom.Distance(origin, d.Position())})
	}
	return out
}

// contested reports whether some other live agent heading for d is already
// closer to it than the contest threshold.
func (p *Planner) contested(a *model.Agent, d model.Deposit, contest contestFunc) bool {
	limit := contest(d)
	for _, o := range p.World.Agents() {
		if o == a || !o.Alive() || !sameTarget(o.Target, d) {
			continue
		}
		if geom.Distance(o.Pos, d.Position()) < limit {
			return true
		}
	}
	return false
}

func nearest(cs []candidate, keep func(model.Deposit) bool) model.Deposit {
	var best *candidate
	for i := range cs {
		if keep != nil && !keep(cs[i].dep) {
			continue
		}
		if best == nil || cs[i].dist < best.dist {
			best = &cs[i]
		}
	}
	if best == nil {
		return nil
	}
	return best.dep
}

func (p *Planner) rich(d model.Deposit) bool {
	return d.Remaining() >= p.RichPayload
}

// SelectClosest returns the deposit a should head for next, or nil. Rich
// deposits win over nearer poor ones.
func (p *Planner) SelectClosest(a *model.Agent) model.Deposit {
	ref := a.Pos
	if a.Target != nil {
		ref = a.Target.Position()
	}
	cs := p.candidates(a, a.Pos, func(t model.Deposit) float64 {
		return geom.Distance(ref, t.Position())
	})
	if d := nearest(cs, p.rich); d != nil {
		return d
	}
	return nearest(cs, nil)
}

// Claim records d as a's target and sends a there.
func (p *Planner) Claim(a *model.Agent, d model.Deposit) {
	p.Fleet.Claims.Add(d)
	a.Target = d
	a.Waiting = false
	pos := d.Position()
	slog.Debug("deposit claimed", "agent", a.ID, "x", pos[0], "y", pos[1], "payload", d.Remaining())
	p.Fleet.Emit(fleet.Event{Kind: fleet.EventClaim, Agent: a.ID, X: pos[0], Y: pos[1]})
	p.Engine.MoveTo(a, d)
}

// PlanLookahead claims a second deposit near a's target when the target
// cannot fill a's hold on its own.
func (p *Planner) PlanLookahead(a *model.Agent) {
	target, ok := a.Target.(model.Deposit)
	if !ok || target.Remaining() >= a.FreeSpace() {
		p.dropLookahead(a)
		return
	}
	if next := a.NextTarget; next != nil {
		if next.Remaining() > 0 && !p.Fleet.Depleted.Contains(next) {
			return
		}
		p.dropLookahead(a)
	}
	leg := geom.Distance(a.Pos, target.Position())
	cs := p.candidates(a, target.Position(), func(t model.Deposit) float64 {
		return leg + geom.Distance(target.Position(), t.Position())
	})
	next := nearest(cs, func(d model.Deposit) bool { return d != target })
	if next == nil {
		return
	}
	p.Fleet.Claims.Add(next)
	a.NextTarget = next
	pos := next.Position()
	slog.Debug("look-ahead planned", "agent", a.ID, "x", pos[0], "y", pos[1])
	p.Fleet.Emit(fleet.Event{Kind: fleet.EventLookahead, Agent: a.ID, X: pos[0], Y: pos[1]})
}

func (p *Planner) dropLookahead(a *model.Agent) {
	if a.NextTarget == nil {
		return
	}
	p.Fleet.Release(a.NextTarget)
	a.NextTarget = nil
}

// MoveToClosest claims the best deposit for a, or parks a at home when
// nothing is left. It reports whether a claim was made.
func (p *Planner) MoveToClosest(a *model.Agent) bool {
	if d := p.SelectClosest(a); d != nil {
		p.Claim(a, d)
		p.PlanLookahead(a)
		return true
	}
	p.park(a)
	return false
}

// TryDepart is MoveToClosest for an agent sitting at home: with nothing to
// claim it keeps waiting.
func (p *Planner) TryDepart(a *model.Agent) bool {
	if p.MoveToClosest(a) {
		return true
	}
	a.Waiting = true
	return false
}

func (p *Planner) park(a *model.Agent) {
	home := p.home(a)
	if home == nil {
		a.Target = nil
		return
	}
	a.Target = home
	if p.Fleet.AtHome(a) {
		if !a.Waiting {
			slog.Debug("harvester idle", "agent", a.ID)
			p.Fleet.Emit(fleet.Event{Kind: fleet.EventIdle, Agent: a.ID})
		}
		a.Waiting = true
		return
	}
	p.Engine.MoveTo(a, home)
}

func (p *Planner) home(a *model.Agent) *model.Base {
	if a.Home != nil {
		return a.Home
	}
	return p.Fleet.Home
}

// ReturnHome drops a's claims and sends it to unload.
func (p *Planner) ReturnHome(a *model.Agent) {
	p.Fleet.ReleaseTargets(a)
	home := p.home(a)
	if home == nil {
		a.Target = nil
		return
	}
	a.Target = home
	p.Engine.MoveTo(a, home)
}

// OnArrive is called when a reaches deposit d.
func (p *Planner) OnArrive(a *model.Agent, d model.Deposit) {
	p.Travel.Leg(a)
	if a.NextTarget == nil {
		p.PlanLookahead(a)
	}
	switch {
	case a.NextTarget != nil:
		p.Engine.TurnTo(a, a.NextTarget)
	case a.Cargo+d.Remaining() >= a.Capacity:
		if home := p.home(a); home != nil {
			p.Engine.TurnTo(a, home)
		}
	}
	p.Engine.LoadFrom(a, d)
}

// OnLoadComplete decides where a goes after loading finished.
func (p *Planner) OnLoadComplete(a *model.Agent) {
	if d, ok := a.Target.(model.Deposit); ok && p.Fleet.Claims.Contains(d) {
		if d.Remaining() <= 0 {
			p.Fleet.Deplete(d)
		} else {
			p.Fleet.Release(d)
		}
	}
	if a.Full() {
		p.ReturnHome(a)
		return
	}
	if next := a.NextTarget; next != nil {
		a.NextTarget = nil
		if next.Remaining() > 0 && !p.Fleet.Depleted.Contains(next) {
			a.Target = next
			p.PlanLookahead(a)
			p.Engine.MoveTo(a, next)
			return
		}
		p.Fleet.Deplete(next)
	}
	a.Target = nil
	if _, ok := p.Intercept(a); ok {
		return
	}
	p.MoveToClosest(a)
}

// Intercept takes over the claim whose holder is furthest behind a. Among
// all claims a is closer to than their holder, the one whose holder is
// nearest its deposit is taken, then both agents reselect. It returns false
// when a is not closer to any claimed deposit than its holder.
func (p *Planner) Intercept(a *model.Agent) (Theft, bool) {
	var best Theft
	found := false
	for _, d := range p.Fleet.Claims.Entries() {
		mine := geom.Distance(a.Pos, d.Position())
		for _, c := range p.Fleet.Live() {
			if c == a || !sameTarget(c.Target, d) {
				continue
			}
			theirs := geom.Distance(c.Pos, d.Position())
			if mine < theirs && (!found || theirs < best.Distance) {
				best = Theft{Deposit: d, From: c, Distance: theirs}
				found = true
			}
		}
	}
	if !found {
		return Theft{}, false
	}

	p.Travel.Leg(a)
	p.Fleet.ReleaseTargets(a)
	a.Target = nil
	p.Fleet.Release(best.Deposit)
	pos := best.Deposit.Position()
	slog.Info("claim intercepted", "agent", a.ID, "from", best.From.ID, "x", pos[0], "y", pos[1])
	p.Fleet.Emit(fleet.Event{Kind: fleet.EventTheft, Agent: a.ID, Other: best.From.ID, X: pos[0], Y: pos[1]})
	p.MoveToClosest(a)

	c := best.From
	p.Travel.Leg(c)
	p.dropLookahead(c)
	c.Target = nil
	p.MoveToClosest(c)
	return best, true
}

// Housekeep moves every visible empty deposit into the depleted set.
func (p *Planner) Housekeep(a *model.Agent) {
	for _, d := range p.deposits(a) {
		if d.Remaining() <= 0 {
			p.Fleet.Deplete(d)
		}
	}
	for _, d := range p.Fleet.Claims.Entries() {
		if d.Remaining() <= 0 {
			p.Fleet.Deplete(d)
		}
	}
}

// ShouldWake reports whether a parked harvester can see a resource node
// nobody has claimed.
func (p *Planner) ShouldWake(a *model.Agent) bool {
	seen, taken := 0, 0
	for _, r := range p.World.Resources() {
		if !p.visible(a, r.Pos) {
			continue
		}
		seen++
		if p.Fleet.Claims.Contains(r) || p.Fleet.Depleted.Contains(r) {
			taken++
		}
	}
	return seen > taken
}

// Loot starts loading from an enemy base a is parked next to. It reports
// whether loading started.
func (p *Planner) Loot(a *model.Agent) bool {
	if a.Moving || a.Full() {
		return false
	}
	for _, b := range p.World.Bases() {
		if b.Team == p.Fleet.Team || b.Empty() || p.Fleet.Depleted.Contains(b) {
			continue
		}
		if p.Fleet.Claims.Contains(b) && !sameTarget(a.Target, b) {
			continue
		}
		if geom.Near(a.Pos, b.Pos, p.Fleet.NearTolerance) {
			a.Offensive = false
			slog.Debug("looting base", "agent", a.ID, "base", b.ID, "payload", b.Payload)
			p.Fleet.Claims.Add(b)
			a.Target = b
			p.Engine.LoadFrom(a, b)
			return true
		}
	}
	return false
}

func sameTarget(t model.Target, d model.Deposit) bool {
	if t == nil || d == nil {
		return false
	}
	other, ok := t.(model.Deposit)
	return ok && other == d
}
