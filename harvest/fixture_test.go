package harvest

import (
	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/model"
)

type stubWorld struct {
	resources []*model.Resource
	bases     []*model.Base
	agents    []*model.Agent
}

func (w *stubWorld) Resources() []*model.Resource { return w.resources }
func (w *stubWorld) Bases() []*model.Base         { return w.bases }
func (w *stubWorld) Agents() []*model.Agent       { return w.agents }
func (w *stubWorld) Bounds() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1200, 1200}}
}

type command struct {
	verb   string
	agent  int
	target model.Target
}

type recordingEngine struct {
	cmds []command
}

func (e *recordingEngine) MoveTo(a *model.Agent, t model.Target) {
	e.cmds = append(e.cmds, command{"move", a.ID, t})
}
func (e *recordingEngine) TurnTo(a *model.Agent, t model.Target) {
	e.cmds = append(e.cmds, command{"turn", a.ID, t})
}
func (e *recordingEngine) LoadFrom(a *model.Agent, d model.Deposit) {
	e.cmds = append(e.cmds, command{"load", a.ID, d})
}
func (e *recordingEngine) UnloadTo(a *model.Agent, b *model.Base) {
	e.cmds = append(e.cmds, command{"unload", a.ID, b})
}
func (e *recordingEngine) FireAt(a *model.Agent, t model.Target) {
	e.cmds = append(e.cmds, command{"fire", a.ID, t})
}

func (e *recordingEngine) last(verb string, agent int) (model.Target, bool) {
	for i := len(e.cmds) - 1; i >= 0; i-- {
		if e.cmds[i].verb == verb && e.cmds[i].agent == agent {
			return e.cmds[i].target, true
		}
	}
	return nil, false
}

type fixture struct {
	world   *stubWorld
	engine  *recordingEngine
	fleet   *fleet.Fleet
	home    *model.Base
	planner *Planner
}

func newFixture() *fixture {
	home := &model.Base{ID: 100, Team: 1, Pos: orb.Point{0, 0}, Health: 100}
	world := &stubWorld{bases: []*model.Base{home}}
	f := fleet.New(1, nil, 20)
	f.SetHome(home)
	eng := &recordingEngine{}
	return &fixture{
		world:  world,
		engine: eng,
		fleet:  f,
		home:   home,
		planner: &Planner{
			Fleet:       f,
			World:       world,
			Engine:      eng,
			RichPayload: 90,
		},
	}
}

func (fx *fixture) resource(id int, x, y float64, payload int) *model.Resource {
	r := &model.Resource{ID: id, Pos: orb.Point{x, y}, Payload: payload}
	fx.world.resources = append(fx.world.resources, r)
	return r
}

func (fx *fixture) harvester(id int, x, y float64) *model.Agent {
	a := &model.Agent{
		ID: id, Team: 1, Pos: orb.Point{x, y},
		Health: 100, MaxHealth: 100, Capacity: 90,
	}
	fx.world.agents = append(fx.world.agents, a)
	fx.fleet.Join(a, model.RoleHarvester)
	return a
}

func (fx *fixture) enemy(id int, x, y float64) *model.Agent {
	a := &model.Agent{
		ID: id, Team: 2, Pos: orb.Point{x, y},
		Health: 100, MaxHealth: 100, Capacity: 90,
	}
	fx.world.agents = append(fx.world.agents, a)
	return a
}
