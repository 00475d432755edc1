package rules

import (
	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/model"
)

type stubWorld struct {
	bases  []*model.Base
	agents []*model.Agent
}

func (w *stubWorld) Resources() []*model.Resource { return nil }
func (w *stubWorld) Bases() []*model.Base         { return w.bases }
func (w *stubWorld) Agents() []*model.Agent       { return w.agents }
func (w *stubWorld) Bounds() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1200, 1200}}
}

// recorder is an Actuator that applies role switches through the fleet and
// remembers every call.
type recorder struct {
	fleet    *fleet.Fleet
	switches []model.Role
	retreats int
	rearms   int
}

func (r *recorder) SwitchRole(a *model.Agent, role model.Role) {
	r.switches = append(r.switches, role)
	r.fleet.SetRole(a, role)
}

func (r *recorder) Retreat(a *model.Agent) {
	r.retreats++
	a.Offensive = false
	a.Target = a.Home
}

func (r *recorder) Rearm(a *model.Agent) {
	r.rearms++
	a.Offensive = true
}

type fixture struct {
	world *stubWorld
	fleet *fleet.Fleet
	home  *model.Base
	act   *recorder
}

func newFixture() *fixture {
	home := &model.Base{ID: 100, Team: 1, Pos: orb.Point{100, 100}, Health: 100}
	enemyBase := &model.Base{ID: 200, Team: 2, Pos: orb.Point{1100, 1100}, Health: 100}
	f := fleet.New(1, nil, 20)
	f.SetHome(home)
	return &fixture{
		world: &stubWorld{bases: []*model.Base{home, enemyBase}},
		fleet: f,
		home:  home,
		act:   &recorder{fleet: f},
	}
}

func (fx *fixture) own(id int, role model.Role, x, y float64) *model.Agent {
	a := &model.Agent{ID: id, Team: 1, Pos: orb.Point{x, y}, Health: 100, MaxHealth: 100, Capacity: 90}
	fx.world.agents = append(fx.world.agents, a)
	fx.fleet.Join(a, role)
	return a
}

func (fx *fixture) enemies(n int) []*model.Agent {
	var out []*model.Agent
	for i := 0; i < n; i++ {
		e := &model.Agent{ID: 1000 + i, Team: 2, Pos: orb.Point{1000, 1000}, Health: 100, MaxHealth: 100}
		fx.world.agents = append(fx.world.agents, e)
		out = append(out, e)
	}
	return out
}

func (fx *fixture) env(a *model.Agent) RoleEnv {
	return RoleEnv{Agent: a, Fleet: fx.fleet, World: fx.world}
}
