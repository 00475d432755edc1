package fleet

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/model"
)

func newTestFleet() (*Fleet, *model.Base) {
	f := New(1, nil, 20)
	home := &model.Base{ID: 1, Team: 1, Pos: orb.Point{100, 100}}
	f.SetHome(home)
	return f, home
}

func agent(id int, x, y float64) *model.Agent {
	return &model.Agent{ID: id, Team: 1, Pos: orb.Point{x, y}, Health: 100, MaxHealth: 100, Capacity: 90}
}

func TestPruneCountsEachDeathOnce(t *testing.T) {
	f, _ := newTestFleet()
	a, b, c := agent(1, 0, 0), agent(2, 0, 0), agent(3, 0, 0)
	f.Join(a, model.RoleHarvester)
	f.Join(b, model.RoleFighter)
	f.Join(c, model.RoleGuardian)

	r := &model.Resource{ID: 7, Payload: 40}
	a.Target = r
	f.Claims.Add(r)

	a.Dead = true
	tests := []struct {
		kill       *model.Agent
		wantLost   int
		wantCasual int
	}{
		{nil, 1, 1},
		{nil, 0, 1},
		{b, 1, 2},
		{nil, 0, 2},
	}
	for i, tt := range tests {
		if tt.kill != nil {
			tt.kill.Dead = true
		}
		if lost := f.Prune(); lost != tt.wantLost {
			t.Errorf("prune %d: lost = %d, want %d", i, lost, tt.wantLost)
		}
		if f.Casualties != tt.wantCasual {
			t.Errorf("prune %d: casualties = %d, want %d", i, f.Casualties, tt.wantCasual)
		}
	}
	if f.Claims.Contains(r) {
		t.Error("dead agent's claim not released")
	}
	if err := f.CheckPartition(); err != nil {
		t.Error(err)
	}
	if got := f.Live(); len(got) != 1 || got[0] != c {
		t.Errorf("live = %v", got)
	}
}

func TestSetRole(t *testing.T) {
	f, home := newTestFleet()
	atHome := agent(1, home.Pos[0], home.Pos[1])
	away := agent(2, 600, 600)
	f.Join(atHome, model.RoleFighter)
	f.Join(away, model.RoleFighter)
	f.Drain()

	tests := []struct {
		name          string
		a             *model.Agent
		role          model.Role
		wantOffensive bool
		wantWaiting   bool
		wantEvent     bool
	}{
		{"same role is a no-op", atHome, model.RoleFighter, true, false, false},
		{"harvester at home waits", atHome, model.RoleHarvester, false, true, true},
		{"harvester away does not wait", away, model.RoleHarvester, false, false, true},
		{"fighter goes offensive", away, model.RoleFighter, true, false, true},
		{"guardian", away, model.RoleGuardian, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.SetRole(tt.a, tt.role)
			if tt.a.Role != tt.role || tt.a.Offensive != tt.wantOffensive || tt.a.Waiting != tt.wantWaiting {
				t.Errorf("role=%s offensive=%v waiting=%v", tt.a.Role, tt.a.Offensive, tt.a.Waiting)
			}
			if got := len(f.Drain()) > 0; got != tt.wantEvent {
				t.Errorf("event emitted = %v, want %v", got, tt.wantEvent)
			}
			if err := f.CheckPartition(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestJoinTwiceIsIgnored(t *testing.T) {
	f, home := newTestFleet()
	a := agent(1, 0, 0)
	f.Join(a, model.RoleHarvester)
	f.Join(a, model.RoleFighter)
	if len(f.Members) != 1 || a.Role != model.RoleHarvester {
		t.Errorf("members = %d, role = %s", len(f.Members), a.Role)
	}
	if a.Home != home {
		t.Error("joined agent did not inherit the fleet home")
	}
}

func TestDepleteEvictsClaim(t *testing.T) {
	f, _ := newTestFleet()
	r := &model.Resource{ID: 1}
	f.Claims.Add(r)
	f.Deplete(r)
	f.Deplete(r)
	if f.Claims.Contains(r) || !f.Depleted.Contains(r) {
		t.Error("depleted deposit still claimed or not recorded")
	}
	depleted := 0
	for _, e := range f.Drain() {
		if e.Kind == EventDepleted {
			depleted++
		}
	}
	if depleted != 1 {
		t.Errorf("depleted events = %d, want 1", depleted)
	}
}
