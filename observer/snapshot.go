package observer

import (
	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/model"
)

// Snapshot is what spectators receive each tick.
type Snapshot struct {
	Match  string        `json:"match"`
	Tick   int           `json:"tick"`
	Team   int           `json:"team"`
	Agents []AgentView   `json:"agents"`
	Claims [][2]float64  `json:"claims"`
	Plan   PlanView      `json:"plan"`
	Events []fleet.Event `json:"events,omitempty"`
}

type AgentView struct {
	ID        int         `json:"id"`
	Role      string      `json:"role"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Health    int         `json:"health"`
	Cargo     int         `json:"cargo"`
	Offensive bool        `json:"offensive,omitempty"`
	Waiting   bool        `json:"waiting,omitempty"`
	Target    *[2]float64 `json:"target,omitempty"`
}

type PlanView struct {
	State     string       `json:"state"`
	Stage     int          `json:"stage"`
	Stages    int          `json:"stages"`
	Waypoints [][2]float64 `json:"waypoints,omitempty"`
	Posts     [][2]float64 `json:"posts,omitempty"`
}

// Capture copies what spectators need out of f. The caller holds the
// fleet lock; the result shares no memory with the fleet.
func Capture(match string, f *fleet.Fleet, events []fleet.Event) Snapshot {
	s := Snapshot{Match: match, Tick: f.Tick, Team: f.Team, Events: events}
	for _, a := range f.Live() {
		s.Agents = append(s.Agents, view(a))
	}
	for _, d := range f.Claims.Entries() {
		s.Claims = append(s.Claims, [2]float64(d.Position()))
	}
	if p := f.Plan; p != nil {
		s.Plan = PlanView{State: p.State().String(), Stage: p.Stage, Stages: p.Stages}
		for _, pt := range p.Waypoints() {
			s.Plan.Waypoints = append(s.Plan.Waypoints, [2]float64(pt))
		}
		for _, pt := range p.DefensePosts() {
			s.Plan.Posts = append(s.Plan.Posts, [2]float64(pt))
		}
	}
	return s
}

func view(a *model.Agent) AgentView {
	v := AgentView{
		ID:        a.ID,
		Role:      a.Role.String(),
		X:         a.Pos[0],
		Y:         a.Pos[1],
		Health:    a.Health,
		Cargo:     a.Cargo,
		Offensive: a.Offensive,
		Waiting:   a.Waiting,
	}
	if a.Target != nil {
		t := [2]float64(a.Target.Position())
		v.Target = &t
	}
	return v
}
