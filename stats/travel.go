// Package stats accumulates how far a fleet's drones travel empty, partly
// loaded and full. A harvesting route is good when the first number is small
// and the last is large.
package stats

import (
	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/model"
)

type Travel struct {
	Empty   float64 `json:"empty" db:"empty_distance"`
	Partial float64 `json:"partial" db:"partial_distance"`
	Full    float64 `json:"full" db:"full_distance"`
}

func (t Travel) Total() float64 { return t.Empty + t.Partial + t.Full }

// Tracker records legs per agent and for the fleet as a whole. A nil
// *Tracker is valid and records nothing.
type Tracker struct {
	fleet    Travel
	perAgent map[int]*Travel
}

func NewTracker() *Tracker {
	return &Tracker{perAgent: make(map[int]*Travel)}
}

// Leg books the distance from a.PrevPos to a.Pos under a's current load
// state and starts a new leg at a.Pos.
func (t *Tracker) Leg(a *model.Agent) {
	if t == nil {
		return
	}
	d := geom.Distance(a.PrevPos, a.Pos)
	a.PrevPos = a.Pos
	if d == 0 {
		return
	}
	per, ok := t.perAgent[a.ID]
	if !ok {
		per = &Travel{}
		t.perAgent[a.ID] = per
	}
	switch {
	case a.Empty():
		t.fleet.Empty += d
		per.Empty += d
	case a.Full():
		t.fleet.Full += d
		per.Full += d
	default:
		t.fleet.Partial += d
		per.Partial += d
	}
}

// Fleet returns the totals over every agent.
func (t *Tracker) Fleet() Travel {
	if t == nil {
		return Travel{}
	}
	return t.fleet
}

// Agent returns one agent's totals.
func (t *Tracker) Agent(id int) Travel {
	if t == nil {
		return Travel{}
	}
	if per, ok := t.perAgent[id]; ok {
		return *per
	}
	return Travel{}
}

// Agents returns the IDs with recorded travel.
func (t *Tracker) Agents() []int {
	if t == nil {
		return nil
	}
	ids := make([]int, 0, len(t.perAgent))
	for id := range t.perAgent {
		ids = append(ids, id)
	}
	return ids
}
