package formation

import (
	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/model"
)

// Assign picks a position for a out of positions. An agent keeps the
// position it already targets; otherwise it takes the first position that
// no other living teammate targets or stands on. Because each agent claims
// by what it observes rather than by its index in a roster, deaths and role
// changes do not reshuffle everyone else.
func Assign(a *model.Agent, positions []orb.Point, team []*model.Agent, tolerance float64) (orb.Point, bool) {
	if wp, ok := a.Target.(model.Waypoint); ok {
		pt := orb.Point(wp)
		if containsPoint(positions, pt) && !targetedByOther(a, pt, team) {
			return pt, true
		}
	}
	for _, pt := range positions {
		if targetedByOther(a, pt, team) || occupiedByOther(a, pt, team, tolerance) {
			continue
		}
		return pt, true
	}
	return orb.Point{}, false
}

func targetedByOther(a *model.Agent, pt orb.Point, team []*model.Agent) bool {
	for _, o := range team {
		if o == a || !o.Alive() {
			continue
		}
		if wp, ok := o.Target.(model.Waypoint); ok && orb.Point(wp) == pt {
			return true
		}
	}
	return false
}

func occupiedByOther(a *model.Agent, pt orb.Point, team []*model.Agent, tolerance float64) bool {
	for _, o := range team {
		if o == a || !o.Alive() {
			continue
		}
		if geom.Near(o.Pos, pt, tolerance) {
			return true
		}
	}
	return false
}
