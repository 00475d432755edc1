// Package formation plans a staged wedge advance on an enemy base and the
// fixed defense posts around home.
//
// An attack is split into stages of roughly StageLength. Each stage has a
// central point on the home→target line plus two wing points on either
// side, perpendicular to the line of advance. Fighters only move on to the
// next stage once every one of them holding a position has arrived and none
// is still fighting.
package formation

import (
	"log/slog"
	"math"

	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/model"
)

type State int

const (
	Idle State = iota
	Advancing
)

func (s State) String() string {
	if s == Advancing {
		return "advancing"
	}
	return "idle"
}

// wingAngles are the bearings of the two wings relative to the line of
// advance, in generation order.
var wingAngles = [2]float64{-90, 90}

type Config struct {
	Bounds         orb.Bound
	StageLength    float64
	WingLength     float64
	RebaseFactor   float64
	NearTolerance  float64
	DefenseOffsets [][2]float64
}

type Plan struct {
	cfg Config

	Home   *model.Base
	Target *model.Base
	Stage  int
	Stages int
	// Advance is the per-stage displacement, fixed for the whole attack.
	Advance orb.Point

	waypoints []orb.Point
	posts     []orb.Point
}

func NewPlan(cfg Config) *Plan {
	return &Plan{cfg: cfg}
}

// SetHome binds the plan to the fleet's base and lays out the defense
// posts. Only the first call has any effect.
func (p *Plan) SetHome(home *model.Base) {
	if p.Home != nil || home == nil {
		return
	}
	p.Home = home
	p.posts = DefensePosts(home.Pos, p.cfg.Bounds, p.cfg.DefenseOffsets)
}

// DefensePosts mirrors each offset towards the arena interior: the sign on
// each axis is + when home sits in the low half of that axis.
func DefensePosts(home orb.Point, bounds orb.Bound, offsets [][2]float64) []orb.Point {
	centre := geom.Centre(bounds)
	sx, sy := 1.0, 1.0
	if home[0] > centre[0] {
		sx = -1
	}
	if home[1] > centre[1] {
		sy = -1
	}
	posts := make([]orb.Point, 0, len(offsets))
	for _, off := range offsets {
		posts = append(posts, orb.Point{home[0] + off[0]*sx, home[1] + off[1]*sy})
	}
	return posts
}

func (p *Plan) State() State {
	if p.Target != nil {
		return Advancing
	}
	return Idle
}

func (p *Plan) Active() bool { return p.Target != nil }

// Start launches an attack on target. It is ignored while another attack
// is running or before a home base is set.
func (p *Plan) Start(target *model.Base) bool {
	if p.Active() || p.Home == nil || target == nil {
		return false
	}
	p.Target = target
	p.Stage = 0
	p.Stages = StageCount(geom.Distance(p.Home.Pos, target.Pos), p.cfg.StageLength)
	p.Advance = geom.Scale(geom.Sub(target.Pos, p.Home.Pos), 1/float64(p.Stages))
	p.waypoints = p.StageWaypoints(p.Stage)
	slog.Info("attack started", "target", target.ID, "stages", p.Stages, "advance", p.Advance)
	return true
}

// StageCount is ceil(distance/stageLength), never less than one so
// coincident bases don't divide by zero.
func StageCount(distance, stageLength float64) int {
	if stageLength <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(distance/stageLength)))
}

// StageWaypoints computes the five positions for stage: central first, then
// the two points of the left wing, then the right wing.
func (p *Plan) StageWaypoints(stage int) []orb.Point {
	if p.Home == nil {
		return nil
	}
	main := geom.Scale(p.Advance, float64(stage+1))
	central := geom.Add(p.Home.Pos, main)
	out := []orb.Point{central}
	heading := geom.Direction(main)
	for _, angle := range wingAngles {
		wing := geom.FromDirection(geom.NormaliseAngle(heading+angle), p.cfg.WingLength)
		for k := 1; k <= 2; k++ {
			pt := geom.Add(central, geom.Scale(wing, float64(k)))
			if !geom.InBounds(p.cfg.Bounds, pt) {
				pt = p.Rebase(pt, wing)
			}
			out = append(out, pt)
		}
	}
	return out
}

// Rebase pulls an out-of-bounds wing point back along its wing vector by
// RebaseFactor lengths. Points already in bounds are returned unchanged.
// This is a heuristic: a very small arena can still leave the point
// outside.
func (p *Plan) Rebase(pt, wing orb.Point) orb.Point {
	if geom.InBounds(p.cfg.Bounds, pt) {
		return pt
	}
	return geom.Sub(pt, geom.Scale(wing, p.cfg.RebaseFactor))
}

// Waypoints returns the current stage's positions.
func (p *Plan) Waypoints() []orb.Point {
	out := make([]orb.Point, len(p.waypoints))
	copy(out, p.waypoints)
	return out
}

func (p *Plan) DefensePosts() []orb.Point {
	out := make([]orb.Point, len(p.posts))
	copy(out, p.posts)
	return out
}

// IsWaypoint reports whether t is one of the current stage's positions.
func (p *Plan) IsWaypoint(t model.Target) bool {
	wp, ok := t.(model.Waypoint)
	return ok && containsPoint(p.waypoints, orb.Point(wp))
}

// FinalStage reports whether the central point already sits on the target.
func (p *Plan) FinalStage() bool {
	return p.Active() && p.Stage+1 >= p.Stages
}

// TryAdvance moves to the next stage once every offensive fighter holding
// a waypoint is within tolerance of it and none is engaged. It never moves
// past the final stage and never advances an empty formation.
func (p *Plan) TryAdvance(fighters []*model.Agent) bool {
	if !p.Active() || p.FinalStage() {
		return false
	}
	holders := 0
	for _, a := range fighters {
		if !a.Alive() || !a.Offensive || !p.IsWaypoint(a.Target) {
			continue
		}
		holders++
		if a.Engaged || !geom.Near(a.Pos, a.Target.Position(), p.cfg.NearTolerance) {
			return false
		}
	}
	if holders == 0 {
		return false
	}
	p.Stage++
	p.waypoints = p.StageWaypoints(p.Stage)
	slog.Info("formation advancing", "stage", p.Stage, "of", p.Stages, "central", p.waypoints[0])
	return true
}

// QuorumLost reports whether fewer than half the fighter roster (rounded
// up) is still offensive.
func QuorumLost(fighters []*model.Agent) bool {
	if len(fighters) == 0 {
		return true
	}
	offensive := 0
	for _, a := range fighters {
		if a.Offensive {
			offensive++
		}
	}
	return offensive < int(math.Ceil(float64(len(fighters))/2))
}

// Abort resets the plan to Idle and sends every offensive fighter home via
// retreat.
func (p *Plan) Abort(fighters []*model.Agent, retreat func(*model.Agent)) {
	target := -1
	if p.Target != nil {
		target = p.Target.ID
	}
	p.Target = nil
	p.Stage = 0
	p.Stages = 0
	p.Advance = orb.Point{}
	p.waypoints = nil
	n := 0
	for _, a := range fighters {
		if a.Offensive {
			retreat(a)
			n++
		}
	}
	slog.Info("attack aborted", "target", target, "retreating", n)
}

func containsPoint(list []orb.Point, pt orb.Point) bool {
	for _, q := range list {
		if q == pt {
			return true
		}
	}
	return false
}
