// Package scenario lays out arenas: two bases in opposite corners and a
// field of resource nodes whose payloads follow simplex noise.
package scenario

import (
	"math"

	"github.com/ojrac/opensimplex-go"
	"github.com/paulmach/orb"

	"github.com/nstehr/wingman/geom"
	"github.com/nstehr/wingman/model"
)

type Options struct {
	Seed int64
	// Cell is the spacing of candidate node sites.
	Cell float64
	// Threshold is the noise level below which a site stays empty.
	Threshold  float64
	MaxPayload int
	// BaseMargin is the distance from each corner to its base and the
	// clearing kept free of nodes around it.
	BaseMargin float64
}

func DefaultOptions(seed int64) Options {
	return Options{Seed: seed, Cell: 100, Threshold: 0.5, MaxPayload: 150, BaseMargin: 100}
}

type Layout struct {
	Bases     []*model.Base
	Resources []*model.Resource
}

// Generate builds a layout for bounds. The same options always produce the
// same layout.
func Generate(bounds orb.Bound, opts Options) Layout {
	m := opts.BaseMargin
	home := &model.Base{ID: 1, Team: 1, Pos: orb.Point{bounds.Min[0] + m, bounds.Min[1] + m}, Health: 100}
	away := &model.Base{ID: 2, Team: 2, Pos: orb.Point{bounds.Max[0] - m, bounds.Max[1] - m}, Health: 100}
	layout := Layout{Bases: []*model.Base{home, away}}

	noise := opensimplex.NewNormalized(opts.Seed)
	id := 1
	for x := bounds.Min[0] + opts.Cell/2; x < bounds.Max[0]; x += opts.Cell {
		for y := bounds.Min[1] + opts.Cell/2; y < bounds.Max[1]; y += opts.Cell {
			pt := orb.Point{x, y}
			if geom.Distance(pt, home.Pos) < 2*m || geom.Distance(pt, away.Pos) < 2*m {
				continue
			}
			v := octave(noise, x, y, 3, 0.004, 0.5)
			if v < opts.Threshold {
				continue
			}
			frac := (v - opts.Threshold) / (1 - opts.Threshold)
			payload := 10 + int(math.Round(frac*float64(opts.MaxPayload-10)))
			layout.Resources = append(layout.Resources, &model.Resource{ID: id, Pos: pt, Payload: payload})
			id++
		}
	}
	return layout
}

// octave layers several noise frequencies and renormalises to [0,1).
func octave(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total, amplitude, maxVal := 0.0, 1.0, 0.0
	for _i := 0; _i < octaves; _i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

// Total is the payload across every node.
func (l Layout) Total() int {
	n := 0
	for _, r := range l.Resources {
		n += r.Payload
	}
	return n
}
