package simulation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// step runs one tick: cool, apply forces to velocities, then integrate.
func (s *Simulation) step() {
	s.alpha += (s.cfg.AlphaTarget - s.alpha) * s.cfg.AlphaDecay
	if len(s.nodes) == 0 {
		return
	}
	alpha := s.alpha

	s.applyLinks(alpha)
	s.charge.apply(s, alpha)
	s.applyCenter()
	if len(s.nodes) > s.cfg.CollisionThreshold {
		s.applyCollide()
	}
	if s.cfg.RadialLayout {
		s.applyRadial(alpha)
	}
	s.integrate()
}

// applyLinks pulls linked nodes towards their target distance. The target
// node takes the bias share of the correction and the source the remainder.
func (s *Simulation) applyLinks(alpha float64) {
	for i := range s.links {
		l := &s.links[i]
		src, tgt := &s.nodes[l.source], &s.nodes[l.target]

		d := r3.Sub(r3.Add(tgt.pos, tgt.vel), r3.Add(src.pos, src.vel))
		if d.X == 0 {
			d.X = s.jiggle()
		}
		if d.Y == 0 {
			d.Y = s.jiggle()
		}
		if d.Z == 0 {
			d.Z = s.jiggle()
		}
		dist := r3.Norm(d)
		k := (dist - l.distance) / dist * alpha * l.strength
		d = r3.Scale(k, d)

		tgt.vel = r3.Sub(tgt.vel, r3.Scale(l.bias, d))
		src.vel = r3.Add(src.vel, r3.Scale(1-l.bias, d))
	}
}

// applyCenter translates every node so the mean position moves towards the
// origin by CenterStrength.
func (s *Simulation) applyCenter() {
	if s.cfg.CenterStrength == 0 {
		return
	}
	var sum r3.Vec
	for i := range s.nodes {
		sum = r3.Add(sum, s.nodes[i].pos)
	}
	shift := r3.Scale(s.cfg.CenterStrength/float64(len(s.nodes)), sum)
	for i := range s.nodes {
		s.nodes[i].pos = r3.Sub(s.nodes[i].pos, shift)
	}
}

// applyRadial pulls every node towards a sphere around the origin: the inner
// radius for direct neighbours of the center node, the outer one otherwise.
func (s *Simulation) applyRadial(alpha float64) {
	center, ok := s.index[s.cfg.CenterNodeID]
	if !ok || s.cfg.RadialStrength == 0 {
		return
	}
	neighbour := make([]bool, len(s.nodes))
	for _, l := range s.links {
		switch center {
		case l.source:
			neighbour[l.target] = true
		case l.target:
			neighbour[l.source] = true
		}
	}
	for i := range s.nodes {
		if i == center {
			continue
		}
		n := &s.nodes[i]
		radius := s.cfg.RadialOuterRadius
		if neighbour[i] {
			radius = s.cfg.RadialInnerRadius
		}
		r := r3.Norm(n.pos)
		if r == 0 {
			r = 1e-6
		}
		k := (radius - r) * s.cfg.RadialStrength * alpha / r
		n.vel = r3.Add(n.vel, r3.Scale(k, n.pos))
	}
}

// applyCollide separates overlapping nodes using predicted positions.
// Each overlapping pair is resolved once, split by relative radius.
func (s *Simulation) applyCollide() {
	radii := make([]float64, len(s.nodes))
	maxRadius := 0.0
	predicted := make([]r3.Vec, len(s.nodes))
	for i := range s.nodes {
		radii[i] = s.cfg.CollisionRadius + s.cfg.CollisionRadiusScale*s.nodes[i].importance
		maxRadius = math.Max(maxRadius, radii[i])
		predicted[i] = r3.Add(s.nodes[i].pos, s.nodes[i].vel)
	}
	tree := newPointTree(predicted)

	for i := range s.nodes {
		ri := radii[i]
		for _, j := range tree.within(predicted[i], ri+maxRadius) {
			if j <= i {
				continue
			}
			a, b := &s.nodes[i], &s.nodes[j]
			rj := radii[j]
			r := ri + rj
			d := r3.Sub(r3.Add(a.pos, a.vel), r3.Add(b.pos, b.vel))
			l2 := r3.Norm2(d)
			if l2 >= r*r {
				continue
			}
			if d.X == 0 {
				d.X = s.jiggle()
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
			}
			if d.Z == 0 {
				d.Z = s.jiggle()
			}
			l := r3.Norm(d)
			d = r3.Scale((r-l)/l*s.cfg.CollisionStrength, d)
			share := rj * rj / (ri*ri + rj*rj)
			a.vel = r3.Add(a.vel, r3.Scale(share, d))
			b.vel = r3.Sub(b.vel, r3.Scale(1-share, d))
		}
	}
}

// integrate applies velocity decay and moves free nodes. Fixed nodes snap to
// their fixed position with zero velocity.
func (s *Simulation) integrate() {
	decay := 1 - s.cfg.VelocityDecay
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.fixed {
			n.pos = n.fix
			n.vel = r3.Vec{}
			continue
		}
		n.vel = r3.Scale(decay, n.vel)
		n.pos = r3.Add(n.pos, n.vel)
	}
}
