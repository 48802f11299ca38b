package simulation

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r3"
)

// body is a node as seen by the Barnes-Hut octree. Every body has unit mass
// so the octree's bucket centers are plain centroids; the node's signed
// charge travels in strength instead.
type body struct {
	pos      r3.Vec
	strength float64
}

func (b *body) Coord3() r3.Vec { return b.pos }
func (b *body) Mass() float64  { return 1 }

// chargeForce is many-body repulsion (or attraction, for positive strength).
// Per-node strength is ChargeStrength * (1 + importance/100).
type chargeForce struct {
	bodies    []body
	particles []barneshut.Particle3

	// mean is the average node strength, used for aggregated buckets.
	mean   float64
	alpha  float64
	dmin2  float64
	dmax2  float64
	jiggle func() float64
}

func (c *chargeForce) apply(s *Simulation, alpha float64) {
	strength := s.cfg.ChargeStrength
	if strength == 0 || len(s.nodes) < 2 {
		return
	}
	c.alpha = alpha
	c.dmin2 = s.cfg.DistanceMin * s.cfg.DistanceMin
	c.dmax2 = math.Inf(1)
	if s.cfg.DistanceMax > 0 {
		c.dmax2 = s.cfg.DistanceMax * s.cfg.DistanceMax
	}
	c.jiggle = s.jiggle

	if cap(c.bodies) < len(s.nodes) {
		c.bodies = make([]body, len(s.nodes))
		c.particles = make([]barneshut.Particle3, len(s.nodes))
	}
	c.bodies = c.bodies[:len(s.nodes)]
	c.particles = c.particles[:len(s.nodes)]
	var total float64
	for i := range s.nodes {
		k := strength * (1 + s.nodes[i].importance/100)
		c.bodies[i] = body{pos: s.nodes[i].pos, strength: k}
		c.particles[i] = &c.bodies[i]
		total += k
	}
	c.mean = total / float64(len(s.nodes))

	// The octree opens a bucket on its mean side length, which is at least a
	// third of its widest side; scaling theta keeps it no looser than the
	// cube-width criterion.
	theta := s.cfg.Theta / 3
	vol, err := barneshut.NewVolume(c.particles)
	if err != nil {
		// The octree cannot separate these points; use exact pairwise sums this tick.
		vol, theta = &barneshut.Volume{Particles: c.particles}, 0
	}
	for i := range s.nodes {
		f := vol.ForceOn(c.particles[i], theta, c.force)
		s.nodes[i].vel = r3.Add(s.nodes[i].vel, f)
	}
}

// force is the velocity change on p1 due to p2, or due to an aggregated
// bucket of m2 nodes when p2 is nil. v points from p1 to the bucket center.
// For a single node the offset is taken from the node itself.
func (c *chargeForce) force(p1, p2 barneshut.Particle3, _, m2 float64, v r3.Vec) r3.Vec {
	k := m2 * c.mean
	if p2 != nil {
		if p2 == p1 {
			return r3.Vec{}
		}
		b := p2.(*body)
		v = r3.Sub(b.pos, p1.Coord3())
		k = b.strength
	}
	l2 := r3.Norm2(v)
	if l2 >= c.dmax2 {
		return r3.Vec{}
	}
	if l2 == 0 {
		if p2 == nil {
			return r3.Vec{}
		}
		v = r3.Vec{X: c.jiggle(), Y: c.jiggle(), Z: c.jiggle()}
		l2 = r3.Norm2(v)
	}
	if l2 < c.dmin2 {
		l2 = math.Sqrt(c.dmin2 * l2)
	}
	return r3.Scale(k*c.alpha/l2, v)
}
