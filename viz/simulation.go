package viz

import (
	"math"
)

// Params tunes the force simulation.
type Params struct {
	// VelocityDecay is the fraction of velocity removed each step.
	VelocityDecay float64
	AlphaMin      float64
	AlphaDecay    float64

	// ChargeStrength is the repulsion of a node of minimum size; larger nodes repel proportionally more.
	ChargeStrength float64
	// ChargeRange is the repulsion cutoff for two minimum-size nodes; it grows with node size.
	ChargeRange float64

	LinkDistance   float64
	CenterStrength float64

	CollisionMargin   float64
	CollisionStrength float64
}

const (
	minNodeSize   = 8.0
	dragAlpha     = 0.3
	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// DefaultParams returns the tuning used by the layout engine.
func DefaultParams() Params {
	alphaMin := 0.001
	return Params{
		VelocityDecay:     0.6,
		AlphaMin:          alphaMin,
		AlphaDecay:        1 - math.Pow(alphaMin, 1.0/300),
		ChargeStrength:    30,
		ChargeRange:       400,
		LinkDistance:      80,
		CenterStrength:    0.05,
		CollisionMargin:   4,
		CollisionStrength: 0.7,
	}
}

// NodeSpec is the input shape of a simulated node.
type NodeSpec struct {
	ID   string
	Size float64
}

// LinkSpec is the input shape of a simulated edge.
type LinkSpec struct {
	Source string
	Target string
}

// Position is the transient display state of a node.
type Position struct {
	ID     string
	X      float64
	Y      float64
	Radius float64
	Pinned bool
}

type body struct {
	id     string
	x, y   float64
	vx, vy float64
	radius float64

	pinned bool
	fx, fy float64
}

type link struct {
	source, target int
	distance       float64
	strength       float64
	bias           float64
}

// Simulation is a velocity Verlet force layout. It is not safe for concurrent use.
type Simulation struct {
	params Params
	bodies []body
	index  map[string]int
	links  []link

	width, height float64
	alpha         float64
	alphaTarget   float64
}

// NewSimulation places nodes on a phyllotaxis spiral around the viewport center
// and starts hot (alpha 1). Links with unknown or identical endpoints are ignored.
func NewSimulation(nodes []NodeSpec, links []LinkSpec, width, height float64, params Params) *Simulation {
	s := &Simulation{
		params: params,
		bodies: make([]body, len(nodes)),
		index:  make(map[string]int, len(nodes)),
		width:  width,
		height: height,
		alpha:  1,
	}

	cx, cy := width/2, height/2
	for i, n := range nodes {
		r := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		size := n.Size
		if size < minNodeSize {
			size = minNodeSize
		}
		s.bodies[i] = body{
			id:     n.ID,
			x:      cx + r*math.Cos(angle),
			y:      cy + r*math.Sin(angle),
			radius: size,
		}
		s.index[n.ID] = i
	}

	degree := make([]int, len(nodes))
	for _, l := range links {
		si, okS := s.index[l.Source]
		ti, okT := s.index[l.Target]
		if !okS || !okT || si == ti {
			continue
		}
		s.links = append(s.links, link{source: si, target: ti})
		degree[si]++
		degree[ti]++
	}

	for i := range s.links {
		l := &s.links[i]
		ds, dt := float64(degree[l.source]), float64(degree[l.target])
		l.bias = ds / (ds + dt)
		l.strength = 1 / math.Min(ds, dt)

		// Hubs pull their neighbours in; the floor keeps the two circles apart.
		rest := params.LinkDistance / math.Sqrt(math.Max(ds, dt))
		floor := s.bodies[l.source].radius + s.bodies[l.target].radius + params.CollisionMargin
		l.distance = math.Max(rest, floor)
	}

	return s
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Settled reports whether the layout is at rest and Step is a no-op.
func (s *Simulation) Settled() bool { return s.alpha == 0 && s.alphaTarget == 0 }

// SetAlphaTarget sets the temperature alpha decays toward.
func (s *Simulation) SetAlphaTarget(target float64) { s.alphaTarget = target }

// Reheat raises alpha to at least a.
func (s *Simulation) Reheat(a float64) {
	if a > s.alpha {
		s.alpha = a
	}
}

// Step advances the layout by one tick and reports whether any position moved.
func (s *Simulation) Step() bool {
	if s.Settled() {
		return false
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.params.AlphaDecay
	if s.alphaTarget == 0 && s.alpha < s.params.AlphaMin {
		s.alpha = 0
		for i := range s.bodies {
			s.bodies[i].vx, s.bodies[i].vy = 0, 0
		}
		return false
	}

	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollision()

	keep := 1 - s.params.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned {
			b.x, b.y = b.fx, b.fy
			b.vx, b.vy = 0, 0
			continue
		}
		b.vx *= keep
		b.vy *= keep
		b.x += b.vx
		b.y += b.vy
	}
	return true
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, tgt := &s.bodies[l.source], &s.bodies[l.target]
		x := tgt.x + tgt.vx - src.x - src.vx
		y := tgt.y + tgt.vy - src.y - src.vy
		if x == 0 && y == 0 {
			x = jiggle(l.target)
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - l.distance) / d * s.alpha * l.strength
		x *= k
		y *= k
		tgt.vx -= x * l.bias
		tgt.vy -= y * l.bias
		src.vx += x * (1 - l.bias)
		src.vy += y * (1 - l.bias)
	}
}

func (s *Simulation) applyCharge() {
	for i := range s.bodies {
		a := &s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			b := &s.bodies[j]
			dx, dy := b.x-a.x, b.y-a.y
			if dx == 0 && dy == 0 {
				dx = jiggle(j)
			}
			d2 := dx*dx + dy*dy

			reach := s.params.ChargeRange * (a.radius + b.radius) / (2 * minNodeSize)
			if d2 > reach*reach {
				continue
			}
			if d2 < 1 {
				d2 = 1
			}

			pushB := s.params.ChargeStrength * (a.radius / minNodeSize) * s.alpha / d2
			pushA := s.params.ChargeStrength * (b.radius / minNodeSize) * s.alpha / d2
			b.vx += dx * pushB
			b.vy += dy * pushB
			a.vx -= dx * pushA
			a.vy -= dy * pushA
		}
	}
}

func (s *Simulation) applyCenter() {
	cx, cy := s.width/2, s.height/2
	k := s.params.CenterStrength * s.alpha
	for i := range s.bodies {
		b := &s.bodies[i]
		b.vx += (cx - b.x) * k
		b.vy += (cy - b.y) * k
	}
}

// applyCollision separates overlapping circles using predicted positions.
func (s *Simulation) applyCollision() {
	margin := s.params.CollisionMargin
	for i := range s.bodies {
		a := &s.bodies[i]
		ra := a.radius + margin
		for j := i + 1; j < len(s.bodies); j++ {
			b := &s.bodies[j]
			rb := b.radius + margin
			r := ra + rb

			x := (a.x + a.vx) - (b.x + b.vx)
			y := (a.y + a.vy) - (b.y + b.vy)
			d2 := x*x + y*y
			if d2 >= r*r {
				continue
			}
			if x == 0 && y == 0 {
				x = jiggle(j)
				d2 = x * x
			}
			d := math.Sqrt(d2)
			k := (r - d) / d * s.params.CollisionStrength
			x *= k
			y *= k

			share := (rb * rb) / (ra*ra + rb*rb)
			a.vx += x * share
			a.vy += y * share
			b.vx -= x * (1 - share)
			b.vy -= y * (1 - share)
		}
	}
}

// jiggle breaks exact overlaps deterministically.
func jiggle(i int) float64 {
	return 1e-6 * float64(i%7+1)
}

// Pin fixes a node at (x, y) until Unpin. It reports false for unknown ids.
func (s *Simulation) Pin(id string, x, y float64) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	b := &s.bodies[i]
	b.pinned = true
	b.fx, b.fy = x, y
	b.x, b.y = x, y
	b.vx, b.vy = 0, 0
	return true
}

// Unpin returns a node to free simulation.
func (s *Simulation) Unpin(id string) {
	if i, ok := s.index[id]; ok {
		s.bodies[i].pinned = false
	}
}

// Position returns the display state of one node.
func (s *Simulation) Position(id string) (Position, bool) {
	i, ok := s.index[id]
	if !ok {
		return Position{}, false
	}
	return s.bodies[i].position(), true
}

// Positions returns every node in input order.
func (s *Simulation) Positions() []Position {
	out := make([]Position, len(s.bodies))
	for i := range s.bodies {
		out[i] = s.bodies[i].position()
	}
	return out
}

// NodeAt returns the topmost node whose circle contains (x, y).
func (s *Simulation) NodeAt(x, y float64) (string, bool) {
	for i := len(s.bodies) - 1; i >= 0; i-- {
		b := &s.bodies[i]
		dx, dy := x-b.x, y-b.y
		if dx*dx+dy*dy <= b.radius*b.radius {
			return b.id, true
		}
	}
	return "", false
}

// Resize moves the centering target and reheats so the layout drifts to the new center.
func (s *Simulation) Resize(width, height float64) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.Reheat(dragAlpha)
}

func (b *body) position() Position {
	return Position{ID: b.id, X: b.x, Y: b.y, Radius: b.radius, Pinned: b.pinned}
}
