/*
Copyright © 2026 the streamtrack authors.
This file is part of streamtrack.

streamtrack is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

streamtrack is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with streamtrack.  If not, see <http://www.gnu.org/licenses/>.
*/

package streamtrack

import (
	"fmt"
	"math"
)

// Particle is a massless marker advected through the stream network.
// It samples the concentration of each tracked resource at its location
// once per iteration.
type Particle struct {
	index    int
	velocity float64 // constant; sign gives the heading relative to the flow

	// resources is shared by every particle of a tracker and must not be
	// modified. resources[0] steers the particle.
	resources []string

	cell     Cell
	boundary Boundary
	endCell  Cell

	// currentDistance is the position along boundary; endDistance is half
	// the boundary's segment length.
	currentDistance, endDistance float64

	finished bool
	exited   bool // finished somewhere other than endCell

	buffered bufferedValues
	out      *recordWriter
}

// bufferedValues holds a record that has been computed but not yet
// written.
type bufferedValues struct {
	iteration int
	time      float64
	values    []float64 // one per resource, in resource order
}

func newParticle(index int, velocity float64, resources []string) *Particle {
	return &Particle{
		index:     index,
		velocity:  velocity,
		resources: resources,
		buffered:  bufferedValues{values: make([]float64, len(resources))},
	}
}

// Index returns the release order of the particle.
func (p *Particle) Index() int { return p.index }

// Velocity returns the advection velocity of the particle.
func (p *Particle) Velocity() float64 { return p.velocity }

// Cell returns the cell the particle is currently in.
func (p *Particle) Cell() Cell { return p.cell }

// Boundary returns the boundary the particle is currently traveling along.
func (p *Particle) Boundary() Boundary { return p.boundary }

// Distance returns the position of the particle along its boundary and the
// position at which it will cross into the next segment.
func (p *Particle) Distance() (current, end float64) {
	return p.currentDistance, p.endDistance
}

// Finished returns whether the particle has left the network.
func (p *Particle) Finished() bool { return p.finished }

// Exited returns whether the particle left the network somewhere other
// than its end cell.
func (p *Particle) Exited() bool { return p.exited }

func (p *Particle) tracked() string { return p.resources[0] }

// downstream reports whether the particle travels with the flow.
func (p *Particle) downstream() bool { return p.velocity >= 0 }

// initializeLocation places the particle at the start of a boundary of
// release. When the cell has a single flow link, or only injection or
// concentration boundaries, the first one found is used, in that order of
// preference. With two or more flow links the first one whose flow runs
// the particle's way wins; if none does, the last one examined is kept.
func (p *Particle) initializeLocation(release, end Cell) error {
	b, err := p.selectBoundary(release)
	if err != nil {
		return err
	}
	l, err := halfLength(b)
	if err != nil {
		return err
	}
	p.cell, p.boundary, p.endCell = release, b, end
	p.endDistance = l
	p.currentDistance = 0
	return nil
}

func (p *Particle) selectBoundary(c Cell) (Boundary, error) {
	links := c.Boundaries(p.tracked(), FlowLink)
	if len(links) >= 2 {
		var b Boundary
		for _, b = range links {
			positive, err := flowPositive(b)
			if err != nil {
				return nil, err
			}
			if positive == p.downstream() {
				break
			}
		}
		return b, nil
	}
	for _, cat := range []Category{FlowLink, InjectionBoundary, ConcentrationBoundary} {
		if bs := c.Boundaries(p.tracked(), cat); len(bs) > 0 {
			return bs[0], nil
		}
	}
	return nil, fmt.Errorf("%w: cell %s has no boundaries for %s", ErrNoBoundary, c.Name(), p.tracked())
}

// isFlowPositive returns whether the flow across the particle's boundary
// runs out of its current cell.
func (p *Particle) isFlowPositive() (bool, error) {
	return flowPositive(p.boundary)
}

// move advances the particle by one time step. At most one segment
// boundary is crossed per call; ErrOvershoot is returned if the particle
// would need to cross more. A step that lands exactly on the end of a
// segment crosses nothing, except in the end cell with positive flow,
// where it finishes the particle.
func (p *Particle) move(clk Clock) error {
	if p.finished {
		return nil
	}
	p.currentDistance += math.Abs(p.velocity) * clk.Dt
	if p.currentDistance < p.endDistance {
		return nil
	}
	positive, err := p.isFlowPositive()
	if err != nil {
		return err
	}
	if p.currentDistance == p.endDistance {
		if positive && p.cell == p.endCell {
			p.finish(false)
		}
		return nil
	}
	overshoot := p.currentDistance - p.endDistance

	if positive {
		err = p.crossDownstream(overshoot)
	} else {
		err = p.crossUpstream(overshoot)
	}
	if err != nil {
		return err
	}
	if p.currentDistance > p.endDistance {
		return fmt.Errorf("%w: particle %d in cell %s is %g past the end of its segment",
			ErrOvershoot, p.index, p.cell.Name(), p.currentDistance-p.endDistance)
	}
	return nil
}

// crossDownstream moves the particle into the next cell along the flow.
func (p *Particle) crossDownstream(overshoot float64) error {
	if p.cell == p.endCell {
		p.currentDistance = p.endDistance
		p.finish(false)
		return nil
	}
	adj := p.boundary.Adjacent()
	if adj == nil { // outlet that is not the end cell
		p.currentDistance = p.endDistance
		p.finish(true)
		return nil
	}
	next := adj.Cell()
	cont, err := p.downstreamLink(next)
	if err != nil {
		return err
	}
	if cont == nil {
		// Nowhere left to go: park the particle at the entry of next.
		l, err := halfLength(adj)
		if err != nil {
			return err
		}
		p.cell, p.boundary, p.endDistance = next, adj, l
		p.currentDistance = math.Min(overshoot, l)
		p.finish(next != p.endCell)
		return nil
	}
	l, err := halfLength(cont)
	if err != nil {
		return err
	}
	p.cell, p.boundary, p.endDistance = next, cont, l
	p.currentDistance = overshoot
	return nil
}

// crossUpstream moves the particle into the next cell against the flow.
// endDistance is carried over from the previous segment.
func (p *Particle) crossUpstream(overshoot float64) error {
	adj := p.boundary.Adjacent()
	if adj == nil { // inflow from outside the network
		p.currentDistance = p.endDistance
		p.finish(true)
		return nil
	}
	next := adj.Cell()
	cont, err := p.upstreamLink(next)
	if err != nil {
		return err
	}
	if cont == nil { // head of the network
		p.cell, p.boundary = next, adj
		p.currentDistance = math.Min(overshoot, p.endDistance)
		p.finish(true)
		return nil
	}
	p.cell, p.boundary = next, cont
	p.currentDistance = overshoot
	return nil
}

// downstreamLink returns the first flow link of c whose flow is not
// positive when read from the cell on its far side, which is the link
// that discharges c downstream. It returns nil if there is none.
func (p *Particle) downstreamLink(c Cell) (Boundary, error) {
	for _, b := range c.Boundaries(p.tracked(), FlowLink) {
		positive, err := farSidePositive(b)
		if err != nil {
			return nil, err
		}
		if !positive {
			return b, nil
		}
	}
	return nil, nil
}

// upstreamLink returns the first flow link of c whose flow is not
// positive, which is a link feeding c from upstream. It returns nil if
// there is none.
func (p *Particle) upstreamLink(c Cell) (Boundary, error) {
	for _, b := range c.Boundaries(p.tracked(), FlowLink) {
		positive, err := flowPositive(b)
		if err != nil {
			return nil, err
		}
		if !positive {
			return b, nil
		}
	}
	return nil, nil
}

func (p *Particle) finish(exited bool) {
	p.finished = true
	p.exited = exited
}

// buffer interpolates the concentration of each resource at the
// particle's location and stages it, along with the clock, for the next
// write. It does not change the particle's position.
func (p *Particle) buffer(clk Clock) error {
	positive, err := p.isFlowPositive()
	if err != nil {
		return err
	}
	var frac float64
	if p.endDistance > 0 {
		if positive {
			frac = (p.endDistance - p.currentDistance) / (2 * p.endDistance)
		} else {
			frac = p.currentDistance / (2 * p.endDistance)
		}
	}
	for i, r := range p.resources {
		near, far, err := p.nearFar(r)
		if err != nil {
			return err
		}
		p.buffered.values[i] = near + frac*(far-near)
	}
	p.buffered.iteration = clk.Iteration
	p.buffered.time = clk.Time
	return nil
}

// nearFar returns the concentration of resource r in the particle's cell
// and on the other side of its boundary. Without a neighbor the
// boundary's own state is used, and without that the gradient is taken
// to be zero.
func (p *Particle) nearFar(r string) (near, far float64, err error) {
	near, ok := p.boundary.Cell().Concentration(r)
	if !ok {
		return 0, 0, fmt.Errorf("streamtrack: cell %s has no concentration for %s",
			p.boundary.Cell().Name(), r)
	}
	if adj := p.boundary.Adjacent(); adj != nil {
		far, ok = adj.Cell().Concentration(r)
	} else {
		far, ok = p.boundary.Concentration(r)
	}
	if !ok {
		far = near
	}
	return near, far, nil
}

// write sends the staged record to the particle's output.
func (p *Particle) write() error {
	if p.out == nil {
		return fmt.Errorf("streamtrack: particle %d has no output", p.index)
	}
	return p.out.writeRecord(p.buffered.iteration, p.buffered.time, p.buffered.values)
}

// close flushes and releases the particle's output. It must be called
// exactly once.
func (p *Particle) close() error {
	if p.out == nil {
		return nil
	}
	return p.out.close()
}

// flowPositive returns whether the flow across b runs out of its owning
// cell. If b has no flow state, the flow of its adjacent boundary is read
// and mirrored.
func flowPositive(b Boundary) (bool, error) {
	if q, ok := b.Flow(); ok {
		return q > 0, nil
	}
	adj := b.Adjacent()
	if adj == nil {
		return false, fmt.Errorf("%w: boundary of cell %s has no flow and no adjacent boundary",
			ErrDanglingBoundary, b.Cell().Name())
	}
	q, ok := adj.Flow()
	if !ok {
		return false, fmt.Errorf("%w: neither side of the link between %s and %s has a flow",
			ErrDanglingBoundary, b.Cell().Name(), adj.Cell().Name())
	}
	return -q > 0, nil
}

// farSidePositive returns whether the flow across b runs out of the cell
// on its far side.
func farSidePositive(b Boundary) (bool, error) {
	if adj := b.Adjacent(); adj != nil {
		return flowPositive(adj)
	}
	q, ok := b.Flow()
	if !ok {
		return false, fmt.Errorf("%w: boundary of cell %s has no flow and no adjacent boundary",
			ErrDanglingBoundary, b.Cell().Name())
	}
	return -q > 0, nil
}

// halfLength returns half the segment length of b, falling back to the
// length of its owning cell.
func halfLength(b Boundary) (float64, error) {
	if l, ok := b.Length(); ok {
		return l / 2, nil
	}
	if l, ok := b.Cell().Length(); ok {
		return l / 2, nil
	}
	return 0, fmt.Errorf("streamtrack: neither cell %s nor its boundary has a length", b.Cell().Name())
}
