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

import "testing"

const testResource = "solute"

// testCell and testBoundary are a minimal flow graph for unit tests.
type testCell struct {
	name      string
	length    float64
	hasLength bool
	conc      map[string]float64
	links     map[Category][]*testBoundary
}

type testBoundary struct {
	cell            *testCell
	adj             *testBoundary
	flow, length    float64
	hasFlow, hasLen bool
	conc            map[string]float64
}

func newTestCell(name string, length, conc float64) *testCell {
	return &testCell{
		name:      name,
		length:    length,
		hasLength: true,
		conc:      map[string]float64{testResource: conc},
		links:     make(map[Category][]*testBoundary),
	}
}

func (c *testCell) Name() string { return c.name }

func (c *testCell) Boundaries(resource string, cat Category) []Boundary {
	if resource != testResource {
		return nil
	}
	var o []Boundary
	for _, b := range c.links[cat] {
		o = append(o, b)
	}
	return o
}

func (c *testCell) Concentration(resource string) (float64, bool) {
	v, ok := c.conc[resource]
	return v, ok
}

func (c *testCell) Length() (float64, bool) { return c.length, c.hasLength }

func (b *testBoundary) Cell() Cell { return b.cell }

func (b *testBoundary) Adjacent() Boundary {
	if b.adj == nil {
		return nil
	}
	return b.adj
}

func (b *testBoundary) Flow() (float64, bool)   { return b.flow, b.hasFlow }
func (b *testBoundary) Length() (float64, bool) { return b.length, b.hasLen }

func (b *testBoundary) Concentration(resource string) (float64, bool) {
	v, ok := b.conc[resource]
	return v, ok
}

// connect links a to b with a flow of q out of a.
func connect(a, b *testCell, q, length float64) (ab, ba *testBoundary) {
	ab = &testBoundary{cell: a, flow: q, hasFlow: true, length: length, hasLen: true}
	ba = &testBoundary{cell: b, flow: -q, hasFlow: true, length: length, hasLen: true}
	ab.adj, ba.adj = ba, ab
	a.links[FlowLink] = append(a.links[FlowLink], ab)
	b.links[FlowLink] = append(b.links[FlowLink], ba)
	return ab, ba
}

// external adds a boundary with no adjacent side to c.
func external(c *testCell, cat Category, q, length float64) *testBoundary {
	b := &testBoundary{cell: c, flow: q, hasFlow: true, length: length, hasLen: true}
	c.links[cat] = append(c.links[cat], b)
	return b
}

type testGraph []*testCell

func (g testGraph) Cell(name string) (Cell, bool) {
	for _, c := range g {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func testParticle(t *testing.T, velocity float64, release, end *testCell) *Particle {
	t.Helper()
	p := newParticle(0, velocity, []string{testResource})
	if err := p.initializeLocation(release, end); err != nil {
		t.Fatal(err)
	}
	return p
}
