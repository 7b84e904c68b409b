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

// Package network is an in-memory stream network that satisfies the
// streamtrack flow graph interfaces. Reaches are the cells of the network
// and links are the boundaries between them. Flow, length, and
// concentration values are set by the caller, typically an Eulerian
// solver or a network description file.
package network

import (
	"fmt"
	"sync"

	"github.com/spatialmodel/streamtrack"
)

// Network is a collection of reaches connected by links.
type Network struct {
	reaches []*Reach
	byName  map[string]*Reach
}

// New returns an empty network.
func New() *Network {
	return &Network{byName: make(map[string]*Reach)}
}

type linkKey struct {
	resource string
	category streamtrack.Category
}

// Reach is a finite-volume cell of the network.
type Reach struct {
	name   string
	length optional

	mu    sync.RWMutex // guards conc
	conc  map[string]float64
	links map[linkKey][]*Link
}

// Link is one side of a connection between two reaches, or a boundary
// between a reach and the outside of the network.
type Link struct {
	reach    *Reach
	adjacent *Link
	length   optional

	mu   sync.RWMutex // guards flow and conc
	flow optional
	conc map[string]float64
}

type optional struct {
	v  float64
	ok bool
}

func some(v float64) optional { return optional{v: v, ok: true} }

// AddReach adds a reach with the given name to the network. length is
// ignored unless hasLength is true.
func (n *Network) AddReach(name string, length float64, hasLength bool) (*Reach, error) {
	if name == "" {
		return nil, fmt.Errorf("network: reach name must not be empty")
	}
	if _, ok := n.byName[name]; ok {
		return nil, fmt.Errorf("network: duplicate reach %s", name)
	}
	r := &Reach{
		name:  name,
		conc:  make(map[string]float64),
		links: make(map[linkKey][]*Link),
	}
	if hasLength {
		r.length = some(length)
	}
	n.reaches = append(n.reaches, r)
	n.byName[name] = r
	return r, nil
}

// Reach returns the reach with the given name, or nil.
func (n *Network) Reach(name string) *Reach { return n.byName[name] }

// Cell implements streamtrack.Graph.
func (n *Network) Cell(name string) (streamtrack.Cell, bool) {
	r, ok := n.byName[name]
	if !ok {
		return nil, false
	}
	return r, true
}

// Cells implements streamtrack.CellLister. Cells are returned in the order
// they were added.
func (n *Network) Cells() []streamtrack.Cell {
	o := make([]streamtrack.Cell, len(n.reaches))
	for i, r := range n.reaches {
		o[i] = r
	}
	return o
}

// Connect joins from and to with a flow link for resource. The link seen
// from from carries flow and the link seen from to carries -flow. length
// is ignored unless hasLength is true. It returns the side of the link
// owned by from.
func (n *Network) Connect(from, to *Reach, resource string, flow, length float64, hasLength bool) (*Link, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("network: cannot connect a nil reach")
	}
	if from == to {
		return nil, fmt.Errorf("network: cannot connect reach %s to itself", from.name)
	}
	a := &Link{reach: from, flow: some(flow), conc: make(map[string]float64)}
	b := &Link{reach: to, flow: some(-flow), conc: make(map[string]float64)}
	if hasLength {
		a.length = some(length)
		b.length = some(length)
	}
	a.adjacent, b.adjacent = b, a
	k := linkKey{resource: resource, category: streamtrack.FlowLink}
	from.links[k] = append(from.links[k], a)
	to.links[k] = append(to.links[k], b)
	return a, nil
}

// AddBoundary adds a link between r and the outside of the network. flow is
// positive when leaving r.
func (n *Network) AddBoundary(r *Reach, resource string, c streamtrack.Category, flow float64, hasFlow bool, length float64, hasLength bool) (*Link, error) {
	if r == nil {
		return nil, fmt.Errorf("network: cannot add a boundary to a nil reach")
	}
	l := &Link{reach: r, conc: make(map[string]float64)}
	if hasFlow {
		l.flow = some(flow)
	}
	if hasLength {
		l.length = some(length)
	}
	k := linkKey{resource: resource, category: c}
	r.links[k] = append(r.links[k], l)
	return l, nil
}

// Name implements streamtrack.Cell.
func (r *Reach) Name() string { return r.name }

func (r *Reach) String() string { return r.name }

// Boundaries implements streamtrack.Cell.
func (r *Reach) Boundaries(resource string, c streamtrack.Category) []streamtrack.Boundary {
	links := r.links[linkKey{resource: resource, category: c}]
	o := make([]streamtrack.Boundary, len(links))
	for i, l := range links {
		o[i] = l
	}
	return o
}

// Concentration implements streamtrack.Cell.
func (r *Reach) Concentration(resource string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.conc[resource]
	return v, ok
}

// SetConcentration sets the concentration of resource in r.
func (r *Reach) SetConcentration(resource string, v float64) {
	r.mu.Lock()
	r.conc[resource] = v
	r.mu.Unlock()
}

// Length implements streamtrack.Cell.
func (r *Reach) Length() (float64, bool) { return r.length.v, r.length.ok }

// Cell implements streamtrack.Boundary.
func (l *Link) Cell() streamtrack.Cell { return l.reach }

// Reach returns the reach that owns l.
func (l *Link) Reach() *Reach { return l.reach }

// Adjacent implements streamtrack.Boundary.
func (l *Link) Adjacent() streamtrack.Boundary {
	if l.adjacent == nil {
		return nil
	}
	return l.adjacent
}

// Flow implements streamtrack.Boundary.
func (l *Link) Flow() (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.flow.v, l.flow.ok
}

// SetFlow sets the flow across l, positive when leaving its reach. The
// adjacent side, if any, is set to the mirrored value.
func (l *Link) SetFlow(q float64) {
	l.mu.Lock()
	l.flow = some(q)
	l.mu.Unlock()
	if a := l.adjacent; a != nil {
		a.mu.Lock()
		a.flow = some(-q)
		a.mu.Unlock()
	}
}

// ClearFlow removes the flow state from l only, leaving its adjacent side
// untouched.
func (l *Link) ClearFlow() {
	l.mu.Lock()
	l.flow = optional{}
	l.mu.Unlock()
}

// Length implements streamtrack.Boundary.
func (l *Link) Length() (float64, bool) { return l.length.v, l.length.ok }

// Concentration implements streamtrack.Boundary.
func (l *Link) Concentration(resource string) (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.conc[resource]
	return v, ok
}

// SetConcentration sets the boundary concentration of resource on l.
func (l *Link) SetConcentration(resource string, v float64) {
	l.mu.Lock()
	l.conc[resource] = v
	l.mu.Unlock()
}
