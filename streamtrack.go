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

// Package streamtrack overlays Lagrangian marker particles onto the flow
// field of an Eulerian advection-dispersion solver for one-dimensional
// stream networks. Particles are released from a velocity manifest, walk
// the directed cell/boundary graph supplied by the solver, and record the
// concentration interpolated under them at every iteration until they
// leave the network.
package streamtrack

import (
	"errors"
	"fmt"
)

// Version gives the version number.
const Version = "1.0.0"

// Category is the behavior category of a boundary.
type Category int

// Boundary categories, listed in the priority order used when a particle
// picks its initial link.
const (
	FlowLink Category = iota
	InjectionBoundary
	ConcentrationBoundary
)

var categoryNames = []string{"FlowLink", "InjectionBoundary", "ConcentrationBoundary"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Cell is a finite-volume node of the stream network. Cells are owned by
// the solver; the tracker only holds references to them.
type Cell interface {
	// Name returns the unique name of the cell.
	Name() string

	// Boundaries returns the outgoing boundaries of the cell for the
	// given resource and category, in enumeration order.
	Boundaries(resource string, c Category) []Boundary

	// Concentration returns the concentration of the resource in the
	// cell and whether that state exists.
	Concentration(resource string) (float64, bool)

	// Length returns the length of the cell and whether it is known.
	Length() (float64, bool)
}

// Boundary is a directed link between a cell and its neighbor for one
// resource.
type Boundary interface {
	// Cell returns the cell that owns the boundary.
	Cell() Cell

	// Adjacent returns the same physical link viewed from the
	// neighboring cell, or nil at the edge of the domain.
	Adjacent() Boundary

	// Flow returns the signed flow rate across the boundary, positive
	// when flowing out of the owning cell, and whether it is known.
	Flow() (float64, bool)

	// Length returns the segment length of the boundary and whether it
	// is known.
	Length() (float64, bool)

	// Concentration returns the concentration state held by the
	// boundary itself, as used for boundary conditions.
	Concentration(resource string) (float64, bool)
}

// Graph looks up cells by name.
type Graph interface {
	Cell(name string) (Cell, bool)
}

// Clock is a read-only snapshot of the solver clock for one iteration.
type Clock struct {
	Iteration int     // current iteration number
	Time      float64 // current simulation time
	Dt        float64 // duration of one iteration
}

var (
	// ErrDanglingBoundary is returned when the direction of flow across a
	// boundary cannot be determined because it has neither a flow state nor
	// an adjacent boundary.
	ErrDanglingBoundary = errors.New("streamtrack: dangling boundary")

	// ErrOvershoot is returned when a particle would cross more than one
	// segment in a single time step.
	ErrOvershoot = errors.New("streamtrack: particle crossed more than one segment in one time step")

	// ErrManifest is returned when the velocity manifest cannot be parsed.
	ErrManifest = errors.New("streamtrack: invalid velocity manifest")

	// ErrNoBoundary is returned when a cell has no boundary a particle can
	// be placed on.
	ErrNoBoundary = errors.New("streamtrack: no boundary to place particle on")
)
