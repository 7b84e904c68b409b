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

	"github.com/sirupsen/logrus"
)

// Simulation holds the state of a tracking run: the flow graph supplied by
// the solver, the solver clock, and the functions to run at each stage of
// the run.
type Simulation struct {
	// Graph is the stream network. It must outlive the simulation.
	Graph Graph

	// Dt is the duration of one iteration.
	Dt float64

	// InitFuncs are run once by Init.
	InitFuncs []DomainManipulator

	// RunFuncs are run once per iteration, in order, until Done is set.
	RunFuncs []DomainManipulator

	// CleanupFuncs are run once by Cleanup.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool

	// Log receives diagnostic messages. If nil, the standard logrus
	// logger is used.
	Log logrus.FieldLogger

	iteration int
	time      float64
}

// DomainManipulator is a class of functions that operate on the entire
// simulation.
type DomainManipulator func(s *Simulation) error

// Clock returns a snapshot of the solver clock for the current iteration.
func (s *Simulation) Clock() Clock {
	return Clock{Iteration: s.iteration, Time: s.time, Dt: s.Dt}
}

func (s *Simulation) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// Init initializes the simulation by running s.InitFuncs.
func (s *Simulation) Init() error {
	if s.Graph == nil {
		return fmt.Errorf("streamtrack: simulation has no flow graph")
	}
	if !(s.Dt > 0) {
		return fmt.Errorf("streamtrack: iteration duration must be > 0 but is %g", s.Dt)
	}
	for i, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("streamtrack: init function %d: %w", i, err)
		}
	}
	return nil
}

// Run carries out the simulation by running s.RunFuncs until s.Done is
// true or one of them returns an error.
func (s *Simulation) Run() error {
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running s.CleanupFuncs. All cleanup
// functions are run even if some fail; the first error is returned.
func (s *Simulation) Cleanup() error {
	var first error
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			s.logger().WithError(err).Error("cleanup failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}
