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
	"runtime"
	"sync"
	"time"
)

// AdvanceClock returns a function that moves the simulation clock forward
// by one iteration. It should be the last of the RunFuncs.
func AdvanceClock() DomainManipulator {
	return func(s *Simulation) error {
		s.iteration++
		s.time += s.Dt
		return nil
	}
}

// StopAfter returns a function that sets the Done flag once numIterations
// iterations have been completed.
func StopAfter(numIterations int) DomainManipulator {
	iteration := 0
	return func(s *Simulation) error {
		iteration++
		if iteration >= numIterations {
			s.Done = true
		}
		return nil
	}
}

// SimulationStatus holds information about the progress of a simulation.
type SimulationStatus struct {
	Iteration    int
	Time         float64
	Walltime     time.Duration
	StepWalltime time.Duration
	Live         int // number of particles in the network
}

func (s *SimulationStatus) String() string {
	return fmt.Sprintf("Iteration %-4d  walltime=%6.3gh  Δwalltime=%4.2gs  "+
		"time=%.4g  particles=%d",
		s.Iteration, s.Walltime.Hours(), s.StepWalltime.Seconds(), s.Time, s.Live)
}

// Log sends simulation status messages to c. If t is not nil, the
// number of live particles it holds is included in each message.
func Log(c chan *SimulationStatus, t *ParticleTracker) DomainManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()

	return func(s *Simulation) error {
		st := &SimulationStatus{
			Iteration:    s.iteration,
			Time:         s.time,
			Walltime:     time.Since(startTime),
			StepWalltime: time.Since(timeStepTime),
		}
		if t != nil {
			st.Live = t.Live()
		}
		c <- st
		timeStepTime = time.Now()
		return nil
	}
}

// calculations concurrently runs f on every particle in ps using nprocs
// workers and returns the first error encountered. All workers finish
// before it returns, so each call is a barrier.
func calculations(nprocs int, ps []*Particle, f func(p *Particle) error) error {
	if nprocs < 1 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	if nprocs > len(ps) {
		nprocs = len(ps)
	}
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < len(ps); ii += nprocs {
				if err := f(ps[ii]); err != nil {
					mu.Lock()
					if first == nil {
						first = err
					}
					mu.Unlock()
					return
				}
			}
		}(pp)
	}
	wg.Wait()
	return first
}
