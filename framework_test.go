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
	"sync/atomic"
	"testing"
)

func TestSimulationInit(t *testing.T) {
	g := testGraph{newTestCell("a", 1, 0)}
	if err := (&Simulation{Dt: 1}).Init(); err == nil {
		t.Error("expected an error for a missing graph")
	}
	if err := (&Simulation{Graph: g}).Init(); err == nil {
		t.Error("expected an error for a zero time step")
	}
	called := false
	s := &Simulation{
		Graph: g,
		Dt:    1,
		InitFuncs: []DomainManipulator{func(*Simulation) error {
			called = true
			return nil
		}},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("init function was not run")
	}
}

func TestSimulationRun(t *testing.T) {
	var clocks []Clock
	s := &Simulation{
		Graph: testGraph{},
		Dt:    0.5,
		RunFuncs: []DomainManipulator{
			func(s *Simulation) error {
				clocks = append(clocks, s.Clock())
				return nil
			},
			StopAfter(3),
			AdvanceClock(),
		},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	want := []Clock{
		{Iteration: 0, Time: 0, Dt: 0.5},
		{Iteration: 1, Time: 0.5, Dt: 0.5},
		{Iteration: 2, Time: 1, Dt: 0.5},
	}
	if len(clocks) != len(want) {
		t.Fatalf("have %d iterations, want %d", len(clocks), len(want))
	}
	for i := range want {
		if clocks[i] != want[i] {
			t.Errorf("iteration %d: have %+v, want %+v", i, clocks[i], want[i])
		}
	}
}

func TestSimulationRunError(t *testing.T) {
	n := 0
	s := &Simulation{
		Graph: testGraph{},
		Dt:    1,
		RunFuncs: []DomainManipulator{func(*Simulation) error {
			n++
			if n == 2 {
				return fmt.Errorf("broken")
			}
			return nil
		}},
	}
	if err := s.Run(); err == nil {
		t.Error("expected an error")
	}
	if n != 2 {
		t.Errorf("run functions called %d times after the error, want 2", n)
	}
}

func TestSimulationCleanup(t *testing.T) {
	var ran []int
	s := &Simulation{
		CleanupFuncs: []DomainManipulator{
			func(*Simulation) error { ran = append(ran, 0); return fmt.Errorf("first") },
			func(*Simulation) error { ran = append(ran, 1); return fmt.Errorf("second") },
			func(*Simulation) error { ran = append(ran, 2); return nil },
		},
	}
	err := s.Cleanup()
	if err == nil || err.Error() != "first" {
		t.Errorf("have error %v, want first", err)
	}
	if len(ran) != 3 {
		t.Errorf("ran %v cleanup functions, want all 3", ran)
	}
}

func TestCalculations(t *testing.T) {
	for _, nprocs := range []int{0, 1, 3, 100} {
		t.Run(fmt.Sprintf("nprocs=%d", nprocs), func(t *testing.T) {
			ps := make([]*Particle, 17)
			for i := range ps {
				ps[i] = newParticle(i, 1, []string{testResource})
			}
			var count int64
			err := calculations(nprocs, ps, func(p *Particle) error {
				atomic.AddInt64(&count, 1)
				p.currentDistance = float64(p.index)
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if count != int64(len(ps)) {
				t.Errorf("visited %d particles, want %d", count, len(ps))
			}
			for i, p := range ps {
				if p.currentDistance != float64(i) {
					t.Errorf("particle %d was not processed", i)
				}
			}
		})
	}
	ps := []*Particle{newParticle(0, 1, nil), newParticle(1, 1, nil)}
	err := calculations(2, ps, func(p *Particle) error {
		if p.index == 1 {
			return fmt.Errorf("particle 1 failed")
		}
		return nil
	})
	if err == nil {
		t.Error("expected an error")
	}
	if err := calculations(4, nil, func(*Particle) error { return nil }); err != nil {
		t.Error(err)
	}
}

func TestStatusString(t *testing.T) {
	s := &SimulationStatus{Iteration: 12, Time: 6, Live: 3}
	if have := s.String(); have == "" {
		t.Error("empty status")
	}
}
