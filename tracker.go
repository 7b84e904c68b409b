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
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// TrackerConfig holds the configuration of a ParticleTracker.
type TrackerConfig struct {
	// Resources are the names of the resources to record, in output
	// order. The first one steers the particles.
	Resources []string

	// ReleaseCell and EndCell are the names of the cells particles are
	// released in and retired at.
	ReleaseCell, EndCell string

	// ReleaseIteration is the iteration at which particles are released.
	ReleaseIteration int

	// Manifest is the path to the velocity manifest. Relative paths are
	// resolved against WorkDir.
	Manifest string
	WorkDir  string

	// OutputDir is the directory particle output files are written to.
	OutputDir string

	// NumProcs is the number of workers used for each phase. If < 1,
	// GOMAXPROCS is used.
	NumProcs int
}

// CellLister is implemented by graphs that can enumerate their cells.
type CellLister interface {
	Cells() []Cell
}

// ParticleTracker owns the live particles of a run. It releases them,
// records their concentrations, advances them, and retires them once they
// leave the network.
type ParticleTracker struct {
	cfg          TrackerConfig
	graph        Graph
	release, end Cell

	live     []*Particle
	released int
	retired  int

	log logrus.FieldLogger
}

// NewParticleTracker checks cfg against g and returns a tracker with no
// particles. If log is nil, the standard logrus logger is used.
func NewParticleTracker(g Graph, cfg TrackerConfig, log logrus.FieldLogger) (*ParticleTracker, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if len(cfg.Resources) == 0 {
		return nil, fmt.Errorf("streamtrack: no resources specified")
	}
	seen := make(map[string]bool)
	for _, r := range cfg.Resources {
		if r == "" {
			return nil, fmt.Errorf("streamtrack: empty resource name in %q", cfg.Resources)
		}
		if seen[r] {
			return nil, fmt.Errorf("streamtrack: duplicate resource name %s", r)
		}
		seen[r] = true
	}
	if cfg.ReleaseIteration < 0 {
		return nil, fmt.Errorf("streamtrack: release iteration must be >= 0 but is %d", cfg.ReleaseIteration)
	}
	if cfg.Manifest == "" {
		return nil, fmt.Errorf("streamtrack: no velocity manifest specified")
	}
	release, ok := g.Cell(cfg.ReleaseCell)
	if !ok {
		return nil, fmt.Errorf("streamtrack: release cell %q is not in the network", cfg.ReleaseCell)
	}
	end, ok := g.Cell(cfg.EndCell)
	if !ok {
		return nil, fmt.Errorf("streamtrack: end cell %q is not in the network", cfg.EndCell)
	}
	cfg.Resources = append([]string(nil), cfg.Resources...)
	return &ParticleTracker{
		cfg:     cfg,
		graph:   g,
		release: release,
		end:     end,
		log: log.WithFields(logrus.Fields{
			"release": cfg.ReleaseCell,
			"end":     cfg.EndCell,
		}),
	}, nil
}

// Resources returns the resource names recorded by the tracker.
func (t *ParticleTracker) Resources() []string {
	return append([]string(nil), t.cfg.Resources...)
}

// Particles returns the live particles.
func (t *ParticleTracker) Particles() []*Particle {
	return append([]*Particle(nil), t.live...)
}

// Live returns the number of live particles.
func (t *ParticleTracker) Live() int { return len(t.live) }

// Released returns the number of particles released so far.
func (t *ParticleTracker) Released() int { return t.released }

// Retired returns the number of particles retired so far.
func (t *ParticleTracker) Retired() int { return t.retired }

// Step returns a function that runs the tracker once per solver iteration.
func (t *ParticleTracker) Step() DomainManipulator {
	return func(s *Simulation) error {
		return t.Advance(s.Clock())
	}
}

// StopWhenEmpty returns a function that sets the simulation's Done flag
// once particles have been released and every one of them has been
// retired.
func (t *ParticleTracker) StopWhenEmpty() DomainManipulator {
	return func(s *Simulation) error {
		if t.released > 0 && len(t.live) == 0 {
			s.Done = true
		}
		return nil
	}
}

// CloseAll returns a function that closes the output of every remaining
// particle. It belongs in the simulation's CleanupFuncs.
func (t *ParticleTracker) CloseAll() DomainManipulator {
	return func(*Simulation) error {
		return t.Close()
	}
}

// Advance runs one iteration of the tracker. Particles that finished
// during the previous iteration are retired, particles are released if
// this is the release iteration, and then every live particle is
// buffered, written, and moved. Each of the last three phases completes
// for all particles before the next begins, so every record reflects a
// particle's position at the start of the iteration.
func (t *ParticleTracker) Advance(clk Clock) error {
	if err := t.retire(clk); err != nil {
		return err
	}
	if clk.Iteration == t.cfg.ReleaseIteration {
		if err := t.releaseParticles(clk); err != nil {
			return err
		}
	}
	if len(t.live) == 0 {
		return nil
	}
	if err := calculations(t.cfg.NumProcs, t.live, func(p *Particle) error {
		return p.buffer(clk)
	}); err != nil {
		return fmt.Errorf("streamtrack: iteration %d: buffering: %w", clk.Iteration, err)
	}
	if err := calculations(t.cfg.NumProcs, t.live, (*Particle).write); err != nil {
		return fmt.Errorf("streamtrack: iteration %d: writing: %w", clk.Iteration, err)
	}
	if err := calculations(t.cfg.NumProcs, t.live, func(p *Particle) error {
		return p.move(clk)
	}); err != nil {
		return fmt.Errorf("streamtrack: iteration %d: moving: %w", clk.Iteration, err)
	}
	return nil
}

// retire closes and removes the particles that finished during the
// previous iteration.
func (t *ParticleTracker) retire(clk Clock) error {
	keep := t.live[:0]
	var first error
	for _, p := range t.live {
		if !p.finished {
			keep = append(keep, p)
			continue
		}
		if err := p.close(); err != nil && first == nil {
			first = err
		}
		t.retired++
		t.log.WithFields(logrus.Fields{
			"particle":  p.index,
			"cell":      p.cell.Name(),
			"exited":    p.exited,
			"iteration": clk.Iteration,
		}).Debug("retired particle")
	}
	for i := len(keep); i < len(t.live); i++ {
		t.live[i] = nil
	}
	t.live = keep
	return first
}

// releaseParticles reads the velocity manifest and adds one particle per
// velocity. If anything fails, no particles from the manifest are kept.
func (t *ParticleTracker) releaseParticles(clk Clock) error {
	path := t.cfg.Manifest
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.cfg.WorkDir, path)
	}
	velocities, err := ReadVelocityManifestFile(path)
	if err != nil {
		return err
	}
	if err := t.checkOvershoot(velocities, clk.Dt); err != nil {
		return err
	}
	if t.cfg.OutputDir != "" {
		if err := os.MkdirAll(t.cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("streamtrack: creating output directory: %w", err)
		}
	}

	ps := make([]*Particle, 0, len(velocities))
	abort := func(err error) error {
		for _, p := range ps {
			p.close()
		}
		return err
	}
	for i, v := range velocities {
		p := newParticle(i, v, t.cfg.Resources)
		if err := p.initializeLocation(t.release, t.end); err != nil {
			return abort(fmt.Errorf("streamtrack: placing particle %d: %w", i, err))
		}
		out, err := createRecordWriter(t.cfg.OutputDir, i, t.cfg.Resources)
		if err != nil {
			return abort(err)
		}
		p.out = out
		ps = append(ps, p)
	}
	t.live = append(t.live, ps...)
	t.released += len(ps)
	t.log.WithFields(logrus.Fields{
		"particles": len(ps),
		"iteration": clk.Iteration,
		"manifest":  path,
	}).Info("released particles")
	return nil
}

// checkOvershoot rejects releases in which the fastest particle would
// cross more than one segment in a single iteration. It can only check
// graphs that implement CellLister.
func (t *ParticleTracker) checkOvershoot(velocities []float64, dt float64) error {
	cl, ok := t.graph.(CellLister)
	if !ok || len(velocities) == 0 {
		return nil
	}
	speeds := make([]float64, len(velocities))
	for i, v := range velocities {
		speeds[i] = math.Abs(v)
	}
	step := floats.Max(speeds) * dt

	shortest := math.Inf(1)
	for _, c := range cl.Cells() {
		for _, b := range c.Boundaries(t.cfg.Resources[0], FlowLink) {
			l, err := halfLength(b)
			if err != nil {
				return err
			}
			shortest = math.Min(shortest, l)
		}
	}
	if step > shortest {
		return fmt.Errorf("%w: a step of %g exceeds the shortest half segment of %g; "+
			"reduce the velocity or the iteration duration", ErrOvershoot, step, shortest)
	}
	return nil
}

// Close closes the output of every live particle, whether or not it has
// finished, and empties the tracker.
func (t *ParticleTracker) Close() error {
	var first error
	for _, p := range t.live {
		if err := p.close(); err != nil && first == nil {
			first = err
		}
	}
	if n := len(t.live); n > 0 {
		t.log.WithField("particles", n).Info("closed remaining particles")
	}
	t.live = nil
	return first
}
