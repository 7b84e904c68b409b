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

package streamtrackutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/streamtrack"
	"github.com/spatialmodel/streamtrack/network"
	"github.com/spf13/cobra"
)

// Run runs a tracking simulation as configured by cfg. Log messages are
// written to cfg.LogFile and to the output of CobraCommand.
//
// The output of every particle still in the network is closed before Run
// returns, whether or not the simulation succeeded.
func Run(CobraCommand *cobra.Command, cfg *RunConfig) (err error) {
	startTime := time.Now()

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return fmt.Errorf("streamtrack: problem creating log directory: %v", err)
	}
	logfile, err := os.Create(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("streamtrack: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := newLogger(io.MultiWriter(CobraCommand.OutOrStdout(), logfile), cfg.LogLevel)

	net, err := network.LoadFile(cfg.Network)
	if err != nil {
		return err
	}
	log.WithField("file", cfg.Network).Info("loaded stream network")

	tracker, err := streamtrack.NewParticleTracker(net, cfg.Tracker, log)
	if err != nil {
		return err
	}

	// Start a function to receive and print status messages.
	cLog := make(chan *streamtrack.SimulationStatus)
	cLogTick := time.NewTicker(2 * time.Second)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range cLog {
			select {
			case <-cLogTick.C:
				log.Info(msg.String())
			default:
				log.Debug(msg.String())
			}
		}
	}()
	defer func() { // Wait for the logging to finish.
		close(cLog)
		wg.Wait()
		cLogTick.Stop()
	}()

	runFuncs := []streamtrack.DomainManipulator{
		tracker.Step(),
		streamtrack.Log(cLog, tracker),
		streamtrack.StopAfter(cfg.NumIterations),
	}
	if cfg.StopWhenEmpty {
		runFuncs = append(runFuncs, tracker.StopWhenEmpty())
	}
	runFuncs = append(runFuncs, streamtrack.AdvanceClock())

	s := &streamtrack.Simulation{
		Graph:        net,
		Dt:           cfg.Dt,
		RunFuncs:     runFuncs,
		CleanupFuncs: []streamtrack.DomainManipulator{tracker.CloseAll()},
		Log:          log,
	}
	defer func() {
		if cerr := s.Cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err = s.Init(); err != nil {
		return err
	}
	if err = s.Run(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"released": tracker.Released(),
		"retired":  tracker.Retired(),
		"live":     tracker.Live(),
		"walltime": time.Since(startTime).String(),
	}).Info("simulation complete")
	return nil
}

// Validate checks that the network and manifest given by cfg can be loaded
// and that the tracker configuration is consistent with the network.
func Validate(CobraCommand *cobra.Command, cfg *RunConfig) error {
	log := newLogger(CobraCommand.OutOrStdout(), cfg.LogLevel)
	net, err := network.LoadFile(cfg.Network)
	if err != nil {
		return err
	}
	if _, err = streamtrack.NewParticleTracker(net, cfg.Tracker, log); err != nil {
		return err
	}
	manifest := cfg.Tracker.Manifest
	if !filepath.IsAbs(manifest) {
		manifest = filepath.Join(cfg.Tracker.WorkDir, manifest)
	}
	v, err := streamtrack.ReadVelocityManifestFile(manifest)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"network":   cfg.Network,
		"reaches":   len(net.Cells()),
		"particles": len(v),
	}).Info("configuration is valid")
	return nil
}

func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}
