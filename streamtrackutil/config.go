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
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/streamtrack"
	"github.com/spf13/cast"
)

// RunConfig holds the settings of a tracking run.
type RunConfig struct {
	// Network is the path to the network description file.
	Network string

	Tracker streamtrack.TrackerConfig

	Dt            float64
	NumIterations int
	StopWhenEmpty bool

	LogFile  string
	LogLevel logrus.Level
}

// runConfig unmarshals a viper configuration for a tracking run.
func runConfig(cfg *viper.Viper) (*RunConfig, error) {
	resources, err := parseResources(cfg.Get("Resources"))
	if err != nil {
		return nil, fmt.Errorf("streamtrack: parsing Resources: %v", err)
	}
	network, err := checkInputFile("Network", cfg.GetString("Network"))
	if err != nil {
		return nil, err
	}
	level, err := logrus.ParseLevel(os.ExpandEnv(cfg.GetString("LogLevel")))
	if err != nil {
		return nil, fmt.Errorf("streamtrack: parsing LogLevel: %v", err)
	}
	workDir := os.ExpandEnv(cfg.GetString("WorkDir"))
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("streamtrack: finding working directory: %v", err)
		}
	}
	outputDir := os.ExpandEnv(cfg.GetString("OutputDir"))
	c := &RunConfig{
		Network: network,
		Tracker: streamtrack.TrackerConfig{
			Resources:        resources,
			ReleaseCell:      os.ExpandEnv(cfg.GetString("ReleaseCell")),
			EndCell:          os.ExpandEnv(cfg.GetString("EndCell")),
			ReleaseIteration: cfg.GetInt("ReleaseIteration"),
			Manifest:         os.ExpandEnv(cfg.GetString("Manifest")),
			WorkDir:          workDir,
			OutputDir:        outputDir,
			NumProcs:         cfg.GetInt("NumProcs"),
		},
		Dt:            cfg.GetFloat64("Dt"),
		NumIterations: cfg.GetInt("NumIterations"),
		StopWhenEmpty: cfg.GetBool("StopWhenEmpty"),
		LogFile:       checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), outputDir),
		LogLevel:      level,
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *RunConfig) check() error {
	if c.Tracker.ReleaseCell == "" {
		return fmt.Errorf("streamtrack: you need to specify the ReleaseCell configuration variable")
	}
	if c.Tracker.EndCell == "" {
		return fmt.Errorf("streamtrack: you need to specify the EndCell configuration variable")
	}
	if c.Tracker.Manifest == "" {
		return fmt.Errorf("streamtrack: you need to specify the Manifest configuration variable")
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("streamtrack: Dt=%g but should be >0", c.Dt)
	}
	if c.NumIterations < 1 {
		return fmt.Errorf("streamtrack: NumIterations=%d but should be >0", c.NumIterations)
	}
	if c.Tracker.ReleaseIteration >= c.NumIterations {
		return fmt.Errorf("streamtrack: ReleaseIteration=%d is not before NumIterations=%d, so no particles would be released",
			c.Tracker.ReleaseIteration, c.NumIterations)
	}
	return nil
}

// parseResources returns the resource names in i, which is either a
// comma-separated string, as given on the command line, or a list, as
// given in a configuration file.
func parseResources(i interface{}) ([]string, error) {
	var names []string
	switch v := i.(type) {
	case string:
		names = strings.Split(v, ",")
	default:
		var err error
		if names, err = cast.ToStringSliceE(v); err != nil {
			return nil, err
		}
	}
	o := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(os.ExpandEnv(n))
		if n == "" {
			continue
		}
		o = append(o, n)
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("no resources specified")
	}
	return o, nil
}

// checkInputFile makes sure that the file given by configuration variable
// name is specified and exists, and expands any environment variables.
func checkInputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("streamtrack: you need to specify the %s configuration variable", name)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("streamtrack: the %s file doesn't exist: %v", name, err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputDir string) string {
	if logFile == "" {
		logFile = filepath.Join(outputDir, "streamtrack.log")
	}
	return logFile
}
