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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
)

func TestParseResources(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []string
		err  bool
	}{
		{name: "single", in: "solute", want: []string{"solute"}},
		{name: "comma", in: "solute, tracer,,heat ", want: []string{"solute", "tracer", "heat"}},
		{name: "list", in: []interface{}{"solute", " tracer"}, want: []string{"solute", "tracer"}},
		{name: "string list", in: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "empty", in: " , ", err: true},
		{name: "nil", in: nil, err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := parseResources(test.in)
			if test.err {
				if err == nil {
					t.Errorf("expected an error, have %v", have)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %q, want %q", have, test.want)
			}
		})
	}
}

func TestCheckLogFile(t *testing.T) {
	if have, want := checkLogFile("", "out"), filepath.Join("out", "streamtrack.log"); have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if have := checkLogFile("run.log", "out"); have != "run.log" {
		t.Errorf("have %s, want run.log", have)
	}
}

// testConfigFile writes a network, a manifest, and a configuration file
// that refers to them into dir and returns the configuration file path.
func testConfigFile(t *testing.T, dir string) string {
	t.Helper()
	write := func(name, contents string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	write("network.toml", chainNetwork)
	write("velocities.txt", "1.0\n-1.0\n0.5\n")
	return write("config.toml", `
Network = "${STREAMTRACK_TEST_DIR}/network.toml"
Resources = ["solute"]
ReleaseCell = "c2"
EndCell = "c4"
ReleaseIteration = 10
Manifest = "velocities.txt"
WorkDir = "${STREAMTRACK_TEST_DIR}"
OutputDir = "${STREAMTRACK_TEST_DIR}/particles"
LogLevel = "debug"
Dt = 0.5
NumIterations = 50
StopWhenEmpty = false
NumProcs = 2
`)
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STREAMTRACK_TEST_DIR", dir)
	cfg := viper.New()
	cfg.SetConfigFile(testConfigFile(t, dir))
	if err := cfg.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	c, err := runConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.Network != filepath.Join(dir, "network.toml") {
		t.Errorf("Network: have %s", c.Network)
	}
	if !reflect.DeepEqual(c.Tracker.Resources, []string{"solute"}) {
		t.Errorf("Resources: have %q", c.Tracker.Resources)
	}
	if c.Tracker.ReleaseCell != "c2" || c.Tracker.EndCell != "c4" || c.Tracker.ReleaseIteration != 10 {
		t.Errorf("release: have %+v", c.Tracker)
	}
	if c.Tracker.WorkDir != dir || c.Tracker.OutputDir != filepath.Join(dir, "particles") {
		t.Errorf("directories: have %s and %s", c.Tracker.WorkDir, c.Tracker.OutputDir)
	}
	if c.Tracker.NumProcs != 2 {
		t.Errorf("NumProcs: have %d", c.Tracker.NumProcs)
	}
	if c.Dt != 0.5 || c.NumIterations != 50 || c.StopWhenEmpty {
		t.Errorf("clock: have Dt=%g NumIterations=%d StopWhenEmpty=%v", c.Dt, c.NumIterations, c.StopWhenEmpty)
	}
	if c.LogLevel != logrus.DebugLevel {
		t.Errorf("LogLevel: have %v", c.LogLevel)
	}
	if c.LogFile != filepath.Join(dir, "particles", "streamtrack.log") {
		t.Errorf("LogFile: have %s", c.LogFile)
	}
}

func TestRunConfigErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STREAMTRACK_TEST_DIR", dir)
	configFile := testConfigFile(t, dir)
	tests := map[string]func(*viper.Viper){
		"missing network": func(v *viper.Viper) { v.Set("Network", filepath.Join(dir, "missing.toml")) },
		"no network":      func(v *viper.Viper) { v.Set("Network", "") },
		"no release cell": func(v *viper.Viper) { v.Set("ReleaseCell", "") },
		"no end cell":     func(v *viper.Viper) { v.Set("EndCell", "") },
		"no manifest":     func(v *viper.Viper) { v.Set("Manifest", "") },
		"zero dt":         func(v *viper.Viper) { v.Set("Dt", 0.0) },
		"no iterations":   func(v *viper.Viper) { v.Set("NumIterations", 0) },
		"late release":    func(v *viper.Viper) { v.Set("ReleaseIteration", 50) },
		"bad log level":   func(v *viper.Viper) { v.Set("LogLevel", "loud") },
		"no resources":    func(v *viper.Viper) { v.Set("Resources", "") },
	}
	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := viper.New()
			cfg.SetConfigFile(configFile)
			if err := cfg.ReadInConfig(); err != nil {
				t.Fatal(err)
			}
			modify(cfg)
			if _, err := runConfig(cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
