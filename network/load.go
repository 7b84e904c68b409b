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

package network

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/streamtrack"
	"gopkg.in/yaml.v3"
)

// Description is the file representation of a network.
type Description struct {
	Reaches    []ReachDescription    `toml:"Reach" yaml:"reaches"`
	Links      []LinkDescription     `toml:"Link" yaml:"links"`
	Boundaries []BoundaryDescription `toml:"Boundary" yaml:"boundaries"`
}

// ReachDescription describes a reach.
type ReachDescription struct {
	Name          string             `toml:"Name" yaml:"name"`
	Length        *float64           `toml:"Length" yaml:"length"`
	Concentration map[string]float64 `toml:"Concentration" yaml:"concentration"`
}

// LinkDescription describes a flow link from one reach to another. If To
// is empty the link is an outlet with no adjacent side.
type LinkDescription struct {
	From     string   `toml:"From" yaml:"from"`
	To       string   `toml:"To" yaml:"to"`
	Resource string   `toml:"Resource" yaml:"resource"`
	Flow     float64  `toml:"Flow" yaml:"flow"`
	Length   *float64 `toml:"Length" yaml:"length"`
}

// BoundaryDescription describes an injection or concentration boundary.
type BoundaryDescription struct {
	Reach         string             `toml:"Reach" yaml:"reach"`
	Resource      string             `toml:"Resource" yaml:"resource"`
	Category      string             `toml:"Category" yaml:"category"`
	Flow          *float64           `toml:"Flow" yaml:"flow"`
	Length        *float64           `toml:"Length" yaml:"length"`
	Concentration map[string]float64 `toml:"Concentration" yaml:"concentration"`
}

// Format is the encoding of a network description.
type Format int

// Supported formats.
const (
	TOML Format = iota
	YAML
)

// FormatFromPath picks a format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return 0, fmt.Errorf("network: unsupported network file extension %q; use .toml, .yaml, or .yml", filepath.Ext(path))
	}
}

// LoadFile reads the network description at path.
func LoadFile(path string) (*Network, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}
	defer f.Close()
	n, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Load decodes a network description from r.
func Load(r io.Reader, format Format) (*Network, error) {
	var d Description
	switch format {
	case TOML:
		if _, err := toml.DecodeReader(r, &d); err != nil {
			return nil, fmt.Errorf("network: decoding TOML: %w", err)
		}
	case YAML:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("network: reading YAML: %w", err)
		}
		if err := yaml.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("network: decoding YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("network: unknown format %d", format)
	}
	return d.Build()
}

// ParseCategory returns the category with the given name.
func ParseCategory(s string) (streamtrack.Category, error) {
	for _, c := range []streamtrack.Category{streamtrack.FlowLink,
		streamtrack.InjectionBoundary, streamtrack.ConcentrationBoundary} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("network: unknown boundary category %q", s)
}

// Build creates the network described by d.
func (d *Description) Build() (*Network, error) {
	n := New()
	for _, rd := range d.Reaches {
		var l float64
		if rd.Length != nil {
			l = *rd.Length
		}
		r, err := n.AddReach(rd.Name, l, rd.Length != nil)
		if err != nil {
			return nil, err
		}
		for res, v := range rd.Concentration {
			r.SetConcentration(res, v)
		}
	}
	reach := func(name, what string) (*Reach, error) {
		r := n.Reach(name)
		if r == nil {
			return nil, fmt.Errorf("network: %s refers to unknown reach %q", what, name)
		}
		return r, nil
	}
	for i, ld := range d.Links {
		if ld.Resource == "" {
			return nil, fmt.Errorf("network: link %d has no resource", i)
		}
		from, err := reach(ld.From, fmt.Sprintf("link %d", i))
		if err != nil {
			return nil, err
		}
		var l float64
		if ld.Length != nil {
			l = *ld.Length
		}
		if ld.To == "" {
			if _, err := n.AddBoundary(from, ld.Resource, streamtrack.FlowLink, ld.Flow, true, l, ld.Length != nil); err != nil {
				return nil, err
			}
			continue
		}
		to, err := reach(ld.To, fmt.Sprintf("link %d", i))
		if err != nil {
			return nil, err
		}
		if _, err := n.Connect(from, to, ld.Resource, ld.Flow, l, ld.Length != nil); err != nil {
			return nil, err
		}
	}
	for i, bd := range d.Boundaries {
		r, err := reach(bd.Reach, fmt.Sprintf("boundary %d", i))
		if err != nil {
			return nil, err
		}
		c, err := ParseCategory(bd.Category)
		if err != nil {
			return nil, fmt.Errorf("boundary %d: %w", i, err)
		}
		var q, l float64
		if bd.Flow != nil {
			q = *bd.Flow
		}
		if bd.Length != nil {
			l = *bd.Length
		}
		b, err := n.AddBoundary(r, bd.Resource, c, q, bd.Flow != nil, l, bd.Length != nil)
		if err != nil {
			return nil, err
		}
		for res, v := range bd.Concentration {
			b.SetConcentration(res, v)
		}
	}
	return n, nil
}
