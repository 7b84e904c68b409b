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

	"github.com/spatialmodel/streamtrack"
)

// ChainConfig describes a linear stream network.
type ChainConfig struct {
	NumReaches int
	Length     float64 // length of every reach and link
	Flow       float64 // flow from each reach to the next

	// Concentrations holds one value per reach for each resource.
	// Resources with no entry get a concentration of zero.
	Concentrations map[string][]float64

	// Resources are the resources the links are created for.
	Resources []string
}

// ReachName returns the name NewChain gives to reach i.
func ReachName(i int) string { return fmt.Sprintf("c%d", i) }

// NewChain creates reaches c0 through cN-1, each connected to the next by a
// flow link. The head reach c0 receives its inflow through an injection
// boundary and the last reach discharges through an outlet flow link with
// no adjacent side.
func NewChain(cfg ChainConfig) (*Network, error) {
	if cfg.NumReaches < 1 {
		return nil, fmt.Errorf("network: chain needs at least one reach, not %d", cfg.NumReaches)
	}
	if len(cfg.Resources) == 0 {
		return nil, fmt.Errorf("network: chain needs at least one resource")
	}
	for r, c := range cfg.Concentrations {
		if len(c) != cfg.NumReaches {
			return nil, fmt.Errorf("network: %d concentrations given for %s but there are %d reaches",
				len(c), r, cfg.NumReaches)
		}
	}
	n := New()
	reaches := make([]*Reach, cfg.NumReaches)
	for i := range reaches {
		r, err := n.AddReach(ReachName(i), cfg.Length, true)
		if err != nil {
			return nil, err
		}
		for _, res := range cfg.Resources {
			r.SetConcentration(res, 0)
		}
		for res, c := range cfg.Concentrations {
			r.SetConcentration(res, c[i])
		}
		reaches[i] = r
	}
	for _, res := range cfg.Resources {
		if _, err := n.AddBoundary(reaches[0], res, streamtrack.InjectionBoundary, -cfg.Flow, true, cfg.Length, true); err != nil {
			return nil, err
		}
		for i := 0; i < len(reaches)-1; i++ {
			if _, err := n.Connect(reaches[i], reaches[i+1], res, cfg.Flow, cfg.Length, true); err != nil {
				return nil, err
			}
		}
		if _, err := n.AddBoundary(reaches[len(reaches)-1], res, streamtrack.FlowLink, cfg.Flow, true, cfg.Length, true); err != nil {
			return nil, err
		}
	}
	return n, nil
}
