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
	"testing"

	"github.com/spatialmodel/streamtrack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	n := New()
	a, err := n.AddReach("a", 10, true)
	require.NoError(t, err)
	b, err := n.AddReach("b", 0, false)
	require.NoError(t, err)

	ab, err := n.Connect(a, b, "solute", 2.5, 4, true)
	require.NoError(t, err)

	q, ok := ab.Flow()
	assert.True(t, ok)
	assert.Equal(t, 2.5, q)
	ba := ab.Adjacent()
	require.NotNil(t, ba)
	q, ok = ba.Flow()
	assert.True(t, ok)
	assert.Equal(t, -2.5, q)
	assert.Equal(t, streamtrack.Cell(b), ba.Cell())
	assert.Equal(t, streamtrack.Boundary(ab), ba.Adjacent())

	l, ok := ab.Length()
	assert.True(t, ok)
	assert.Equal(t, 4.0, l)
	_, ok = b.Length()
	assert.False(t, ok)

	assert.Len(t, a.Boundaries("solute", streamtrack.FlowLink), 1)
	assert.Len(t, b.Boundaries("solute", streamtrack.FlowLink), 1)
	assert.Empty(t, a.Boundaries("tracer", streamtrack.FlowLink))
	assert.Empty(t, a.Boundaries("solute", streamtrack.InjectionBoundary))

	_, err = n.Connect(a, a, "solute", 1, 1, true)
	assert.Error(t, err)
	_, err = n.AddReach("a", 1, true)
	assert.Error(t, err)
	_, err = n.AddReach("", 1, true)
	assert.Error(t, err)
}

func TestSetFlow(t *testing.T) {
	n := New()
	a, _ := n.AddReach("a", 1, true)
	b, _ := n.AddReach("b", 1, true)
	ab, err := n.Connect(a, b, "solute", 1, 1, true)
	require.NoError(t, err)

	ab.SetFlow(-3)
	q, _ := ab.Adjacent().Flow()
	assert.Equal(t, 3.0, q)

	ab.ClearFlow()
	_, ok := ab.Flow()
	assert.False(t, ok)
	_, ok = ab.Adjacent().Flow()
	assert.True(t, ok)
}

func TestAddBoundary(t *testing.T) {
	n := New()
	r, _ := n.AddReach("r", 1, true)
	out, err := n.AddBoundary(r, "solute", streamtrack.ConcentrationBoundary, 0, false, 0, false)
	require.NoError(t, err)
	assert.Nil(t, out.Adjacent())
	_, ok := out.Flow()
	assert.False(t, ok)
	_, ok = out.Concentration("solute")
	assert.False(t, ok)
	out.SetConcentration("solute", 7)
	c, ok := out.Concentration("solute")
	assert.True(t, ok)
	assert.Equal(t, 7.0, c)

	_, err = n.AddBoundary(nil, "solute", streamtrack.FlowLink, 0, true, 0, true)
	assert.Error(t, err)
}

func TestNetworkCell(t *testing.T) {
	n := New()
	_, _ = n.AddReach("x", 1, true)
	_, _ = n.AddReach("y", 1, true)
	c, ok := n.Cell("x")
	require.True(t, ok)
	assert.Equal(t, "x", c.Name())
	c, ok = n.Cell("z")
	assert.False(t, ok)
	assert.Nil(t, c)

	var names []string
	for _, c := range n.Cells() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"x", "y"}, names)
	assert.Nil(t, n.Reach("z"))
}

func TestNewChain(t *testing.T) {
	n, err := NewChain(ChainConfig{
		NumReaches:     3,
		Length:         2,
		Flow:           1,
		Resources:      []string{"solute", "tracer"},
		Concentrations: map[string][]float64{"solute": {5, 6, 7}},
	})
	require.NoError(t, err)
	require.Len(t, n.Cells(), 3)

	head := n.Reach(ReachName(0))
	require.NotNil(t, head)
	assert.Len(t, head.Boundaries("solute", streamtrack.InjectionBoundary), 1)
	assert.Len(t, head.Boundaries("solute", streamtrack.FlowLink), 1)

	mid := n.Reach(ReachName(1))
	links := mid.Boundaries("solute", streamtrack.FlowLink)
	require.Len(t, links, 2)
	q, _ := links[0].Flow()
	assert.Equal(t, -1.0, q, "first link of a middle reach points upstream")
	q, _ = links[1].Flow()
	assert.Equal(t, 1.0, q, "second link of a middle reach points downstream")

	last := n.Reach(ReachName(2))
	links = last.Boundaries("tracer", streamtrack.FlowLink)
	require.Len(t, links, 2)
	assert.Nil(t, links[1].Adjacent(), "outlet has no adjacent side")

	c, ok := mid.Concentration("solute")
	assert.True(t, ok)
	assert.Equal(t, 6.0, c)
	c, ok = mid.Concentration("tracer")
	assert.True(t, ok)
	assert.Equal(t, 0.0, c)

	_, err = NewChain(ChainConfig{NumReaches: 0, Resources: []string{"solute"}})
	assert.Error(t, err)
	_, err = NewChain(ChainConfig{NumReaches: 2})
	assert.Error(t, err)
	_, err = NewChain(ChainConfig{
		NumReaches:     2,
		Resources:      []string{"solute"},
		Concentrations: map[string][]float64{"solute": {1}},
	})
	assert.Error(t, err)
}
