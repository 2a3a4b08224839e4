// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package joingraph extracts the join structure of a plan region:
// vertices are the sub-plans below the region of Join nodes, edges the
// join predicates connecting them. Predicate nodes are not traversed:
// a Predicate node inside the region is a vertex. Rewrites read the
// graph; the search over join orders is out of scope.
package joingraph

import (
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sql/plan"
)

// Edge is one join predicate between two vertices.
type Edge struct {
	LeftVertex  int
	RightVertex int
	LeftOrigin  plan.ColumnOrigin
	RightOrigin plan.ColumnOrigin
	ScanType    extend.ScanType
}

type JoinGraph struct {
	Vertices []plan.Node
	Edges    []Edge
}

// Build walks the region of Join nodes rooted at node. Every non-join
// sub-plan becomes a vertex; every predicated join contributes an edge
// between the vertices its column origins belong to.
func Build(node plan.Node) *JoinGraph {
	g := &JoinGraph{}
	g.collect(node)
	return g
}

func (g *JoinGraph) collect(node plan.Node) {
	if node == nil {
		return
	}
	if j, ok := node.(*plan.JoinNode); ok {
		g.collect(j.Left())
		g.collect(j.Right())
		if l, r, st, ok := j.Predicate(); ok {
			g.Edges = append(g.Edges, Edge{
				LeftVertex:  g.vertexOf(l),
				RightVertex: g.vertexOf(r),
				LeftOrigin:  l,
				RightOrigin: r,
				ScanType:    st,
			})
		}
		return
	}
	g.Vertices = append(g.Vertices, node)
}

// vertexOf finds the vertex producing the given column origin.
func (g *JoinGraph) vertexOf(origin plan.ColumnOrigin) int {
	for i, v := range g.Vertices {
		if _, ok := v.FindOutputColumnIDByColumnOrigin(origin); ok {
			return i
		}
	}
	return -1
}
