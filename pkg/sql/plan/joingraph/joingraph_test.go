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

package joingraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sql/plan"
)

func mock(names ...string) *plan.MockNode {
	typs := make([]types.Type, len(names))
	for i := range typs {
		typs[i] = types.New(types.T_int32)
	}
	return plan.NewMock(names, typs)
}

func TestBuildLinearJoinChain(t *testing.T) {
	t1 := mock("a")
	t2 := mock("b")
	t3 := mock("c")

	j1 := plan.NewJoin(plan.JoinInner,
		plan.ColumnOrigin{Node: t1, Column: 0},
		plan.ColumnOrigin{Node: t2, Column: 0},
		extend.OpEquals)
	j1.SetLeft(t1)
	j1.SetRight(t2)

	j2 := plan.NewJoin(plan.JoinInner,
		plan.ColumnOrigin{Node: t2, Column: 0},
		plan.ColumnOrigin{Node: t3, Column: 0},
		extend.OpLessThan)
	j2.SetLeft(j1)
	j2.SetRight(t3)

	g := Build(j2)
	require.Len(t, g.Vertices, 3)
	require.Len(t, g.Edges, 2)

	require.Equal(t, 0, g.Edges[0].LeftVertex)
	require.Equal(t, 1, g.Edges[0].RightVertex)
	require.Equal(t, extend.OpEquals, g.Edges[0].ScanType)

	require.Equal(t, 1, g.Edges[1].LeftVertex)
	require.Equal(t, 2, g.Edges[1].RightVertex)
	require.Equal(t, extend.OpLessThan, g.Edges[1].ScanType)
}

func TestCrossJoinContributesNoEdge(t *testing.T) {
	cross := plan.NewCrossJoin()
	cross.SetLeft(mock("a"))
	cross.SetRight(mock("b"))

	g := Build(cross)
	require.Len(t, g.Vertices, 2)
	require.Empty(t, g.Edges)
}
