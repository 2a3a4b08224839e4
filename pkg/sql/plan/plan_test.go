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

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
)

func mockAB() *MockNode {
	return NewMock([]string{"a", "b"}, []types.Type{types.New(types.T_int32), types.New(types.T_int32)})
}

func TestChildParentWiring(t *testing.T) {
	leaf := mockAB()
	pred := NewPredicate(ColumnOrigin{Node: leaf, Column: 0}, extend.OpEquals,
		ValueParam(types.NewInt32(1)), nil)

	pred.SetLeft(leaf)
	require.True(t, leaf.Parent() == Node(pred))
	require.True(t, pred.Left() == Node(leaf))

	other := mockAB()
	pred.SetLeft(other)
	require.Nil(t, leaf.Parent())
	require.True(t, other.Parent() == Node(pred))
}

func TestOriginRoundTrip(t *testing.T) {
	leaf := mockAB()
	pred := NewPredicate(ColumnOrigin{Node: leaf, Column: 1}, extend.OpLessThan,
		ValueParam(types.NewInt32(9)), nil)
	pred.SetLeft(leaf)

	for id := 0; id < pred.OutputColumnCount(); id++ {
		origin := pred.FindColumnOriginByOutputColumnID(types.ColumnID(id))
		back, ok := pred.FindOutputColumnIDByColumnOrigin(origin)
		require.True(t, ok)
		require.Equal(t, types.ColumnID(id), back)
	}
}

func TestNamedResolutionOnMock(t *testing.T) {
	leaf := mockAB()
	origin, found, err := leaf.FindColumnOriginByNamedColumnReference(NamedColumnReference{ColumnName: "b"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ColumnOrigin{Node: leaf, Column: 1}, origin)

	_, found, err = leaf.FindColumnOriginByNamedColumnReference(NamedColumnReference{ColumnName: "z"})
	require.NoError(t, err)
	require.False(t, found)

	_, err = leaf.GetColumnOriginByNamedColumnReference(NamedColumnReference{ColumnName: "z"})
	require.Error(t, err)
}

func TestJoinAmbiguity(t *testing.T) {
	left := mockAB()
	right := mockAB()
	join := NewCrossJoin()
	join.SetLeft(left)
	join.SetRight(right)

	require.Equal(t, []string{"a", "b", "a", "b"}, join.OutputColumnNames())
	require.Len(t, join.OutputColumnOrigins(), 4)

	_, _, err := join.FindColumnOriginByNamedColumnReference(NamedColumnReference{ColumnName: "a"})
	require.Error(t, err)

	// a table qualifier reaching only one side resolves
	left.SetAlias("t1")
	origin, found, err := join.FindColumnOriginByNamedColumnReference(
		NamedColumnReference{ColumnName: "a", TableName: "t1"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ColumnOrigin{Node: left, Column: 0}, origin)
}

func TestProjectionCutsNamespace(t *testing.T) {
	leaf := mockAB()
	proj := NewProjection([]*Expr{
		extend.NewColumn(ColumnOrigin{Node: leaf, Column: 1}).SetAlias("renamed"),
	})
	proj.SetLeft(leaf)

	require.Equal(t, []string{"renamed"}, proj.OutputColumnNames())

	origin, found, err := proj.FindColumnOriginByNamedColumnReference(NamedColumnReference{ColumnName: "renamed"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ColumnOrigin{Node: leaf, Column: 1}, origin)

	// the dropped column is gone
	_, found, err = proj.FindColumnOriginByNamedColumnReference(NamedColumnReference{ColumnName: "a"})
	require.NoError(t, err)
	require.False(t, found)
}

func TestProjectionComputedColumnOriginatesHere(t *testing.T) {
	leaf := mockAB()
	sum := extend.NewBinary(extend.Addition,
		extend.NewColumn(ColumnOrigin{Node: leaf, Column: 0}),
		extend.NewColumn(ColumnOrigin{Node: leaf, Column: 1}))
	proj := NewProjection([]*Expr{sum.SetAlias("s")})
	proj.SetLeft(leaf)

	origins := proj.OutputColumnOrigins()
	require.Len(t, origins, 1)
	require.True(t, origins[0].Node == Node(proj))
}

func TestAggregateOutputsGroupByFirst(t *testing.T) {
	leaf := mockAB()
	ga := ColumnOrigin{Node: leaf, Column: 0}
	sumB := extend.NewFunction(extend.AggSum,
		[]*Expr{extend.NewColumn(ColumnOrigin{Node: leaf, Column: 1})})
	agg := NewAggregate([]*Expr{sumB}, []ColumnOrigin{ga})
	agg.SetLeft(leaf)

	require.Equal(t, 2, agg.OutputColumnCount())
	origins := agg.OutputColumnOrigins()
	require.Equal(t, ga, origins[0])
	require.True(t, origins[1].Node == Node(agg))

	// HAVING binds the aggregate by structural equality
	origin, err := agg.GetColumnOriginForExpression(sumB.DeepCopy())
	require.NoError(t, err)
	require.Equal(t, origins[1], origin)

	// and the group-by column by origin
	origin, err = agg.GetColumnOriginForExpression(extend.NewColumn(ga))
	require.NoError(t, err)
	require.Equal(t, ga, origin)

	_, err = agg.GetColumnOriginForExpression(extend.NewColumn(ColumnOrigin{Node: leaf, Column: 1}))
	require.Error(t, err)
}

func TestStatisticsForwarding(t *testing.T) {
	leaf := mockAB()
	limit := NewLimit(10)
	limit.SetLeft(leaf)
	require.Nil(t, limit.Statistics())
}
