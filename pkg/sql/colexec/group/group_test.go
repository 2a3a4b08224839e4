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

package group

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/gettable"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

func testProc(t *testing.T) *process.Process {
	proc, err := process.New(context.Background(), 1)
	require.NoError(t, err)
	t.Cleanup(proc.Free)
	return proc
}

func groupInput(t *testing.T) *table.Table {
	tbl := table.New([]string{"g", "v"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_int32)}, 3)
	rows := []struct {
		g types.Value
		v types.Value
	}{
		{types.NewInt32(1), types.NewInt32(10)},
		{types.NewInt32(2), types.NewInt32(5)},
		{types.NewInt32(1), types.NewInt32(20)},
		{types.NewInt32(2), types.Null},
		{types.NewInt32(1), types.NewInt32(30)},
	}
	for _, r := range rows {
		require.NoError(t, tbl.AppendRow([]types.Value{r.g, r.v}))
	}
	tbl.SealAll()
	return tbl
}

func colExpr(id types.ColumnID) *extend.Expression[types.ColumnID] {
	return extend.NewColumn(id)
}

func TestGroupedAggregates(t *testing.T) {
	op := New(gettable.NewWrapper(groupInput(t)),
		[]Aggregation{
			{Kind: extend.AggSum, Arg: colExpr(1)},
			{Kind: extend.AggCount, Arg: colExpr(1)},
			{Kind: extend.AggAvg, Arg: colExpr(1)},
			{Kind: extend.AggMin, Arg: colExpr(1)},
			{Kind: extend.AggMax, Arg: colExpr(1)},
		},
		[]types.ColumnID{0})

	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, uint64(2), out.RowCount())
	require.Equal(t, 6, out.ColumnCount())

	chunk := out.GetChunk(0)

	// group 1: sum 60, count 3, avg 20, min 10, max 30
	require.Equal(t, int32(1), chunk.Column(0).GetValue(0).Int32())
	require.Equal(t, int64(60), chunk.Column(1).GetValue(0).Int64())
	require.Equal(t, int64(3), chunk.Column(2).GetValue(0).Int64())
	require.Equal(t, float64(20), chunk.Column(3).GetValue(0).Float64())
	require.Equal(t, int32(10), chunk.Column(4).GetValue(0).Int32())
	require.Equal(t, int32(30), chunk.Column(5).GetValue(0).Int32())

	// group 2: the NULL input is ignored everywhere
	require.Equal(t, int32(2), chunk.Column(0).GetValue(1).Int32())
	require.Equal(t, int64(5), chunk.Column(1).GetValue(1).Int64())
	require.Equal(t, int64(1), chunk.Column(2).GetValue(1).Int64())
	require.Equal(t, float64(5), chunk.Column(3).GetValue(1).Float64())
}

func TestCountStarCountsNullRows(t *testing.T) {
	op := New(gettable.NewWrapper(groupInput(t)),
		[]Aggregation{
			{Kind: extend.AggCount, Arg: nil}, // COUNT(*)
			{Kind: extend.AggCount, Arg: colExpr(1)},
		},
		[]types.ColumnID{0})

	out, err := op.Execute(testProc(t))
	require.NoError(t, err)

	chunk := out.GetChunk(0)
	require.Equal(t, int64(2), chunk.Column(1).GetValue(1).Int64())
	require.Equal(t, int64(1), chunk.Column(2).GetValue(1).Int64())
}

func TestUngroupedEmptyInput(t *testing.T) {
	empty := table.New([]string{"v"}, []types.Type{types.New(types.T_int32)}, 0)
	op := New(gettable.NewWrapper(empty),
		[]Aggregation{
			{Kind: extend.AggCount, Arg: colExpr(0)},
			{Kind: extend.AggSum, Arg: colExpr(0)},
			{Kind: extend.AggMin, Arg: colExpr(0)},
		},
		nil)

	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, uint64(1), out.RowCount())

	chunk := out.GetChunk(0)
	require.Equal(t, int64(0), chunk.Column(0).GetValue(0).Int64())
	require.True(t, chunk.Column(1).GetValue(0).IsNull())
	require.True(t, chunk.Column(2).GetValue(0).IsNull())
}

func TestGroupedEmptyInputYieldsNoRows(t *testing.T) {
	empty := table.New([]string{"g", "v"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_int32)}, 0)
	op := New(gettable.NewWrapper(empty),
		[]Aggregation{{Kind: extend.AggSum, Arg: colExpr(1)}},
		[]types.ColumnID{0})

	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, uint64(0), out.RowCount())
}

func TestNullGroupsAreDistinctFromValues(t *testing.T) {
	tbl := table.New([]string{"g"}, []types.Type{types.New(types.T_int32)}, 0)
	require.NoError(t, tbl.AppendRow([]types.Value{types.Null}))
	require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(1)}))
	require.NoError(t, tbl.AppendRow([]types.Value{types.Null}))
	tbl.SealAll()

	op := New(gettable.NewWrapper(tbl),
		[]Aggregation{{Kind: extend.AggCount, Arg: nil}},
		[]types.ColumnID{0})
	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, uint64(2), out.RowCount())
}
