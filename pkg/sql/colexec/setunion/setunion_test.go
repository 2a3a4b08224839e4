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

package setunion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/column"
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/gettable"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

func testProc(t *testing.T) *process.Process {
	proc, err := process.New(context.Background(), 1)
	require.NoError(t, err)
	t.Cleanup(proc.Free)
	return proc
}

func baseTable(t *testing.T, rows int) *table.Table {
	tbl := table.New([]string{"a", "b"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_int32)}, 4)
	for i := 0; i < rows; i++ {
		require.NoError(t, tbl.AppendRow([]types.Value{
			types.NewInt32(int32(i)), types.NewInt32(int32(i * 10)),
		}))
	}
	tbl.SealAll()
	return tbl
}

// refsOver builds a single-chunk references table over base, all
// columns sharing one position list.
func refsOver(base *table.Table, rids ...types.RowID) *table.Table {
	refs := table.NewWithLayoutFrom(base, base.ChunkSize(), table.References)
	pos := types.NewPosList(rids...)
	chunk := table.NewChunk()
	for id := 0; id < base.ColumnCount(); id++ {
		chunk.AddColumn(column.NewReference(
			base.ColumnType(types.ColumnID(id)).Oid, base, types.ColumnID(id), pos))
	}
	refs.EmplaceChunk(chunk)
	return refs
}

func collectRowIDs(t *testing.T, tbl *table.Table) []types.RowID {
	var out []types.RowID
	for i := 0; i < tbl.ChunkCount(); i++ {
		ref := tbl.GetChunk(uint32(i)).Column(0).(*column.ReferenceColumn)
		out = append(out, (*ref.PosList())...)
	}
	return out
}

func TestSetUnionMergesSortedRowIDs(t *testing.T) {
	base := baseTable(t, 8)
	left := refsOver(base, types.RowID{Chunk: 0, Offset: 0}, types.RowID{Chunk: 0, Offset: 2})
	right := refsOver(base, types.RowID{Chunk: 0, Offset: 2}, types.RowID{Chunk: 1, Offset: 1})

	op := New(gettable.NewWrapper(left), gettable.NewWrapper(right))
	out, err := op.Execute(testProc(t))
	require.NoError(t, err)

	require.Equal(t, []types.RowID{
		{Chunk: 0, Offset: 0},
		{Chunk: 0, Offset: 2},
		{Chunk: 1, Offset: 1},
	}, collectRowIDs(t, out))
	require.Equal(t, table.References, out.Type())
}

func TestSetUnionIsCommutative(t *testing.T) {
	base := baseTable(t, 10)
	left := refsOver(base,
		types.RowID{Chunk: 1, Offset: 0},
		types.RowID{Chunk: 0, Offset: 1},
		types.RowID{Chunk: 0, Offset: 3})
	right := refsOver(base,
		types.RowID{Chunk: 0, Offset: 1},
		types.RowID{Chunk: 2, Offset: 0})

	ab, err := New(gettable.NewWrapper(left), gettable.NewWrapper(right)).Execute(testProc(t))
	require.NoError(t, err)
	ba, err := New(gettable.NewWrapper(right), gettable.NewWrapper(left)).Execute(testProc(t))
	require.NoError(t, err)

	require.Equal(t, collectRowIDs(t, ab), collectRowIDs(t, ba))
}

func TestSetUnionWithSelfIsIdentity(t *testing.T) {
	base := baseTable(t, 6)
	refs := refsOver(base,
		types.RowID{Chunk: 0, Offset: 1},
		types.RowID{Chunk: 1, Offset: 0})

	out, err := New(gettable.NewWrapper(refs), gettable.NewWrapper(refs)).Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, []types.RowID{
		{Chunk: 0, Offset: 1},
		{Chunk: 1, Offset: 0},
	}, collectRowIDs(t, out))
}

func TestSetUnionEmptySideReturnsOther(t *testing.T) {
	base := baseTable(t, 6)
	empty := refsOver(base)
	refs := refsOver(base, types.RowID{Chunk: 0, Offset: 0})

	out, err := New(gettable.NewWrapper(empty), gettable.NewWrapper(refs)).Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, refs, out)

	out, err = New(gettable.NewWrapper(refs), gettable.NewWrapper(empty)).Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, refs, out)
}

func TestSetUnionSchemaMismatch(t *testing.T) {
	base := baseTable(t, 4)
	other := table.New([]string{"x"}, []types.Type{types.New(types.T_int32)}, 0)
	refs := refsOver(base, types.RowID{Chunk: 0, Offset: 0})

	otherRefs := table.NewWithLayoutFrom(other, 0, table.References)
	pos := types.NewPosList(types.RowID{Chunk: 0, Offset: 0})
	chunk := table.NewChunk()
	chunk.AddColumn(column.NewReference(types.T_int32, other, 0, pos))
	otherRefs.EmplaceChunk(chunk)

	_, err := New(gettable.NewWrapper(refs), gettable.NewWrapper(otherRefs)).Execute(testProc(t))
	require.Error(t, err)
}

func TestSetUnionChunkedOutput(t *testing.T) {
	base := baseTable(t, 16)
	var leftIDs, rightIDs []types.RowID
	for i := 0; i < 8; i++ {
		leftIDs = append(leftIDs, types.RowID{Chunk: uint32(i / 4), Offset: uint32(i % 4)})
		rightIDs = append(rightIDs, types.RowID{Chunk: uint32(2 + i/4), Offset: uint32(i % 4)})
	}
	left := refsOver(base, leftIDs...)
	right := refsOver(base, rightIDs...)

	out, err := New(gettable.NewWrapper(left), gettable.NewWrapper(right)).Execute(testProc(t))
	require.NoError(t, err)

	// both inputs carry chunk size 4, so the output chunks at 4
	for i := 0; i < out.ChunkCount()-1; i++ {
		require.Equal(t, 4, out.GetChunk(uint32(i)).Len())
	}

	got := collectRowIDs(t, out)
	for i := 1; i < len(got); i++ {
		require.True(t, got[i-1].Less(got[i]), "output must be sorted and deduplicated")
	}
}

// two segments sharing distinct position lists survive as segments
func TestSetUnionMultiSegment(t *testing.T) {
	base := baseTable(t, 8)

	buildTwoSegment := func(ridsA, ridsB []types.RowID) *table.Table {
		refs := table.NewWithLayoutFrom(base, 0, table.References)
		posA := types.NewPosList(ridsA...)
		posB := types.NewPosList(ridsB...)
		chunk := table.NewChunk()
		chunk.AddColumn(column.NewReference(types.T_int32, base, 0, posA))
		chunk.AddColumn(column.NewReference(types.T_int32, base, 1, posB))
		refs.EmplaceChunk(chunk)
		return refs
	}

	left := buildTwoSegment(
		[]types.RowID{{Chunk: 0, Offset: 0}},
		[]types.RowID{{Chunk: 1, Offset: 1}})
	right := buildTwoSegment(
		[]types.RowID{{Chunk: 0, Offset: 0}},
		[]types.RowID{{Chunk: 1, Offset: 1}})

	out, err := New(gettable.NewWrapper(left), gettable.NewWrapper(right)).Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, uint64(1), out.RowCount())

	chunk := out.GetChunk(0)
	colA := chunk.Column(0).(*column.ReferenceColumn)
	colB := chunk.Column(1).(*column.ReferenceColumn)
	require.NotSame(t, colA.PosList(), colB.PosList())
	require.Equal(t, types.RowID{Chunk: 0, Offset: 0}, (*colA.PosList())[0])
	require.Equal(t, types.RowID{Chunk: 1, Offset: 1}, (*colB.PosList())[0])
}
