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

package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/column"
	"github.com/matrixorigin/stonework/pkg/container/types"
)

func newTestTable(t *testing.T, chunkSize uint64, rows int) *Table {
	tbl := New([]string{"a", "b"}, []types.Type{types.New(types.T_int32), types.New(types.T_varchar)}, chunkSize)
	for i := 0; i < rows; i++ {
		require.NoError(t, tbl.AppendRow([]types.Value{
			types.NewInt32(int32(i)),
			types.NewVarchar("r"),
		}))
	}
	return tbl
}

func TestAppendSealsFullChunks(t *testing.T) {
	tbl := newTestTable(t, 3, 8)

	require.Equal(t, 3, tbl.ChunkCount())
	require.Equal(t, uint64(8), tbl.RowCount())
	require.Equal(t, 3, tbl.GetChunk(0).Len())
	require.Equal(t, 3, tbl.GetChunk(1).Len())
	require.Equal(t, 2, tbl.GetChunk(2).Len())
	require.True(t, tbl.GetChunk(0).Sealed())
	require.True(t, tbl.GetChunk(1).Sealed())
	require.False(t, tbl.GetChunk(2).Sealed())

	require.Equal(t, int32(5), tbl.GetValue(types.RowID{Chunk: 1, Offset: 2}, 0).Int32())
}

func TestChunkSizeZeroIsUnbounded(t *testing.T) {
	tbl := newTestTable(t, 0, 1000)
	require.Equal(t, 1, tbl.ChunkCount())
}

func TestAppendColumnCountMismatch(t *testing.T) {
	tbl := newTestTable(t, 0, 0)
	err := tbl.AppendRow([]types.Value{types.NewInt32(1)})
	require.Error(t, err)
}

func TestReencodeSealedChunk(t *testing.T) {
	tbl := newTestTable(t, 4, 4)
	tbl.SealAll()

	chunk := tbl.GetChunk(0)
	vc := chunk.Column(0).(*column.ValueColumn)
	chunk.ReplaceColumn(0, column.EncodeDictionary(vc))

	// row ids survive re-encoding
	require.Equal(t, int32(2), tbl.GetValue(types.RowID{Chunk: 0, Offset: 2}, 0).Int32())
	require.Equal(t, column.Dictionary, tbl.GetChunk(0).Column(0).Encoding())
}

func TestReferencesTableRejectsAppend(t *testing.T) {
	data := newTestTable(t, 0, 2)
	refs := NewWithLayoutFrom(data, 0, References)
	require.Error(t, refs.AppendRow([]types.Value{types.NewInt32(1), types.NewVarchar("x")}))
}

func TestReferenceColumnReadsThroughPosList(t *testing.T) {
	data := newTestTable(t, 2, 5)
	data.SealAll()

	pos := types.NewPosList(
		types.RowID{Chunk: 0, Offset: 1},
		types.RowID{Chunk: 2, Offset: 0},
	)
	ref := column.NewReference(types.T_int32, data, 0, pos)
	require.Equal(t, 2, ref.Len())
	require.Equal(t, int32(1), ref.GetValue(0).Int32())
	require.Equal(t, int32(4), ref.GetValue(1).Int32())
}

func TestRowIDOrdering(t *testing.T) {
	a := types.RowID{Chunk: 0, Offset: 9}
	b := types.RowID{Chunk: 1, Offset: 0}
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.False(t, a.Less(a))
}
