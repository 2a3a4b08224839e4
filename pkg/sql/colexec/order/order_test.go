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

package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

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

func sortInput(t *testing.T) *table.Table {
	tbl := table.New([]string{"k", "v"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_varchar)}, 2)
	rows := []struct {
		k types.Value
		v string
	}{
		{types.NewInt32(3), "c"},
		{types.NewInt32(1), "a1"},
		{types.Null, "n"},
		{types.NewInt32(2), "b"},
		{types.NewInt32(1), "a2"},
	}
	for _, r := range rows {
		require.NoError(t, tbl.AppendRow([]types.Value{r.k, types.NewVarchar(r.v)}))
	}
	tbl.SealAll()
	return tbl
}

func columnStrings(t *testing.T, out *table.Table, col types.ColumnID) []string {
	var vals []string
	for i := 0; i < out.ChunkCount(); i++ {
		chunk := out.GetChunk(uint32(i))
		for row := 0; row < chunk.Len(); row++ {
			vals = append(vals, chunk.Column(col).GetValue(uint32(row)).String())
		}
	}
	return vals
}

func TestSortAscendingStable(t *testing.T) {
	op := New(gettable.NewWrapper(sortInput(t)), []Field{{Col: 0}})
	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, table.References, out.Type())

	// NULL sorts first; equal keys keep their input order
	require.Equal(t, []string{"n", "a1", "a2", "b", "c"}, columnStrings(t, out, 1))
}

func TestSortDescending(t *testing.T) {
	op := New(gettable.NewWrapper(sortInput(t)), []Field{{Col: 0, Desc: true}})
	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a1", "a2", "n"}, columnStrings(t, out, 1))
}

func TestSortMultiKey(t *testing.T) {
	tbl := table.New([]string{"k1", "k2"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_int32)}, 0)
	rows := [][2]int32{{1, 9}, {2, 1}, {1, 3}, {2, 7}}
	for _, r := range rows {
		require.NoError(t, tbl.AppendRow([]types.Value{
			types.NewInt32(r[0]), types.NewInt32(r[1]),
		}))
	}
	tbl.SealAll()

	op := New(gettable.NewWrapper(tbl), []Field{{Col: 0}, {Col: 1, Desc: true}})
	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, []string{"9", "3", "7", "1"}, columnStrings(t, out, 1))
}
