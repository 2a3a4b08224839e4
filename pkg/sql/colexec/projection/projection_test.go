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

package projection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/column"
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/gettable"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/tablescan"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

func testProc(t *testing.T) *process.Process {
	proc, err := process.New(context.Background(), 1)
	require.NoError(t, err)
	t.Cleanup(proc.Free)
	return proc
}

func input(t *testing.T) *table.Table {
	tbl := table.New([]string{"a", "b"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_int32)}, 0)
	for i := int32(1); i <= 3; i++ {
		require.NoError(t, tbl.AppendRow([]types.Value{
			types.NewInt32(i), types.NewInt32(i * 10),
		}))
	}
	tbl.SealAll()
	return tbl
}

func TestComputedProjection(t *testing.T) {
	op := New(gettable.NewWrapper(input(t)),
		[]*colexec.Expr{
			extend.NewBinary(extend.Multiplication,
				extend.NewColumn(types.ColumnID(0)),
				extend.NewColumn(types.ColumnID(1))).SetAlias("prod"),
		}, nil)

	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, table.Data, out.Type())
	require.Equal(t, []string{"prod"}, out.ColumnNames())
	require.Equal(t, types.T_int64, out.ColumnType(0).Oid)

	chunk := out.GetChunk(0)
	require.Equal(t, int64(10), chunk.Column(0).GetValue(0).Int64())
	require.Equal(t, int64(90), chunk.Column(0).GetValue(2).Int64())
}

func TestPassThroughSharesPosLists(t *testing.T) {
	scan := tablescan.New(gettable.NewWrapper(input(t)), colexec.Condition{
		Col:   0,
		Scan:  extend.OpGreaterThan,
		Value: types.ValueParam(types.NewInt32(1)),
	})
	op := New(scan, []*colexec.Expr{extend.NewColumn(types.ColumnID(1))}, []string{"b"})

	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, table.References, out.Type())

	scanned, err := scan.Execute(testProc(t))
	require.NoError(t, err)
	want := scanned.GetChunk(0).Column(1).(*column.ReferenceColumn)
	got := out.GetChunk(0).Column(0).(*column.ReferenceColumn)
	require.Equal(t, *want.PosList(), *got.PosList())
}

func TestLiteralOverDummyYieldsOneRow(t *testing.T) {
	op := New(gettable.NewDummy(),
		[]*colexec.Expr{
			extend.NewLiteral[types.ColumnID](types.NewInt32(42)),
			extend.NewLiteral[types.ColumnID](types.Null),
		}, []string{"x", "y"})

	out, err := op.Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, uint64(1), out.RowCount())

	chunk := out.GetChunk(0)
	require.Equal(t, int32(42), chunk.Column(0).GetValue(0).Int32())
	require.True(t, chunk.Column(1).GetValue(0).IsNull())
}
