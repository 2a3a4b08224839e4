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

package limit

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

func TestLimitPreservesInputOrder(t *testing.T) {
	tbl := table.New([]string{"a"}, []types.Type{types.New(types.T_int32)}, 2)
	for i := int32(0); i < 7; i++ {
		require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(i * 10)}))
	}
	tbl.SealAll()

	out, err := New(gettable.NewWrapper(tbl), 3).Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, uint64(3), out.RowCount())

	chunk := out.GetChunk(0)
	for i := 0; i < 3; i++ {
		require.Equal(t, int32(i*10), chunk.Column(0).GetValue(uint32(i)).Int32())
	}
}

func TestLimitBeyondInput(t *testing.T) {
	tbl := table.New([]string{"a"}, []types.Type{types.New(types.T_int32)}, 0)
	require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(1)}))
	tbl.SealAll()

	out, err := New(gettable.NewWrapper(tbl), 100).Execute(testProc(t))
	require.NoError(t, err)
	require.Equal(t, uint64(1), out.RowCount())
}
