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

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/types"
)

func TestGenerateIsDeterministic(t *testing.T) {
	names := []string{"n", "s"}
	typs := []types.Type{types.New(types.T_int64), types.New(types.T_varchar)}

	a, err := Generate(names, typs, 100, 500, 7)
	require.NoError(t, err)
	b, err := Generate(names, typs, 100, 500, 7)
	require.NoError(t, err)

	require.Equal(t, uint64(500), a.RowCount())
	require.Equal(t, 5, a.ChunkCount())
	for row := uint32(0); row < 100; row++ {
		rid := types.RowID{Chunk: 2, Offset: row}
		require.True(t, a.GetValue(rid, 0).Eq(b.GetValue(rid, 0)))
		require.True(t, a.GetValue(rid, 1).Eq(b.GetValue(rid, 1)))
	}
}
