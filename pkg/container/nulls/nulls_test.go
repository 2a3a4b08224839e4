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

package nulls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddContains(t *testing.T) {
	nsp := New()
	require.False(t, Any(nsp))
	require.False(t, Contains(nsp, 3))

	Add(nsp, 3, 7)
	require.True(t, Any(nsp))
	require.True(t, Contains(nsp, 3))
	require.True(t, Contains(nsp, 7))
	require.False(t, Contains(nsp, 4))
	require.Equal(t, 2, Length(nsp))

	Del(nsp, 3)
	require.False(t, Contains(nsp, 3))
}

func TestSetUnionsMasks(t *testing.T) {
	a := Build(1, 2)
	b := Build(2, 9)
	Set(a, b)
	require.Equal(t, []uint32{1, 2, 9}, a.ToArray())
}

func TestCloneIsIndependent(t *testing.T) {
	a := Build(5)
	c := a.Clone()
	Add(a, 6)
	require.True(t, Contains(a, 6))
	require.False(t, Contains(c, 6))
}

func TestNilSafety(t *testing.T) {
	var nsp *Nulls
	require.False(t, Any(nsp))
	require.False(t, Contains(nsp, 0))
	require.Equal(t, 0, Length(nsp))
	require.Nil(t, nsp.Clone())
}
