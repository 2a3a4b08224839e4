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

package extend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/types"
)

// operator-level payload is a bare column id
type colID = types.ColumnID

func TestDeepCopyPreservesStructure(t *testing.T) {
	e := NewBinary(Addition,
		NewColumn(colID(0)).SetAlias("a"),
		NewBinary(Multiplication,
			NewLiteral[colID](types.NewInt64(2)),
			NewColumn(colID(1))))

	cp := e.DeepCopy()
	require.True(t, e.Eq(cp))
	require.NotSame(t, e, cp)
	require.NotSame(t, e.Left(), cp.Left())
	require.Equal(t, "a", cp.Left().Alias())

	// mutating the copy leaves the original untouched
	cp.Left().SetAlias("renamed")
	require.Equal(t, "a", e.Left().Alias())
	require.False(t, e.Eq(cp))
}

func TestEqualityProperties(t *testing.T) {
	mk := func() *Expression[colID] {
		return NewFunction(AggSum, []*Expression[colID]{NewColumn(colID(3))}).SetAlias("s")
	}
	a, b, c := mk(), mk(), mk()

	require.True(t, a.Eq(a)) // reflexive
	require.True(t, a.Eq(b) && b.Eq(a))
	require.True(t, a.Eq(b) && b.Eq(c) && a.Eq(c))

	d := NewFunction(AggAvg, []*Expression[colID]{NewColumn(colID(3))}).SetAlias("s")
	require.False(t, a.Eq(d))
}

func TestClassifiers(t *testing.T) {
	add := NewBinary(Addition, NewColumn(colID(0)), NewLiteral[colID](types.NewInt64(1)))
	require.True(t, add.IsOperator())
	require.True(t, add.IsArithmeticOperator())
	require.False(t, add.IsLogicalOperator())
	require.True(t, add.IsBinaryOperator())
	require.False(t, add.IsUnaryOperator())

	cmp := NewBinary(LessThan, NewColumn(colID(0)), NewLiteral[colID](types.NewInt64(1)))
	require.True(t, cmp.IsLogicalOperator())
	require.False(t, cmp.IsArithmeticOperator())

	not := NewUnary(Not, cmp)
	require.True(t, not.IsUnaryOperator())
	require.False(t, not.IsBinaryOperator())

	null := NewLiteral[colID](types.Null)
	require.True(t, null.IsNullLiteral())
	require.True(t, null.IsOperand())
	require.False(t, null.IsOperator())
}

func TestStringParenthesizesNestedOperators(t *testing.T) {
	e := NewBinary(Multiplication,
		NewBinary(Addition,
			NewColumn(colID(0)).SetAlias("a"),
			NewColumn(colID(1)).SetAlias("b")),
		NewLiteral[colID](types.NewInt64(3)))

	require.Equal(t, "(a + b) * 3", e.String())
}

func TestReverseScanType(t *testing.T) {
	require.Equal(t, OpLessThan, ReverseScanType(OpGreaterThan))
	require.Equal(t, OpGreaterThan, ReverseScanType(OpLessThan))
	require.Equal(t, OpLessThanEquals, ReverseScanType(OpGreaterThanEquals))
	require.Equal(t, OpGreaterThanEquals, ReverseScanType(OpLessThanEquals))
	// (in)equality is commutative and stays put
	require.Equal(t, OpEquals, ReverseScanType(OpEquals))
	require.Equal(t, OpNotEquals, ReverseScanType(OpNotEquals))
}

func TestColumnsIn(t *testing.T) {
	e := NewBinary(And,
		NewBinary(Equals, NewColumn(colID(2)), NewLiteral[colID](types.NewInt64(7))),
		NewBinary(GreaterThan, NewColumn(colID(5)), NewColumn(colID(2))))
	require.Equal(t, []colID{2, 5, 2}, ColumnsIn(e))
}
