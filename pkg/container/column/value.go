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

package column

import (
	"github.com/matrixorigin/stonework/pkg/container/nulls"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// ValueColumn is the uncompressed column: a contiguous slice of one
// element type plus a null mask. It is the only appendable column and
// seals together with its chunk.
type ValueColumn struct {
	typ    types.T
	nsp    *nulls.Nulls
	sealed bool

	i32 []int32
	i64 []int64
	f32 []float32
	f64 []float64
	str []string
}

func NewValue(typ types.T) *ValueColumn {
	return &ValueColumn{typ: typ, nsp: nulls.New()}
}

func (c *ValueColumn) Oid() types.T           { return c.typ }
func (c *ValueColumn) Encoding() EncodingType { return Value }
func (c *ValueColumn) Nulls() *nulls.Nulls    { return c.nsp }

func (c *ValueColumn) Len() int {
	switch c.typ {
	case types.T_int32:
		return len(c.i32)
	case types.T_int64:
		return len(c.i64)
	case types.T_float32:
		return len(c.f32)
	case types.T_float64:
		return len(c.f64)
	case types.T_varchar:
		return len(c.str)
	}
	return 0
}

// Seal freezes the column; the chunk seals all its columns at once.
func (c *ValueColumn) Seal() {
	c.sealed = true
}

func (c *ValueColumn) Append(v types.Value) error {
	if c.sealed {
		return sqlerror.New(errno.FeatureNotSupported, "append on sealed column")
	}
	if v.IsNull() {
		nulls.Add(c.nsp, uint32(c.Len()))
		v = types.NewNull(c.typ) // typed zero below
	} else if v.Oid() != c.typ {
		return sqlerror.Newf(errno.DatatypeMismatch, "append %s value to %s column", v.Oid(), c.typ)
	}
	switch c.typ {
	case types.T_int32:
		c.i32 = append(c.i32, v.Int32())
	case types.T_int64:
		c.i64 = append(c.i64, v.Int64())
	case types.T_float32:
		c.f32 = append(c.f32, v.Float32())
	case types.T_float64:
		c.f64 = append(c.f64, v.Float64())
	case types.T_varchar:
		c.str = append(c.str, v.Varchar())
	}
	return nil
}

func (c *ValueColumn) GetValue(row uint32) types.Value {
	if nulls.Contains(c.nsp, row) {
		return types.NewNull(c.typ)
	}
	switch c.typ {
	case types.T_int32:
		return types.NewInt32(c.i32[row])
	case types.T_int64:
		return types.NewInt64(c.i64[row])
	case types.T_float32:
		return types.NewFloat32(c.f32[row])
	case types.T_float64:
		return types.NewFloat64(c.f64[row])
	case types.T_varchar:
		return types.NewVarchar(c.str[row])
	}
	sqlerror.Internal("value column with unknown element type")
	return types.Value{}
}

func (c *ValueColumn) Dup() Column {
	nc := &ValueColumn{typ: c.typ, nsp: c.nsp.Clone(), sealed: c.sealed}
	nc.i32 = append([]int32(nil), c.i32...)
	nc.i64 = append([]int64(nil), c.i64...)
	nc.f32 = append([]float32(nil), c.f32...)
	nc.f64 = append([]float64(nil), c.f64...)
	nc.str = append([]string(nil), c.str...)
	return nc
}

func (c *ValueColumn) Accept(visitor Visitor, ctx any) error {
	return visitor.VisitValue(c, ctx)
}

// Int32s exposes the raw slice for kernels that dispatch on element
// type. The same applies to the other typed accessors.
func (c *ValueColumn) Int32s() []int32     { return c.i32 }
func (c *ValueColumn) Int64s() []int64     { return c.i64 }
func (c *ValueColumn) Float32s() []float32 { return c.f32 }
func (c *ValueColumn) Float64s() []float64 { return c.f64 }
func (c *ValueColumn) Strings() []string   { return c.str }
