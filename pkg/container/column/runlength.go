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
	"sort"

	"github.com/matrixorigin/stonework/pkg/container/nulls"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// RunLengthColumn stores one value per run and the inclusive end
// position of each run. NULL runs hold the designated sentinel value.
// Immutable.
type RunLengthColumn struct {
	typ       types.T
	values    []types.Value
	ends      []uint32
	nullValue types.Value
}

func NewRunLength(typ types.T, values []types.Value, ends []uint32, nullValue types.Value) *RunLengthColumn {
	if len(values) != len(ends) {
		sqlerror.Internal("run-length column with mismatched values and end positions")
	}
	return &RunLengthColumn{typ: typ, values: values, ends: ends, nullValue: nullValue}
}

func (c *RunLengthColumn) Oid() types.T              { return c.typ }
func (c *RunLengthColumn) Encoding() EncodingType    { return RunLength }
func (c *RunLengthColumn) Values() []types.Value     { return c.values }
func (c *RunLengthColumn) EndPositions() []uint32    { return c.ends }
func (c *RunLengthColumn) NullValue() types.Value    { return c.nullValue }

func (c *RunLengthColumn) Len() int {
	if len(c.ends) == 0 {
		return 0
	}
	return int(c.ends[len(c.ends)-1]) + 1
}

func (c *RunLengthColumn) GetValue(row uint32) types.Value {
	// first run whose inclusive end position covers row
	k := sort.Search(len(c.ends), func(i int) bool {
		return c.ends[i] >= row
	})
	v := c.values[k]
	if v.Eq(c.nullValue) {
		return types.NewNull(c.typ)
	}
	return v
}

func (c *RunLengthColumn) Append(types.Value) error {
	return errAppendOn(RunLength)
}

func (c *RunLengthColumn) Dup() Column {
	return &RunLengthColumn{
		typ:       c.typ,
		values:    append([]types.Value(nil), c.values...),
		ends:      append([]uint32(nil), c.ends...),
		nullValue: c.nullValue,
	}
}

func (c *RunLengthColumn) Accept(visitor Visitor, ctx any) error {
	return visitor.VisitRunLength(c, ctx)
}

// EncodeRunLength compresses a value column into runs. NULL rows are
// stored as the sentinel, so the sentinel must not occur in the data.
func EncodeRunLength(vc *ValueColumn, nullValue types.Value) *RunLengthColumn {
	n := vc.Len()
	var values []types.Value
	var ends []uint32

	for row := 0; row < n; row++ {
		v := vc.GetValue(uint32(row))
		if nulls.Contains(vc.Nulls(), uint32(row)) {
			v = nullValue
		}
		if len(values) > 0 && v.Eq(values[len(values)-1]) {
			ends[len(ends)-1] = uint32(row)
			continue
		}
		values = append(values, v)
		ends = append(ends, uint32(row))
	}
	return NewRunLength(vc.Oid(), values, ends, nullValue)
}
