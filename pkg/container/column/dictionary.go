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
	"github.com/matrixorigin/stonework/pkg/container/zs"
)

// DictionaryColumn holds a sorted unique dictionary and a compressed
// attribute vector of indices into it. The index one past the
// dictionary is reserved for NULL. Immutable.
type DictionaryColumn struct {
	typ       types.T
	dict      []types.Value
	attrs     zs.Vector
	nullIndex uint32
}

func NewDictionary(typ types.T, dict []types.Value, attrs zs.Vector) *DictionaryColumn {
	return &DictionaryColumn{
		typ:       typ,
		dict:      dict,
		attrs:     attrs,
		nullIndex: uint32(len(dict)),
	}
}

func (c *DictionaryColumn) Oid() types.T           { return c.typ }
func (c *DictionaryColumn) Encoding() EncodingType { return Dictionary }
func (c *DictionaryColumn) Len() int               { return c.attrs.Size() }
func (c *DictionaryColumn) NullIndex() uint32      { return c.nullIndex }

func (c *DictionaryColumn) Dictionary() []types.Value { return c.dict }
func (c *DictionaryColumn) AttributeVector() zs.Vector { return c.attrs }

func (c *DictionaryColumn) GetValue(row uint32) types.Value {
	idx := c.attrs.Get(int(row))
	if idx == c.nullIndex {
		return types.NewNull(c.typ)
	}
	return c.dict[idx]
}

func (c *DictionaryColumn) Append(types.Value) error {
	return errAppendOn(Dictionary)
}

func (c *DictionaryColumn) Dup() Column {
	// the attribute vector is immutable and safe to share
	return &DictionaryColumn{
		typ:       c.typ,
		dict:      append([]types.Value(nil), c.dict...),
		attrs:     c.attrs,
		nullIndex: c.nullIndex,
	}
}

func (c *DictionaryColumn) Accept(visitor Visitor, ctx any) error {
	return visitor.VisitDictionary(c, ctx)
}

// LowerBound returns the index of the first dictionary entry >= v.
func (c *DictionaryColumn) LowerBound(v types.Value) uint32 {
	return uint32(sort.Search(len(c.dict), func(i int) bool {
		return c.dict[i].Compare(v) >= 0
	}))
}

// UpperBound returns the index of the first dictionary entry > v.
func (c *DictionaryColumn) UpperBound(v types.Value) uint32 {
	return uint32(sort.Search(len(c.dict), func(i int) bool {
		return c.dict[i].Compare(v) > 0
	}))
}

// EncodeDictionary compresses a value column: the dictionary keeps the
// distinct non-null values sorted ascending, every row maps to its
// lower-bound index, NULL rows map to the reserved index past the
// dictionary. The attribute vector takes the narrowest byte-aligned
// encoding whose range covers the null index.
func EncodeDictionary(vc *ValueColumn) *DictionaryColumn {
	n := vc.Len()

	dict := make([]types.Value, 0, n)
	for row := 0; row < n; row++ {
		if nulls.Contains(vc.Nulls(), uint32(row)) {
			continue
		}
		dict = append(dict, vc.GetValue(uint32(row)))
	}
	sort.Slice(dict, func(i, j int) bool {
		return dict[i].Compare(dict[j]) < 0
	})
	dict = uniqueSorted(dict)

	nullIndex := uint32(len(dict))

	attrs := make([]uint32, n)
	for row := 0; row < n; row++ {
		if nulls.Contains(vc.Nulls(), uint32(row)) {
			attrs[row] = nullIndex
			continue
		}
		v := vc.GetValue(uint32(row))
		attrs[row] = uint32(sort.Search(len(dict), func(i int) bool {
			return dict[i].Compare(v) >= 0
		}))
	}

	zt := zs.ForMax(nullIndex)
	return NewDictionary(vc.Oid(), dict, zs.Encode(zt, attrs))
}

func uniqueSorted(vs []types.Value) []types.Value {
	out := vs[:0]
	for i, v := range vs {
		if i == 0 || !v.Eq(vs[i-1]) {
			out = append(out, v)
		}
	}
	return out
}
