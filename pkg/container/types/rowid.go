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

package types

import "fmt"

// RowID is the stable address of a row within a table, ordered
// lexicographically by (chunk, offset).
type RowID struct {
	Chunk  uint32
	Offset uint32
}

func (r RowID) Less(o RowID) bool {
	if r.Chunk != o.Chunk {
		return r.Chunk < o.Chunk
	}
	return r.Offset < o.Offset
}

func (r RowID) String() string {
	return fmt.Sprintf("(%d,%d)", r.Chunk, r.Offset)
}

// NullRowID marks a non-matching outer-join row; reading any column
// through it yields NULL.
var NullRowID = RowID{Chunk: ^uint32(0), Offset: ^uint32(0)}

// PosList is an ordered sequence of row ids carried by reference
// columns. Columns of one segment share a single *PosList; segment
// detection relies on that pointer identity, never on value equality.
type PosList []RowID

func NewPosList(rows ...RowID) *PosList {
	p := make(PosList, len(rows))
	copy(p, rows)
	return &p
}

func (p *PosList) Append(r RowID) {
	*p = append(*p, r)
}

func (p *PosList) Len() int {
	return len(*p)
}
