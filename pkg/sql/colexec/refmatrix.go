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

package colexec

import (
	"github.com/matrixorigin/stonework/pkg/container/column"
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// RefSegment is a contiguous range of reference columns sharing one
// position list per chunk.
type RefSegment struct {
	Begin types.ColumnID // first column id of the segment
	End   types.ColumnID // one past the last
	Table column.Referenced
}

// ReferenceMatrix is the row-id matrix of a references table: one
// concatenated position list per segment, aligned by global row index.
type ReferenceMatrix struct {
	Segments []RefSegment
	Lists    [][]types.RowID
	// ColumnIDs maps every output column to the column it references
	// in the segment's base table.
	ColumnIDs []types.ColumnID
}

// AnalyzeReferences builds the reference matrix of a references
// table. Segmentation is detected on the first chunk by position-list
// identity and must repeat on every chunk.
func AnalyzeReferences(t *table.Table) (*ReferenceMatrix, error) {
	if t.Type() != table.References {
		return nil, sqlerror.New(errno.DatatypeIncompatible, "reference matrix over a data table")
	}
	if t.ChunkCount() == 0 || t.ColumnCount() == 0 {
		return &ReferenceMatrix{}, nil
	}

	m := &ReferenceMatrix{}

	// segment begins from the first chunk
	first := t.GetChunk(0)
	var current *types.PosList
	for id := 0; id < t.ColumnCount(); id++ {
		ref, ok := first.Column(types.ColumnID(id)).(*column.ReferenceColumn)
		if !ok {
			return nil, sqlerror.New(errno.DatatypeIncompatible, "references table holds a non-reference column")
		}
		m.ColumnIDs = append(m.ColumnIDs, ref.ReferencedColumn())
		if ref.PosList() != current {
			current = ref.PosList()
			m.Segments = append(m.Segments, RefSegment{
				Begin: types.ColumnID(id),
				Table: ref.Referenced(),
			})
		}
	}
	for i := range m.Segments {
		if i+1 < len(m.Segments) {
			m.Segments[i].End = m.Segments[i+1].Begin
		} else {
			m.Segments[i].End = types.ColumnID(t.ColumnCount())
		}
	}

	// concatenate each chunk's segment-representative position list
	m.Lists = make([][]types.RowID, len(m.Segments))
	for chunk := 0; chunk < t.ChunkCount(); chunk++ {
		c := t.GetChunk(uint32(chunk))
		for s, seg := range m.Segments {
			ref := c.Column(seg.Begin).(*column.ReferenceColumn)
			m.Lists[s] = append(m.Lists[s], (*ref.PosList())...)
		}
		if err := verifySegments(c, m.Segments); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// verifySegments checks that a chunk repeats the segmentation detected
// on the first chunk.
func verifySegments(c *table.Chunk, segs []RefSegment) error {
	for _, seg := range segs {
		lead := c.Column(seg.Begin).(*column.ReferenceColumn)
		for id := seg.Begin; id < seg.End; id++ {
			ref, ok := c.Column(id).(*column.ReferenceColumn)
			if !ok {
				return sqlerror.New(errno.DatatypeIncompatible, "references table holds a non-reference column")
			}
			if ref.PosList() != lead.PosList() {
				return sqlerror.New(errno.DatatypeIncompatible, "different position lists within a column segment")
			}
			if ref.Referenced() != lead.Referenced() {
				return sqlerror.New(errno.DatatypeIncompatible, "different referenced tables within a column segment")
			}
		}
	}
	return nil
}

// GatherColumns builds the reference columns selecting the given
// global rows of input, in order. A row index of -1 stands for the
// missing side of an outer join and reads as NULL. Columns of one
// input segment share one output position list.
func GatherColumns(input *table.Table, rows []int) ([]column.Column, error) {
	if input.Type() == table.Data {
		loc := NewLocator(input)
		pos := types.NewPosList()
		for _, row := range rows {
			if row < 0 {
				pos.Append(types.NullRowID)
				continue
			}
			pos.Append(loc.RowID(row))
		}
		cols := make([]column.Column, input.ColumnCount())
		for id := range cols {
			cols[id] = column.NewReference(
				input.ColumnType(types.ColumnID(id)).Oid, input, types.ColumnID(id), pos)
		}
		return cols, nil
	}

	m, err := AnalyzeReferences(input)
	if err != nil {
		return nil, err
	}
	cols := make([]column.Column, input.ColumnCount())
	for s, seg := range m.Segments {
		pos := types.NewPosList()
		for _, row := range rows {
			if row < 0 {
				pos.Append(types.NullRowID)
				continue
			}
			pos.Append(m.Lists[s][row])
		}
		for id := seg.Begin; id < seg.End; id++ {
			cols[id] = column.NewReference(input.ColumnType(id).Oid, seg.Table, m.ColumnIDs[id], pos)
		}
	}
	return cols, nil
}

// SelectRows materializes a references table holding the given global
// rows of input, in order. Data inputs yield a single shared position
// list; references inputs map each segment through its matrix.
func SelectRows(input *table.Table, sel []int) (*table.Table, error) {
	out := table.NewWithLayoutFrom(input, 0, table.References)
	if input.ColumnCount() == 0 || len(sel) == 0 {
		return out, nil
	}
	if input.Type() == table.References && input.ChunkCount() == 0 {
		return out, nil
	}
	cols, err := GatherColumns(input, sel)
	if err != nil {
		return nil, err
	}
	chunk := table.NewChunk()
	for _, c := range cols {
		chunk.AddColumn(c)
	}
	out.EmplaceChunk(chunk)
	return out, nil
}
