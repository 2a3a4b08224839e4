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
	"github.com/matrixorigin/stonework/pkg/container/types"
)

// ReferenceColumn owns no rows: it reads a base column of another table
// through a shared position list. Reference columns never nest; the
// referenced column is always a base column. Columns of one segment
// share the identical *PosList.
type ReferenceColumn struct {
	typ types.T
	tbl Referenced
	col types.ColumnID
	pos *types.PosList
}

func NewReference(typ types.T, tbl Referenced, col types.ColumnID, pos *types.PosList) *ReferenceColumn {
	return &ReferenceColumn{typ: typ, tbl: tbl, col: col, pos: pos}
}

func (c *ReferenceColumn) Oid() types.T           { return c.typ }
func (c *ReferenceColumn) Encoding() EncodingType { return Reference }
func (c *ReferenceColumn) Len() int               { return c.pos.Len() }

func (c *ReferenceColumn) Referenced() Referenced        { return c.tbl }
func (c *ReferenceColumn) ReferencedColumn() types.ColumnID { return c.col }
func (c *ReferenceColumn) PosList() *types.PosList       { return c.pos }

func (c *ReferenceColumn) GetValue(row uint32) types.Value {
	rid := (*c.pos)[row]
	if rid == types.NullRowID {
		return types.NewNull(c.typ)
	}
	return c.tbl.BaseColumn(rid.Chunk, c.col).GetValue(rid.Offset)
}

func (c *ReferenceColumn) Append(types.Value) error {
	return errAppendOn(Reference)
}

// Dup shares the position list; the list itself is immutable once the
// producing operator has published the column.
func (c *ReferenceColumn) Dup() Column {
	return &ReferenceColumn{typ: c.typ, tbl: c.tbl, col: c.col, pos: c.pos}
}

func (c *ReferenceColumn) Accept(visitor Visitor, ctx any) error {
	return visitor.VisitReference(c, ctx)
}
