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

package table

import (
	"sync"

	"github.com/matrixorigin/stonework/pkg/container/column"
	"github.com/matrixorigin/stonework/pkg/container/nulls"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

type TableType uint8

const (
	// Data tables own their rows.
	Data TableType = iota
	// References tables hold only reference columns pointing into data
	// tables.
	References
)

// Table declares its column names and types at construction. Rows are
// appended into the open chunk; a full chunk seals and a new one opens.
type Table struct {
	names     []string
	typs      []types.Type
	chunkSize uint64
	typ       TableType
	chunks    []*Chunk

	// deletion marks, one mask per chunk, grown on demand. Validate
	// filters against them; Delete and Update set them.
	delMu   sync.RWMutex
	deleted []*nulls.Nulls

	// writeMu is the per-table exclusive lock DML runs under; reads of
	// sealed chunks need no synchronization.
	writeMu sync.Mutex
}

func New(names []string, typs []types.Type, chunkSize uint64) *Table {
	if len(names) != len(typs) {
		sqlerror.Internal("table with mismatched column names and types")
	}
	return &Table{names: names, typs: typs, chunkSize: chunkSize, typ: Data}
}

// NewWithLayoutFrom builds an empty table sharing proto's schema.
// Operators use it to assemble References results.
func NewWithLayoutFrom(proto *Table, chunkSize uint64, typ TableType) *Table {
	return &Table{
		names:     append([]string(nil), proto.names...),
		typs:      append([]types.Type(nil), proto.typs...),
		chunkSize: chunkSize,
		typ:       typ,
	}
}

// NewOfType builds an empty table of an explicit table type; join
// results use it to declare reference schemas that no single input
// provides.
func NewOfType(names []string, typs []types.Type, chunkSize uint64, typ TableType) *Table {
	t := New(names, typs, chunkSize)
	t.typ = typ
	return t
}

func (t *Table) Type() TableType   { return t.typ }
func (t *Table) ChunkSize() uint64 { return t.chunkSize }

func (t *Table) ColumnCount() int {
	return len(t.names)
}

func (t *Table) ColumnNames() []string {
	return t.names
}

func (t *Table) ColumnName(id types.ColumnID) string {
	return t.names[id]
}

func (t *Table) ColumnType(id types.ColumnID) types.Type {
	return t.typs[id]
}

func (t *Table) ColumnTypes() []types.Type {
	return t.typs
}

// ColumnIDByName resolves a column name; the bool reports success.
func (t *Table) ColumnIDByName(name string) (types.ColumnID, bool) {
	for i, n := range t.names {
		if n == name {
			return types.ColumnID(i), true
		}
	}
	return 0, false
}

func (t *Table) ChunkCount() int {
	return len(t.chunks)
}

func (t *Table) GetChunk(i uint32) *Chunk {
	return t.chunks[i]
}

func (t *Table) RowCount() uint64 {
	var n uint64
	for _, c := range t.chunks {
		n += uint64(c.Len())
	}
	return n
}

// AppendRow extends the open chunk, sealing it and opening a fresh one
// when the chunk limit is reached. Data tables only.
func (t *Table) AppendRow(vals []types.Value) error {
	if t.typ != Data {
		return sqlerror.New(errno.FeatureNotSupported, "append on a references table")
	}
	if len(vals) != len(t.names) {
		return sqlerror.Newf(errno.ColumnCountMismatch,
			"append of %d values to a table of %d columns", len(vals), len(t.names))
	}
	open := t.openChunk()
	return open.appendRow(vals)
}

func (t *Table) openChunk() *Chunk {
	if n := len(t.chunks); n > 0 {
		last := t.chunks[n-1]
		if !last.Sealed() && (t.chunkSize == 0 || uint64(last.Len()) < t.chunkSize) {
			return last
		}
		last.Seal()
	}
	c := NewChunk()
	for _, typ := range t.typs {
		c.AddColumn(column.NewValue(typ.Oid))
	}
	t.chunks = append(t.chunks, c)
	return c
}

// EmplaceChunk appends an operator-assembled chunk. The chunk arrives
// complete and is sealed on arrival.
func (t *Table) EmplaceChunk(c *Chunk) {
	if c.ColumnCount() != len(t.names) {
		sqlerror.Internal("emplaced chunk does not match the table layout")
	}
	c.sealed = true
	t.chunks = append(t.chunks, c)
}

// SealAll closes the open chunk, if any. Encoding a table requires all
// of its chunks to be sealed.
func (t *Table) SealAll() {
	for _, c := range t.chunks {
		if !c.Sealed() {
			c.Seal()
		}
	}
}

// BaseColumn implements column.Referenced.
func (t *Table) BaseColumn(chunk uint32, col types.ColumnID) column.Column {
	return t.chunks[chunk].Column(col)
}

// GetValue reads one cell through a row id.
func (t *Table) GetValue(rid types.RowID, col types.ColumnID) types.Value {
	return t.chunks[rid.Chunk].Column(col).GetValue(rid.Offset)
}

// LockWrites takes the exclusive per-table DML lock.
func (t *Table) LockWrites() {
	t.writeMu.Lock()
}

func (t *Table) UnlockWrites() {
	t.writeMu.Unlock()
}

// MarkDeleted hides a row from validated reads. Row ids stay stable;
// the storage is reclaimed when the table is dropped.
func (t *Table) MarkDeleted(rid types.RowID) {
	t.delMu.Lock()
	defer t.delMu.Unlock()
	for uint32(len(t.deleted)) <= rid.Chunk {
		t.deleted = append(t.deleted, nulls.New())
	}
	nulls.Add(t.deleted[rid.Chunk], rid.Offset)
}

func (t *Table) IsDeleted(rid types.RowID) bool {
	t.delMu.RLock()
	defer t.delMu.RUnlock()
	if uint32(len(t.deleted)) <= rid.Chunk {
		return false
	}
	return nulls.Contains(t.deleted[rid.Chunk], rid.Offset)
}
