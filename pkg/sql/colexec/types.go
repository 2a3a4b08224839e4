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

// Package colexec holds the physical operator surface and the pieces
// the operator packages share: row location, reference-matrix
// analysis, expression evaluation and scan comparison.
package colexec

import (
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

// Expr is the operator-level expression: column references carry bare
// column ids of the operator's input.
type Expr = extend.Expression[types.ColumnID]

// Operator materializes a result table from its input operators.
// Execute runs the inputs first. Results are not cached: an input
// shared by several operators runs once per Execute call on it.
type Operator interface {
	Name() string
	Description() string
	InTables() int
	OutTables() int

	// Recreate rebuilds the operator tree with placeholder parameters
	// bound to args; prepared statements re-execute through it.
	Recreate(args []types.Value) Operator

	Execute(proc *process.Process) (*table.Table, error)
}

// Condition is the scan parameter block of TableScan; Value2 is
// engaged for BETWEEN only.
type Condition struct {
	Col    types.ColumnID
	Scan   extend.ScanType
	Value  types.Param
	Value2 *types.Value
}

// Locator translates global row indices of a table into row ids.
type Locator struct {
	tbl    *table.Table
	starts []int
}

func NewLocator(tbl *table.Table) *Locator {
	starts := make([]int, tbl.ChunkCount()+1)
	for i := 0; i < tbl.ChunkCount(); i++ {
		starts[i+1] = starts[i] + tbl.GetChunk(uint32(i)).Len()
	}
	return &Locator{tbl: tbl, starts: starts}
}

func (l *Locator) Rows() int {
	return l.starts[len(l.starts)-1]
}

func (l *Locator) RowID(row int) types.RowID {
	chunk := 0
	for l.starts[chunk+1] <= row {
		chunk++
	}
	return types.RowID{Chunk: uint32(chunk), Offset: uint32(row - l.starts[chunk])}
}

func (l *Locator) Value(row int, col types.ColumnID) types.Value {
	rid := l.RowID(row)
	return l.tbl.GetChunk(rid.Chunk).Column(col).GetValue(rid.Offset)
}
