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

// Package setunion unions two references tables of the same layout as
// row-id sets, not as value sets.
//
// Each input turns into a reference matrix: one concatenated position
// list per column segment, rows aligned by index. Sorting the matrix
// rows directly would copy row ids around, so each input gets a
// virtual position list (indices into its matrix) and only the
// indices are sorted. The merge of the two sorted virtual lists is
// derived from the classic sorted set-union: equal row-id tuples emit
// once.
package setunion

import (
	"sort"

	"github.com/matrixorigin/stonework/pkg/container/column"
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Argument struct {
	LeftIn  colexec.Operator
	RightIn colexec.Operator

	segmentBegins []types.ColumnID
	refTables     []column.Referenced
	refColumnIDs  []types.ColumnID
}

func New(left, right colexec.Operator) *Argument {
	return &Argument{LeftIn: left, RightIn: right}
}

func (arg *Argument) Name() string        { return "SetUnion" }
func (arg *Argument) Description() string { return "SetUnion" }
func (arg *Argument) InTables() int       { return 2 }
func (arg *Argument) OutTables() int      { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	return &Argument{LeftIn: arg.LeftIn.Recreate(args), RightIn: arg.RightIn.Recreate(args)}
}

type referenceMatrix [][]types.RowID

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	left, err := arg.LeftIn.Execute(proc)
	if err != nil {
		return nil, err
	}
	right, err := arg.RightIn.Execute(proc)
	if err != nil {
		return nil, err
	}
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	if early, err := arg.analyzeInput(left, right); early != nil || err != nil {
		return early, err
	}

	matrixLeft := arg.buildReferenceMatrix(left)
	matrixRight := arg.buildReferenceMatrix(right)

	virtualLeft := makeVirtualPosList(int(left.RowCount()))
	virtualRight := makeVirtualPosList(int(right.RowCount()))
	sortVirtual(virtualLeft, matrixLeft)
	sortVirtual(virtualRight, matrixRight)

	// rather arbitrary way to decide on an output chunk size
	outChunkSize := left.ChunkSize()
	if right.ChunkSize() > outChunkSize {
		outChunkSize = right.ChunkSize()
	}

	out := table.NewWithLayoutFrom(left, outChunkSize, table.References)

	posLists := make([]*types.PosList, len(arg.segmentBegins))
	resetLists := func() {
		for i := range posLists {
			posLists[i] = types.NewPosList()
		}
	}
	resetLists()

	emitRow := func(matrix referenceMatrix, rowIdx int) {
		for s := range posLists {
			posLists[s].Append(matrix[s][rowIdx])
		}
	}

	emitChunk := func() {
		chunk := table.NewChunk()
		for s := range posLists {
			begin := arg.segmentBegins[s]
			end := types.ColumnID(left.ColumnCount())
			if s+1 < len(arg.segmentBegins) {
				end = arg.segmentBegins[s+1]
			}
			for id := begin; id < end; id++ {
				chunk.AddColumn(column.NewReference(
					left.ColumnType(id).Oid, arg.refTables[s], arg.refColumnIDs[id], posLists[s]))
			}
		}
		out.EmplaceChunk(chunk)
	}

	cmp := func(a referenceMatrix, ai int, b referenceMatrix, bi int) bool {
		for s := range a {
			if a[s][ai].Less(b[s][bi]) {
				return true
			}
			if b[s][bi].Less(a[s][ai]) {
				return false
			}
		}
		return false
	}

	leftIdx, rightIdx := 0, 0
	numLeft, numRight := len(virtualLeft), len(virtualRight)
	chunkRowIdx := uint64(0)

	for leftIdx < numLeft || rightIdx < numRight {
		// begin derived from the sorted set-union
		switch {
		case leftIdx == numLeft:
			emitRow(matrixRight, virtualRight[rightIdx])
			rightIdx++
		case rightIdx == numRight:
			emitRow(matrixLeft, virtualLeft[leftIdx])
			leftIdx++
		case cmp(matrixRight, virtualRight[rightIdx], matrixLeft, virtualLeft[leftIdx]):
			emitRow(matrixRight, virtualRight[rightIdx])
			rightIdx++
		default:
			emitRow(matrixLeft, virtualLeft[leftIdx])
			if !cmp(matrixLeft, virtualLeft[leftIdx], matrixRight, virtualRight[rightIdx]) {
				rightIdx++
			}
			leftIdx++
		}
		chunkRowIdx++
		// end derived from the sorted set-union

		if chunkRowIdx == outChunkSize && outChunkSize != 0 {
			emitChunk()
			chunkRowIdx = 0
			resetLists()
		}
	}

	if chunkRowIdx != 0 {
		emitChunk()
	}
	return out, nil
}

// analyzeInput validates the schemas, handles the empty inputs, and
// identifies the merged column segmentation of both inputs.
func (arg *Argument) analyzeInput(left, right *table.Table) (*table.Table, error) {
	arg.segmentBegins = arg.segmentBegins[:0]
	arg.refTables = arg.refTables[:0]
	arg.refColumnIDs = arg.refColumnIDs[:0]

	if left.ColumnCount() != right.ColumnCount() {
		return nil, sqlerror.New(errno.ColumnCountMismatch,
			"input tables must have the same layout, column count mismatch")
	}
	if left.ColumnCount() == 0 {
		return left, nil
	}
	for id := 0; id < left.ColumnCount(); id++ {
		if !left.ColumnType(types.ColumnID(id)).Eq(right.ColumnType(types.ColumnID(id))) {
			return nil, sqlerror.New(errno.DatatypeMismatch,
				"input tables must have the same layout, column type mismatch")
		}
		if left.ColumnName(types.ColumnID(id)) != right.ColumnName(types.ColumnID(id)) {
			return nil, sqlerror.New(errno.DatatypeMismatch,
				"input tables must have the same layout, column name mismatch")
		}
	}

	if left.RowCount() == 0 {
		return right, nil
	}
	if right.RowCount() == 0 {
		return left, nil
	}

	if left.Type() != table.References || right.Type() != table.References {
		return nil, sqlerror.New(errno.DatatypeIncompatible, "SetUnion supports only reference tables")
	}

	// segment begins of both inputs, merged
	addColumnSegments := func(t *table.Table) error {
		var current *types.PosList
		first := t.GetChunk(0)
		for id := 0; id < t.ColumnCount(); id++ {
			ref, ok := first.Column(types.ColumnID(id)).(*column.ReferenceColumn)
			if !ok {
				return sqlerror.New(errno.DatatypeIncompatible, "references table holds a non-reference column")
			}
			if ref.PosList() != current {
				current = ref.PosList()
				arg.segmentBegins = append(arg.segmentBegins, types.ColumnID(id))
			}
		}
		return nil
	}
	if err := addColumnSegments(left); err != nil {
		return nil, err
	}
	if err := addColumnSegments(right); err != nil {
		return nil, err
	}
	sort.Slice(arg.segmentBegins, func(i, j int) bool {
		return arg.segmentBegins[i] < arg.segmentBegins[j]
	})
	arg.segmentBegins = uniqueColumnIDs(arg.segmentBegins)

	// the tables and column ids referenced per segment
	firstLeft := left.GetChunk(0)
	for _, begin := range arg.segmentBegins {
		ref := firstLeft.Column(begin).(*column.ReferenceColumn)
		arg.refTables = append(arg.refTables, ref.Referenced())
	}
	for id := 0; id < left.ColumnCount(); id++ {
		ref := firstLeft.Column(types.ColumnID(id)).(*column.ReferenceColumn)
		arg.refColumnIDs = append(arg.refColumnIDs, ref.ReferencedColumn())
	}

	if err := arg.verifySegments(left); err != nil {
		return nil, err
	}
	if err := arg.verifySegments(right); err != nil {
		return nil, err
	}
	return nil, nil
}

// verifySegments asserts that every chunk repeats the merged
// segmentation and references the tables and column ids the first
// chunk of the left input does.
func (arg *Argument) verifySegments(t *table.Table) error {
	for chunkID := 0; chunkID < t.ChunkCount(); chunkID++ {
		chunk := t.GetChunk(uint32(chunkID))
		var current *types.PosList
		nextSegment := 0
		for id := 0; id < t.ColumnCount(); id++ {
			if nextSegment < len(arg.segmentBegins) && types.ColumnID(id) == arg.segmentBegins[nextSegment] {
				nextSegment++
				current = nil
			}
			ref, ok := chunk.Column(types.ColumnID(id)).(*column.ReferenceColumn)
			if !ok {
				return sqlerror.New(errno.DatatypeIncompatible, "references table holds a non-reference column")
			}
			if current == nil {
				current = ref.PosList()
			}
			if ref.Referenced() != arg.refTables[nextSegment-1] {
				return sqlerror.Newf(errno.DatatypeIncompatible,
					"reference column (chunk %d, column %d) does not reference the segment's table", chunkID, id)
			}
			if ref.ReferencedColumn() != arg.refColumnIDs[id] {
				return sqlerror.Newf(errno.DatatypeIncompatible,
					"reference column (chunk %d, column %d) does not reference the expected column", chunkID, id)
			}
			if ref.PosList() != current {
				return sqlerror.New(errno.DatatypeIncompatible, "different position lists in column segment")
			}
		}
	}
	return nil
}

// buildReferenceMatrix concatenates, per segment, every chunk's
// position list.
func (arg *Argument) buildReferenceMatrix(t *table.Table) referenceMatrix {
	matrix := make(referenceMatrix, len(arg.segmentBegins))
	for s := range matrix {
		matrix[s] = make([]types.RowID, 0, t.RowCount())
	}
	for chunkID := 0; chunkID < t.ChunkCount(); chunkID++ {
		chunk := t.GetChunk(uint32(chunkID))
		for s, begin := range arg.segmentBegins {
			ref := chunk.Column(begin).(*column.ReferenceColumn)
			matrix[s] = append(matrix[s], (*ref.PosList())...)
		}
	}
	return matrix
}

func makeVirtualPosList(n int) []int {
	v := make([]int, n)
	for i := range v {
		v[i] = i
	}
	return v
}

// sortVirtual sorts indices only; row ids never move.
func sortVirtual(virtual []int, matrix referenceMatrix) {
	sort.Slice(virtual, func(i, j int) bool {
		a, b := virtual[i], virtual[j]
		for s := range matrix {
			if matrix[s][a].Less(matrix[s][b]) {
				return true
			}
			if matrix[s][b].Less(matrix[s][a]) {
				return false
			}
		}
		return false
	})
}

func uniqueColumnIDs(ids []types.ColumnID) []types.ColumnID {
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}
