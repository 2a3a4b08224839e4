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

// Package tablescan filters a table with one comparison and emits a
// references table over the matching rows. Scans over data tables
// dispatch on the column encoding; dictionary columns resolve the
// search value to dictionary indices and scan the attribute vector
// only.
package tablescan

import (
	"fmt"

	"github.com/matrixorigin/stonework/pkg/container/column"
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Argument struct {
	Input colexec.Operator
	Cond  colexec.Condition
}

func New(input colexec.Operator, cond colexec.Condition) *Argument {
	return &Argument{Input: input, Cond: cond}
}

func (arg *Argument) Name() string { return "TableScan" }

func (arg *Argument) Description() string {
	return fmt.Sprintf("TableScan(#%d %s)", arg.Cond.Col, arg.Cond.Scan)
}

func (arg *Argument) InTables() int  { return 1 }
func (arg *Argument) OutTables() int { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	cond := arg.Cond
	cond.Value = cond.Value.Bind(args)
	return &Argument{Input: arg.Input.Recreate(args), Cond: cond}
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	in, err := arg.Input.Execute(proc)
	if err != nil {
		return nil, err
	}

	if arg.Cond.Value.Kind == types.ParamPlaceholder {
		return nil, sqlerror.New(errno.FeatureNotSupported, "unbound placeholder in scan")
	}

	if in.Type() == table.References || arg.Cond.Value.Kind == types.ParamColumn {
		return arg.scanGeneric(proc, in)
	}
	return arg.scanData(proc, in)
}

// scanGeneric walks rows through the column surface; reference columns
// recurse into their base columns by way of GetValue.
func (arg *Argument) scanGeneric(proc *process.Process, in *table.Table) (*table.Table, error) {
	loc := colexec.NewLocator(in)
	var sel []int
	for row := 0; row < loc.Rows(); row++ {
		if row%8192 == 0 {
			if err := proc.Canceled(); err != nil {
				return nil, err
			}
		}
		v := loc.Value(row, arg.Cond.Col)
		w := arg.Cond.Value.Val
		if arg.Cond.Value.Kind == types.ParamColumn {
			w = loc.Value(row, arg.Cond.Value.Col)
		}
		matched, err := colexec.ScanMatch(v, arg.Cond.Scan, w, arg.Cond.Value2)
		if err != nil {
			return nil, err
		}
		if matched {
			sel = append(sel, row)
		}
	}
	return colexec.SelectRows(in, sel)
}

// scanData scans chunk by chunk in parallel, dispatching per encoding,
// and emits one reference chunk per matching input chunk.
func (arg *Argument) scanData(proc *process.Process, in *table.Table) (*table.Table, error) {
	out := table.NewWithLayoutFrom(in, in.ChunkSize(), table.References)
	matches := make([][]uint32, in.ChunkCount())

	err := proc.Parallel(in.ChunkCount(), func(i int) error {
		if err := proc.Canceled(); err != nil {
			return err
		}
		chunk := in.GetChunk(uint32(i))
		visitor := &scanVisitor{cond: arg.Cond}
		if err := chunk.Column(arg.Cond.Col).Accept(visitor, nil); err != nil {
			return err
		}
		matches[i] = visitor.matches
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, offsets := range matches {
		if len(offsets) == 0 {
			continue
		}
		pos := types.NewPosList()
		for _, off := range offsets {
			pos.Append(types.RowID{Chunk: uint32(i), Offset: off})
		}
		chunk := table.NewChunk()
		for id := 0; id < in.ColumnCount(); id++ {
			chunk.AddColumn(column.NewReference(
				in.ColumnType(types.ColumnID(id)).Oid, in, types.ColumnID(id), pos))
		}
		out.EmplaceChunk(chunk)
	}
	return out, nil
}

// scanVisitor fans out over the column encodings.
type scanVisitor struct {
	cond    colexec.Condition
	matches []uint32
}

func (s *scanVisitor) VisitValue(c *column.ValueColumn, _ any) error {
	return s.visitRows(c)
}

func (s *scanVisitor) VisitRunLength(c *column.RunLengthColumn, _ any) error {
	// one comparison per run, then emit the run's whole range
	ends := c.EndPositions()
	begin := uint32(0)
	for k, end := range ends {
		v := c.Values()[k]
		matched := false
		if !v.Eq(c.NullValue()) {
			var err error
			matched, err = colexec.ScanMatch(v, s.cond.Scan, s.cond.Value.Val, s.cond.Value2)
			if err != nil {
				return err
			}
		}
		if matched {
			for off := begin; off <= end; off++ {
				s.matches = append(s.matches, off)
			}
		}
		begin = end + 1
	}
	return nil
}

func (s *scanVisitor) VisitReference(c *column.ReferenceColumn, _ any) error {
	return s.visitRows(c)
}

func (s *scanVisitor) visitRows(c column.Column) error {
	n := c.Len()
	for row := 0; row < n; row++ {
		matched, err := colexec.ScanMatch(c.GetValue(uint32(row)), s.cond.Scan, s.cond.Value.Val, s.cond.Value2)
		if err != nil {
			return err
		}
		if matched {
			s.matches = append(s.matches, uint32(row))
		}
	}
	return nil
}

// VisitDictionary resolves the search value to one or two dictionary
// indices and scans the attribute vector.
func (s *scanVisitor) VisitDictionary(c *column.DictionaryColumn, _ any) error {
	w, ok := colexec.CastValue(c.Oid(), s.cond.Value.Val)
	if !ok {
		return sqlerror.Newf(errno.DatatypeIncompatible,
			"scan value of type %s over a %s column", s.cond.Value.Val.Oid(), c.Oid())
	}

	nullIndex := c.NullIndex()
	attrs := c.AttributeVector()
	it := attrs.Iterator()

	emit := func(match func(idx uint32) bool) {
		for row := 0; ; row++ {
			idx, ok := it.Next()
			if !ok {
				break
			}
			if idx == nullIndex {
				continue
			}
			if match(idx) {
				s.matches = append(s.matches, uint32(row))
			}
		}
	}

	switch s.cond.Scan {
	case extend.OpEquals:
		target := c.LowerBound(w)
		if int(target) >= len(c.Dictionary()) || !c.Dictionary()[target].Eq(w) {
			return nil
		}
		emit(func(idx uint32) bool { return idx == target })
	case extend.OpNotEquals:
		target := c.LowerBound(w)
		if int(target) >= len(c.Dictionary()) || !c.Dictionary()[target].Eq(w) {
			emit(func(uint32) bool { return true })
			return nil
		}
		emit(func(idx uint32) bool { return idx != target })
	case extend.OpLessThan:
		bound := c.LowerBound(w)
		emit(func(idx uint32) bool { return idx < bound })
	case extend.OpLessThanEquals:
		bound := c.UpperBound(w)
		emit(func(idx uint32) bool { return idx < bound })
	case extend.OpGreaterThan:
		bound := c.UpperBound(w)
		emit(func(idx uint32) bool { return idx >= bound })
	case extend.OpGreaterThanEquals:
		bound := c.LowerBound(w)
		emit(func(idx uint32) bool { return idx >= bound })
	case extend.OpBetween:
		if s.cond.Value2 == nil {
			return sqlerror.New(errno.DatatypeIncompatible, "BETWEEN without an upper bound")
		}
		w2, ok := colexec.CastValue(c.Oid(), *s.cond.Value2)
		if !ok {
			return sqlerror.Newf(errno.DatatypeIncompatible,
				"scan value of type %s over a %s column", s.cond.Value2.Oid(), c.Oid())
		}
		low := c.LowerBound(w)
		high := c.UpperBound(w2)
		emit(func(idx uint32) bool { return idx >= low && idx < high })
	default:
		// LIKE patterns fall back to value comparison
		return s.visitRows(c)
	}
	return nil
}
