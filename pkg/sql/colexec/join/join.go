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

// Package join emits the concatenation of matching left and right
// rows as reference columns, one position list side each. Equality
// predicates probe a hash table built on the smaller side; other scan
// types and cross products fall back to the nested loop. Outer modes
// pad the missing side with the NULL row id.
package join

import (
	"bytes"
	"fmt"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Mode uint8

const (
	Inner Mode = iota
	Outer
	Left
	Right
	Cross
)

func (m Mode) String() string {
	switch m {
	case Inner:
		return "inner"
	case Outer:
		return "outer"
	case Left:
		return "left"
	case Right:
		return "right"
	case Cross:
		return "cross"
	}
	return "unknown"
}

type Argument struct {
	LeftIn  colexec.Operator
	RightIn colexec.Operator
	Mode    Mode

	// join predicate; unused for cross joins
	LeftCol  types.ColumnID
	RightCol types.ColumnID
	Scan     extend.ScanType
}

func NewCross(left, right colexec.Operator) *Argument {
	return &Argument{LeftIn: left, RightIn: right, Mode: Cross}
}

func New(mode Mode, left, right colexec.Operator, leftCol, rightCol types.ColumnID, scan extend.ScanType) *Argument {
	return &Argument{
		LeftIn: left, RightIn: right, Mode: mode,
		LeftCol: leftCol, RightCol: rightCol, Scan: scan,
	}
}

func (arg *Argument) Name() string {
	if arg.Mode != Cross && arg.Scan == extend.OpEquals {
		return "HashJoin"
	}
	return "NestedLoopJoin"
}

func (arg *Argument) Description() string {
	if arg.Mode == Cross {
		return "⨯"
	}
	return fmt.Sprintf("⋈ (%s) #%d %s #%d", arg.Mode, arg.LeftCol, arg.Scan, arg.RightCol)
}

func (arg *Argument) InTables() int  { return 2 }
func (arg *Argument) OutTables() int { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	cp := *arg
	cp.LeftIn = arg.LeftIn.Recreate(args)
	cp.RightIn = arg.RightIn.Recreate(args)
	return &cp
}

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

	leftLoc := colexec.NewLocator(left)
	rightLoc := colexec.NewLocator(right)

	var leftRows, rightRows []int
	switch {
	case arg.Mode == Cross:
		leftRows, rightRows = crossRows(leftLoc.Rows(), rightLoc.Rows())
	case arg.Scan == extend.OpEquals:
		leftRows, rightRows, err = arg.hashJoin(proc, leftLoc, rightLoc)
	default:
		leftRows, rightRows, err = arg.loopJoin(proc, leftLoc, rightLoc)
	}
	if err != nil {
		return nil, err
	}

	return arg.emit(left, right, leftRows, rightRows)
}

func crossRows(n, m int) ([]int, []int) {
	leftRows := make([]int, 0, n*m)
	rightRows := make([]int, 0, n*m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, j)
		}
	}
	return leftRows, rightRows
}

// hashJoin builds on the smaller side and probes with the larger.
func (arg *Argument) hashJoin(proc *process.Process, left, right *colexec.Locator) ([]int, []int, error) {
	buildLeft := left.Rows() <= right.Rows()

	build, probe := left, right
	buildCol, probeCol := arg.LeftCol, arg.RightCol
	if !buildLeft {
		build, probe = right, left
		buildCol, probeCol = arg.RightCol, arg.LeftCol
	}

	ht := make(map[string][]int, build.Rows())
	var key bytes.Buffer
	for row := 0; row < build.Rows(); row++ {
		v := build.Value(row, buildCol)
		if v.IsNull() {
			continue
		}
		key.Reset()
		writeJoinKey(&key, v)
		ht[key.String()] = append(ht[key.String()], row)
	}

	var buildRows, probeRows []int
	buildMatched := make([]bool, build.Rows())
	for row := 0; row < probe.Rows(); row++ {
		if row%8192 == 0 {
			if err := proc.Canceled(); err != nil {
				return nil, nil, err
			}
		}
		v := probe.Value(row, probeCol)
		if !v.IsNull() {
			key.Reset()
			writeJoinKey(&key, v)
			for _, b := range ht[key.String()] {
				buildRows = append(buildRows, b)
				probeRows = append(probeRows, row)
				buildMatched[b] = true
				continue
			}
			if len(ht[key.String()]) > 0 {
				continue
			}
		}
		// non-matching probe row: keep it for the probe side's outer
		// modes
		if arg.padProbe(buildLeft) {
			buildRows = append(buildRows, -1)
			probeRows = append(probeRows, row)
		}
	}
	if arg.padBuild(buildLeft) {
		for b, matched := range buildMatched {
			if !matched {
				buildRows = append(buildRows, b)
				probeRows = append(probeRows, -1)
			}
		}
	}

	if buildLeft {
		return buildRows, probeRows, nil
	}
	return probeRows, buildRows, nil
}

// padProbe reports whether unmatched probe-side rows survive.
func (arg *Argument) padProbe(buildLeft bool) bool {
	if arg.Mode == Outer {
		return true
	}
	if buildLeft {
		// probe side is the right input
		return arg.Mode == Right
	}
	return arg.Mode == Left
}

func (arg *Argument) padBuild(buildLeft bool) bool {
	if arg.Mode == Outer {
		return true
	}
	if buildLeft {
		return arg.Mode == Left
	}
	return arg.Mode == Right
}

func (arg *Argument) loopJoin(proc *process.Process, left, right *colexec.Locator) ([]int, []int, error) {
	var leftRows, rightRows []int
	rightMatched := make([]bool, right.Rows())

	for i := 0; i < left.Rows(); i++ {
		if err := proc.Canceled(); err != nil {
			return nil, nil, err
		}
		v := left.Value(i, arg.LeftCol)
		matchedAny := false
		for j := 0; j < right.Rows(); j++ {
			w := right.Value(j, arg.RightCol)
			matched, err := colexec.ScanMatch(v, arg.Scan, w, nil)
			if err != nil {
				return nil, nil, err
			}
			if matched {
				leftRows = append(leftRows, i)
				rightRows = append(rightRows, j)
				matchedAny = true
				rightMatched[j] = true
			}
		}
		if !matchedAny && (arg.Mode == Left || arg.Mode == Outer) {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, -1)
		}
	}
	if arg.Mode == Right || arg.Mode == Outer {
		for j, matched := range rightMatched {
			if !matched {
				leftRows = append(leftRows, -1)
				rightRows = append(rightRows, j)
			}
		}
	}
	return leftRows, rightRows, nil
}

// emit assembles one chunk of reference columns: the left input's
// segments first, then the right input's.
func (arg *Argument) emit(left, right *table.Table, leftRows, rightRows []int) (*table.Table, error) {
	names := append(append([]string(nil), left.ColumnNames()...), right.ColumnNames()...)
	typs := append(append([]types.Type(nil), left.ColumnTypes()...), right.ColumnTypes()...)
	out := table.NewOfType(names, typs, 0, table.References)
	if len(leftRows) == 0 {
		return out, nil
	}

	leftCols, err := colexec.GatherColumns(left, leftRows)
	if err != nil {
		return nil, err
	}
	rightCols, err := colexec.GatherColumns(right, rightRows)
	if err != nil {
		return nil, err
	}

	chunk := table.NewChunk()
	for _, c := range leftCols {
		chunk.AddColumn(c)
	}
	for _, c := range rightCols {
		chunk.AddColumn(c)
	}
	out.EmplaceChunk(chunk)
	return out, nil
}

func writeJoinKey(buf *bytes.Buffer, v types.Value) {
	// widen numerics so 1 (int) meets 1.0 (double)
	if v.IsNumeric() {
		fmt.Fprintf(buf, "n%v", v.AsFloat64())
		return
	}
	buf.WriteString("s")
	buf.WriteString(v.String())
}
