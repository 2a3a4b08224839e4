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

// Package order sorts its input stably by the declared keys and
// materializes a reference result.
package order

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Field struct {
	Col  types.ColumnID
	Desc bool
}

type Argument struct {
	Input  colexec.Operator
	Fields []Field
}

func New(input colexec.Operator, fields []Field) *Argument {
	return &Argument{Input: input, Fields: fields}
}

func (arg *Argument) Name() string { return "Sort" }

func (arg *Argument) Description() string {
	var buf bytes.Buffer
	buf.WriteString("τ([")
	for i, f := range arg.Fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		if f.Desc {
			buf.WriteString("desc ")
		}
		fmt.Fprintf(&buf, "#%d", f.Col)
	}
	buf.WriteString("])")
	return buf.String()
}

func (arg *Argument) InTables() int  { return 1 }
func (arg *Argument) OutTables() int { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	return &Argument{Input: arg.Input.Recreate(args), Fields: arg.Fields}
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	in, err := arg.Input.Execute(proc)
	if err != nil {
		return nil, err
	}
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	loc := colexec.NewLocator(in)
	rows := loc.Rows()

	// materialize the key columns once; NULL sorts before everything
	keys := make([][]types.Value, len(arg.Fields))
	for k, f := range arg.Fields {
		keys[k] = make([]types.Value, rows)
		for row := 0; row < rows; row++ {
			keys[k][row] = loc.Value(row, f.Col)
		}
	}

	sel := make([]int, rows)
	for i := range sel {
		sel[i] = i
	}
	sort.SliceStable(sel, func(i, j int) bool {
		a, b := sel[i], sel[j]
		for k, f := range arg.Fields {
			cmp := compareKeys(keys[k][a], keys[k][b])
			if cmp == 0 {
				continue
			}
			if f.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	return colexec.SelectRows(in, sel)
}

func compareKeys(a, b types.Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	return a.Compare(b)
}
