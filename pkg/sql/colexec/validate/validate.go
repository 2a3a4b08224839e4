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

// Package validate filters its input down to the rows visible to the
// active transaction: rows a Delete or Update has marked are hidden.
package validate

import (
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Argument struct {
	Input colexec.Operator
}

func New(input colexec.Operator) *Argument {
	return &Argument{Input: input}
}

func (arg *Argument) Name() string        { return "Validate" }
func (arg *Argument) Description() string { return "Validate" }
func (arg *Argument) InTables() int       { return 1 }
func (arg *Argument) OutTables() int      { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	return &Argument{Input: arg.Input.Recreate(args)}
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	in, err := arg.Input.Execute(proc)
	if err != nil {
		return nil, err
	}
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	if in.Type() == table.Data {
		loc := colexec.NewLocator(in)
		var sel []int
		for row := 0; row < loc.Rows(); row++ {
			if !in.IsDeleted(loc.RowID(row)) {
				sel = append(sel, row)
			}
		}
		return colexec.SelectRows(in, sel)
	}

	// a referenced row is visible only while every base row it reads
	// through is visible
	m, err := colexec.AnalyzeReferences(in)
	if err != nil {
		return nil, err
	}
	rows := 0
	if len(m.Lists) > 0 {
		rows = len(m.Lists[0])
	}
	var sel []int
	for row := 0; row < rows; row++ {
		visible := true
		for s, seg := range m.Segments {
			base, ok := seg.Table.(*table.Table)
			if !ok {
				continue
			}
			rid := m.Lists[s][row]
			if rid != types.NullRowID && base.IsDeleted(rid) {
				visible = false
				break
			}
		}
		if visible {
			sel = append(sel, row)
		}
	}
	return colexec.SelectRows(in, sel)
}
