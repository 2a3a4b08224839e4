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

// Package limit caps its input at the first n rows, preserving input
// order.
package limit

import (
	"fmt"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Argument struct {
	Input colexec.Operator
	Limit uint64
}

func New(input colexec.Operator, n uint64) *Argument {
	return &Argument{Input: input, Limit: n}
}

func (arg *Argument) Name() string { return "Limit" }

func (arg *Argument) Description() string {
	return fmt.Sprintf("Limit(%d)", arg.Limit)
}

func (arg *Argument) InTables() int  { return 1 }
func (arg *Argument) OutTables() int { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	return &Argument{Input: arg.Input.Recreate(args), Limit: arg.Limit}
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	in, err := arg.Input.Execute(proc)
	if err != nil {
		return nil, err
	}
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	rows := int(in.RowCount())
	if uint64(rows) > arg.Limit {
		rows = int(arg.Limit)
	}
	sel := make([]int, rows)
	for i := range sel {
		sel[i] = i
	}
	return colexec.SelectRows(in, sel)
}
