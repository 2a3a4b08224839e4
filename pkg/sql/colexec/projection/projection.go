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

// Package projection evaluates one expression per output column.
// A projection of pure pass-through columns over a references input
// re-emits reference columns sharing the input's position lists;
// anything computed materializes a data table row by row.
package projection

import (
	"bytes"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Argument struct {
	Input colexec.Operator
	Exprs []*colexec.Expr
	// Names are the output column names, aligned with Exprs.
	Names []string
}

func New(input colexec.Operator, exprs []*colexec.Expr, names []string) *Argument {
	return &Argument{Input: input, Exprs: exprs, Names: names}
}

func (arg *Argument) Name() string { return "Projection" }

func (arg *Argument) Description() string {
	var buf bytes.Buffer
	buf.WriteString("π(")
	for i, e := range arg.Exprs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.String())
	}
	buf.WriteString(")")
	return buf.String()
}

func (arg *Argument) InTables() int  { return 1 }
func (arg *Argument) OutTables() int { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	return &Argument{Input: arg.Input.Recreate(args), Exprs: arg.Exprs, Names: arg.Names}
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	in, err := arg.Input.Execute(proc)
	if err != nil {
		return nil, err
	}
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	if in.Type() == table.References && arg.passThroughOnly() {
		return arg.passThrough(in)
	}
	return arg.materialize(proc, in)
}

func (arg *Argument) passThroughOnly() bool {
	for _, e := range arg.Exprs {
		if e.Type() != extend.Column {
			return false
		}
	}
	return true
}

// passThrough re-emits the selected reference columns chunk by chunk;
// position lists are shared, not copied.
func (arg *Argument) passThrough(in *table.Table) (*table.Table, error) {
	names, typs := arg.schema(in)
	out := table.NewOfType(names, typs, in.ChunkSize(), table.References)
	for i := 0; i < in.ChunkCount(); i++ {
		chunk := in.GetChunk(uint32(i))
		outChunk := table.NewChunk()
		for _, e := range arg.Exprs {
			outChunk.AddColumn(chunk.Column(e.ColumnRef()).Dup())
		}
		out.EmplaceChunk(outChunk)
	}
	return out, nil
}

func (arg *Argument) materialize(proc *process.Process, in *table.Table) (*table.Table, error) {
	names, typs := arg.schema(in)
	out := table.NewOfType(names, typs, in.ChunkSize(), table.Data)

	loc := colexec.NewLocator(in)
	rows := loc.Rows()
	// a projection of literals over a zero-column input emits exactly
	// one row; INSERT ... VALUES relies on this
	if in.ColumnCount() == 0 {
		rows = 1
	}

	// fold expressions without column references once
	constant := make([]*types.Value, len(arg.Exprs))
	for i, e := range arg.Exprs {
		if len(extend.ColumnsIn(e)) == 0 {
			v, err := colexec.EvalExpr(loc, 0, e)
			if err != nil {
				return nil, err
			}
			constant[i] = &v
		}
	}

	vals := make([]types.Value, len(arg.Exprs))
	for row := 0; row < rows; row++ {
		if row%8192 == 0 {
			if err := proc.Canceled(); err != nil {
				return nil, err
			}
		}
		for i, e := range arg.Exprs {
			if constant[i] != nil {
				vals[i] = *constant[i]
				continue
			}
			v, err := colexec.EvalExpr(loc, row, e)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		if err := out.AppendRow(vals); err != nil {
			return nil, err
		}
	}
	out.SealAll()
	return out, nil
}

func (arg *Argument) schema(in *table.Table) ([]string, []types.Type) {
	names := arg.Names
	if names == nil {
		names = make([]string, len(arg.Exprs))
		for i, e := range arg.Exprs {
			if e.Alias() != "" {
				names[i] = e.Alias()
			} else {
				names[i] = e.String()
			}
		}
	}
	typs := make([]types.Type, len(arg.Exprs))
	for i, e := range arg.Exprs {
		typs[i] = types.New(TypeOf(e, in))
	}
	return names, typs
}

// TypeOf infers the element type an expression evaluates to. A bare
// NULL literal defaults to int.
func TypeOf(e *colexec.Expr, in *table.Table) types.T {
	switch {
	case e.Type() == extend.Column:
		return in.ColumnType(e.ColumnRef()).Oid
	case e.Type() == extend.Literal:
		if e.Value().Oid() == types.T_any {
			return types.T_int32
		}
		return e.Value().Oid()
	case e.IsArithmeticOperator():
		lt := TypeOf(e.Left(), in)
		rt := TypeOf(e.Right(), in)
		if e.Type() == extend.Power ||
			lt == types.T_float32 || lt == types.T_float64 ||
			rt == types.T_float32 || rt == types.T_float64 {
			return types.T_float64
		}
		return types.T_int64
	}
	return types.T_int32
}
