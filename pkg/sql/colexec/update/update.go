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

// Package update rewrites the referenced rows of the target table as a
// delete of the old rows plus an insert of the recomputed ones, on the
// same pipeline.
package update

import (
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/deletion"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/storage"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Argument struct {
	Input     colexec.Operator
	Mgr       *storage.Manager
	TableName string
	// Exprs is sized to the target width; untouched columns carry
	// their identity column reference.
	Exprs []*colexec.Expr
}

func New(mgr *storage.Manager, tableName string, input colexec.Operator, exprs []*colexec.Expr) *Argument {
	return &Argument{Input: input, Mgr: mgr, TableName: tableName, Exprs: exprs}
}

func (arg *Argument) Name() string        { return "Update" }
func (arg *Argument) Description() string { return "Update(" + arg.TableName + ")" }
func (arg *Argument) InTables() int       { return 1 }
func (arg *Argument) OutTables() int      { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	return &Argument{
		Input: arg.Input.Recreate(args), Mgr: arg.Mgr,
		TableName: arg.TableName, Exprs: arg.Exprs,
	}
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	in, err := arg.Input.Execute(proc)
	if err != nil {
		return nil, err
	}
	target, err := arg.Mgr.GetTable(arg.TableName)
	if err != nil {
		return nil, err
	}
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	rids, err := deletion.TargetRows(in, target)
	if err != nil {
		return nil, err
	}

	// compute the replacement rows before touching the table; an
	// evaluation error must leave the target unchanged
	loc := colexec.NewLocator(in)
	newRows := make([][]types.Value, 0, loc.Rows())
	for row := 0; row < loc.Rows(); row++ {
		vals := make([]types.Value, len(arg.Exprs))
		for i, e := range arg.Exprs {
			v, err := colexec.EvalExpr(loc, row, e)
			if err != nil {
				return nil, err
			}
			cast, ok := colexec.CastValue(target.ColumnType(types.ColumnID(i)).Oid, v)
			if !ok {
				return nil, sqlerror.Newf(errno.DatatypeMismatch,
					"update value of type %s for a %s column", v.Oid(), target.ColumnType(types.ColumnID(i)))
			}
			vals[i] = cast
		}
		newRows = append(newRows, vals)
	}

	target.LockWrites()
	defer target.UnlockWrites()

	for _, rid := range rids {
		target.MarkDeleted(rid)
	}
	for _, vals := range newRows {
		if err := target.AppendRow(vals); err != nil {
			return nil, err
		}
	}
	arg.Mgr.RefreshStatistics(arg.TableName)

	return in, nil
}
