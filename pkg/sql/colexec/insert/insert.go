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

// Package insert appends its input rows to the target table under the
// table's write lock.
package insert

import (
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/storage"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Argument struct {
	Input     colexec.Operator
	Mgr       *storage.Manager
	TableName string
}

func New(mgr *storage.Manager, tableName string, input colexec.Operator) *Argument {
	return &Argument{Input: input, Mgr: mgr, TableName: tableName}
}

func (arg *Argument) Name() string        { return "Insert" }
func (arg *Argument) Description() string { return "Insert(" + arg.TableName + ")" }
func (arg *Argument) InTables() int       { return 1 }
func (arg *Argument) OutTables() int      { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	return &Argument{Input: arg.Input.Recreate(args), Mgr: arg.Mgr, TableName: arg.TableName}
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
	if in.ColumnCount() != target.ColumnCount() {
		return nil, sqlerror.Newf(errno.ColumnCountMismatch,
			"insert of %d columns into a table of %d columns", in.ColumnCount(), target.ColumnCount())
	}
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	target.LockWrites()
	defer target.UnlockWrites()

	loc := colexec.NewLocator(in)
	rows := loc.Rows()
	if in.ColumnCount() == 0 {
		rows = 0
	}
	vals := make([]types.Value, in.ColumnCount())
	for row := 0; row < rows; row++ {
		for col := range vals {
			v := loc.Value(row, types.ColumnID(col))
			cast, ok := colexec.CastValue(target.ColumnType(types.ColumnID(col)).Oid, v)
			if !ok {
				return nil, sqlerror.Newf(errno.DatatypeMismatch,
					"insert value of type %s for a %s column", v.Oid(), target.ColumnType(types.ColumnID(col)))
			}
			vals[col] = cast
		}
		if err := target.AppendRow(vals); err != nil {
			return nil, err
		}
	}
	arg.Mgr.RefreshStatistics(arg.TableName)

	return in, nil
}
