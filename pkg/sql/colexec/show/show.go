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

// Package show materializes the catalog listings; table names come out
// in registry order.
package show

import (
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/storage"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Kind uint8

const (
	Tables Kind = iota
	Columns
)

type Argument struct {
	Mgr       *storage.Manager
	Kind      Kind
	TableName string
}

func NewTables(mgr *storage.Manager) *Argument {
	return &Argument{Mgr: mgr, Kind: Tables}
}

func NewColumns(mgr *storage.Manager, tableName string) *Argument {
	return &Argument{Mgr: mgr, Kind: Columns, TableName: tableName}
}

func (arg *Argument) Name() string {
	if arg.Kind == Tables {
		return "ShowTables"
	}
	return "ShowColumns"
}

func (arg *Argument) Description() string {
	if arg.Kind == Tables {
		return "ShowTables"
	}
	return "ShowColumns(" + arg.TableName + ")"
}

func (arg *Argument) InTables() int  { return 0 }
func (arg *Argument) OutTables() int { return 1 }

func (arg *Argument) Recreate([]types.Value) colexec.Operator {
	return &Argument{Mgr: arg.Mgr, Kind: arg.Kind, TableName: arg.TableName}
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	if arg.Kind == Tables {
		out := table.New([]string{"table_name"}, []types.Type{types.New(types.T_varchar)}, 0)
		for _, name := range arg.Mgr.TableNames() {
			if err := out.AppendRow([]types.Value{types.NewVarchar(name)}); err != nil {
				return nil, err
			}
		}
		out.SealAll()
		return out, nil
	}

	target, err := arg.Mgr.GetTable(arg.TableName)
	if err != nil {
		return nil, err
	}
	out := table.New([]string{"column_name", "column_type"},
		[]types.Type{types.New(types.T_varchar), types.New(types.T_varchar)}, 0)
	for id := 0; id < target.ColumnCount(); id++ {
		err := out.AppendRow([]types.Value{
			types.NewVarchar(target.ColumnName(types.ColumnID(id))),
			types.NewVarchar(target.ColumnType(types.ColumnID(id)).String()),
		})
		if err != nil {
			return nil, err
		}
	}
	out.SealAll()
	return out, nil
}
