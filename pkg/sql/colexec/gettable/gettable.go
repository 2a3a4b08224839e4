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

// Package gettable sources tables into the pipeline: stored tables by
// name, wrapped tables for tests, and the dummy input of INSERT ...
// VALUES projections.
package gettable

import (
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/storage"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

type Argument struct {
	Mgr       *storage.Manager
	TableName string
	Tbl       *table.Table
}

func New(mgr *storage.Manager, name string) *Argument {
	return &Argument{Mgr: mgr, TableName: name}
}

// NewWrapper sources an already materialized table.
func NewWrapper(tbl *table.Table) *Argument {
	return &Argument{Tbl: tbl}
}

// NewDummy sources the zero-column table under INSERT ... VALUES; a
// projection of literals over it yields exactly one row.
func NewDummy() *Argument {
	return &Argument{Tbl: table.New(nil, nil, 0)}
}

func (arg *Argument) Name() string { return "GetTable" }

func (arg *Argument) Description() string {
	if arg.Tbl != nil {
		return "GetTable(wrapped)"
	}
	return "GetTable(" + arg.TableName + ")"
}

func (arg *Argument) InTables() int  { return 0 }
func (arg *Argument) OutTables() int { return 1 }

func (arg *Argument) Recreate([]types.Value) colexec.Operator {
	return &Argument{Mgr: arg.Mgr, TableName: arg.TableName, Tbl: arg.Tbl}
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	if err := proc.Canceled(); err != nil {
		return nil, err
	}
	if arg.Tbl != nil {
		return arg.Tbl, nil
	}
	return arg.Mgr.GetTable(arg.TableName)
}
