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

// Package deletion marks the rows its reference input points at as
// deleted; validated reads stop seeing them. Row ids stay stable.
package deletion

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

func (arg *Argument) Name() string        { return "Delete" }
func (arg *Argument) Description() string { return "Delete(" + arg.TableName + ")" }
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
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	rids, err := TargetRows(in, target)
	if err != nil {
		return nil, err
	}

	target.LockWrites()
	defer target.UnlockWrites()
	for _, rid := range rids {
		target.MarkDeleted(rid)
	}
	arg.Mgr.RefreshStatistics(arg.TableName)

	return in, nil
}

// TargetRows extracts the target-table row ids a reference input
// points at. The input must reference the target in its first segment.
func TargetRows(in *table.Table, target *table.Table) ([]types.RowID, error) {
	if in.Type() != table.References {
		return nil, sqlerror.New(errno.DatatypeIncompatible, "DML over a non-reference input")
	}
	m, err := colexec.AnalyzeReferences(in)
	if err != nil {
		return nil, err
	}
	if len(m.Segments) == 0 {
		return nil, nil
	}
	if base, ok := m.Segments[0].Table.(*table.Table); !ok || base != target {
		return nil, sqlerror.New(errno.DatatypeIncompatible, "reference input does not point at the target table")
	}
	return m.Lists[0], nil
}
