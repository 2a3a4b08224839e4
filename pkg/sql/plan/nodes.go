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

package plan

import (
	"fmt"
	"strings"

	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
)

// PredicateNode scans its input with one comparison. Value2 is engaged
// for BETWEEN only.
type PredicateNode struct {
	baseNode
	origin   ColumnOrigin
	scanType extend.ScanType
	value    Param
	value2   *types.Value
}

func NewPredicate(origin ColumnOrigin, scanType extend.ScanType, value Param, value2 *types.Value) *PredicateNode {
	n := &PredicateNode{origin: origin, scanType: scanType, value: value, value2: value2}
	n.init(n, Predicate)
	return n
}

func (n *PredicateNode) ColumnOrigin() ColumnOrigin  { return n.origin }
func (n *PredicateNode) ScanType() extend.ScanType   { return n.scanType }
func (n *PredicateNode) Value() Param                { return n.value }
func (n *PredicateNode) Value2() *types.Value        { return n.value2 }

func (n *PredicateNode) Description() string {
	if n.value2 != nil {
		return fmt.Sprintf("[Predicate] σ(%s BETWEEN %s AND %s)", n.origin, paramString(n.value), n.value2)
	}
	return fmt.Sprintf("[Predicate] σ(%s %s %s)", n.origin, n.scanType, paramString(n.value))
}

func paramString(p Param) string {
	switch p.Kind {
	case types.ParamColumn:
		return p.Origin.String()
	case types.ParamPlaceholder:
		return "?"
	}
	return p.Val.String()
}

// SortNode orders its input by the definitions, in stable declared
// order.
type SortNode struct {
	baseNode
	defs []OrderByDefinition
}

func NewSort(defs []OrderByDefinition) *SortNode {
	n := &SortNode{defs: defs}
	n.init(n, Sort)
	return n
}

func (n *SortNode) Definitions() []OrderByDefinition { return n.defs }

func (n *SortNode) Description() string {
	parts := make([]string, len(n.defs))
	for i, d := range n.defs {
		dir := "asc"
		if d.Mode == Descending {
			dir = "desc"
		}
		parts[i] = d.Origin.String() + " " + dir
	}
	return "[Sort] τ(" + strings.Join(parts, ", ") + ")"
}

// LimitNode caps the row count.
type LimitNode struct {
	baseNode
	limit uint64
}

func NewLimit(limit uint64) *LimitNode {
	n := &LimitNode{limit: limit}
	n.init(n, Limit)
	return n
}

func (n *LimitNode) Limit() uint64 { return n.limit }

func (n *LimitNode) Description() string {
	return fmt.Sprintf("[Limit] %d", n.limit)
}

// UnionNode unions the row-id sets of two plans over the same input.
type UnionNode struct {
	baseNode
	mode UnionMode
}

func NewUnion(mode UnionMode) *UnionNode {
	n := &UnionNode{mode: mode}
	n.init(n, Union)
	return n
}

func (n *UnionNode) Mode() UnionMode { return n.mode }

func (n *UnionNode) Description() string {
	return "[Union] ∪ positions"
}

// ValidateNode filters rows down to those visible to the active
// transaction.
type ValidateNode struct {
	baseNode
}

func NewValidate() *ValidateNode {
	n := &ValidateNode{}
	n.init(n, Validate)
	return n
}

func (n *ValidateNode) Description() string {
	return "[Validate]"
}

// InsertNode appends its input rows to the target table.
type InsertNode struct {
	baseNode
	tableName string
}

func NewInsert(tableName string) *InsertNode {
	n := &InsertNode{tableName: tableName}
	n.init(n, Insert)
	return n
}

func (n *InsertNode) TableName() string { return n.tableName }

func (n *InsertNode) Description() string {
	return "[Insert] " + n.tableName
}

func (n *InsertNode) ManagesTable(tableName string) bool {
	return n.tableName == tableName
}

// UpdateNode rewrites the referenced rows of the target table; the
// expression list is sized to the target width.
type UpdateNode struct {
	baseNode
	tableName string
	exprs     []*Expr
}

func NewUpdate(tableName string, exprs []*Expr) *UpdateNode {
	n := &UpdateNode{tableName: tableName, exprs: exprs}
	n.init(n, Update)
	return n
}

func (n *UpdateNode) TableName() string    { return n.tableName }
func (n *UpdateNode) Expressions() []*Expr { return n.exprs }

func (n *UpdateNode) Description() string {
	parts := make([]string, len(n.exprs))
	for i, e := range n.exprs {
		parts[i] = e.String()
	}
	return "[Update] " + n.tableName + " set " + strings.Join(parts, ", ")
}

func (n *UpdateNode) ManagesTable(tableName string) bool {
	return n.tableName == tableName
}

// DeleteNode removes the referenced rows from the target table.
type DeleteNode struct {
	baseNode
	tableName string
}

func NewDelete(tableName string) *DeleteNode {
	n := &DeleteNode{tableName: tableName}
	n.init(n, Delete)
	return n
}

func (n *DeleteNode) TableName() string { return n.tableName }

func (n *DeleteNode) Description() string {
	return "[Delete] " + n.tableName
}

func (n *DeleteNode) ManagesTable(tableName string) bool {
	return n.tableName == tableName
}

// ShowTablesNode lists the registered tables.
type ShowTablesNode struct {
	baseNode
}

func NewShowTables() *ShowTablesNode {
	n := &ShowTablesNode{}
	n.init(n, ShowTables)
	return n
}

func (n *ShowTablesNode) Description() string {
	return "[ShowTables]"
}

func (n *ShowTablesNode) OutputColumnNames() []string {
	return []string{"table_name"}
}

func (n *ShowTablesNode) OutputColumnOrigins() []ColumnOrigin {
	return []ColumnOrigin{{Node: n, Column: 0}}
}

// ShowColumnsNode lists the columns of one table.
type ShowColumnsNode struct {
	baseNode
	tableName string
}

func NewShowColumns(tableName string) *ShowColumnsNode {
	n := &ShowColumnsNode{tableName: tableName}
	n.init(n, ShowColumns)
	return n
}

func (n *ShowColumnsNode) TableName() string { return n.tableName }

func (n *ShowColumnsNode) Description() string {
	return "[ShowColumns] " + n.tableName
}

func (n *ShowColumnsNode) OutputColumnNames() []string {
	return []string{"column_name", "column_type"}
}

func (n *ShowColumnsNode) OutputColumnOrigins() []ColumnOrigin {
	return []ColumnOrigin{{Node: n, Column: 0}, {Node: n, Column: 1}}
}
