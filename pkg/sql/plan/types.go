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

// Package plan implements the logical query plan: a mutable DAG of
// typed nodes carrying column provenance. The translator creates
// nodes, the optimizer replaces child pointers, the operator builder
// consumes the result.
package plan

import (
	"fmt"

	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/stats"
)

type NodeType uint8

const (
	Aggregate NodeType = iota
	Delete
	DummyTable
	Insert
	Join
	Limit
	Mock
	Predicate
	Projection
	ShowColumns
	ShowTables
	Sort
	StoredTable
	Union
	Update
	Validate
)

// Expr is the plan-level expression: column references carry origins.
type Expr = extend.Expression[ColumnOrigin]

// ColumnOrigin is the stable identity of a logical column: the node
// that defines it and the column's id in that node's output. It
// survives plan rewrites, unlike output column ids.
type ColumnOrigin struct {
	Node   Node
	Column types.ColumnID
}

func (o ColumnOrigin) Valid() bool {
	return o.Node != nil
}

func (o ColumnOrigin) String() string {
	if o.Node == nil {
		return "<none>"
	}
	names := o.Node.OutputColumnNames()
	if int(o.Column) < len(names) {
		return names[o.Column]
	}
	return fmt.Sprintf("#%d", o.Column)
}

// NamedColumnReference is a column name with an optional table
// qualifier, as written in SQL.
type NamedColumnReference struct {
	ColumnName string
	TableName  string
}

func (r NamedColumnReference) String() string {
	if r.TableName != "" {
		return r.TableName + "." + r.ColumnName
	}
	return r.ColumnName
}

type JoinMode uint8

const (
	JoinInner JoinMode = iota
	JoinOuter
	JoinLeft
	JoinRight
	JoinNatural
	JoinCross
)

func (m JoinMode) String() string {
	switch m {
	case JoinInner:
		return "Inner"
	case JoinOuter:
		return "Outer"
	case JoinLeft:
		return "Left"
	case JoinRight:
		return "Right"
	case JoinNatural:
		return "Natural"
	case JoinCross:
		return "Cross"
	}
	return "unknown"
}

type UnionMode uint8

const (
	// UnionPositions unions row-id sets, not values.
	UnionPositions UnionMode = iota
)

type OrderByMode uint8

const (
	Ascending OrderByMode = iota
	Descending
)

type OrderByDefinition struct {
	Origin ColumnOrigin
	Mode   OrderByMode
}

// Param is the plan-level scan parameter: a value, a column origin, or
// a placeholder.
type Param struct {
	Kind        types.ParamKind
	Val         types.Value
	Origin      ColumnOrigin
	Placeholder int
}

func ValueParam(v types.Value) Param {
	return Param{Kind: types.ParamValue, Val: v}
}

func OriginParam(o ColumnOrigin) Param {
	return Param{Kind: types.ParamColumn, Origin: o}
}

func PlaceholderParam(idx int) Param {
	return Param{Kind: types.ParamPlaceholder, Placeholder: idx}
}

// Node is the capability surface of every plan node.
type Node interface {
	Type() NodeType
	Description() string

	Parent() Node
	ClearParent()
	Left() Node
	Right() Node
	SetLeft(child Node)
	SetRight(child Node)

	Alias() string
	SetAlias(alias string)

	OutputColumnNames() []string
	OutputColumnCount() int
	OutputColumnOrigins() []ColumnOrigin

	// FindColumnOriginByOutputColumnID is defined for every id below
	// OutputColumnCount.
	FindColumnOriginByOutputColumnID(id types.ColumnID) ColumnOrigin
	FindOutputColumnIDByColumnOrigin(origin ColumnOrigin) (types.ColumnID, bool)
	GetOutputColumnIDByColumnOrigin(origin ColumnOrigin) (types.ColumnID, error)

	// FindColumnOriginByNamedColumnReference resolves a name; found is
	// false for an unknown name, the error reports ambiguity.
	FindColumnOriginByNamedColumnReference(ref NamedColumnReference) (origin ColumnOrigin, found bool, err error)
	GetColumnOriginByNamedColumnReference(ref NamedColumnReference) (ColumnOrigin, error)

	// FindTableNameOrigin locates the node that introduces a table
	// name or alias, or nil.
	FindTableNameOrigin(tableName string) Node

	ManagesTable(tableName string) bool

	Statistics() *stats.TableStatistics
	SetStatistics(*stats.TableStatistics)

	setParent(p Node)
}

// baseNode carries the DAG plumbing shared by every node. self is the
// concrete node; provenance defaults dispatch through it.
type baseNode struct {
	self   Node
	typ    NodeType
	parent Node
	left   Node
	right  Node
	alias  string
	stats  *stats.TableStatistics
}

func (n *baseNode) init(self Node, typ NodeType) {
	n.self = self
	n.typ = typ
}

func (n *baseNode) Type() NodeType { return n.typ }

func (n *baseNode) Parent() Node { return n.parent }

func (n *baseNode) ClearParent() { n.parent = nil }

func (n *baseNode) setParent(p Node) { n.parent = p }

func (n *baseNode) Left() Node  { return n.left }
func (n *baseNode) Right() Node { return n.right }

func (n *baseNode) SetLeft(child Node) {
	if n.left != nil && n.left.Parent() == n.self {
		n.left.ClearParent()
	}
	n.left = child
	if child != nil {
		child.setParent(n.self)
	}
}

func (n *baseNode) SetRight(child Node) {
	if n.right != nil && n.right.Parent() == n.self {
		n.right.ClearParent()
	}
	n.right = child
	if child != nil {
		child.setParent(n.self)
	}
}

func (n *baseNode) Alias() string         { return n.alias }
func (n *baseNode) SetAlias(alias string) { n.alias = alias }

// Default provenance: forward the left child's columns.

func (n *baseNode) OutputColumnNames() []string {
	if n.left == nil {
		return nil
	}
	return n.left.OutputColumnNames()
}

func (n *baseNode) OutputColumnCount() int {
	return len(n.self.OutputColumnNames())
}

func (n *baseNode) OutputColumnOrigins() []ColumnOrigin {
	if n.left == nil {
		return nil
	}
	return n.left.OutputColumnOrigins()
}

func (n *baseNode) FindColumnOriginByOutputColumnID(id types.ColumnID) ColumnOrigin {
	origins := n.self.OutputColumnOrigins()
	if int(id) >= len(origins) {
		sqlerror.Internal(fmt.Sprintf("output column id %d out of range", id))
	}
	return origins[id]
}

func (n *baseNode) FindOutputColumnIDByColumnOrigin(origin ColumnOrigin) (types.ColumnID, bool) {
	for i, o := range n.self.OutputColumnOrigins() {
		if o == origin {
			return types.ColumnID(i), true
		}
	}
	return 0, false
}

func (n *baseNode) GetOutputColumnIDByColumnOrigin(origin ColumnOrigin) (types.ColumnID, error) {
	id, ok := n.self.FindOutputColumnIDByColumnOrigin(origin)
	if !ok {
		return 0, sqlerror.Newf(errno.UndefinedColumn, "column %s is not produced by this node", origin)
	}
	return id, nil
}

func (n *baseNode) FindColumnOriginByNamedColumnReference(ref NamedColumnReference) (ColumnOrigin, bool, error) {
	// an alias on this node shadows table prefixes below it
	if ref.TableName != "" && n.alias != "" {
		if ref.TableName != n.alias {
			return ColumnOrigin{}, false, nil
		}
		ref = NamedColumnReference{ColumnName: ref.ColumnName}
	}
	if n.left == nil {
		return ColumnOrigin{}, false, nil
	}
	return n.left.FindColumnOriginByNamedColumnReference(ref)
}

func (n *baseNode) GetColumnOriginByNamedColumnReference(ref NamedColumnReference) (ColumnOrigin, error) {
	origin, found, err := n.self.FindColumnOriginByNamedColumnReference(ref)
	if err != nil {
		return ColumnOrigin{}, err
	}
	if !found {
		return ColumnOrigin{}, sqlerror.Newf(errno.UndefinedColumn, "column %s does not exist", ref)
	}
	return origin, nil
}

func (n *baseNode) FindTableNameOrigin(tableName string) Node {
	if n.alias != "" {
		if n.alias == tableName {
			return n.self
		}
		return nil
	}
	if n.left != nil {
		if found := n.left.FindTableNameOrigin(tableName); found != nil {
			return found
		}
	}
	if n.right != nil {
		return n.right.FindTableNameOrigin(tableName)
	}
	return nil
}

func (n *baseNode) ManagesTable(string) bool { return false }

func (n *baseNode) Statistics() *stats.TableStatistics {
	if n.stats != nil {
		return n.stats
	}
	if n.left != nil {
		return n.left.Statistics()
	}
	return nil
}

func (n *baseNode) SetStatistics(s *stats.TableStatistics) { n.stats = s }

func ambiguousColumn(ref NamedColumnReference) error {
	return sqlerror.Newf(errno.AmbiguousColumn, "column reference %s is ambiguous", ref)
}

// Print writes the plan tree rooted at node, one node per line.
func Print(node Node, depth int) string {
	if node == nil {
		return ""
	}
	out := ""
	for i := 0; i < depth; i++ {
		out += "  "
	}
	out += node.Description() + "\n"
	out += Print(node.Left(), depth+1)
	out += Print(node.Right(), depth+1)
	return out
}
