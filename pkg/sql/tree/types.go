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

// Package tree holds the SQL abstract syntax tree the translator
// consumes. The grammar and tokenizer producing it are external; the
// node kinds here are the lossless boundary they must target.
package tree

import "github.com/matrixorigin/stonework/pkg/container/types"

// Statement is any of the supported statement kinds.
type Statement interface {
	stmt()
}

type Select struct {
	From       []TableExpr
	Where      *Expr
	SelectList []*Expr
	GroupBy    []*Expr
	Having     *Expr
	OrderBy    []*Order
	Limit      *int64

	// UnionSelect chains a set operation; the translator rejects it.
	UnionSelect *Select
}

type Order struct {
	Expr *Expr
	Desc bool
}

type Insert struct {
	Table   string
	Columns []string
	// exactly one of Values and Select is set
	Values []*Expr
	Select *Select
}

type Delete struct {
	Table string
	Where *Expr
}

type UpdateClause struct {
	Column string
	Value  *Expr
}

type Update struct {
	Table   TableExpr
	Updates []*UpdateClause
	Where   *Expr
}

type ShowKind uint8

const (
	ShowTables ShowKind = iota
	ShowColumns
)

type Show struct {
	Kind ShowKind
	Name string // table name for ShowColumns
}

func (*Select) stmt() {}
func (*Insert) stmt() {}
func (*Delete) stmt() {}
func (*Update) stmt() {}
func (*Show) stmt()   {}

// TableExpr is a FROM-clause item.
type TableExpr interface {
	tableExpr()
}

type TableName struct {
	Name  string
	Alias string
}

type Subquery struct {
	Select *Select
	Alias  string
}

type JoinType uint8

const (
	JoinInner JoinType = iota
	JoinOuter
	JoinLeft
	JoinRight
	JoinNatural
	JoinCross
)

type JoinTableExpr struct {
	Type        JoinType
	Left, Right TableExpr
	Cond        *Expr // nil for natural and cross joins
}

func (*TableName) tableExpr()     {}
func (*Subquery) tableExpr()      {}
func (*JoinTableExpr) tableExpr() {}

// ExprKind discriminates the expression node.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprColumnRef
	ExprStar
	ExprFunctionRef
	ExprOperator
	ExprPlaceholder
)

type OpType uint8

const (
	OpNone OpType = iota
	OpEquals
	OpNotEquals
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpLike
	OpNotLike
	OpBetween
	OpAnd
	OpOr
	OpNot
	OpExists
	OpPlus
	OpMinus
	OpTimes
	OpDivide
	OpMod
	OpPower
)

// Expr mirrors the parser's expression node: one struct for every
// kind, discriminated by Kind.
type Expr struct {
	Kind ExprKind
	Op   OpType

	// operands of an operator expression
	Left, Right *Expr

	// List carries BETWEEN bounds and function arguments
	List []*Expr

	// Name is the column or function name; Table its optional
	// qualifier (also used by prefixed stars)
	Name  string
	Table string
	Alias string

	Value       types.Value // literal payload
	Placeholder int
}

func NewLiteral(v types.Value) *Expr {
	return &Expr{Kind: ExprLiteral, Value: v}
}

func NewColumnRef(table, name string) *Expr {
	return &Expr{Kind: ExprColumnRef, Table: table, Name: name}
}

func NewStar(table string) *Expr {
	return &Expr{Kind: ExprStar, Table: table}
}

func NewFunctionRef(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprFunctionRef, Name: name, List: args}
}

func NewOperator(op OpType, left, right *Expr) *Expr {
	return &Expr{Kind: ExprOperator, Op: op, Left: left, Right: right}
}

func NewBetween(operand, low, high *Expr) *Expr {
	return &Expr{Kind: ExprOperator, Op: OpBetween, Left: operand, List: []*Expr{low, high}}
}

func (e *Expr) WithAlias(alias string) *Expr {
	e.Alias = alias
	return e
}
